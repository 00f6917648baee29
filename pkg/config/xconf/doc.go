// Package xconf 提供基于 koanf 的配置加载与热更新。
//
// 支持 YAML 与 JSON，格式由扩展名决定；[WithDefaults] 先加载内置默认配置，
// 再由文件覆盖同名键。Unmarshal 使用 koanf 标签，字符串形式的时长（如 "30m"）
// 会自动转换为 time.Duration。
//
//	cfg, err := xconf.New("/etc/xstage/xstage.yaml", xconf.WithDefaults(defaults, xconf.FormatYAML))
//	if err != nil {
//		return err
//	}
//	var sweep SweepConfig
//	if err := cfg.Unmarshal("sweep", &sweep); err != nil {
//		return err
//	}
//
// # 热更新
//
// [NewWatcher] 监视配置文件所在目录（兼容编辑器的"写临时文件再 rename"），
// 防抖后调用 Reload 并通知回调。Watcher.Run 阻塞直到 ctx 取消，可直接交给
// xrun.Group 管理。
package xconf
