package xpipeline

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/omeyang/xstage/pkg/config/xconf"
	"github.com/omeyang/xstage/pkg/observability/xlog"
	"github.com/omeyang/xstage/pkg/staging/xcontent"
	"github.com/omeyang/xstage/pkg/staging/xsandbox"
	"github.com/omeyang/xstage/pkg/staging/xstage"
	"github.com/omeyang/xstage/pkg/staging/xsweep"
)

// DefaultBaseDir 默认的沙箱父目录。
const DefaultBaseDir = "/var/lib/xstage"

// LogConfig 日志配置。
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	// File 非空时写入该文件并按大小轮转，空值写 stderr。
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// Config 流水线配置，每个组件按值拿到自己的一节。
//
// sweep.base_dir 总是取 sandbox.base_dir，配置文件中的值被忽略。
type Config struct {
	Sandbox xsandbox.Config `koanf:"sandbox"`
	Content xcontent.Config `koanf:"content"`
	Stage   xstage.Config   `koanf:"stage"`
	Sweep   xsweep.Config   `koanf:"sweep"`
	Log     LogConfig       `koanf:"log"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		Sandbox: xsandbox.DefaultConfig(DefaultBaseDir),
		Content: xcontent.DefaultConfig(),
		Stage:   xstage.DefaultConfig(),
		Sweep:   xsweep.DefaultConfig(DefaultBaseDir),
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 7,
		},
	}
}

// Validate 校验全部配置节，返回所有错误。
func (c Config) Validate() error {
	var errs []error
	if c.Sandbox.BaseDir == "" || !filepath.IsAbs(c.Sandbox.BaseDir) {
		errs = append(errs, fmt.Errorf("%w: sandbox.base_dir must be an absolute path", ErrInvalidConfig))
	}
	if _, err := xcontent.New(c.Content); err != nil {
		errs = append(errs, fmt.Errorf("content: %w", err))
	}
	if err := c.Stage.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("stage: %w", err))
	}
	if err := c.Sweep.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sweep: %w", err))
	}
	if _, err := xlog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err))
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format))
	}
	return errors.Join(errs...)
}

// LoadConfig 从 YAML/JSON 文件加载配置，未出现的键取默认值。
// 返回的 xconf.Config 可交给 xconf.NewWatcher 监视变更。
func LoadConfig(path string) (Config, xconf.Config, error) {
	src, err := xconf.New(path)
	if err != nil {
		return Config{}, nil, err
	}
	cfg, err := Decode(src)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, src, nil
}

// Decode 将 src 覆盖到默认配置上并校验。
func Decode(src xconf.Config) (Config, error) {
	cfg := DefaultConfig()
	// 列表按下标合并，出现时先清空默认值
	if src.Client().Exists("content.allowed_extensions") {
		cfg.Content.AllowedExtensions = nil
	}
	if err := src.Unmarshal("", &cfg); err != nil {
		return Config{}, err
	}
	cfg.Sweep.BaseDir = cfg.Sandbox.BaseDir
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
