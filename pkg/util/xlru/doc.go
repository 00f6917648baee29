// Package xlru 提供带 TTL 的并发安全 LRU 缓存，基于 hashicorp/golang-lru/v2。
//
// 过期在访问时判定，缓存不持有任何 goroutine。
//
// xsandbox 用它记录每个暂存根目录最近一次 mtime 刷新时间：
// 同一目录在 TTL 内重复 Ensure 只做存在性检查，不再触碰 mtime。
// 缓存只保存路径与时间，从不保存文件内容或扫描结果。
package xlru
