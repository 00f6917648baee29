// Package xkeylock 提供基于 key 的进程内互斥锁。
//
// 暂存目录以其路径为 key：xsandbox.Ensure 在创建或刷新目录时持有锁，
// xsweep 清扫前用 TryAcquire 探测，锁被占用的目录视为活跃并跳过。
//
// 实现按 xxhash 分片，每个 key 对应一个容量为 1 的 channel，
// 引用计数归零后条目从 map 中删除，key 数量不会无限增长。
//
// 锁不可重入，与 sync.Mutex 一致。
package xkeylock
