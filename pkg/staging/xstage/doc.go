// Package xstage 决定已通过校验的文件以内存缓冲还是磁盘引用的方式暂存，并负责释放。
//
// 每次 [Router.Stage] 是一个小状态机：
//
//	SizeCheck ──size < 阈值──▶ MemoryAttempt ──成功──▶ Staged(memory)
//	    │                          │
//	    │ size ≥ 阈值              │ ErrAllocationFailure
//	    ▼                          ▼
//	DiskFallback ─────────────────────────────────▶ Staged(disk)
//
// 边界：大小恰好等于阈值的文件走磁盘，内存分支是严格小于。
// 超过 MaxFileSize 的文件返回 [ErrPayloadTooLarge]。
//
// [StagedFile] 是封闭接口，只有 [*MemoryFile] 与 [*DiskFile] 两种实现。
// 内存模式独占缓冲区，[Release] 会清零并归还；磁盘模式只持有引用，[Release] 什么都不做，
// 原文件的生命周期属于调用方。调用方传入的下载字节在磁盘分支会以 0600 落到沙箱内的
// 目标路径，由 xsweep 随根目录一起回收。
//
// 所有文件系统访问都通过以沙箱根目录打开的 os.Root 进行，
// 路径中的符号链接无法把读取重定向到根目录之外。
//
// # 分配器
//
// 内存缓冲经由 [Allocator] 分配：
//   - [HeapAllocator]：Go 堆，总量受进程级预算（x/sync semaphore）约束，预算耗尽即分配失败
//   - [LockedAllocator]（linux）：mmap + mlock + MADV_DONTDUMP，不会被换出或写入 core dump
//
// 任何包装了 [ErrAllocationFailure] 的错误都会转为磁盘分支，不会返回给调用方。
package xstage
