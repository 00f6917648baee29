// Package xsys 封装暂存进程相关的系统资源限制。
//
// 锁定内存分配器（xstage.NewLockedAllocator）依赖 mlock，可锁定的字节数受
// RLIMIT_MEMLOCK 约束。[MemlockLimit] 查询当前限制，[RaiseMemlockLimit]
// 在 hard limit 允许的范围内提升 soft limit。非 Unix 平台返回 [ErrUnsupportedPlatform]。
package xsys
