// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xid: 基于 sonyflake 的暂存 ID 生成，时钟回拨等待、base36 字符串
//   - xkeylock: 基于 key 的进程内互斥锁，支持 context 超时和非阻塞获取
//   - xlru: LRU 缓存，泛型支持、自动 TTL 过期
//   - xsys: 系统资源限制，RLIMIT_MEMLOCK 查询与提升
//
// 设计原则：
//   - 无包级可变状态，依赖通过构造参数注入
//   - 错误以哨兵值导出，调用方使用 errors.Is 判断
package util
