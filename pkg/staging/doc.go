// Package staging 提供安全暂存流水线相关的子包。
//
// 子包列表（叶子在前）：
//   - xpath: 候选相对路径的规范化与沙箱包含性校验
//   - xsandbox: 由凭据摘要派生的按身份隔离目录、锁标记
//   - xsecret: 文件名快速路径与正文的密钥模式扫描
//   - xcontent: 扩展名白名单与内容类型嗅探交叉校验
//   - xstage: 内存缓冲 / 磁盘引用路由与释放
//   - xsweep: 过期沙箱目录与锁标记的定时清扫
//   - xpipeline: 按固定顺序串联以上关卡，对外暴露 Stage/Release/Use
//
// 设计原则：
//   - 任一关卡失败立即短路，已物化的资源在 defer 中释放
//   - 错误信息不回显密钥原文、原始凭据或沙箱外的绝对路径
//   - 组件通过构造函数接收配置，不使用包级可变状态
package staging
