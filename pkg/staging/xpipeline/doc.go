// Package xpipeline 按固定顺序串联暂存流水线的全部关卡。
//
// 一次 [Pipeline.Stage] 依次执行：
//
//  1. 由凭据派生身份根目录（xsandbox）
//  2. 规范化候选路径并校验包含性（xpath）
//  3. 确保根目录存在并创建锁标记
//  4. 只读元数据取得大小，检查存在性与上限
//  5. 文件名密钥快速路径（xsecret）
//  6. 扩展名白名单（xcontent）
//  7. 正文密钥扫描
//  8. 内容类型嗅探交叉校验
//  9. 内存 / 磁盘暂存（xstage）
//
// 调用方传入的字节（Request.Content 非 nil）严格按上述顺序处理，未通过扫描的内容
// 不会写入磁盘，落盘也不会覆盖已有文件。沙箱内已有的文件只能在暂存之后读取，
// 因此第 7、8 步放在暂存之后，对内存缓冲区或按路径流式读取执行；读取期间文件
// 大小或 inode 变化时返回 xstage.ErrSourceChanged。
//
// 任一关卡失败立即返回，已物化的缓冲区与锁标记在返回前释放；
// 调用方拿到的 [Staged] 一定通过了全部关卡。
//
//	p, err := xpipeline.New(cfg, xpipeline.WithLogger(logger))
//	err = p.Use(ctx, xpipeline.Request{Credential: key, Candidate: "docs/a.pdf", Content: data},
//		func(ctx context.Context, s *xpipeline.Staged) error {
//			return upload(ctx, s.File)
//		})
//
// 错误通过 [KindOf] 归类为稳定的 [Kind]，供外部协作方映射为用户可见的提示。
package xpipeline
