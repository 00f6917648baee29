package xsecret

// Option 配置 Scanner。
type Option func(*scannerOptions)

type scannerOptions struct {
	extra []patternSource
}

type patternSource struct {
	category Category
	expr     string
}

// WithPattern 追加自定义模式，排在内置模式之后。表达式按大小写不敏感编译。
func WithPattern(category Category, expr string) Option {
	return func(o *scannerOptions) {
		o.extra = append(o.extra, patternSource{category: category, expr: expr})
	}
}

// ScanOption 配置单次扫描。
type ScanOption func(*scanOptions)

type scanOptions struct {
	binary bool
}

// AsBinary 声明内容为二进制，跳过正文扫描，仅执行文件名检查。
func AsBinary() ScanOption {
	return func(o *scanOptions) {
		o.binary = true
	}
}
