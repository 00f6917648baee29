package xlog

import (
	"log/slog"
	"strings"
)

// RedactedValue 被遮蔽属性的替换值
const RedactedValue = "***REDACTED***"

// defaultRedactKeys 默认遮蔽的字段名（小写比较）
var defaultRedactKeys = []string{
	"credential", "api_key", "apikey", "password", "secret", "token", "authorization",
}

// Redact 返回遮蔽凭据类字段的 ReplaceAttrFunc。
//
// 字段名（忽略大小写）包含默认列表或 extra 中任一关键字时，值被替换为 [RedactedValue]。
// 分组内的属性同样生效。
func Redact(extra ...string) ReplaceAttrFunc {
	keys := make([]string, 0, len(defaultRedactKeys)+len(extra))
	keys = append(keys, defaultRedactKeys...)
	for _, k := range extra {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keys = append(keys, k)
		}
	}
	return func(_ []string, a slog.Attr) slog.Attr {
		if a.Value.Kind() == slog.KindGroup {
			return a
		}
		name := strings.ToLower(a.Key)
		for _, k := range keys {
			if strings.Contains(name, k) {
				return slog.String(a.Key, RedactedValue)
			}
		}
		return a
	}
}
