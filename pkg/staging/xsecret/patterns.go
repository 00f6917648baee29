package xsecret

import (
	"fmt"
	"regexp"
)

type pattern struct {
	category Category
	re       *regexp.Regexp
}

// assign 匹配 `key = value`、`"key": "value"`、`key: value` 等赋值形态。
const assign = `["']?\s*[:=]\s*["']?`

// defaultPatternSources 按优先级排列：高置信度的结构化形态在前，宽泛的赋值形态在后。
var defaultPatternSources = []struct {
	category Category
	expr     string
}{
	{CategoryPrivateKey, `-----BEGIN (?:[A-Z0-9]+ )*PRIVATE KEY(?: BLOCK)?-----`},

	{CategoryCloudCredential, `\b(?:AKIA|ASIA|AGPA|AIDA|AROA|AIPA|ANPA|ANVA)[A-Z0-9]{16}\b`},
	{CategoryCloudCredential, `\baws_?secret_?access_?key\b` + assign + `[A-Za-z0-9/+=]{40}`},
	{CategoryCloudCredential, `"type"\s*:\s*"service_account"`},

	{CategoryAPIKey, `\bsk-(?:proj-|live-|test-|ant-)?[A-Za-z0-9_\-]{20,}`},
	{CategoryAPIKey, `\bAIza[0-9A-Za-z_\-]{35}`},
	{CategoryAPIKey, `\b(?:x-)?api[_\-]?key\b` + assign + `[A-Za-z0-9_\-\.]{8,}`},

	{CategoryToken, `\bgh[pousr]_[A-Za-z0-9]{36,}`},
	{CategoryToken, `\bgithub_pat_[A-Za-z0-9_]{22,}`},
	{CategoryToken, `\bxox[abposr]-[A-Za-z0-9\-]{10,}`},
	{CategoryToken, `\beyJ[A-Za-z0-9_\-]{10,}\.eyJ[A-Za-z0-9_\-]{10,}\.[A-Za-z0-9_\-]{10,}`},
	{CategoryToken, `\bbearer\s+[A-Za-z0-9_\-\.=~+/]{16,}`},
	{CategoryToken, `\b(?:access|refresh|auth|session|id)?[_\-]?token\b` + assign + `[A-Za-z0-9_\-\.]{8,}`},

	{CategoryGenericSecret, `\b(?:client|app|api|secret)?[_\-]?secret(?:[_\-]?key)?\b` + assign + `[^\s"']{6,}`},

	{CategoryPassword, `\b(?:password|passwd|pwd|pass)\b` + assign + `[^\s"']{4,}`},
	{CategoryPassword, `[a-z][a-z0-9+\-.]*://[^/\s:@]+:[^/\s:@]+@`},
}

func compile(category Category, expr string) (pattern, error) {
	re, err := regexp.Compile(`(?i)` + expr)
	if err != nil {
		return pattern{}, fmt.Errorf("%w: %s: %w", ErrInvalidPattern, category, err)
	}
	return pattern{category: category, re: re}, nil
}

func defaultPatterns() []pattern {
	out := make([]pattern, 0, len(defaultPatternSources))
	for _, src := range defaultPatternSources {
		p, err := compile(src.category, src.expr)
		if err != nil {
			// 内置模式由测试覆盖，编译失败属于程序错误
			panic(err)
		}
		out = append(out, p)
	}
	return out
}
