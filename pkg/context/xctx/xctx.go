package xctx

import "errors"

// contextKey 为包私有类型，不会与其他包的 context key 冲突。
type contextKey string

var (
	// ErrNilContext 表示传入的 context 为 nil。
	ErrNilContext = errors.New("xctx: nil context")

	// ErrMissingStageID stage_id 缺失
	ErrMissingStageID = errors.New("xctx: missing stage_id")

	// ErrMissingIdentity identity 缺失
	ErrMissingIdentity = errors.New("xctx: missing identity")

	// ErrIdentityTooLong identity 超过摘要前缀长度，疑似原始凭据
	ErrIdentityTooLong = errors.New("xctx: identity exceeds digest prefix length")

	// ErrMissingTraceID trace_id 缺失
	ErrMissingTraceID = errors.New("xctx: missing trace_id")
)
