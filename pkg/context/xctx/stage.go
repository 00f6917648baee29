package xctx

import "context"

// Stage Key 常量
const (
	KeyStageID  = "stage_id"
	KeyIdentity = "identity"

	// stageFieldCount 暂存字段数量（用于 slog 属性预分配）
	stageFieldCount = 2
)

// MaxIdentityLen 是 identity 字段允许的最大长度（摘要前缀）。
const MaxIdentityLen = 12

const (
	keyStageID  = contextKey("xctx:stage_id")
	keyIdentity = contextKey("xctx:identity")
)

// WithStageID 将暂存操作 ID 注入 context。
//
// 如果 ctx 为 nil，返回 ErrNilContext。
func WithStageID(ctx context.Context, stageID string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keyStageID, stageID), nil
}

// StageID 从 context 提取暂存操作 ID，不存在返回空字符串
func StageID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(keyStageID).(string); ok {
		return v
	}
	return ""
}

// RequireStageID 从 context 获取暂存操作 ID，不存在则返回错误。
func RequireStageID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := StageID(ctx)
	if v == "" {
		return "", ErrMissingStageID
	}
	return v, nil
}

// WithIdentity 将身份摘要前缀注入 context。
//
// 只接受不超过 MaxIdentityLen 的值，超出时返回 ErrIdentityTooLong。
func WithIdentity(ctx context.Context, digestPrefix string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if len(digestPrefix) > MaxIdentityLen {
		return nil, ErrIdentityTooLong
	}
	return context.WithValue(ctx, keyIdentity, digestPrefix), nil
}

// Identity 从 context 提取身份摘要前缀，不存在返回空字符串
func Identity(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(keyIdentity).(string); ok {
		return v
	}
	return ""
}

// RequireIdentity 从 context 获取身份摘要前缀，不存在则返回错误。
func RequireIdentity(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := Identity(ctx)
	if v == "" {
		return "", ErrMissingIdentity
	}
	return v, nil
}
