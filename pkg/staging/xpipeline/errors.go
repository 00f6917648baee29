package xpipeline

import (
	"errors"

	"github.com/omeyang/xstage/pkg/staging/xcontent"
	"github.com/omeyang/xstage/pkg/staging/xpath"
	"github.com/omeyang/xstage/pkg/staging/xsandbox"
	"github.com/omeyang/xstage/pkg/staging/xsecret"
	"github.com/omeyang/xstage/pkg/staging/xstage"
	"github.com/omeyang/xstage/pkg/staging/xsweep"
)

// ErrInvalidConfig 表示流水线配置无效。
var ErrInvalidConfig = errors.New("xpipeline: invalid config")

// Kind 流水线错误分类。
type Kind int

const (
	KindNone Kind = iota
	KindInvalidPath
	KindTraversalAttempt
	KindUnsupportedExtension
	KindContentMismatch
	KindSecretDetected
	KindPayloadTooLarge
	KindNotFound
	KindConfig
	KindInternal
)

var kindNames = [...]string{
	KindNone:                 "none",
	KindInvalidPath:          "invalid_path",
	KindTraversalAttempt:     "traversal_attempt",
	KindUnsupportedExtension: "unsupported_extension",
	KindContentMismatch:      "content_mismatch",
	KindSecretDetected:       "secret_detected",
	KindPayloadTooLarge:      "payload_too_large",
	KindNotFound:             "not_found",
	KindConfig:               "config",
	KindInternal:             "internal",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// KindOf 将任意流水线错误归类。nil 返回 KindNone，未识别的错误归为 KindInternal。
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, xpath.ErrTraversalAttempt):
		return KindTraversalAttempt
	case errors.Is(err, xpath.ErrInvalidPath), errors.Is(err, xstage.ErrNotRegular),
		errors.Is(err, xstage.ErrTargetExists):
		return KindInvalidPath
	case errors.Is(err, xsecret.ErrSecretDetected):
		return KindSecretDetected
	case errors.Is(err, xcontent.ErrUnsupportedExtension):
		return KindUnsupportedExtension
	case errors.Is(err, xcontent.ErrContentMismatch):
		return KindContentMismatch
	case errors.Is(err, xstage.ErrPayloadTooLarge):
		return KindPayloadTooLarge
	case errors.Is(err, xstage.ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, xsandbox.ErrMissingCredential),
		errors.Is(err, xsandbox.ErrInvalidConfig),
		errors.Is(err, xpath.ErrInvalidRoot),
		errors.Is(err, xcontent.ErrInvalidConfig),
		errors.Is(err, xstage.ErrInvalidConfig),
		errors.Is(err, xsweep.ErrInvalidConfig):
		return KindConfig
	default:
		return KindInternal
	}
}
