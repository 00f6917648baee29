package xsecret

import "errors"

// ErrSecretDetected 表示检测到密钥，使用 errors.Is 判断，errors.As 取 *SecretError 获取类别。
var ErrSecretDetected = errors.New("xsecret: secret detected")

// ErrInvalidPattern 表示自定义模式无法编译。
var ErrInvalidPattern = errors.New("xsecret: invalid pattern")

// SecretError 携带命中类别，错误信息不包含命中内容。
type SecretError struct {
	Category Category
	Message  string
}

func (e *SecretError) Error() string {
	return e.Message
}

// Is 支持 errors.Is(err, ErrSecretDetected)。
func (e *SecretError) Is(target error) bool {
	return target == ErrSecretDetected
}

func (e *SecretError) Unwrap() error {
	return ErrSecretDetected
}
