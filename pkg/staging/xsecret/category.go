package xsecret

import (
	"fmt"
	"strings"
)

// Category 密钥类别。
type Category int

const (
	CategoryNone Category = iota
	CategoryEnvironmentFile
	CategoryAPIKey
	CategoryPassword
	CategoryGenericSecret
	CategoryToken
	CategoryPrivateKey
	CategoryCloudCredential
)

var categoryNames = [...]string{
	CategoryNone:            "none",
	CategoryEnvironmentFile: "environment-file",
	CategoryAPIKey:          "api-key",
	CategoryPassword:        "password",
	CategoryGenericSecret:   "generic-secret",
	CategoryToken:           "token",
	CategoryPrivateKey:      "private-key",
	CategoryCloudCredential: "cloud-credential",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// MarshalText 实现 encoding.TextMarshaler。
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler，用于配置自定义模式的类别。
func (c *Category) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, name := range categoryNames {
		if name == s && Category(i) != CategoryNone {
			*c = Category(i)
			return nil
		}
	}
	return fmt.Errorf("xsecret: unknown category %q", s)
}

// hint 修复建议，按类别给出通用措辞。
func (c Category) hint() string {
	switch c {
	case CategoryEnvironmentFile:
		return "environment files must not be uploaded; share non-secret settings in a separate file"
	case CategoryPrivateKey:
		return "private keys must never leave the host; remove the key material"
	case CategoryCloudCredential:
		return "rotate the cloud credential and remove it from the file"
	default:
		return "remove the value or reference it from a secret manager before uploading"
	}
}
