package xcontent

import (
	"fmt"
	"io"
	"path"
	"strings"
	"sync/atomic"

	"github.com/gabriel-vasile/mimetype"
)

// Policy 内容不一致时的处理策略。
type Policy string

const (
	PolicyReject Policy = "reject"
	PolicyWarn   Policy = "warn"
)

const (
	mimeOctetStream = "application/octet-stream"
	mimeTextPlain   = "text/plain"
)

// Config 校验配置。
type Config struct {
	// AllowedExtensions 允许的扩展名，大小写不敏感，可省略前导点。
	AllowedExtensions []string `koanf:"allowed_extensions"`
	// MismatchPolicy 内容不一致时的策略，空值等价于 reject。
	MismatchPolicy Policy `koanf:"mismatch_policy"`
}

// DefaultConfig 允许内置表中的全部扩展名，不一致时拒绝。
func DefaultConfig() Config {
	return Config{AllowedExtensions: DefaultExtensions(), MismatchPolicy: PolicyReject}
}

// Result 单次校验结果。
type Result struct {
	Extension string
	// Expected 扩展名期望的 MIME，白名单外扩展或自定义扩展为空。
	Expected string
	// Detected 嗅探得到的 MIME，未嗅探时为空。
	Detected string
	// Mismatch 在 warn 策略下表示发现了不一致。
	Mismatch bool
}

type state struct {
	allowed map[string]struct{}
	policy  Policy
}

// Validator 扩展名与内容类型校验器，并发安全。
type Validator struct {
	state atomic.Pointer[state]
}

// New 创建 Validator。
func New(cfg Config) (*Validator, error) {
	v := &Validator{}
	if err := v.Update(cfg); err != nil {
		return nil, err
	}
	return v, nil
}

// Update 原子替换配置，失败时保留旧配置。
func (v *Validator) Update(cfg Config) error {
	st, err := buildState(cfg)
	if err != nil {
		return err
	}
	v.state.Store(st)
	return nil
}

// Policy 返回当前生效的策略。
func (v *Validator) Policy() Policy {
	return v.state.Load().policy
}

func buildState(cfg Config) (*state, error) {
	policy := cfg.MismatchPolicy
	if policy == "" {
		policy = PolicyReject
	}
	if policy != PolicyReject && policy != PolicyWarn {
		return nil, fmt.Errorf("%w: mismatch_policy %q", ErrInvalidConfig, cfg.MismatchPolicy)
	}
	if len(cfg.AllowedExtensions) == 0 {
		return nil, fmt.Errorf("%w: allowed_extensions is empty", ErrInvalidConfig)
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		n := normalizeExt(ext)
		if n == "" || n == "." || strings.ContainsAny(n[1:], `./\`) {
			return nil, fmt.Errorf("%w: extension %q", ErrInvalidConfig, ext)
		}
		allowed[n] = struct{}{}
	}
	return &state{allowed: allowed, policy: policy}, nil
}

// CheckExtension 只做白名单检查，返回小写扩展名。
func (v *Validator) CheckExtension(name string) (string, error) {
	return v.state.Load().checkExtension(name)
}

func (st *state) checkExtension(name string) (string, error) {
	ext := Extension(name)
	if _, ok := st.allowed[ext]; !ok || ext == "" {
		if ext == "" {
			ext = "(none)"
		}
		return "", fmt.Errorf("%w: %s in %q", ErrUnsupportedExtension, ext, baseName(name))
	}
	return ext, nil
}

// Validate 依次执行白名单检查与内容嗅探交叉检查。
func (v *Validator) Validate(name string, content []byte) (Result, error) {
	st := v.state.Load()
	ext, err := st.checkExtension(name)
	if err != nil {
		return Result{}, err
	}
	return st.crossCheck(name, ext, mimetype.Detect(content))
}

// ValidateReader 与 Validate 相同，只读取 r 开头用于嗅探的字节。
func (v *Validator) ValidateReader(name string, r io.Reader) (Result, error) {
	st := v.state.Load()
	ext, err := st.checkExtension(name)
	if err != nil {
		return Result{}, err
	}
	detected, err := mimetype.DetectReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("xcontent: read: %w", err)
	}
	return st.crossCheck(name, ext, detected)
}

func (st *state) crossCheck(name, ext string, detected *mimetype.MIME) (Result, error) {
	res := Result{Extension: ext, Detected: detected.String()}
	k, known := knownTypes[ext]
	if !known {
		return res, nil
	}
	res.Expected = k.mime
	if consistent(k, detected) {
		return res, nil
	}
	if st.policy == PolicyWarn {
		res.Mismatch = true
		return res, nil
	}
	return res, fmt.Errorf("%w: %q declared as %s, content looks like %s",
		ErrContentMismatch, baseName(name), k.mime, essence(detected.String()))
}

func consistent(k kind, detected *mimetype.MIME) bool {
	switch k.family {
	case familyText:
		// 没有签名的内容（octet-stream）和任何文本都视为一致
		return detected.Is(mimeOctetStream) || inChain(detected, mimeTextPlain)
	default:
		if inChain(detected, k.mime) {
			return true
		}
		// 嗅探结果是期望类型的祖先（如旧版 docx 只能识别为 zip）
		expected := mimetype.Lookup(k.mime)
		for p := parentOf(expected); p != nil; p = p.Parent() {
			if p.Is(mimeOctetStream) || p.Is(mimeTextPlain) {
				break
			}
			if detected.Is(p.String()) {
				return true
			}
		}
		return false
	}
}

// inChain 报告 m 或其任一祖先是否为 target。
func inChain(m *mimetype.MIME, target string) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is(target) {
			return true
		}
	}
	return false
}

func parentOf(m *mimetype.MIME) *mimetype.MIME {
	if m == nil {
		return nil
	}
	return m.Parent()
}

// essence 去掉 MIME 参数（如 charset）。
func essence(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		return mime[:i]
	}
	return mime
}

func baseName(name string) string {
	return path.Base(strings.ReplaceAll(name, `\`, "/"))
}
