package xsecret

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

const (
	// WindowSize 流式扫描的窗口大小。
	WindowSize = 64 << 10
	// WindowOverlap 相邻窗口的重叠字节数，须大于任一模式可能的命中长度。
	WindowOverlap = 1 << 10
)

// Finding 单次扫描结果。Message 不包含命中内容。
type Finding struct {
	Detected bool
	Category Category
	Message  string
	// Binary 表示正文因二进制短路未被扫描。
	Binary bool
}

// Err 未命中时返回 nil，否则返回 *SecretError。
func (f Finding) Err() error {
	if !f.Detected {
		return nil
	}
	return &SecretError{Category: f.Category, Message: f.Message}
}

// Scanner 编译后的密钥扫描器，构造后不可变，并发安全。
type Scanner struct {
	patterns []pattern
}

// New 创建 Scanner。自定义模式无法编译时返回 [ErrInvalidPattern]。
func New(opts ...Option) (*Scanner, error) {
	o := &scannerOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	patterns := defaultPatterns()
	for _, src := range o.extra {
		if src.category == CategoryNone {
			return nil, fmt.Errorf("%w: category required", ErrInvalidPattern)
		}
		p, err := compile(src.category, src.expr)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return &Scanner{patterns: patterns}, nil
}

// ScanName 只执行文件名快速路径。
func (s *Scanner) ScanName(name string) Finding {
	if c := classifyName(name); c != CategoryNone {
		return detected(c, name)
	}
	return Finding{}
}

// Scan 依次执行文件名快速路径、二进制短路与正文模式匹配。
// content 为 nil 时只检查文件名。
func (s *Scanner) Scan(name string, content []byte, opts ...ScanOption) Finding {
	if f := s.ScanName(name); f.Detected {
		return f
	}
	var so scanOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&so)
		}
	}
	if so.binary || bytes.IndexByte(content, 0) >= 0 {
		return Finding{Binary: true}
	}
	if c := s.match(content); c != CategoryNone {
		return detected(c, name)
	}
	return Finding{}
}

// ScanReader 流式扫描 r，用于未物化到内存的磁盘文件。
// 只有读取错误才返回 error；命中结果通过 Finding 返回。
func (s *Scanner) ScanReader(name string, r io.Reader) (Finding, error) {
	if f := s.ScanName(name); f.Detected {
		return f, nil
	}

	buf := make([]byte, WindowOverlap+WindowSize)
	carry := 0
	for {
		n, err := io.ReadFull(r, buf[carry:carry+WindowSize])
		eof := errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
		if err != nil && !eof {
			return Finding{}, fmt.Errorf("xsecret: read: %w", err)
		}

		fresh := buf[carry : carry+n]
		if i := bytes.IndexByte(fresh, 0); i >= 0 {
			// NUL 之前的部分仍需检查
			if c := s.match(buf[:carry+i]); c != CategoryNone {
				return detected(c, name), nil
			}
			return Finding{Binary: true}, nil
		}
		window := buf[:carry+n]
		if c := s.match(window); c != CategoryNone {
			return detected(c, name), nil
		}
		if eof {
			return Finding{}, nil
		}

		carry = min(WindowOverlap, len(window))
		copy(buf, window[len(window)-carry:])
	}
}

func (s *Scanner) match(content []byte) Category {
	if len(content) == 0 {
		return CategoryNone
	}
	for _, p := range s.patterns {
		if p.re.Match(content) {
			return p.category
		}
	}
	return CategoryNone
}

func detected(c Category, name string) Finding {
	return Finding{
		Detected: true,
		Category: c,
		Message:  fmt.Sprintf("%s detected in %q: %s", c, baseName(name), c.hint()),
	}
}
