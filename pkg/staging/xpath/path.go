package xpath

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// MaxPathLen 候选路径的最大字节数，超出直接拒绝，保证校验开销有界。
const MaxPathLen = 4096

// maxSymlinkDepth evalSymlinksPartial 向上查找可解析祖先的层数上限。
const maxSymlinkDepth = 255

// Options 控制 SanitizeWithOptions 的行为。
type Options struct {
	// ResolveSymlinks 解析根目录与结果路径中已存在部分的符号链接，并再次校验包含性。
	// 要求根目录存在。
	ResolveSymlinks bool
}

// ResolvedPath 是已确认位于沙箱根目录内的绝对路径。零值无效。
type ResolvedPath struct {
	root string
	abs  string
	rel  string
}

// Root 返回沙箱根目录。
func (p ResolvedPath) Root() string { return p.root }

// Path 返回绝对路径。
func (p ResolvedPath) Path() string { return p.abs }

// Rel 返回相对根目录的 "/" 分隔形式，用于日志与错误信息。
func (p ResolvedPath) Rel() string { return p.rel }

// IsZero 报告是否为零值。
func (p ResolvedPath) IsZero() bool { return p.abs == "" }

func (p ResolvedPath) String() string { return p.rel }

// Sanitize 校验 candidate 并解析到 root 之内，不做 I/O。
func Sanitize(candidate, root string) (ResolvedPath, error) {
	return SanitizeWithOptions(candidate, root, Options{})
}

// SanitizeWithOptions 与 Sanitize 相同，ResolveSymlinks 开启时会读取文件系统。
func SanitizeWithOptions(candidate, root string, opts Options) (ResolvedPath, error) {
	cleanRoot, err := validateRoot(root)
	if err != nil {
		return ResolvedPath{}, err
	}
	rel, err := normalize(candidate)
	if err != nil {
		return ResolvedPath{}, err
	}
	abs, err := joinAndVerify(cleanRoot, rel)
	if err != nil {
		return ResolvedPath{}, err
	}
	if opts.ResolveSymlinks {
		if err := verifySymlinks(cleanRoot, abs); err != nil {
			return ResolvedPath{}, err
		}
	}
	return ResolvedPath{root: cleanRoot, abs: abs, rel: rel}, nil
}

func validateRoot(root string) (string, error) {
	if root == "" || strings.ContainsRune(root, 0) {
		return "", ErrInvalidRoot
	}
	cleanRoot := filepath.Clean(root)
	if !filepath.IsAbs(cleanRoot) {
		return "", fmt.Errorf("%w: must be absolute", ErrInvalidRoot)
	}
	return cleanRoot, nil
}

// normalize 返回 "/" 分隔、已清理的相对路径。
func normalize(candidate string) (string, error) {
	switch {
	case strings.TrimSpace(candidate) == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidPath)
	case len(candidate) > MaxPathLen:
		return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidPath, MaxPathLen)
	case strings.ContainsRune(candidate, 0):
		return "", fmt.Errorf("%w: contains null byte", ErrInvalidPath)
	case candidate[0] == '/' || isWindowsAbsPath(candidate):
		return "", fmt.Errorf("%w: absolute path not allowed", ErrInvalidPath)
	}

	slashed := strings.ReplaceAll(candidate, `\`, "/")
	// Clean 会消去尾部分隔符，必须在此之前判断
	if strings.HasSuffix(slashed, "/") {
		return "", fmt.Errorf("%w: no file name", ErrInvalidPath)
	}
	// 在 Clean 之前按段判断：即使 "a/../b" 清理后仍在根内，也视为穿越企图
	if hasDotDotSegment(slashed) {
		return "", ErrTraversalAttempt
	}
	cleaned := path.Clean(slashed)
	if cleaned == "." {
		return "", fmt.Errorf("%w: no file name", ErrInvalidPath)
	}
	return cleaned, nil
}

// isWindowsAbsPath 检测 Windows 驱动器路径（含 "C:foo" 驱动器相对形式）、
// 根路径 "\..." 与 UNC 路径 "\\server\..."。非 Windows 平台的 filepath.IsAbs 不识别这些形式。
func isWindowsAbsPath(p string) bool {
	if len(p) >= 2 && isASCIILetter(p[0]) && p[1] == ':' {
		return true
	}
	return len(p) >= 1 && p[0] == '\\'
}

func isASCIILetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// hasDotDotSegment 逐字节扫描，"/" 与 "\" 均视为分隔符，零分配。
// "..config" 这类以点开头的文件名不算穿越。
func hasDotDotSegment(p string) bool {
	i := 0
	for i < len(p) {
		if p[i] == '/' || p[i] == '\\' {
			i++
			continue
		}
		j := i
		for j < len(p) && p[j] != '/' && p[j] != '\\' {
			j++
		}
		if j-i == 2 && p[i] == '.' && p[i+1] == '.' {
			return true
		}
		i = j
	}
	return false
}

// joinAndVerify 拼接后再次确认结果以 root 为严格前缀。
func joinAndVerify(root, rel string) (string, error) {
	joined := filepath.Join(root, filepath.FromSlash(rel))
	if !within(root, joined) {
		return "", fmt.Errorf("%w: escapes sandbox root", ErrTraversalAttempt)
	}
	return joined, nil
}

// within 报告 p 是否严格位于 root 之下。
func within(root, p string) bool {
	r, err := filepath.Rel(root, p)
	if err != nil || r == "." || hasDotDotSegment(r) {
		return false
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(p, prefix)
}

func verifySymlinks(root, joined string) error {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("%w: root: %w", ErrSymlinkResolution, err)
	}
	realJoined, err := evalSymlinksPartial(joined)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSymlinkResolution, err)
	}
	if !within(realRoot, realJoined) {
		return fmt.Errorf("%w: symlink escapes sandbox root", ErrTraversalAttempt)
	}
	return nil
}

// evalSymlinksPartial 解析路径中已存在的最深祖先，再拼回不存在的尾部段。
// 符号链接循环所在的层会被跳过，打开文件时由系统返回 ELOOP。
func evalSymlinksPartial(p string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved, nil
	}

	var trail []string
	current := filepath.Clean(p)
	for i := 0; i <= maxSymlinkDepth; i++ {
		dir := filepath.Dir(current)
		if dir == current {
			break
		}
		trail = append(trail, filepath.Base(current))
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			for j := len(trail) - 1; j >= 0; j-- {
				resolved = filepath.Join(resolved, trail[j])
			}
			return resolved, nil
		}
		current = dir
	}
	return "", fmt.Errorf("no resolvable ancestor for %s", filepath.Base(p))
}
