package xpath

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRoot = "/srv/xstage/id-0123456789abcdef"

func TestSanitizeAccepts(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		rel       string
	}{
		{"simple", "report.csv", "report.csv"},
		{"nested", "a/b/c.txt", "a/b/c.txt"},
		{"backslash", `a\b\c.txt`, "a/b/c.txt"},
		{"mixed separators", `a/b\c.txt`, "a/b/c.txt"},
		{"dot segments", "./a/./b.txt", "a/b.txt"},
		{"redundant separators", "a//b.txt", "a/b.txt"},
		{"dotdot prefix filename", "..config", "..config"},
		{"dots inside name", "app..2024.log", "app..2024.log"},
		{"unicode", "报告/季度.md", "报告/季度.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rp, err := Sanitize(tt.candidate, testRoot)
			require.NoError(t, err)
			assert.Equal(t, tt.rel, rp.Rel())
			assert.Equal(t, tt.rel, rp.String())
			assert.Equal(t, testRoot, rp.Root())
			assert.Equal(t, filepath.Join(testRoot, filepath.FromSlash(tt.rel)), rp.Path())
			assert.True(t, strings.HasPrefix(rp.Path(), testRoot+string(filepath.Separator)))
			assert.False(t, rp.IsZero())
		})
	}
}

func TestSanitizeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
	}{
		{"empty", ""},
		{"whitespace", " \t\n"},
		{"null byte", "a\x00.txt"},
		{"posix absolute", "/etc/passwd"},
		{"windows drive", `C:\Windows\system32`},
		{"windows drive slash", "c:/temp/x.txt"},
		{"drive relative", "C:foo.txt"},
		{"windows root", `\Windows\win.ini`},
		{"unc", `\\server\share\x.txt`},
		{"trailing slash", "dir/"},
		{"trailing backslash", `dir\`},
		{"only dot", "."},
		{"too long", strings.Repeat("a", MaxPathLen+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rp, err := Sanitize(tt.candidate, testRoot)
			assert.ErrorIs(t, err, ErrInvalidPath)
			assert.True(t, rp.IsZero())
		})
	}
}

func TestSanitizeRejectsTraversal(t *testing.T) {
	for _, c := range []string{
		"../../etc/passwd",
		"..",
		"a/../../b",
		"a/../b.txt",
		`..\..\secret`,
		`a\..\b`,
		"a/b/../../../c",
	} {
		t.Run(c, func(t *testing.T) {
			_, err := Sanitize(c, testRoot)
			assert.ErrorIs(t, err, ErrTraversalAttempt)
			assert.NotErrorIs(t, err, ErrInvalidPath)
		})
	}
}

func TestSanitizeInvalidRoot(t *testing.T) {
	for _, root := range []string{"", "relative/root", "/srv/\x00"} {
		_, err := Sanitize("a.txt", root)
		assert.ErrorIs(t, err, ErrInvalidRoot, root)
	}
}

func TestSanitizeIdempotentContainment(t *testing.T) {
	rp, err := Sanitize("x/y.txt", testRoot)
	require.NoError(t, err)

	again, err := Sanitize(rp.Rel(), rp.Root())
	require.NoError(t, err)
	assert.Equal(t, rp, again)
}

func TestWithin(t *testing.T) {
	assert.True(t, within("/a", "/a/b"))
	assert.True(t, within("/", "/a"))
	assert.False(t, within("/a", "/a"))
	assert.False(t, within("/a", "/ab"))
	assert.False(t, within("/a", "/b/c"))
}

func TestJoinAndVerifyEscape(t *testing.T) {
	_, err := joinAndVerify(testRoot, "../x")
	assert.ErrorIs(t, err, ErrTraversalAttempt)
}

func TestSanitizeResolveSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "inner"), 0o700))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "escape")))
	require.NoError(t, os.Symlink(filepath.Join(root, "inner"), filepath.Join(root, "alias")))

	opts := Options{ResolveSymlinks: true}

	_, err := SanitizeWithOptions("escape/loot.txt", root, opts)
	assert.ErrorIs(t, err, ErrTraversalAttempt)

	rp, err := SanitizeWithOptions("alias/new.txt", root, opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "alias", "new.txt"), rp.Path(), "返回未解析的路径")

	rp, err = SanitizeWithOptions("missing/deeper/file.txt", root, opts)
	require.NoError(t, err)
	assert.Equal(t, "missing/deeper/file.txt", rp.Rel())

	// 不开启时只做字符串校验
	_, err = Sanitize("escape/loot.txt", root)
	assert.NoError(t, err)

	_, err = SanitizeWithOptions("a.txt", filepath.Join(root, "does-not-exist"), opts)
	assert.ErrorIs(t, err, ErrSymlinkResolution)
}

func TestHasDotDotSegment(t *testing.T) {
	assert.True(t, hasDotDotSegment(".."))
	assert.True(t, hasDotDotSegment("a/../b"))
	assert.True(t, hasDotDotSegment(`a\..`))
	assert.False(t, hasDotDotSegment("..."))
	assert.False(t, hasDotDotSegment("a/..b/c"))
	assert.False(t, hasDotDotSegment(""))
}
