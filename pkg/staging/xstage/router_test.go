package xstage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/omeyang/xstage/pkg/staging/xpath"
)

func newRouter(t *testing.T, mutate func(*Config), opts ...Option) *Router {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	r, err := New(cfg, opts...)
	require.NoError(t, err)
	return r
}

func writeFile(t *testing.T, root, rel string, size int) xpath.ResolvedPath {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o700))
	require.NoError(t, os.WriteFile(p, bytes.Repeat([]byte{'x'}, size), 0o600))
	return resolve(t, root, rel)
}

func resolve(t *testing.T, root, rel string) xpath.ResolvedPath {
	t.Helper()
	rp, err := xpath.Sanitize(rel, root)
	require.NoError(t, err)
	return rp
}

func TestStageThresholdBoundary(t *testing.T) {
	const threshold = 1024
	r := newRouter(t, func(c *Config) { c.MemoryThreshold = threshold })
	root := t.TempDir()

	below := writeFile(t, root, "below.txt", threshold-1)
	f, err := r.Stage(context.Background(), below, nil)
	require.NoError(t, err)
	require.Equal(t, ModeMemory, f.Mode())
	assert.Len(t, f.(*MemoryFile).Bytes(), threshold-1)
	Release(f)

	equal := writeFile(t, root, "equal.txt", threshold)
	f, err = r.Stage(context.Background(), equal, nil)
	require.NoError(t, err)
	assert.Equal(t, ModeDisk, f.Mode(), "恰好等于阈值走磁盘")

	fromBytes, err := r.Stage(context.Background(), resolve(t, root, "dl.txt"), make([]byte, threshold))
	require.NoError(t, err)
	assert.Equal(t, ModeDisk, fromBytes.Mode())
}

func TestStageMemoryFromBytes(t *testing.T) {
	r := newRouter(t, nil)
	src := bytes.Repeat([]byte{0xAB}, 4<<20)

	f, err := r.Stage(context.Background(), resolve(t, t.TempDir(), "upload.bin"), src)
	require.NoError(t, err)
	mf, ok := f.(*MemoryFile)
	require.True(t, ok)
	assert.Equal(t, int64(4<<20), mf.Size())
	assert.Equal(t, src, mf.Bytes())
	assert.Equal(t, "upload.bin", mf.Rel())

	src[0] = 0
	assert.Equal(t, byte(0xAB), mf.Bytes()[0], "缓冲区独立于调用方切片")
	Release(f)
}

func TestStageDiskReferencesOriginal(t *testing.T) {
	r := newRouter(t, nil)
	root := t.TempDir()
	rp := writeFile(t, root, "big/video.mp4", 6<<20)

	f, err := r.Stage(context.Background(), rp, nil)
	require.NoError(t, err)
	df, ok := f.(*DiskFile)
	require.True(t, ok)
	assert.Equal(t, rp.Path(), df.Path())
	assert.False(t, df.Spilled())
	assert.Equal(t, int64(6<<20), df.Size())

	Release(f)
	Release(f)
	info, err := os.Stat(rp.Path())
	require.NoError(t, err, "release 不删除原文件")
	assert.Equal(t, int64(6<<20), info.Size())

	rc, err := df.Open()
	require.NoError(t, err)
	defer rc.Close()
	head := make([]byte, 4)
	_, err = rc.Read(head)
	require.NoError(t, err)
	assert.Equal(t, []byte("xxxx"), head)
}

func TestStageSpillsLargeDownload(t *testing.T) {
	r := newRouter(t, func(c *Config) { c.MemoryThreshold = 8 })
	root := t.TempDir()
	data := []byte("downloaded payload")

	f, err := r.Stage(context.Background(), resolve(t, root, "in/report.txt"), data)
	require.NoError(t, err)
	df := f.(*DiskFile)
	assert.True(t, df.Spilled())

	got, err := os.ReadFile(df.Path())
	require.NoError(t, err)
	assert.Equal(t, data, got)
	info, err := os.Stat(df.Path())
	require.NoError(t, err)
	assert.Equal(t, FilePerm, info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Join(root, "in"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "临时文件已清理")
}

func TestStageSpillRefusesExistingTarget(t *testing.T) {
	r := newRouter(t, func(c *Config) { c.MemoryThreshold = 8 })
	root := t.TempDir()
	existing := writeFile(t, root, "in/report.txt", 20)

	_, err := r.Stage(context.Background(), existing, []byte("downloaded payload"))
	require.ErrorIs(t, err, ErrTargetExists)
	assert.ErrorIs(t, err, fs.ErrExist)

	got, err := os.ReadFile(existing.Path())
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{'x'}, 20), got, "已有文件不被覆盖")
	entries, err := os.ReadDir(filepath.Join(root, "in"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "不残留临时文件")
}

func TestDiskFileVerify(t *testing.T) {
	r := newRouter(t, func(c *Config) { c.MemoryThreshold = 4 })
	root := t.TempDir()
	resolved := writeFile(t, root, "data.txt", 10)

	f, err := r.Stage(context.Background(), resolved, nil)
	require.NoError(t, err)
	df := f.(*DiskFile)

	verify := func() error {
		h, err := df.Open()
		require.NoError(t, err)
		defer h.Close()
		return df.Verify(h)
	}
	require.NoError(t, verify())

	h, err := os.OpenFile(resolved.Path(), os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = h.WriteString("more")
	require.NoError(t, err)
	require.NoError(t, h.Close())
	assert.ErrorIs(t, verify(), ErrSourceChanged, "文件变大")

	require.NoError(t, os.Truncate(resolved.Path(), 10))
	require.NoError(t, verify())

	opened, err := df.Open()
	require.NoError(t, err)
	defer opened.Close()
	replacement := filepath.Join(root, "other.txt")
	require.NoError(t, os.WriteFile(replacement, bytes.Repeat([]byte{'y'}, 10), 0o600))
	require.NoError(t, os.Rename(replacement, resolved.Path()))
	assert.ErrorIs(t, df.Verify(opened), ErrSourceChanged, "路径被替换为另一个文件")
}

func TestStageRejections(t *testing.T) {
	r := newRouter(t, func(c *Config) { c.MaxFileSize = 10 })
	root := t.TempDir()

	_, err := r.Stage(context.Background(), writeFile(t, root, "big.txt", 11), nil)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	_, err = r.Stage(context.Background(), resolve(t, root, "dl.txt"), make([]byte, 11))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	_, err = r.Stage(context.Background(), resolve(t, root, "missing.txt"), nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Stage(context.Background(), resolve(t, filepath.Join(root, "no-root"), "a.txt"), nil)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.Mkdir(filepath.Join(root, "dir.txt"), 0o700))
	_, err = r.Stage(context.Background(), resolve(t, root, "dir.txt"), nil)
	assert.ErrorIs(t, err, ErrNotRegular)

	outside := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "link.txt")))
	_, err = r.Stage(context.Background(), resolve(t, root, "link.txt"), nil)
	assert.ErrorIs(t, err, ErrNotRegular)

	require.NoError(t, os.Symlink(filepath.Dir(outside), filepath.Join(root, "escape")))
	_, err = r.Stage(context.Background(), resolve(t, root, "escape/secret.txt"), nil)
	assert.Error(t, err, "经由目录符号链接逃出根目录被 os.Root 拒绝")

	_, err = r.Stage(context.Background(), xpath.ResolvedPath{}, nil)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Stage(ctx, writeFile(t, root, "ok.txt", 1), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStageAllocationFailureFallsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	alloc := NewMockAllocator(ctrl)
	alloc.EXPECT().Allocate(5).Return(nil, fmt.Errorf("%w: simulated", ErrAllocationFailure)).Times(2)

	r := newRouter(t, nil, WithAllocator(alloc))
	root := t.TempDir()

	f, err := r.Stage(context.Background(), writeFile(t, root, "a.txt", 5), nil)
	require.NoError(t, err)
	assert.Equal(t, ModeDisk, f.Mode())
	assert.False(t, f.(*DiskFile).Spilled())

	f, err = r.Stage(context.Background(), resolve(t, root, "b.txt"), []byte("hello"))
	require.NoError(t, err)
	assert.True(t, f.(*DiskFile).Spilled())
}

func TestStageAllocatorErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	alloc := NewMockAllocator(ctrl)
	boom := errors.New("allocator broken")
	alloc.EXPECT().Allocate(gomock.Any()).Return(nil, boom)

	r := newRouter(t, nil, WithAllocator(alloc))
	_, err := r.Stage(context.Background(), resolve(t, t.TempDir(), "a.txt"), []byte("x"))
	assert.ErrorIs(t, err, boom)
}

func TestStageReadFailureFreesBuffer(t *testing.T) {
	ctrl := gomock.NewController(t)
	alloc := NewMockAllocator(ctrl)
	buf := NewMockBuffer(ctrl)
	gomock.InOrder(
		alloc.EXPECT().Allocate(3).Return(buf, nil),
		buf.EXPECT().Bytes().Return(make([]byte, 4)),
		buf.EXPECT().Free(),
	)

	r := newRouter(t, nil, WithAllocator(alloc))
	_, err := r.Stage(context.Background(), writeFile(t, t.TempDir(), "a.txt", 3), nil)
	assert.ErrorIs(t, err, ErrSourceChanged)
}

func TestHeapBudget(t *testing.T) {
	alloc, err := NewHeapAllocator(10)
	require.NoError(t, err)
	r := newRouter(t, func(c *Config) { c.MemoryThreshold = 100 }, WithAllocator(alloc))
	root := t.TempDir()

	first, err := r.Stage(context.Background(), resolve(t, root, "a.txt"), make([]byte, 8))
	require.NoError(t, err)
	assert.Equal(t, ModeMemory, first.Mode())

	second, err := r.Stage(context.Background(), resolve(t, root, "b.txt"), make([]byte, 8))
	require.NoError(t, err)
	assert.Equal(t, ModeDisk, second.Mode(), "预算耗尽转磁盘")

	Release(first)
	third, err := r.Stage(context.Background(), resolve(t, root, "c.txt"), make([]byte, 8))
	require.NoError(t, err)
	assert.Equal(t, ModeMemory, third.Mode(), "释放后预算归还")
	Release(third)

	_, err = NewHeapAllocator(0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = alloc.Allocate(-1)
	assert.Error(t, err)
}

func TestReleaseZeroesAndIsIdempotent(t *testing.T) {
	r := newRouter(t, nil)
	f, err := r.Stage(context.Background(), resolve(t, t.TempDir(), "a.txt"), []byte("password=hunter22"))
	require.NoError(t, err)
	mf := f.(*MemoryFile)
	backing := mf.Bytes()

	Release(f)
	assert.True(t, mf.Released())
	assert.Nil(t, mf.Bytes())
	assert.Equal(t, make([]byte, len(backing)), backing, "缓冲区已清零")
	assert.Zero(t, mf.NewReader().Len())

	assert.NotPanics(t, func() {
		Release(f)
		Release(nil)
		Release((*MemoryFile)(nil))
		Release((*DiskFile)(nil))
	})
}

func TestUseReleasesOnPanic(t *testing.T) {
	r := newRouter(t, nil)
	f, err := r.Stage(context.Background(), resolve(t, t.TempDir(), "a.txt"), []byte("abc"))
	require.NoError(t, err)

	assert.Panics(t, func() {
		_ = Use(f, func(StagedFile) error { panic("mid-upload") })
	})
	assert.True(t, f.(*MemoryFile).Released())

	g, err := r.Stage(context.Background(), resolve(t, t.TempDir(), "b.txt"), []byte("abc"))
	require.NoError(t, err)
	boom := errors.New("upload failed")
	assert.ErrorIs(t, Use(g, func(s StagedFile) error {
		assert.Equal(t, []byte("abc"), s.(*MemoryFile).Bytes())
		return boom
	}), boom)
	assert.True(t, g.(*MemoryFile).Released())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	for _, c := range []Config{
		{MemoryThreshold: 0, MaxFileSize: 1, MemoryBudget: 1},
		{MemoryThreshold: 1, MaxFileSize: 0, MemoryBudget: 1},
		{MemoryThreshold: 1, MaxFileSize: 1, MemoryBudget: 0},
	} {
		_, err := New(c)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "memory", ModeMemory.String())
	assert.Equal(t, "disk", ModeDisk.String())
	assert.Equal(t, "unknown", Mode(0).String())
}

func TestDiscard(t *testing.T) {
	r := newRouter(t, func(c *Config) { c.MemoryThreshold = 4 })
	root := t.TempDir()

	spilled, err := r.Stage(context.Background(), resolve(t, root, "dl/payload.txt"), []byte("downloaded"))
	require.NoError(t, err)
	require.NoError(t, Discard(spilled))
	assert.NoFileExists(t, spilled.Path())
	require.NoError(t, Discard(spilled), "重复 Discard 不报错")

	existing := writeFile(t, root, "kept.txt", 10)
	ref, err := r.Stage(context.Background(), existing, nil)
	require.NoError(t, err)
	require.NoError(t, Discard(ref))
	assert.FileExists(t, existing.Path(), "不删除调用方已有的文件")

	mem, err := r.Stage(context.Background(), resolve(t, root, "m.txt"), []byte("ab"))
	require.NoError(t, err)
	require.NoError(t, Discard(mem))
	assert.True(t, mem.(*MemoryFile).Released())
	assert.NoError(t, Discard(nil))
}
