package xid

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sony/sonyflake/v2"
)

const (
	// DefaultMaxWaitDuration 默认最长等待时间。sonyflake 时间精度 10ms，回拨通常在数百毫秒内。
	DefaultMaxWaitDuration = 500 * time.Millisecond

	retryInterval = 10 * time.Millisecond
)

// Sonyflake v2 固定位布局：39+8+16。
const (
	machineBits  = 16
	sequenceBits = 8
	machineMask  = (1 << machineBits) - 1
	sequenceMask = (1 << sequenceBits) - 1
)

// Components 是 ID 分解后的各部分。
type Components struct {
	ID       int64
	Time     int64
	Sequence int64
	Machine  int64
}

// Generator 唯一 ID 生成器，并发安全。
type Generator struct {
	maxWait    time.Duration
	generateID func() (int64, error)
}

// NewGenerator 创建生成器。未指定 WithMachineID 时使用 DefaultMachineID。
func NewGenerator(opts ...Option) (*Generator, error) {
	cfg := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.maxWaitDuration < 0 {
		return nil, fmt.Errorf("%w: max wait duration must be non-negative, got %s", ErrInvalidConfig, cfg.maxWaitDuration)
	}

	machineIDFn := cfg.machineID
	if machineIDFn == nil {
		machineIDFn = DefaultMachineID
	}
	sf, err := sonyflake.New(sonyflake.Settings{
		MachineID: func() (int, error) {
			id, err := machineIDFn()
			return int(id), err
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	g := &Generator{maxWait: DefaultMaxWaitDuration, generateID: sf.NextID}
	if cfg.maxWaitSet {
		g.maxWait = cfg.maxWaitDuration
	}
	return g, nil
}

// New 生成 int64 ID。遇到可重试错误时在 maxWait 内等待重试，时间溢出立即返回。
func (g *Generator) New(ctx context.Context) (int64, error) {
	if g == nil || g.generateID == nil {
		return 0, ErrNilGenerator
	}
	if ctx == nil {
		return 0, ErrNilContext
	}

	id, err := g.generateID()
	if err == nil {
		return id, nil
	}
	deadline := time.Now().Add(g.maxWait)
	for {
		if errors.Is(err, sonyflake.ErrOverTimeLimit) {
			return 0, fmt.Errorf("%w: %w", ErrOverTimeLimit, err)
		}
		if !time.Now().Before(deadline) {
			return 0, fmt.Errorf("%w: %w", ErrClockBackwardTimeout, err)
		}
		timer := time.NewTimer(retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return 0, ctx.Err()
		case <-timer.C:
		}
		if id, err = g.generateID(); err == nil {
			return id, nil
		}
	}
}

// NewString 生成 base36 字符串形式的 ID。
func (g *Generator) NewString(ctx context.Context) (string, error) {
	id, err := g.New(ctx)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 36), nil
}

// Parse 解析 base36 字符串形式的 ID。
func Parse(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 36, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	return id, nil
}

// Decompose 拆分 ID 的时间、序列与机器部分。
func Decompose(id int64) (Components, error) {
	if id <= 0 {
		return Components{}, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	return Components{
		ID:       id,
		Time:     id >> (sequenceBits + machineBits),
		Sequence: (id >> machineBits) & sequenceMask,
		Machine:  id & machineMask,
	}, nil
}
