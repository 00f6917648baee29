package xid

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sony/sonyflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedMachine(id uint16) Option {
	return WithMachineID(func() (uint16, error) { return id, nil })
}

func TestGeneratorUnique(t *testing.T) {
	g, err := NewGenerator(fixedMachine(42))
	require.NoError(t, err)

	const workers, perWorker = 8, 200
	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				id, err := g.New(context.Background())
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perWorker)
}

func TestNewStringRoundTrip(t *testing.T) {
	g, err := NewGenerator(fixedMachine(7))
	require.NoError(t, err)

	s, err := g.NewString(context.Background())
	require.NoError(t, err)
	id, err := Parse(s)
	require.NoError(t, err)

	c, err := Decompose(id)
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.Machine)
}

func TestNewGeneratorErrors(t *testing.T) {
	_, err := NewGenerator(WithMaxWaitDuration(-time.Second))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewGenerator(WithMachineID(func() (uint16, error) { return 0, errors.New("no id") }))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewGuards(t *testing.T) {
	var g *Generator
	_, err := g.New(context.Background())
	assert.ErrorIs(t, err, ErrNilGenerator)

	g, err = NewGenerator(fixedMachine(1))
	require.NoError(t, err)
	_, err = g.New(nil) //nolint:staticcheck // 有意传入 nil context
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestNewRetry(t *testing.T) {
	transient := errors.New("clock moved backwards")

	t.Run("recovers", func(t *testing.T) {
		calls := 0
		g := &Generator{maxWait: time.Second, generateID: func() (int64, error) {
			calls++
			if calls < 3 {
				return 0, transient
			}
			return 99, nil
		}}
		id, err := g.New(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(99), id)
	})

	t.Run("timeout", func(t *testing.T) {
		g := &Generator{maxWait: 0, generateID: func() (int64, error) { return 0, transient }}
		_, err := g.New(context.Background())
		assert.ErrorIs(t, err, ErrClockBackwardTimeout)
	})

	t.Run("over time limit", func(t *testing.T) {
		g := &Generator{maxWait: time.Second, generateID: func() (int64, error) { return 0, sonyflake.ErrOverTimeLimit }}
		_, err := g.New(context.Background())
		assert.ErrorIs(t, err, ErrOverTimeLimit)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		g := &Generator{maxWait: time.Second, generateID: func() (int64, error) { return 0, transient }}
		_, err := g.New(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestParseInvalid(t *testing.T) {
	for _, s := range []string{"", "!!", "0", "-1"} {
		_, err := Parse(s)
		assert.ErrorIs(t, err, ErrInvalidID, s)
	}
	_, err := Decompose(0)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestDefaultMachineID(t *testing.T) {
	t.Setenv(EnvMachineID, "513")
	id, err := DefaultMachineID()
	require.NoError(t, err)
	assert.Equal(t, uint16(513), id)

	t.Setenv(EnvMachineID, "70000")
	_, err = DefaultMachineID()
	assert.ErrorIs(t, err, ErrInvalidMachineID)

	t.Setenv(EnvMachineID, "")
	_, err = DefaultMachineID()
	assert.NoError(t, err)
}

func TestHashToMachineIDStable(t *testing.T) {
	assert.Equal(t, hashToMachineID("node-a"), hashToMachineID("node-a"))
}
