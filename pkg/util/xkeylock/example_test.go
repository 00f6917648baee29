package xkeylock_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/omeyang/xstage/pkg/util/xkeylock"
)

func ExampleLocker_TryAcquire() {
	kl, err := xkeylock.New()
	if err != nil {
		panic(err)
	}
	defer kl.Close()

	h, err := kl.Acquire(context.Background(), "/srv/xstage/id-0a1b")
	if err != nil {
		panic(err)
	}

	_, err = kl.TryAcquire("/srv/xstage/id-0a1b")
	fmt.Println("busy:", errors.Is(err, xkeylock.ErrLockOccupied))

	_ = h.Unlock()
	// Output:
	// busy: true
}
