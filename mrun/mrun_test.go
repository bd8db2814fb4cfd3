package mrun

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mediocregopher/tiniredis/mcmp"
)

func TestThreadWait(t *testing.T) {
	cmp := new(mcmp.Component)
	child := cmp.Child("worker")

	done := make(chan struct{})
	Thread(context.Background(), child, func(context.Context) error {
		<-done
		return nil
	})

	waitDone := make(chan error, 1)
	go func() { waitDone <- Wait(cmp, nil) }()

	close(done)
	assert.NoError(t, <-waitDone)
}

func TestThreadWaitPropagatesError(t *testing.T) {
	cmp := new(mcmp.Component)
	boom := errors.New("boom")
	Thread(context.Background(), cmp, func(context.Context) error {
		return boom
	})

	assert.Equal(t, boom, Wait(cmp, nil))
}

func TestWaitCancel(t *testing.T) {
	cmp := new(mcmp.Component)
	Thread(context.Background(), cmp, func(context.Context) error {
		select {}
	})

	cancelCh := make(chan struct{})
	close(cancelCh)
	assert.Equal(t, ErrDone, Wait(cmp, cancelCh))
}
