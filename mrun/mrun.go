// Package mrun provides lifecycle management (Init/Start/Shutdown hooks) and
// supervised background goroutines (Thread/Wait), both organized around the
// mcmp.Component tree.
package mrun

import (
	"context"
	"errors"

	"github.com/mediocregopher/tiniredis/mcmp"
)

type futureErr struct {
	doneCh chan struct{}
	err    error
}

func newFutureErr() *futureErr {
	return &futureErr{doneCh: make(chan struct{})}
}

func (fe *futureErr) get(cancelCh <-chan struct{}) (error, bool) {
	select {
	case <-fe.doneCh:
		return fe.err, true
	case <-cancelCh:
		return nil, false
	}
}

func (fe *futureErr) set(err error) {
	fe.err = err
	close(fe.doneCh)
}

type threadsKey struct{}

// Thread spawns a goroutine which runs fn, recording it against cmp so a
// later Wait call on cmp (or any of its ancestors) will block for it.
//
// fn is passed ctx as-is; cancellation of long-running work spawned this way
// should be driven by canceling that Context, not by Wait's cancelCh.
func Thread(ctx context.Context, cmp *mcmp.Component, fn func(context.Context) error) {
	futErr := newFutureErr()
	cmp.UpdateValue(threadsKey{}, func(v interface{}) interface{} {
		futErrs, _ := v.([]*futureErr)
		return append(futErrs, futErr)
	})

	go func() {
		futErr.set(fn(ctx))
	}()
}

// ErrDone is returned from Wait if cancelCh is closed before every spawned
// thread has returned.
var ErrDone = errors.New("mrun: Wait canceled before all threads returned")

// Wait blocks until every goroutine spawned with Thread on cmp, and on all of
// cmp's descendants, has returned. Any number may have already returned by
// the time Wait is called.
//
// If any thread function returned a non-nil error, Wait returns one such
// error (which one is undefined if more than one thread failed).
//
// If cancelCh is non-nil and is closed before every thread has returned,
// Wait stops waiting early and returns ErrDone.
func Wait(cmp *mcmp.Component, cancelCh <-chan struct{}) error {
	for _, child := range cmp.Children() {
		if err := Wait(child, cancelCh); err != nil {
			return err
		}
	}

	futErrs, _ := cmp.Value(threadsKey{}).([]*futureErr)
	for _, futErr := range futErrs {
		err, ok := futErr.get(cancelCh)
		if !ok {
			return ErrDone
		} else if err != nil {
			return err
		}
	}

	return nil
}
