// Package async provides the single-value asynchronous result types used in
// hub and receiver contracts.
//
// A contract method may return a value directly:
//
//	GetCount(ctx context.Context, key string) (int, error)
//
// or an explicit pending result:
//
//	GetCount(ctx context.Context, key string) async.Future[int]
//	Notify(ctx context.Context, msg string) async.Task
//
// Generated TypeScript erases both wrappers because every generated call is
// already asynchronous. Streams are declared with iter.Seq[T],
// iter.Seq2[T, error] or <-chan T.
package async

import (
	"context"
	"sync"
)

// Future is a value that becomes available exactly once.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// NewFuture returns a pending Future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a Future that already holds v.
func Resolved[T any](v T) *Future[T] {
	f := NewFuture[T]()
	f.Resolve(v, nil)
	return f
}

// Go runs fn in a new goroutine and resolves the Future with its result.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := NewFuture[T]()
	go func() {
		f.Resolve(fn(ctx))
	}()
	return f
}

// Resolve completes the Future. Only the first call has an effect.
func (f *Future[T]) Resolve(v T, err error) {
	f.once.Do(func() {
		f.value, f.err = v, err
		close(f.done)
	})
}

// Done is closed once the Future is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the Future is resolved or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Task is a pending operation without a result.
type Task struct {
	f *Future[struct{}]
}

// NewTask returns a pending Task and the function that completes it.
func NewTask() (Task, func(error)) {
	f := NewFuture[struct{}]()
	return Task{f: f}, func(err error) { f.Resolve(struct{}{}, err) }
}

// Completed returns a Task that has already finished with err.
func Completed(err error) Task {
	t, done := NewTask()
	done(err)
	return t
}

// Wait blocks until the Task finishes or ctx is done.
func (t Task) Wait(ctx context.Context) error {
	if t.f == nil {
		return nil
	}
	_, err := t.f.Await(ctx)
	return err
}
