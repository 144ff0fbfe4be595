package uimanager

import (
	"fmt"
	"sync"
)

// Promise delivers the result of a query-style operation back across the
// bridge.
type Promise interface {
	Resolve(value any)
	Reject(msg string)

	// IsCallback reports whether anyone is waiting for the result. Fire and
	// forget dispatches use a promise that returns false.
	IsCallback() bool
}

// Result is a settled promise value.
type Result struct {
	Value any
	Err   error
}

// ChanPromise settles once and delivers the result on a buffered channel.
type ChanPromise struct {
	ch   chan Result
	once sync.Once
}

// NewChanPromise creates a pending promise.
func NewChanPromise() *ChanPromise {
	return &ChanPromise{ch: make(chan Result, 1)}
}

// Resolve implements Promise.
func (p *ChanPromise) Resolve(value any) {
	p.once.Do(func() { p.ch <- Result{Value: value} })
}

// Reject implements Promise.
func (p *ChanPromise) Reject(msg string) {
	p.once.Do(func() { p.ch <- Result{Err: fmt.Errorf("%w: %s", ErrRejected, msg)} })
}

// IsCallback implements Promise.
func (p *ChanPromise) IsCallback() bool { return true }

// Done returns the channel the result is delivered on.
func (p *ChanPromise) Done() <-chan Result { return p.ch }

// FuncPromise calls fn with the settled result. Only the first settlement
// is delivered.
type FuncPromise struct {
	fn   func(Result)
	once sync.Once
}

// NewFuncPromise creates a promise that reports to fn.
func NewFuncPromise(fn func(Result)) *FuncPromise {
	return &FuncPromise{fn: fn}
}

// Resolve implements Promise.
func (p *FuncPromise) Resolve(value any) {
	p.once.Do(func() { p.fn(Result{Value: value}) })
}

// Reject implements Promise.
func (p *FuncPromise) Reject(msg string) {
	p.once.Do(func() { p.fn(Result{Err: fmt.Errorf("%w: %s", ErrRejected, msg)}) })
}

// IsCallback implements Promise.
func (p *FuncPromise) IsCallback() bool { return true }

// NoopPromise discards results.
type NoopPromise struct{}

// Resolve implements Promise.
func (NoopPromise) Resolve(any) {}

// Reject implements Promise.
func (NoopPromise) Reject(string) {}

// IsCallback implements Promise.
func (NoopPromise) IsCallback() bool { return false }
