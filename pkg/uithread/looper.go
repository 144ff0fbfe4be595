// Package uithread marshals work onto the single goroutine that owns the
// native view tree.
//
// Commands arrive from the bridge on arbitrary goroutines. They must be
// applied in submission order by one goroutine, so a Looper keeps an
// unbounded FIFO queue and drains it from its own goroutine.
package uithread

import (
	"sync"

	"github.com/go-drift/viewbridge/pkg/errors"
)

// Dispatcher schedules callbacks on the UI thread.
type Dispatcher interface {
	// Post schedules callback and reports whether it was accepted.
	Post(callback func()) bool
}

// Inline runs callbacks immediately on the calling goroutine.
// Tests and single-goroutine embedders use it in place of a Looper.
type Inline struct{}

// Post implements Dispatcher.
func (Inline) Post(callback func()) bool {
	if callback == nil {
		return false
	}
	callback()
	return true
}

// Looper is a single-goroutine FIFO task runner.
type Looper struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
	quit  bool
	done  chan struct{}
}

// NewLooper creates a looper and starts its goroutine.
func NewLooper() *Looper {
	l := &Looper{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go l.loop()
	return l
}

// Post appends callback to the queue. It returns false after Quit or when
// callback is nil. Safe to call from any goroutine.
func (l *Looper) Post(callback func()) bool {
	if callback == nil {
		return false
	}
	l.mu.Lock()
	if l.quit {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, callback)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Sync posts callback and waits until it has run. It must not be called
// from the looper goroutine itself.
func (l *Looper) Sync(callback func()) bool {
	if callback == nil {
		return false
	}
	ran := make(chan struct{})
	ok := l.Post(func() {
		defer close(ran)
		callback()
	})
	if !ok {
		return false
	}
	select {
	case <-ran:
		return true
	case <-l.done:
		// The looper drains everything queued before Quit, so a task that
		// was accepted has either run or the looper exited mid-drain.
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}
}

// Quit stops accepting tasks. Tasks already queued still run. Quit blocks
// until the looper goroutine exits.
func (l *Looper) Quit() {
	l.mu.Lock()
	if !l.quit {
		l.quit = true
		select {
		case l.wake <- struct{}{}:
		default:
		}
	}
	l.mu.Unlock()
	<-l.done
}

// Pending returns the number of queued tasks.
func (l *Looper) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Looper) loop() {
	defer close(l.done)
	for {
		tasks, quit := l.drain()
		for _, task := range tasks {
			run(task)
		}
		if quit && len(tasks) == 0 {
			return
		}
		if len(tasks) == 0 {
			<-l.wake
		}
	}
}

func (l *Looper) drain() ([]func(), bool) {
	l.mu.Lock()
	tasks := l.queue
	l.queue = nil
	quit := l.quit
	l.mu.Unlock()
	return tasks, quit
}

func run(task func()) {
	defer errors.Recover("uithread.Looper")
	task()
}
