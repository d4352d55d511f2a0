// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import (
	"context"
	"sync"
)

var _ Publisher = (*Feed)(nil)

// Feed fans events out to every subscriber in publish order. Publish blocks
// until each subscriber has buffer space, the subscription is cancelled or
// ctx is done. A slow subscriber therefore applies back-pressure to the
// publisher only; cancelling it never waits on a blocked publish.
type Feed struct {
	lock   sync.RWMutex
	subs   map[int]*subscription
	nextID int
	closed bool
}

type subscription struct {
	ch   chan Event
	done chan struct{}
	once sync.Once

	// lock is held for reading while sending on ch and for writing while
	// closing it.
	lock sync.RWMutex
}

func (s *subscription) send(ctx context.Context, evt Event) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.ch <- evt:
	case <-s.done:
	case <-ctx.Done():
	}
}

func (s *subscription) close() {
	s.once.Do(func() {
		// Closing done releases any send blocked on a full buffer, so the
		// write lock is acquired promptly.
		close(s.done)

		s.lock.Lock()
		defer s.lock.Unlock()
		close(s.ch)
	})
}

func NewFeed() *Feed {
	return &Feed{
		subs: make(map[int]*subscription),
	}
}

// Subscribe returns a channel of future events and a function that cancels
// the subscription and closes the channel.
func (f *Feed) Subscribe(buffer int) (<-chan Event, func()) {
	sub := &subscription{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	if f.closed {
		sub.close()
		return sub.ch, func() {}
	}
	id := f.nextID
	f.nextID++
	f.subs[id] = sub

	return sub.ch, func() {
		f.lock.Lock()
		delete(f.subs, id)
		f.lock.Unlock()

		sub.close()
	}
}

func (f *Feed) Publish(ctx context.Context, evt Event) {
	f.lock.RLock()
	subs := make([]*subscription, 0, len(f.subs))
	for _, sub := range f.subs {
		subs = append(subs, sub)
	}
	f.lock.RUnlock()

	for _, sub := range subs {
		if ctx.Err() != nil {
			return
		}
		sub.send(ctx, evt)
	}
}

// Close closes every subscription. Later publishes are dropped.
func (f *Feed) Close() {
	f.lock.Lock()
	if f.closed {
		f.lock.Unlock()
		return
	}
	f.closed = true
	subs := f.subs
	f.subs = make(map[int]*subscription)
	f.lock.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}
