// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package suretyvm

import (
	"context"
	"sync"

	"github.com/luxfi/surety/vms/suretyvm/events"
)

// outbox holds committed events, in commit order, until they are published.
// Events are numbered by the order they were added.
type outbox struct {
	lock    sync.Mutex
	pending []events.Event
	// next is the number of pending[0], which equals the number of events
	// already taken for publishing.
	next uint64

	// flushing admits one publisher at a time so events leave in order.
	flushing chan struct{}
}

func newOutbox() *outbox {
	return &outbox{
		flushing: make(chan struct{}, 1),
	}
}

// add queues emitted and returns the number of events that must be taken
// before all of emitted has been published.
func (o *outbox) add(emitted []events.Event) uint64 {
	o.lock.Lock()
	defer o.lock.Unlock()

	o.pending = append(o.pending, emitted...)
	return o.next + uint64(len(o.pending))
}

// take removes the oldest event if it is numbered below target.
func (o *outbox) take(target uint64) (events.Event, bool) {
	o.lock.Lock()
	defer o.lock.Unlock()

	if o.next >= target || len(o.pending) == 0 {
		return nil, false
	}
	evt := o.pending[0]
	o.pending[0] = nil
	o.pending = o.pending[1:]
	o.next++
	return evt, true
}

func (o *outbox) len() int {
	o.lock.Lock()
	defer o.lock.Unlock()

	return len(o.pending)
}

// flush publishes queued events until every event numbered below target has
// been handed to publisher, or ctx is done. Events queued behind target are
// left for their own callers. An event whose publish was cut short by ctx
// counts as published.
func (o *outbox) flush(ctx context.Context, publisher events.Publisher, target uint64) {
	select {
	case o.flushing <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() {
		<-o.flushing
	}()

	for ctx.Err() == nil {
		evt, ok := o.take(target)
		if !ok {
			return
		}
		publisher.Publish(ctx, evt)
	}
}
