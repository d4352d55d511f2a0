// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFeedFanOut(t *testing.T) {
	require := require.New(t)

	feed := NewFeed()
	defer feed.Close()

	ch1, cancel1 := feed.Subscribe(4)
	defer cancel1()
	ch2, cancel2 := feed.Subscribe(4)
	defer cancel2()

	first := &AirlineFunded{Airline: ids.GenerateTestShortID()}
	second := &OperatingStatusChanged{Operational: false}
	feed.Publish(context.Background(), first)
	feed.Publish(context.Background(), second)

	for _, ch := range []<-chan Event{ch1, ch2} {
		require.Equal(first, <-ch)
		require.Equal(second, <-ch)
	}
}

func TestFeedUnsubscribe(t *testing.T) {
	require := require.New(t)

	feed := NewFeed()
	defer feed.Close()

	ch, cancel := feed.Subscribe(1)
	cancel()
	cancel()

	_, ok := <-ch
	require.False(ok)

	// Nobody is listening; publishing must not block.
	feed.Publish(context.Background(), &Withdrawn{})
}

func TestFeedPublishHonoursContext(t *testing.T) {
	feed := NewFeed()
	defer feed.Close()

	_, cancel := feed.Subscribe(0)
	defer cancel()

	ctx, cancelCtx := context.WithCancel(context.Background())
	cancelCtx()
	feed.Publish(ctx, &Withdrawn{})
}

func TestFeedBackPressure(t *testing.T) {
	require := require.New(t)

	feed := NewFeed()
	defer feed.Close()
	ch, cancel := feed.Subscribe(0)
	defer cancel()

	const n = 16
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range n {
			feed.Publish(context.Background(), &OracleReport{Tally: uint64(i)})
		}
	}()

	for i := range n {
		evt := <-ch
		require.Equal(uint64(i), evt.(*OracleReport).Tally)
	}
	wg.Wait()
}

func TestFeedUnsubscribeDuringBlockedPublish(t *testing.T) {
	require := require.New(t)

	feed := NewFeed()
	defer feed.Close()
	ch, cancel := feed.Subscribe(1)

	published := make(chan struct{})
	go func() {
		defer close(published)
		feed.Publish(context.Background(), &Withdrawn{Amount: 1})
		// The buffer is full; this publish blocks until the subscription
		// goes away.
		feed.Publish(context.Background(), &Withdrawn{Amount: 2})
	}()

	require.Eventually(func() bool {
		return len(ch) == 1
	}, time.Second, time.Millisecond)

	unsubscribed := make(chan struct{})
	go func() {
		defer close(unsubscribed)
		cancel()
	}()

	select {
	case <-unsubscribed:
	case <-time.After(5 * time.Second):
		require.FailNow("unsubscribe blocked behind a publish")
	}
	select {
	case <-published:
	case <-time.After(5 * time.Second):
		require.FailNow("publish not released by unsubscribe")
	}

	require.Equal(&Withdrawn{Amount: 1}, <-ch)
	_, ok := <-ch
	require.False(ok)
}

func TestFeedCloseDuringBlockedPublish(t *testing.T) {
	require := require.New(t)

	feed := NewFeed()
	_, cancel := feed.Subscribe(0)
	defer cancel()

	published := make(chan struct{})
	go func() {
		defer close(published)
		feed.Publish(context.Background(), &Withdrawn{})
	}()

	feed.Close()
	select {
	case <-published:
	case <-time.After(5 * time.Second):
		require.FailNow("publish not released by close")
	}
}

func TestFeedClose(t *testing.T) {
	require := require.New(t)

	feed := NewFeed()
	ch, _ := feed.Subscribe(1)
	feed.Close()
	feed.Close()

	_, ok := <-ch
	require.False(ok)

	late, _ := feed.Subscribe(1)
	_, ok = <-late
	require.False(ok)
}

func TestEventNames(t *testing.T) {
	require := require.New(t)

	require.Equal("oracle_request", (&OracleRequestCreated{}).Name())
	require.Equal("flight_status_info", (&OracleReportFinalized{}).Name())
}
