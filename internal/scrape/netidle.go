package scrape

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const (
	// idleMaxInflight is the number of outstanding requests still treated
	// as idle, matching a networkidle0-style wait.
	idleMaxInflight = 0
	// idleQuiet is how long the network must stay at or below
	// idleMaxInflight before navigation counts as settled.
	idleQuiet = 500 * time.Millisecond
)

// trackNetworkIdle returns a channel that is closed once the number of
// in-flight requests has stayed at or below maxInflight for the quiet
// period. The listener must be installed before navigation so loads
// triggered during it are counted. Callers bound the wait with the
// context deadline; this never closes the channel after ctx is done.
func trackNetworkIdle(ctx context.Context, maxInflight int, quiet time.Duration) <-chan struct{} {
	idle := make(chan struct{})

	var (
		mu       sync.Mutex
		inflight = map[network.RequestID]struct{}{}
		timer    *time.Timer
		closed   bool
	)

	// arm (re)starts the quiet timer; callers hold mu
	arm := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(quiet, func() {
			mu.Lock()
			defer mu.Unlock()
			if !closed && len(inflight) <= maxInflight {
				closed = true
				close(idle)
			}
		})
	}

	mu.Lock()
	arm()
	mu.Unlock()

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			inflight[e.RequestID] = struct{}{}
		case *network.EventLoadingFinished:
			delete(inflight, e.RequestID)
		case *network.EventLoadingFailed:
			delete(inflight, e.RequestID)
		default:
			return
		}
		if len(inflight) <= maxInflight {
			arm()
		} else if timer != nil {
			timer.Stop()
		}
	})

	return idle
}
