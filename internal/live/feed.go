package live

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

// CampaignLister loads the full campaign snapshot, newest first.
type CampaignLister interface {
	List(ctx context.Context) ([]domain.Campaign, error)
}

// Feed is the live campaign projection: every store change re-emits the
// full current ordered list to all subscribers. Slow subscribers see
// coalesced snapshots, never stale ones out of order. Subscriptions carry
// explicit cancellation; a new subscriber always starts from the current
// snapshot, there is no replay of missed changes.
type Feed struct {
	lister   CampaignLister
	logger   zerolog.Logger
	debounce *Debouncer
	kick     chan struct{}

	mu     sync.Mutex
	subs   map[int]chan []domain.Campaign
	nextID int
	last   []domain.Campaign
	ready  bool
}

// NewFeed constructs a Feed. quiet <= 0 selects the default debounce window
// for coalescing invalidation bursts.
func NewFeed(lister CampaignLister, logger zerolog.Logger, quiet time.Duration) *Feed {
	return &Feed{
		lister:   lister,
		logger:   logger,
		debounce: NewDebouncer(quiet),
		kick:     make(chan struct{}, 1),
		subs:     make(map[int]chan []domain.Campaign),
	}
}

// Run drives the feed until ctx is done: load a snapshot, broadcast it,
// wait for the next invalidation. Intended to run in its own goroutine.
func (f *Feed) Run(ctx context.Context) {
	for {
		f.reload(ctx)
		select {
		case <-ctx.Done():
			f.debounce.Stop()
			f.closeAll()
			return
		case <-f.kick:
		}
	}
}

// Invalidate signals that the campaign set changed. Bursts within the quiet
// window collapse into one reload. Safe from any goroutine; never blocks.
func (f *Feed) Invalidate() {
	f.debounce.Submit(func() {
		select {
		case f.kick <- struct{}{}:
		default:
		}
	})
}

// Subscribe registers a consumer. The returned channel delivers the current
// snapshot immediately (once the feed has loaded one) and a fresh snapshot
// after every change. The stop function cancels the subscription and closes
// the channel; ctx cancellation does the same. Dropping a subscription
// without stopping it leaks the subscriber slot until the feed shuts down.
func (f *Feed) Subscribe(ctx context.Context) (<-chan []domain.Campaign, func()) {
	ch := make(chan []domain.Campaign, 1)

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	if f.ready {
		ch <- f.last
	}
	f.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			f.mu.Lock()
			if _, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(ch)
			}
			f.mu.Unlock()
		})
	}

	go func() {
		<-ctx.Done()
		stop()
	}()

	return ch, stop
}

func (f *Feed) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	snapshot, err := f.lister.List(ctx)
	if err != nil {
		f.logger.Error().Err(err).Msg("campaign feed reload failed")
		return
	}

	f.mu.Lock()
	f.last = snapshot
	f.ready = true
	for _, ch := range f.subs {
		deliver(ch, snapshot)
	}
	f.mu.Unlock()
}

// deliver replaces any undelivered snapshot so a slow consumer wakes up to
// the newest state only.
func deliver(ch chan []domain.Campaign, snapshot []domain.Campaign) {
	select {
	case ch <- snapshot:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snapshot:
	default:
	}
}

func (f *Feed) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}
