package services

import (
	"sync"

	"trackfit/models"
)

// FoodSource holds the latest snapshot of a food collection and broadcasts
// every replacement to its subscribers. A new subscriber immediately receives
// the current snapshot, then every later one in publish order with no gaps.
//
// Snapshots handed out over subscriptions are shared; treat them as read-only.
type FoodSource struct {
	mu    sync.Mutex
	value []models.Food
	subs  map[*FoodSubscription]struct{}
}

func NewFoodSource(initial []models.Food) *FoodSource {
	return &FoodSource{
		value: cloneFoods(initial),
		subs:  make(map[*FoodSubscription]struct{}),
	}
}

// Value returns a copy of the current snapshot.
func (s *FoodSource) Value() []models.Food {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneFoods(s.value)
}

// Next makes foods the current snapshot and enqueues it to every subscriber.
// Enqueueing happens under one lock, so all subscribers observe publishes in
// the same order.
func (s *FoodSource) Next(foods []models.Food) {
	snapshot := cloneFoods(foods)

	s.mu.Lock()
	s.value = snapshot
	for sub := range s.subs {
		sub.push(snapshot)
	}
	s.mu.Unlock()
}

// Subscribe registers a new subscriber seeded with the current snapshot.
func (s *FoodSource) Subscribe() *FoodSubscription {
	sub := &FoodSubscription{
		source: s,
		ch:     make(chan []models.Food),
		done:   make(chan struct{}),
	}
	sub.cond = sync.NewCond(&sub.mu)

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	sub.pending = append(sub.pending, s.value)
	s.mu.Unlock()

	go sub.run()
	return sub
}

// Close cancels every active subscription.
func (s *FoodSource) Close() {
	s.mu.Lock()
	subs := make([]*FoodSubscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subs = make(map[*FoodSubscription]struct{})
	s.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
}

func (s *FoodSource) unsubscribe(sub *FoodSubscription) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
	sub.stop()
}

func cloneFoods(foods []models.Food) []models.Food {
	return append([]models.Food(nil), foods...)
}

// FoodSubscription delivers snapshots from its FoodSource. Snapshots queue up
// internally when the consumer is slow, so none are dropped or reordered.
type FoodSubscription struct {
	source  *FoodSource
	ch      chan []models.Food
	mu      sync.Mutex
	cond    *sync.Cond
	pending [][]models.Food
	closed  bool
	done    chan struct{}
}

// Updates is the stream of snapshots. It is closed after Cancel.
func (s *FoodSubscription) Updates() <-chan []models.Food {
	return s.ch
}

// Cancel detaches the subscription from its source. Queued but undelivered
// snapshots are discarded.
func (s *FoodSubscription) Cancel() {
	s.source.unsubscribe(s)
}

// push is called with the source lock held; it only touches the
// subscription's own state.
func (s *FoodSubscription) push(snapshot []models.Food) {
	s.mu.Lock()
	if !s.closed {
		s.pending = append(s.pending, snapshot)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

func (s *FoodSubscription) stop() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.done)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

// run drains the pending queue into the delivery channel in order.
func (s *FoodSubscription) run() {
	defer close(s.ch)

	for {
		s.mu.Lock()
		for len(s.pending) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		select {
		case s.ch <- next:
		case <-s.done:
			return
		}
	}
}
