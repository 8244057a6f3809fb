/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package draftstore

import "sync"

// Event kinds delivered to subscribers.
const (
	EventSaved      = "saved"
	EventSaveFailed = "saveFailed"
	EventCleared    = "cleared"
)

// Event notifies subscribers of a persistence outcome.
type Event struct {
	Kind    string
	Section string
	Message string
}

// Subscription is the handle returned by Subscribe. Closing it releases the
// callback; closing twice is safe. The facade closes every open subscription
// on teardown, so callbacks never outlive their session.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Close releases the subscription.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

// subscribers is a guarded registry of event callbacks.
type subscribers struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

func newSubscribers() *subscribers {
	return &subscribers{subs: make(map[int]func(Event))}
}

func (s *subscribers) add(fn func(Event)) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return &Subscription{cancel: func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}}
}

func (s *subscribers) notify(ev Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (s *subscribers) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = make(map[int]func(Event))
}
