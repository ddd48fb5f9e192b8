package lending

import "sync"

// Collections observers can watch.
const (
	CollectionBooks    = "books"
	CollectionRequests = "borrow_requests"
)

// Event identifies one entity touched by a committed transaction.
type Event struct {
	Collection string
	EntityID   string
}

// Change summarizes one committed transaction. Observers never see a
// partially applied state: the engine publishes only after commit, and a
// rolled-back transaction publishes nothing.
type Change struct {
	Events []Event
}

// Touches reports whether the change touched the given collection.
func (c Change) Touches(collection string) bool {
	for _, e := range c.Events {
		if e.Collection == collection {
			return true
		}
	}
	return false
}

type subscriber struct {
	fn          func(Change)
	collections map[string]struct{} // empty means every collection
}

// Notifier delivers post-commit change notifications to registered
// observers. Each subscriber is invoked at most once per committed
// transaction, regardless of how many watched entities it touched.
type Notifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]subscriber
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]subscriber)}
}

// Subscribe registers fn for the given collections (all collections when
// none are named) and returns an unsubscribe function.
func (n *Notifier) Subscribe(fn func(Change), collections ...string) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	watch := make(map[string]struct{}, len(collections))
	for _, c := range collections {
		watch[c] = struct{}{}
	}
	n.subs[id] = subscriber{fn: fn, collections: watch}
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

// Publish delivers the change to every subscriber whose watch set
// intersects the touched collections. Callbacks run synchronously on the
// publishing goroutine, outside the notifier lock.
func (n *Notifier) Publish(c Change) {
	if len(c.Events) == 0 {
		return
	}
	n.mu.RLock()
	targets := make([]func(Change), 0, len(n.subs))
	for _, s := range n.subs {
		if len(s.collections) == 0 {
			targets = append(targets, s.fn)
			continue
		}
		for _, e := range c.Events {
			if _, ok := s.collections[e.Collection]; ok {
				targets = append(targets, s.fn)
				break
			}
		}
	}
	n.mu.RUnlock()

	for _, fn := range targets {
		fn(c)
	}
}
