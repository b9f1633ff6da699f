// Package history keeps a bounded, most-recent-first log of completed agent
// invocations.
package history

import "time"

// Capacity is the maximum number of entries the ledger holds.
const Capacity = 20

// Item is one completed agent invocation. Items are never mutated after
// insertion.
type Item struct {
	AgentType       string    `json:"agent_type"`
	DurationSeconds float64   `json:"duration_seconds"`
	CompletedAt     time.Time `json:"completed_at"`
}

// Ledger is an ordered sequence of items, newest first. The zero value is
// ready to use.
type Ledger struct {
	items []Item
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Restore creates a ledger from persisted items, trimming to capacity.
func Restore(items []Item) *Ledger {
	if len(items) > Capacity {
		items = items[:Capacity]
	}
	l := &Ledger{items: make([]Item, len(items))}
	copy(l.items, items)
	return l
}

// Add inserts an item at the front. When capacity is exceeded the oldest
// (tail) entry is evicted.
func (l *Ledger) Add(item Item) {
	l.items = append([]Item{item}, l.items...)
	if len(l.items) > Capacity {
		l.items = l.items[:Capacity]
	}
}

// Items returns the entries newest first. The returned slice is a copy.
func (l *Ledger) Items() []Item {
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.items)
}
