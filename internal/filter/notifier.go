package filter

// ChangeFunc receives the full snapshot after a mutation.
type ChangeFunc func(Snapshot)

// Notifier fans a snapshot out to its subscribers, inline and in subscription
// order. Nothing is debounced or coalesced: one Notify, one call per subscriber.
type Notifier struct {
	subs   []subscription
	nextID int
}

type subscription struct {
	id int
	fn ChangeFunc
}

// Subscribe registers fn and returns a function that removes it.
func (n *Notifier) Subscribe(fn ChangeFunc) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	n.nextID++
	id := n.nextID
	n.subs = append(n.subs, subscription{id: id, fn: fn})
	return func() {
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

// Notify hands every subscriber its own copy of the snapshot.
func (n *Notifier) Notify(s Snapshot) {
	// Iterate a copy so a subscriber may unsubscribe itself.
	subs := append([]subscription(nil), n.subs...)
	for _, sub := range subs {
		sub.fn(s.Clone())
	}
}

// Len reports the number of subscribers.
func (n *Notifier) Len() int { return len(n.subs) }
