package engine

// subscriber is a named tap on the snapshot stream. Multiple subscribers
// independently receive every published snapshot (fan-out).
type subscriber struct {
	name string
	ch   chan *Snapshot
}

// Subscribe creates a named subscriber that receives every snapshot
// published after this call. The channel is buffered; a slow consumer drops
// snapshots rather than blocking the writer; consumers that fall behind
// can always catch up from Snapshot(), which holds the latest state.
func (o *Orchestrator) Subscribe(name string) <-chan *Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	sub := &subscriber{name: name, ch: make(chan *Snapshot, 16)}
	if o.closed {
		close(sub.ch)
		return sub.ch
	}
	o.subs = append(o.subs, sub)
	return sub.ch
}

// fanOutLocked delivers a snapshot to all subscribers without blocking.
// Callers must hold the mutex.
func (o *Orchestrator) fanOutLocked(snap *Snapshot) {
	for _, sub := range o.subs {
		select {
		case sub.ch <- snap:
		default: // drop if slow
		}
	}
}
