package state

import "sync"

// Journal remembers which ops this site has already applied so relayed
// duplicates are dropped.
type Journal struct {
	clock *Clock
	mu    sync.Mutex
	seen  map[string]struct{}
}

func NewJournal(clock *Clock) *Journal {
	return &Journal{
		clock: clock,
		seen:  make(map[string]struct{}),
	}
}

func (j *Journal) Clock() *Clock { return j.clock }

// Local stamps an op drawn here and records it.
func (j *Journal) Local(op Op) Op {
	op = j.clock.Stamp(op)
	j.mu.Lock()
	j.seen[op.ID] = struct{}{}
	j.mu.Unlock()
	return op
}

// Remote records an op received from a peer and reports whether it is new.
// Ops that originated here are never new.
func (j *Journal) Remote(op Op) bool {
	if op.ID == "" || op.Site == j.clock.Site() {
		return false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.seen[op.ID]; ok {
		return false
	}
	j.seen[op.ID] = struct{}{}
	j.clock.Witness(op.Lamport)
	return true
}

func (j *Journal) size() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.seen)
}

// Reset forgets every op except keep. It runs after a full canvas sync,
// which supersedes everything applied before it.
func (j *Journal) Reset(keep string) {
	j.mu.Lock()
	j.seen = map[string]struct{}{keep: {}}
	j.mu.Unlock()
}
