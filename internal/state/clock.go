package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Clock is a Lamport clock tied to this process's site ID.
type Clock struct {
	site    string
	lamport atomic.Uint64
}

func NewClock() *Clock {
	return &Clock{site: uuid.NewString()}
}

func (c *Clock) Site() string { return c.site }

func (c *Clock) Now() uint64 { return c.lamport.Load() }

// Stamp gives op a fresh ID and the next tick.
func (c *Clock) Stamp(op Op) Op {
	op.ID = uuid.NewString()
	op.Lamport = c.lamport.Add(1)
	op.Site = c.site
	return op
}

// Witness moves the clock forward past a remote timestamp.
func (c *Clock) Witness(remote uint64) {
	for {
		cur := c.lamport.Load()
		if remote <= cur || c.lamport.CompareAndSwap(cur, remote) {
			return
		}
	}
}
