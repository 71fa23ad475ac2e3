// Package chain is the in-process stand-in for the ledger the contracts were
// designed to live on. It reproduces the parts of the host environment the
// components rely on: caller identity, block time and randomness, serialized
// call dispatch, and a durable event log.
package chain

import (
	"github.com/ethereum/go-ethereum/common"
)

// CallContext carries the per-call environment a contract sees: who is
// calling, which block it executes in, and where emitted events go. Events are
// buffered on the context and only land in the durable log if the whole call
// succeeds, so a failed call leaves no trace.
type CallContext struct {
	Caller     common.Address
	Time       int64
	Randomness common.Hash

	events *[]Event
}

// NewCallContext builds a fresh top-level context for one call.
func NewCallContext(caller common.Address, blockTime int64, randomness common.Hash) *CallContext {
	buf := make([]Event, 0, 4)
	return &CallContext{
		Caller:     caller,
		Time:       blockTime,
		Randomness: randomness,
		events:     &buf,
	}
}

// SubCall derives the context a contract passes when it calls into another
// contract: same block environment, same event buffer, but the caller becomes
// the calling contract's own address.
func (c *CallContext) SubCall(contractAddr common.Address) *CallContext {
	return &CallContext{
		Caller:     contractAddr,
		Time:       c.Time,
		Randomness: c.Randomness,
		events:     c.events,
	}
}

// Emit buffers an event for this call. Nothing is persisted until the call
// commits.
func (c *CallContext) Emit(name string, attrs map[string]string) {
	*c.events = append(*c.events, Event{Time: c.Time, Name: name, Attrs: attrs})
}

// Events returns everything emitted so far in this call tree.
func (c *CallContext) Events() []Event {
	return *c.events
}
