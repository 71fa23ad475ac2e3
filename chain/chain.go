package chain

import (
	crand "crypto/rand"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Errors the dispatcher can reject a call with before any contract runs.
var (
	ErrUnknownDestination = errors.New("unknown destination")
)

// Contract is what the dispatcher routes calldata to. Execute runs one
// mutating call; ExecutionCost prices the operation the calldata describes
// without running it (selector and argument validation included).
type Contract interface {
	Execute(ctx *CallContext, calldata []byte) ([]byte, error)
	ExecutionCost(calldata []byte) (uint64, error)
}

// Chain dispatches calls to registered contracts the way the ledger's
// call-dispatch would: one mutating call at a time, caller identity attached,
// events appended to the durable log only on success.
type Chain struct {
	mu        sync.Mutex
	contracts map[common.Address]Contract
	events    EventStore
	clock     func() int64
	random    func() common.Hash
	log       *zap.Logger
}

// Option tweaks chain construction.
type Option func(*Chain)

// WithClock overrides the block-timestamp source. Tests use it to drive
// expiry.
func WithClock(clock func() int64) Option {
	return func(c *Chain) { c.clock = clock }
}

// WithRandomness overrides the block-randomness source so session id
// derivation becomes reproducible.
func WithRandomness(random func() common.Hash) Option {
	return func(c *Chain) { c.random = random }
}

// WithLogger attaches a logger for per-call tracing.
func WithLogger(log *zap.Logger) Option {
	return func(c *Chain) { c.log = log }
}

// New builds a chain around the given event store.
func New(events EventStore, opts ...Option) *Chain {
	c := &Chain{
		contracts: make(map[common.Address]Contract),
		events:    events,
		clock:     func() int64 { return time.Now().Unix() },
		random:    cryptoRandomness,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register places a contract at an address. Registering twice at the same
// address replaces the previous contract.
func (c *Chain) Register(addr common.Address, contract Contract) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contracts[addr] = contract
}

// Call executes calldata against the contract at the destination. All
// mutating calls are serialized here; once submitted, a call commits or
// rejects, never cancels. Events only reach the store when the call succeeds.
func (c *Chain) Call(caller, to common.Address, calldata []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	contract, ok := c.contracts[to]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownDestination, "destination %s", to.Hex())
	}
	ctx := NewCallContext(caller, c.clock(), c.random())
	out, err := contract.Execute(ctx, calldata)
	if err != nil {
		c.log.Debug("call rejected",
			zap.String("to", to.Hex()),
			zap.String("caller", caller.Hex()),
			zap.Error(err))
		return nil, err
	}
	for _, ev := range ctx.Events() {
		stored, err := c.events.Append(ev)
		if err != nil {
			return nil, errors.Wrap(err, "persist event")
		}
		c.log.Debug("event", zap.Uint64("seq", stored.Seq), zap.String("name", stored.Name))
	}
	return out, nil
}

// EstimateGas simulates the cost of the exact calldata: intrinsic transaction
// cost plus calldata bytes plus the destination contract's own pricing. A
// destination or selector the dispatch would reject estimates as an error.
func (c *Chain) EstimateGas(to common.Address, calldata []byte) (uint64, error) {
	c.mu.Lock()
	contract, ok := c.contracts[to]
	c.mu.Unlock()
	if !ok {
		return 0, errors.Wrapf(ErrUnknownDestination, "destination %s", to.Hex())
	}
	opCost, err := contract.ExecutionCost(calldata)
	if err != nil {
		return 0, err
	}
	return params.TxGas + uint64(len(calldata))*params.TxDataNonZeroGasEIP2028 + opCost, nil
}

// Now exposes the chain clock so read paths can report end times consistently
// with what dispatch would see.
func (c *Chain) Now() int64 {
	return c.clock()
}

// Events exposes the durable log for replay-based read surfaces.
func (c *Chain) Events() EventStore {
	return c.events
}

func cryptoRandomness() common.Hash {
	var h common.Hash
	// crypto/rand never fails on supported platforms; an all-zero beacon is
	// still a valid (if sad) randomness value.
	crand.Read(h[:])
	return h
}
