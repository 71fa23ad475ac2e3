package chain_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racampos/mintory/chain"
)

var (
	contractAddr = common.HexToAddress("0x00000000000000000000000000000000C0000001")
	callerAddr   = common.HexToAddress("0x00000000000000000000000000000000000A0001")
)

// stubContract lets each test script what dispatch routes into.
type stubContract struct {
	execute func(ctx *chain.CallContext, calldata []byte) ([]byte, error)
	cost    func(calldata []byte) (uint64, error)
}

func (s *stubContract) Execute(ctx *chain.CallContext, calldata []byte) ([]byte, error) {
	return s.execute(ctx, calldata)
}

func (s *stubContract) ExecutionCost(calldata []byte) (uint64, error) {
	if s.cost != nil {
		return s.cost(calldata)
	}
	return 0, nil
}

// TestCallRoutesToContract checks dispatch hands the calldata and environment
// to the registered contract and returns its output unchanged.
func TestCallRoutesToContract(t *testing.T) {
	ledger := chain.New(chain.NewMemoryEventStore(),
		chain.WithClock(func() int64 { return 1000 }),
		chain.WithRandomness(func() common.Hash { return common.HexToHash("0x42") }))

	ledger.Register(contractAddr, &stubContract{
		execute: func(ctx *chain.CallContext, calldata []byte) ([]byte, error) {
			assert.Equal(t, callerAddr, ctx.Caller)
			assert.Equal(t, int64(1000), ctx.Time)
			assert.Equal(t, common.HexToHash("0x42"), ctx.Randomness)
			assert.Equal(t, []byte{0x01, 0x02}, calldata)
			return []byte{0xaa}, nil
		},
	})

	out, err := ledger.Call(callerAddr, contractAddr, []byte{0x01, 0x02})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa}, out)
}

// TestCallUnknownDestination checks a call to an unregistered address is
// rejected before anything runs.
func TestCallUnknownDestination(t *testing.T) {
	ledger := chain.New(chain.NewMemoryEventStore())
	_, err := ledger.Call(callerAddr, contractAddr, nil)
	assert.ErrorIs(t, err, chain.ErrUnknownDestination)
	_, err = ledger.EstimateGas(contractAddr, nil)
	assert.ErrorIs(t, err, chain.ErrUnknownDestination)
}

// TestEventsPersistOnlyOnSuccess checks a failed call leaves the log
// untouched even when the contract emitted before failing, and a successful
// call lands its events in order with assigned sequence numbers.
func TestEventsPersistOnlyOnSuccess(t *testing.T) {
	store := chain.NewMemoryEventStore()
	ledger := chain.New(store, chain.WithClock(func() int64 { return 7 }))

	boom := errors.New("state check failed")
	ledger.Register(contractAddr, &stubContract{
		execute: func(ctx *chain.CallContext, calldata []byte) ([]byte, error) {
			ctx.Emit("First", map[string]string{"k": "1"})
			if len(calldata) == 0 {
				return nil, boom
			}
			ctx.Emit("Second", map[string]string{"k": "2"})
			return nil, nil
		},
	})

	_, err := ledger.Call(callerAddr, contractAddr, nil)
	require.ErrorIs(t, err, boom)
	assert.Empty(t, collect(t, store), "failed call must not persist events")

	_, err = ledger.Call(callerAddr, contractAddr, []byte{0x01})
	require.NoError(t, err)

	got := collect(t, store)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].Seq)
	assert.Equal(t, "First", got[0].Name)
	assert.Equal(t, int64(7), got[0].Time)
	assert.Equal(t, uint64(2), got[1].Seq)
	assert.Equal(t, "Second", got[1].Name)
}

// TestSubCallSharesBuffer checks events emitted in a nested call ride the same
// buffer as the outer call and the nested caller identity is the contract.
func TestSubCallSharesBuffer(t *testing.T) {
	ctx := chain.NewCallContext(callerAddr, 50, common.Hash{})
	ctx.Emit("Outer", nil)

	sub := ctx.SubCall(contractAddr)
	assert.Equal(t, contractAddr, sub.Caller)
	assert.Equal(t, int64(50), sub.Time)
	sub.Emit("Inner", nil)

	names := make([]string, 0, 2)
	for _, ev := range ctx.Events() {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{"Outer", "Inner"}, names)
}

// TestEstimateGas checks the estimate is intrinsic cost plus calldata bytes
// plus the contract's own pricing, and that a pricing error propagates.
func TestEstimateGas(t *testing.T) {
	ledger := chain.New(chain.NewMemoryEventStore())
	bad := errors.New("unknown selector")
	ledger.Register(contractAddr, &stubContract{
		execute: func(*chain.CallContext, []byte) ([]byte, error) { return nil, nil },
		cost: func(calldata []byte) (uint64, error) {
			if len(calldata) == 0 {
				return 0, bad
			}
			return 10_000, nil
		},
	})

	calldata := []byte{0x01, 0x02, 0x03}
	got, err := ledger.EstimateGas(contractAddr, calldata)
	require.NoError(t, err)
	want := params.TxGas + 3*params.TxDataNonZeroGasEIP2028 + 10_000
	assert.Equal(t, want, got)

	_, err = ledger.EstimateGas(contractAddr, nil)
	assert.ErrorIs(t, err, bad)
}

func collect(t *testing.T, store chain.EventStore) []chain.Event {
	t.Helper()
	var out []chain.Event
	require.NoError(t, store.ForEach(func(ev chain.Event) error {
		out = append(out, ev)
		return nil
	}))
	return out
}
