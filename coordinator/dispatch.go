package coordinator

import (
	"github.com/pkg/errors"

	"github.com/racampos/mintory/chain"
	"github.com/racampos/mintory/codec"
)

// Per-operation execution costs used by gas estimation. The open cost grows
// with the candidate list since storage scales with it.
const (
	_gasOpenVoteBase        = 90_000
	_gasOpenVotePerCid      = 22_000
	_gasCastVote            = 45_000
	_gasCloseVote           = 30_000
	_gasFinalizeMint        = 120_000
	_gasCoordinatorSetAdmin = 8_000
)

var _ chain.Contract = (*Coordinator)(nil)

// Execute routes calldata to the coordinator operation it selects.
func (c *Coordinator) Execute(ctx *chain.CallContext, calldata []byte) ([]byte, error) {
	call, err := codec.DecodeCoordinatorCall(calldata)
	if err != nil {
		return nil, err
	}
	switch v := call.(type) {
	case *codec.OpenVoteCall:
		id, err := c.OpenVote(ctx, v.Cids, v.Config)
		if err != nil {
			return nil, err
		}
		return codec.EncodeOpenVoteResult(id)
	case *codec.CastVoteCall:
		return nil, c.CastVote(ctx, v.SessionID, v.CandidateIndex)
	case *codec.CloseVoteCall:
		return nil, c.CloseVote(ctx, v.SessionID)
	case *codec.FinalizeMintCall:
		id, err := c.FinalizeMint(ctx, v.SessionID, v.WinnerCid, v.TokenUri)
		if err != nil {
			return nil, err
		}
		return codec.EncodeFinalizeMintResult(id)
	case *codec.SetAdminCall:
		return nil, c.SetAdmin(ctx, v.NewAdmin)
	default:
		return nil, errors.Wrapf(codec.ErrInvalidCallSig, "unhandled coordinator call %T", call)
	}
}

// ExecutionCost prices the operation the calldata describes without running
// it.
func (c *Coordinator) ExecutionCost(calldata []byte) (uint64, error) {
	call, err := codec.DecodeCoordinatorCall(calldata)
	if err != nil {
		return 0, err
	}
	switch v := call.(type) {
	case *codec.OpenVoteCall:
		return _gasOpenVoteBase + _gasOpenVotePerCid*uint64(len(v.Cids)), nil
	case *codec.CastVoteCall:
		return _gasCastVote, nil
	case *codec.CloseVoteCall:
		return _gasCloseVote, nil
	case *codec.FinalizeMintCall:
		return _gasFinalizeMint, nil
	case *codec.SetAdminCall:
		return _gasCoordinatorSetAdmin, nil
	default:
		return 0, errors.Wrapf(codec.ErrInvalidCallSig, "unhandled coordinator call %T", call)
	}
}
