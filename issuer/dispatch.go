package issuer

import (
	"github.com/pkg/errors"

	"github.com/racampos/mintory/chain"
	"github.com/racampos/mintory/codec"
)

// Per-operation execution costs used by gas estimation. Rough but stable;
// estimation is advisory, correctness lives in dispatch.
const (
	_gasMint                = 65_000
	_gasBatchMintPerToken   = 50_000
	_gasSetAuthorizedCaller = 8_000
	_gasSetAdmin            = 8_000
)

var _ chain.Contract = (*Issuer)(nil)

// Execute routes calldata to the issuer operation it selects. Unknown
// selectors are rejected before any state is touched.
func (i *Issuer) Execute(ctx *chain.CallContext, calldata []byte) ([]byte, error) {
	call, err := codec.DecodeIssuerCall(calldata)
	if err != nil {
		return nil, err
	}
	switch c := call.(type) {
	case *codec.MintCall:
		id, err := i.Mint(ctx, c.To, c.Uri)
		if err != nil {
			return nil, err
		}
		return codec.EncodeMintResult(id)
	case *codec.BatchMintCall:
		ids, err := i.BatchMint(ctx, c.Recipients, c.Uris)
		if err != nil {
			return nil, err
		}
		return codec.EncodeBatchMintResult(ids)
	case *codec.SetAuthorizedCallerCall:
		return nil, i.SetAuthorizedCaller(ctx, c.NewCaller)
	case *codec.SetAdminCall:
		return nil, i.SetAdmin(ctx, c.NewAdmin)
	default:
		return nil, errors.Wrapf(codec.ErrInvalidCallSig, "unhandled issuer call %T", call)
	}
}

// ExecutionCost prices the operation the calldata describes without running
// it.
func (i *Issuer) ExecutionCost(calldata []byte) (uint64, error) {
	call, err := codec.DecodeIssuerCall(calldata)
	if err != nil {
		return 0, err
	}
	switch c := call.(type) {
	case *codec.MintCall:
		return _gasMint, nil
	case *codec.BatchMintCall:
		return _gasBatchMintPerToken * uint64(max(len(c.Recipients), 1)), nil
	case *codec.SetAuthorizedCallerCall:
		return _gasSetAuthorizedCaller, nil
	case *codec.SetAdminCall:
		return _gasSetAdmin, nil
	default:
		return 0, errors.Wrapf(codec.ErrInvalidCallSig, "unhandled issuer call %T", call)
	}
}
