package codec

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Typed forms of the issuer's mutating calls.

type MintCall struct {
	To  common.Address
	Uri string
}

type BatchMintCall struct {
	Recipients []common.Address
	Uris       []string
}

type SetAuthorizedCallerCall struct {
	NewCaller common.Address
}

// EncodeMint packs the restricted mint call.
func EncodeMint(to common.Address, uri string) ([]byte, error) {
	return _issuerABI.Pack("mint", to, uri)
}

// EncodeBatchMint packs the batch mint call.
func EncodeBatchMint(recipients []common.Address, uris []string) ([]byte, error) {
	return _issuerABI.Pack("batchMint", recipients, uris)
}

// EncodeSetAuthorizedCaller packs the authorized-caller reconfiguration call.
func EncodeSetAuthorizedCaller(newCaller common.Address) ([]byte, error) {
	return _issuerABI.Pack("setAuthorizedCaller", newCaller)
}

// EncodeIssuerSetAdmin packs the admin reconfiguration call.
func EncodeIssuerSetAdmin(newAdmin common.Address) ([]byte, error) {
	return _issuerABI.Pack("setAdmin", newAdmin)
}

// DecodeIssuerCall matches the selector and unpacks the arguments into the
// typed call form, mirroring DecodeCoordinatorCall.
func DecodeIssuerCall(calldata []byte) (interface{}, error) {
	method, args, err := splitCall(_issuerABI, calldata)
	if err != nil {
		return nil, err
	}
	vals, err := method.Inputs.Unpack(args)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidCallData, "method %s: %v", method.Name, err)
	}
	switch method.Name {
	case "mint":
		to, ok := vals[0].(common.Address)
		if !ok {
			return nil, errors.Wrap(ErrInvalidCallData, "mint to")
		}
		uri, ok := vals[1].(string)
		if !ok {
			return nil, errors.Wrap(ErrInvalidCallData, "mint uri")
		}
		return &MintCall{To: to, Uri: uri}, nil
	case "batchMint":
		recipients, ok := vals[0].([]common.Address)
		if !ok {
			return nil, errors.Wrap(ErrInvalidCallData, "batchMint recipients")
		}
		uris, ok := vals[1].([]string)
		if !ok {
			return nil, errors.Wrap(ErrInvalidCallData, "batchMint uris")
		}
		return &BatchMintCall{Recipients: recipients, Uris: uris}, nil
	case "setAuthorizedCaller":
		addr, ok := vals[0].(common.Address)
		if !ok {
			return nil, errors.Wrap(ErrInvalidCallData, "setAuthorizedCaller newCaller")
		}
		return &SetAuthorizedCallerCall{NewCaller: addr}, nil
	case "setAdmin":
		addr, ok := vals[0].(common.Address)
		if !ok {
			return nil, errors.Wrap(ErrInvalidCallData, "setAdmin newAdmin")
		}
		return &SetAdminCall{NewAdmin: addr}, nil
	default:
		return nil, errors.Wrapf(ErrInvalidCallSig, "method %s", method.Name)
	}
}

// EncodeMintResult packs the minted token id return value.
func EncodeMintResult(tokenID uint64) ([]byte, error) {
	return _mintMethod.Outputs.Pack(new(big.Int).SetUint64(tokenID))
}

// DecodeMintResult unpacks the token id returned by mint.
func DecodeMintResult(data []byte) (uint64, error) {
	vals, err := _mintMethod.Outputs.Unpack(data)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidCallData, err.Error())
	}
	id, ok := vals[0].(*big.Int)
	if !ok || !id.IsUint64() {
		return 0, errors.Wrap(ErrInvalidCallData, "mint result")
	}
	return id.Uint64(), nil
}

// EncodeBatchMintResult packs the minted id list return value.
func EncodeBatchMintResult(tokenIDs []uint64) ([]byte, error) {
	out := make([]*big.Int, len(tokenIDs))
	for i, id := range tokenIDs {
		out[i] = new(big.Int).SetUint64(id)
	}
	return _batchMintMethod.Outputs.Pack(out)
}
