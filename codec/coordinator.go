package codec

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Errors shared by both contract codecs.
var (
	ErrInvalidCallData = errors.New("invalid call binary data")
	ErrInvalidCallSig  = errors.New("invalid call sig")
)

// Typed forms of the coordinator's mutating calls. Encoding one of these and
// decoding the calldata back must reproduce it exactly.

type OpenVoteCall struct {
	Cids   []string
	Config VoteConfig
}

type CastVoteCall struct {
	SessionID      common.Hash
	CandidateIndex uint64
}

type CloseVoteCall struct {
	SessionID common.Hash
}

type FinalizeMintCall struct {
	SessionID common.Hash
	WinnerCid string
	TokenUri  string
}

type SetAdminCall struct {
	NewAdmin common.Address
}

// EncodeOpenVote packs the open-vote call: selector plus cids and the config
// tuple in its fixed wire order.
func EncodeOpenVote(cids []string, cfg VoteConfig) ([]byte, error) {
	return _coordinatorABI.Pack("openVote", cids, cfg.wire())
}

// EncodeCastVote packs the cast-vote call for one session and candidate index.
func EncodeCastVote(sessionID common.Hash, candidateIndex uint64) ([]byte, error) {
	return _coordinatorABI.Pack("castVote", [32]byte(sessionID), new(big.Int).SetUint64(candidateIndex))
}

// EncodeCloseVote packs the close-vote call.
func EncodeCloseVote(sessionID common.Hash) ([]byte, error) {
	return _coordinatorABI.Pack("closeVote", [32]byte(sessionID))
}

// EncodeFinalizeMint packs the finalize-mint call. The winner cid rides along
// so the coordinator can reject stale client state.
func EncodeFinalizeMint(sessionID common.Hash, winnerCid, tokenUri string) ([]byte, error) {
	return _coordinatorABI.Pack("finalizeMint", [32]byte(sessionID), winnerCid, tokenUri)
}

// EncodeCoordinatorSetAdmin packs the admin reconfiguration call.
func EncodeCoordinatorSetAdmin(newAdmin common.Address) ([]byte, error) {
	return _coordinatorABI.Pack("setAdmin", newAdmin)
}

// DecodeCoordinatorCall matches the selector and unpacks the arguments into
// the typed call form. Unknown selectors and malformed argument data are
// rejected, never guessed at.
func DecodeCoordinatorCall(calldata []byte) (interface{}, error) {
	method, args, err := splitCall(_coordinatorABI, calldata)
	if err != nil {
		return nil, err
	}
	vals, err := method.Inputs.Unpack(args)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidCallData, "method %s: %v", method.Name, err)
	}
	switch method.Name {
	case "openVote":
		cids, ok := vals[0].([]string)
		if !ok {
			return nil, errors.Wrap(ErrInvalidCallData, "openVote cids")
		}
		wire := *abi.ConvertType(vals[1], new(voteConfigWire)).(*voteConfigWire)
		cfg, err := wire.config()
		if err != nil {
			return nil, errors.Wrap(ErrInvalidCallData, err.Error())
		}
		return &OpenVoteCall{Cids: cids, Config: cfg}, nil
	case "castVote":
		id, ok := vals[0].([32]byte)
		if !ok {
			return nil, errors.Wrap(ErrInvalidCallData, "castVote sessionId")
		}
		index, ok := vals[1].(*big.Int)
		if !ok || !index.IsUint64() {
			return nil, errors.Wrap(ErrInvalidCallData, "castVote candidateIndex")
		}
		return &CastVoteCall{SessionID: common.Hash(id), CandidateIndex: index.Uint64()}, nil
	case "closeVote":
		id, ok := vals[0].([32]byte)
		if !ok {
			return nil, errors.Wrap(ErrInvalidCallData, "closeVote sessionId")
		}
		return &CloseVoteCall{SessionID: common.Hash(id)}, nil
	case "finalizeMint":
		id, ok := vals[0].([32]byte)
		if !ok {
			return nil, errors.Wrap(ErrInvalidCallData, "finalizeMint sessionId")
		}
		winner, ok := vals[1].(string)
		if !ok {
			return nil, errors.Wrap(ErrInvalidCallData, "finalizeMint winnerCid")
		}
		uri, ok := vals[2].(string)
		if !ok {
			return nil, errors.Wrap(ErrInvalidCallData, "finalizeMint tokenUri")
		}
		return &FinalizeMintCall{SessionID: common.Hash(id), WinnerCid: winner, TokenUri: uri}, nil
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

// EncodeOpenVoteResult packs the session id return value.
func EncodeOpenVoteResult(sessionID common.Hash) ([]byte, error) {
	return _openVoteMethod.Outputs.Pack([32]byte(sessionID))
}

// DecodeOpenVoteResult unpacks the session id returned by openVote.
func DecodeOpenVoteResult(data []byte) (common.Hash, error) {
	vals, err := _openVoteMethod.Outputs.Unpack(data)
	if err != nil {
		return common.Hash{}, errors.Wrap(ErrInvalidCallData, err.Error())
	}
	id, ok := vals[0].([32]byte)
	if !ok {
		return common.Hash{}, errors.Wrap(ErrInvalidCallData, "openVote result")
	}
	return common.Hash(id), nil
}

// EncodeFinalizeMintResult packs the minted token id return value.
func EncodeFinalizeMintResult(tokenID uint64) ([]byte, error) {
	return _finalizeMintMethod.Outputs.Pack(new(big.Int).SetUint64(tokenID))
}

// DecodeFinalizeMintResult unpacks the token id returned by finalizeMint.
func DecodeFinalizeMintResult(data []byte) (uint64, error) {
	vals, err := _finalizeMintMethod.Outputs.Unpack(data)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidCallData, err.Error())
	}
	id, ok := vals[0].(*big.Int)
	if !ok || !id.IsUint64() {
		return 0, errors.Wrap(ErrInvalidCallData, "finalizeMint result")
	}
	return id.Uint64(), nil
}

// splitCall validates the selector against the ABI and returns the matched
// method plus the argument bytes.
func splitCall(parsed abi.ABI, calldata []byte) (*abi.Method, []byte, error) {
	if len(calldata) < 4 {
		return nil, nil, errors.Wrapf(ErrInvalidCallData, "calldata length %d", len(calldata))
	}
	method, err := parsed.MethodById(calldata[:4])
	if err != nil {
		return nil, nil, errors.Wrapf(ErrInvalidCallSig, "selector %x", calldata[:4])
	}
	return method, calldata[4:], nil
}
