package codec

import (
	"math/big"

	"github.com/pkg/errors"
)

// ErrUnknownEnum flags an enum string or wire tag outside the declared variant
// set. Mapping must fail loudly, never default.
var ErrUnknownEnum = errors.New("unknown enum variant")

// VoteMethod selects the tallying rule for a session.
type VoteMethod uint8

const (
	// VoteMethodSimple counts one unit per ballot.
	VoteMethodSimple VoteMethod = 0
	// VoteMethodQuadratic is declared for wire compatibility but has no
	// tallying arm yet; opening a session with it is rejected.
	VoteMethodQuadratic VoteMethod = 1
)

// String prints the method as the short lowercase code used in events and logs.
func (m VoteMethod) String() string {
	switch m {
	case VoteMethodSimple:
		return "simple"
	case VoteMethodQuadratic:
		return "quadratic"
	default:
		return "unknown"
	}
}

// ParseVoteMethod maps the client-facing string form back to the wire tag.
func ParseVoteMethod(s string) (VoteMethod, error) {
	switch s {
	case "simple":
		return VoteMethodSimple, nil
	case "quadratic":
		return VoteMethodQuadratic, nil
	default:
		return 0, errors.Wrapf(ErrUnknownEnum, "vote method %q", s)
	}
}

// VoteGate is the access-control mode for casting.
type VoteGate uint8

const (
	// VoteGateOpen lets any address cast.
	VoteGateOpen VoteGate = 0
	// VoteGateTokenGated requires the voter to hold at least one unit of the
	// gating token.
	VoteGateTokenGated VoteGate = 1
)

// String prints the gate as the short lowercase code used in events and logs.
func (g VoteGate) String() string {
	switch g {
	case VoteGateOpen:
		return "open"
	case VoteGateTokenGated:
		return "token_gated"
	default:
		return "unknown"
	}
}

// ParseVoteGate maps the client-facing string form back to the wire tag.
func ParseVoteGate(s string) (VoteGate, error) {
	switch s {
	case "open":
		return VoteGateOpen, nil
	case "token_gated":
		return VoteGateTokenGated, nil
	default:
		return 0, errors.Wrapf(ErrUnknownEnum, "vote gate %q", s)
	}
}

// VoteConfig is the session configuration tuple. Wire order is fixed:
// method, gate, duration, startTime, isOpen. StartTime and IsOpen are carried
// for compatibility with the legacy wire format; the coordinator ignores the
// supplied values and forces its own at open time.
type VoteConfig struct {
	Method    VoteMethod
	Gate      VoteGate
	Duration  uint64
	StartTime int64
	IsOpen    bool
}

// voteConfigWire mirrors the ABI tuple field for field so the generic packer
// can reflect over it. Duration and startTime ride as uint256 on the wire.
type voteConfigWire struct {
	Method    uint8
	Gate      uint8
	Duration  *big.Int
	StartTime *big.Int
	IsOpen    bool
}

func (c VoteConfig) wire() voteConfigWire {
	return voteConfigWire{
		Method:    uint8(c.Method),
		Gate:      uint8(c.Gate),
		Duration:  new(big.Int).SetUint64(c.Duration),
		StartTime: big.NewInt(c.StartTime),
		IsOpen:    c.IsOpen,
	}
}

func (w voteConfigWire) config() (VoteConfig, error) {
	if !w.Duration.IsUint64() {
		return VoteConfig{}, errors.Errorf("duration %s overflows uint64", w.Duration)
	}
	if !w.StartTime.IsInt64() {
		return VoteConfig{}, errors.Errorf("startTime %s overflows int64", w.StartTime)
	}
	return VoteConfig{
		Method:    VoteMethod(w.Method),
		Gate:      VoteGate(w.Gate),
		Duration:  w.Duration.Uint64(),
		StartTime: w.StartTime.Int64(),
		IsOpen:    w.IsOpen,
	}, nil
}
