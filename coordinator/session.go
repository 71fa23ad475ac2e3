package coordinator

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/racampos/mintory/codec"
)

// session is the registry entry for one voting round. Mutated only under the
// coordinator lock. The invariant that totalVotes equals the sum of counts
// holds between every pair of operations.
type session struct {
	id        common.Hash
	cids      []string
	method    codec.VoteMethod
	gate      codec.VoteGate
	duration  uint64
	startTime int64

	isOpen     bool
	totalVotes uint64
	counts     []uint64
	voters     map[common.Address]voterRecord

	winnerCid string
	finalized bool
}

// voterRecord is a voter's single live ballot: which index they last chose.
type voterRecord struct {
	voted bool
	index uint64
}

// endTime is when casting stops being allowed.
func (s *session) endTime() int64 {
	return s.startTime + int64(s.duration)
}

func (s *session) expired(now int64) bool {
	return now > s.endTime()
}

// winnerIndex scans the counters left to right and keeps the first strict
// maximum, so ties resolve to the lowest index. On an all-zero tally that is
// index 0. The method switch stays explicit so a quadratic arm can slot in
// without restructuring the scan.
func (s *session) winnerIndex() uint64 {
	switch s.method {
	case codec.VoteMethodSimple:
		best := uint64(0)
		for idx := 1; idx < len(s.counts); idx++ {
			if s.counts[idx] > s.counts[best] {
				best = uint64(idx)
			}
		}
		return best
	default:
		// Unreachable: openVote rejects any method without a tallying arm.
		return 0
	}
}

// Detail is the read-side projection of a session.
type Detail struct {
	ID         common.Hash
	Cids       []string
	Method     codec.VoteMethod
	Gate       codec.VoteGate
	Duration   uint64
	StartTime  int64
	EndTime    int64
	IsOpen     bool
	TotalVotes uint64
	Counts     []uint64
	WinnerCid  string
	Finalized  bool
}

func (s *session) detail() Detail {
	cids := make([]string, len(s.cids))
	copy(cids, s.cids)
	counts := make([]uint64, len(s.counts))
	copy(counts, s.counts)
	return Detail{
		ID:         s.id,
		Cids:       cids,
		Method:     s.method,
		Gate:       s.gate,
		Duration:   s.duration,
		StartTime:  s.startTime,
		EndTime:    s.endTime(),
		IsOpen:     s.isOpen,
		TotalVotes: s.totalVotes,
		Counts:     counts,
		WinnerCid:  s.winnerCid,
		Finalized:  s.finalized,
	}
}

// deriveSessionID folds the candidate list through keccak-256 and then mixes
// in the block environment and submitter:
//
//	fold = keccak(...keccak(keccak(zero32 ‖ cid0) ‖ cid1)... ‖ cidN)
//	id   = keccak(uint256(blockTime) ‖ randomness ‖ fold ‖ submitter)
//
// The randomness term makes ids unpredictable before the opening call is
// actually executed, so nothing downstream may show an id for an unconfirmed
// open.
func deriveSessionID(blockTime int64, randomness common.Hash, cids []string, submitter common.Address) common.Hash {
	fold := make([]byte, common.HashLength)
	for _, cid := range cids {
		fold = crypto.Keccak256(fold, []byte(cid))
	}
	ts := make([]byte, common.HashLength)
	big.NewInt(blockTime).FillBytes(ts)
	return common.BytesToHash(crypto.Keccak256(ts, randomness.Bytes(), fold, submitter.Bytes()))
}
