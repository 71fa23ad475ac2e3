package coordinator

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/racampos/mintory/chain"
)

// emitVoteOpened carries the full candidate list and config so off-chain
// indexers never need a follow-up read.
func emitVoteOpened(ctx *chain.CallContext, s *session) {
	ctx.Emit(chain.EventVoteOpened, map[string]string{
		"session_id": s.id.Hex(),
		"cids":       strings.Join(s.cids, ","),
		"method":     s.method.String(),
		"gate":       s.gate.String(),
		"duration":   strconv.FormatUint(s.duration, 10),
		"start_time": strconv.FormatInt(s.startTime, 10),
	})
}

func emitVoteCast(ctx *chain.CallContext, id common.Hash, voter common.Address, index uint64) {
	ctx.Emit(chain.EventVoteCast, map[string]string{
		"session_id": id.Hex(),
		"voter":      voter.Hex(),
		"index":      strconv.FormatUint(index, 10),
	})
}

func emitVoteClosed(ctx *chain.CallContext, id common.Hash, winnerCid string) {
	ctx.Emit(chain.EventVoteClosed, map[string]string{
		"session_id": id.Hex(),
		"winner_cid": winnerCid,
	})
}

func emitMintFinalized(ctx *chain.CallContext, id common.Hash, tokenID uint64, tokenURI string) {
	ctx.Emit(chain.EventMintFinalized, map[string]string{
		"session_id": id.Hex(),
		"token_id":   strconv.FormatUint(tokenID, 10),
		"token_uri":  tokenURI,
	})
}
