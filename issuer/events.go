package issuer

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/racampos/mintory/chain"
)

// emitTokenMinted leaves the durable trace indexers rebuild ownership from.
func emitTokenMinted(ctx *chain.CallContext, id uint64, to common.Address, uri string) {
	ctx.Emit(chain.EventTokenMinted, map[string]string{
		"token_id": strconv.FormatUint(id, 10),
		"to":       to.Hex(),
		"uri":      uri,
	})
}

// emitAuthorizedCallerChanged records both old and new values so auditors can
// track who held mint authority when.
func emitAuthorizedCallerChanged(ctx *chain.CallContext, oldCaller, newCaller common.Address) {
	ctx.Emit(chain.EventAuthorizedCallerChanged, map[string]string{
		"old": oldCaller.Hex(),
		"new": newCaller.Hex(),
	})
}
