// Package coordinator owns the vote registry and the session lifecycle state
// machine: Created → Open → Closed → Finalized, never backwards. On
// finalization it authorizes a token mint through the issuer capability it was
// configured with.
package coordinator

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/racampos/mintory/chain"
	"github.com/racampos/mintory/codec"
)

// TokenMinter is the one capability the coordinator holds on the issuer. The
// issuer enforces that ctx.Caller is its configured authorized caller; the
// coordinator passes its own address via ctx.SubCall and propagates any
// rejection untouched.
type TokenMinter interface {
	Mint(ctx *chain.CallContext, to common.Address, uri string) (uint64, error)
}

// TokenHolder answers the token-gated cast check.
type TokenHolder interface {
	BalanceOf(owner common.Address) uint64
}

// Coordinator runs the vote lifecycle. One exclusive lock serializes every
// mutation, which also makes the finalized check-then-act atomic with the
// downstream mint call.
type Coordinator struct {
	mu sync.Mutex

	self  common.Address
	admin common.Address

	minter TokenMinter
	gate   TokenHolder

	sessions map[common.Hash]*session
	order    []common.Hash
}

// New builds a coordinator administered by admin, minting through minter and
// gating token-gated sessions on holder balances from gate.
func New(self, admin common.Address, minter TokenMinter, gate TokenHolder) *Coordinator {
	return &Coordinator{
		self:     self,
		admin:    admin,
		minter:   minter,
		gate:     gate,
		sessions: make(map[common.Hash]*session),
	}
}

// Address returns where this contract lives on the chain.
func (c *Coordinator) Address() common.Address {
	return c.self
}

// SetAdmin hands the administrator role to a new address. Admin only.
func (c *Coordinator) SetAdmin(ctx *chain.CallContext, newAdmin common.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Caller != c.admin {
		return errors.Wrapf(ErrUnauthorized, "caller %s is not the admin", ctx.Caller.Hex())
	}
	c.admin = newAdmin
	return nil
}

// OpenVote creates a session over the candidate cids. Admin only. The
// supplied config's startTime and isOpen are ignored and forced server-side,
// preserving the legacy wire shape.
func (c *Coordinator) OpenVote(ctx *chain.CallContext, cids []string, cfg codec.VoteConfig) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Caller != c.admin {
		return common.Hash{}, errors.Wrapf(ErrUnauthorized, "caller %s is not the admin", ctx.Caller.Hex())
	}
	if len(cids) == 0 {
		return common.Hash{}, ErrEmptyCIDs
	}
	// Pairwise scan; candidate sets are small by design, so quadratic cost is
	// fine here.
	for a := 0; a < len(cids); a++ {
		for b := a + 1; b < len(cids); b++ {
			if cids[a] == cids[b] {
				return common.Hash{}, errors.Wrapf(ErrDuplicateCID, "cid %q", cids[a])
			}
		}
	}
	if cfg.Duration == 0 {
		return common.Hash{}, errors.Wrapf(ErrInvalidDuration, "duration %d", cfg.Duration)
	}
	switch cfg.Method {
	case codec.VoteMethodSimple:
	case codec.VoteMethodQuadratic:
		return common.Hash{}, errors.Wrap(ErrUnsupportedVoteMethod, "quadratic tallying is declared but not implemented")
	default:
		return common.Hash{}, errors.Wrapf(ErrUnsupportedVoteMethod, "method %d", cfg.Method)
	}

	id := deriveSessionID(ctx.Time, ctx.Randomness, cids, ctx.Caller)
	stored := make([]string, len(cids))
	copy(stored, cids)
	s := &session{
		id:        id,
		cids:      stored,
		method:    cfg.Method,
		gate:      cfg.Gate,
		duration:  cfg.Duration,
		startTime: ctx.Time,
		isOpen:    true,
		counts:    make([]uint64, len(stored)),
		voters:    make(map[common.Address]voterRecord),
	}
	c.sessions[id] = s
	c.order = append(c.order, id)
	emitVoteOpened(ctx, s)
	return id, nil
}

// CastVote records the caller's ballot. A voter always has exactly one live
// ballot: re-voting moves it, never adds to the tally. Casting on an expired
// session fails with ErrVoteExpired — expiry closure is an explicit CloseVote,
// not a side effect of someone's discarded vote.
func (c *Coordinator) CastVote(ctx *chain.CallContext, sessionID common.Hash, index uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[sessionID]
	if !ok {
		return errors.Wrapf(ErrVoteNotFound, "session %s", sessionID.Hex())
	}
	if !s.isOpen {
		return errors.Wrapf(ErrVoteAlreadyClosed, "session %s", sessionID.Hex())
	}
	if s.expired(ctx.Time) {
		return errors.Wrapf(ErrVoteExpired, "session %s ended at %d", sessionID.Hex(), s.endTime())
	}
	if index >= uint64(len(s.cids)) {
		return errors.Wrapf(ErrInvalidVoteIndex, "index %d, %d candidates", index, len(s.cids))
	}
	if s.gate == codec.VoteGateTokenGated {
		if c.gate == nil || c.gate.BalanceOf(ctx.Caller) == 0 {
			return errors.Wrapf(ErrUnauthorizedVoter, "caller %s holds no gating token", ctx.Caller.Hex())
		}
	}

	// Remove the previous ballot before recording the new one so the
	// totalVotes == sum(counts) invariant holds at every step.
	if prev, voted := s.voters[ctx.Caller]; voted && prev.voted {
		s.counts[prev.index]--
		s.totalVotes--
	}
	s.counts[index]++
	s.totalVotes++
	s.voters[ctx.Caller] = voterRecord{voted: true, index: index}
	emitVoteCast(ctx, sessionID, ctx.Caller, index)
	return nil
}

// CloseVote flips the session closed and fixes the winner. Any caller may
// close — including a maintenance task sweeping expired sessions; the isOpen
// precondition is the idempotency guard. The winner is the leftmost maximum
// of the counters and is set exactly once, here.
func (c *Coordinator) CloseVote(ctx *chain.CallContext, sessionID common.Hash) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[sessionID]
	if !ok {
		return errors.Wrapf(ErrVoteNotFound, "session %s", sessionID.Hex())
	}
	if !s.isOpen {
		return errors.Wrapf(ErrVoteAlreadyClosed, "session %s", sessionID.Hex())
	}
	s.isOpen = false
	s.winnerCid = s.cids[s.winnerIndex()]
	emitVoteClosed(ctx, sessionID, s.winnerCid)
	return nil
}

// FinalizeMint authorizes the one mint for a closed session. Admin only. The
// caller re-states the winner cid as a defense against stale client state.
// The finalized flag and the downstream mint succeed or fail as a unit: if
// the issuer rejects, the flag stays false and the error propagates.
func (c *Coordinator) FinalizeMint(ctx *chain.CallContext, sessionID common.Hash, winnerCid, tokenURI string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Caller != c.admin {
		return 0, errors.Wrapf(ErrUnauthorized, "caller %s is not the admin", ctx.Caller.Hex())
	}
	s, ok := c.sessions[sessionID]
	if !ok {
		return 0, errors.Wrapf(ErrVoteNotFound, "session %s", sessionID.Hex())
	}
	if s.isOpen {
		return 0, errors.Wrapf(ErrVoteNotClosed, "session %s must be closed first", sessionID.Hex())
	}
	if s.finalized {
		return 0, errors.Wrapf(ErrAlreadyFinalized, "session %s", sessionID.Hex())
	}
	if winnerCid != s.winnerCid {
		return 0, errors.Wrapf(ErrWinnerMismatch, "supplied %q, stored %q", winnerCid, s.winnerCid)
	}

	// Cross-component boundary: the mint happens with this contract as the
	// caller. Still under our lock, so two finalize calls cannot race the
	// flag check past each other.
	tokenID, err := c.minter.Mint(ctx.SubCall(c.self), ctx.Caller, tokenURI)
	if err != nil {
		return 0, errors.Wrap(err, "issuer rejected mint")
	}
	s.finalized = true
	emitMintFinalized(ctx, sessionID, tokenID, tokenURI)
	return tokenID, nil
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

// Session returns the full detail for one session.
func (c *Coordinator) Session(sessionID common.Hash) (Detail, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[sessionID]
	if !ok {
		return Detail{}, errors.Wrapf(ErrVoteNotFound, "session %s", sessionID.Hex())
	}
	return s.detail(), nil
}

// Sessions lists every session id ever created, in creation order. The
// registry is append-only; closure and finalization are flags, not removals.
func (c *Coordinator) Sessions() []common.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]common.Hash, len(c.order))
	copy(out, c.order)
	return out
}

// HasVoted reports whether the voter holds a live ballot in the session, and
// for which candidate index.
func (c *Coordinator) HasVoted(sessionID common.Hash, voter common.Address) (bool, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[sessionID]
	if !ok {
		return false, 0, errors.Wrapf(ErrVoteNotFound, "session %s", sessionID.Hex())
	}
	rec, voted := s.voters[voter]
	if !voted || !rec.voted {
		return false, 0, nil
	}
	return true, rec.index, nil
}
