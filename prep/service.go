// Package prep is the stateless transaction-preparation service: it turns
// logical intents into unsigned call envelopes a wallet can sign, and answers
// status queries from the contracts' read operations and the event log. It
// never sees key material.
package prep

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/racampos/mintory/chain"
	"github.com/racampos/mintory/codec"
	"github.com/racampos/mintory/coordinator"
	"github.com/racampos/mintory/issuer"
)

// DefaultGasLimit is the conservative fallback when cost simulation fails.
// Estimation is advisory; a failed simulation must not fail the request.
const DefaultGasLimit = 500_000

// PreparedTransaction is the unsigned envelope handed to an external signer.
// Purely transient; nothing here is persisted.
type PreparedTransaction struct {
	To          common.Address `json:"destination"`
	Calldata    []byte         `json:"-"`
	Value       *string        `json:"value,omitempty"`
	GasEstimate uint64         `json:"gas_estimate"`
}

// GasEstimator simulates the cost of exact calldata against the ledger.
type GasEstimator interface {
	EstimateGas(to common.Address, calldata []byte) (uint64, error)
}

// SessionReader mirrors the coordinator's read operations.
type SessionReader interface {
	Session(id common.Hash) (coordinator.Detail, error)
	Sessions() []common.Hash
	HasVoted(id common.Hash, voter common.Address) (bool, uint64, error)
}

// TokenReader mirrors the issuer's read operations.
type TokenReader interface {
	TotalSupply() uint64
	Token(id uint64) (issuer.TokenRecord, error)
	TokensOf(owner common.Address) []uint64
}

// EventReader replays the durable event log.
type EventReader interface {
	ForEach(fn func(chain.Event) error) error
}

// Addresses is the deployed-component configuration the service works
// against. External configuration, not owned here.
type Addresses struct {
	Coordinator common.Address
	Issuer      common.Address
}

// Service builds prepared transactions and serves read-throughs. Stateless
// beyond its read-only wiring, so every request can run in parallel.
type Service struct {
	addrs    Addresses
	est      GasEstimator
	sessions SessionReader
	tokens   TokenReader
	events   EventReader
	now      func() int64
	log      *zap.Logger
}

// ServiceOption tweaks service construction.
type ServiceOption func(*Service)

// WithClock aligns the service's notion of "now" with the ledger clock so
// expiry reporting matches what dispatch would decide.
func WithClock(now func() int64) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService wires the preparation service.
func NewService(addrs Addresses, est GasEstimator, sessions SessionReader, tokens TokenReader, events EventReader, log *zap.Logger, opts ...ServiceOption) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		addrs:    addrs,
		est:      est,
		sessions: sessions,
		tokens:   tokens,
		events:   events,
		now:      func() int64 { return time.Now().Unix() },
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PrepareOpenVote encodes an open-vote call. Method and gate arrive as the
// client-facing strings and are mapped exhaustively; an unknown string fails
// the request instead of silently defaulting. StartTime and isOpen ride as
// zero values the coordinator overwrites, matching the legacy wire format.
func (s *Service) PrepareOpenVote(cids []string, method, gate string, durationSecs uint64) (*PreparedTransaction, error) {
	m, err := codec.ParseVoteMethod(method)
	if err != nil {
		return nil, err
	}
	g, err := codec.ParseVoteGate(gate)
	if err != nil {
		return nil, err
	}
	calldata, err := codec.EncodeOpenVote(cids, codec.VoteConfig{
		Method:   m,
		Gate:     g,
		Duration: durationSecs,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode openVote")
	}
	return s.envelope(s.addrs.Coordinator, calldata), nil
}

// PrepareCastVote encodes a cast-vote call.
func (s *Service) PrepareCastVote(sessionID common.Hash, index uint64) (*PreparedTransaction, error) {
	calldata, err := codec.EncodeCastVote(sessionID, index)
	if err != nil {
		return nil, errors.Wrap(err, "encode castVote")
	}
	return s.envelope(s.addrs.Coordinator, calldata), nil
}

// PrepareCloseVote encodes a close-vote call.
func (s *Service) PrepareCloseVote(sessionID common.Hash) (*PreparedTransaction, error) {
	calldata, err := codec.EncodeCloseVote(sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "encode closeVote")
	}
	return s.envelope(s.addrs.Coordinator, calldata), nil
}

// PrepareFinalizeMint encodes a finalize-mint call.
func (s *Service) PrepareFinalizeMint(sessionID common.Hash, winnerCid, tokenURI string) (*PreparedTransaction, error) {
	calldata, err := codec.EncodeFinalizeMint(sessionID, winnerCid, tokenURI)
	if err != nil {
		return nil, errors.Wrap(err, "encode finalizeMint")
	}
	return s.envelope(s.addrs.Coordinator, calldata), nil
}

// PrepareIssueToken encodes a direct issuer mint call.
func (s *Service) PrepareIssueToken(to common.Address, uri string) (*PreparedTransaction, error) {
	calldata, err := codec.EncodeMint(to, uri)
	if err != nil {
		return nil, errors.Wrap(err, "encode mint")
	}
	return s.envelope(s.addrs.Issuer, calldata), nil
}

// EstimateCost re-runs the cost simulation for an already prepared envelope.
func (s *Service) EstimateCost(tx *PreparedTransaction) uint64 {
	return s.estimate(tx.To, tx.Calldata)
}

// envelope wraps calldata with its destination and advisory gas estimate.
func (s *Service) envelope(to common.Address, calldata []byte) *PreparedTransaction {
	return &PreparedTransaction{
		To:          to,
		Calldata:    calldata,
		GasEstimate: s.estimate(to, calldata),
	}
}

// estimate degrades to the conservative default on any simulation failure.
func (s *Service) estimate(to common.Address, calldata []byte) uint64 {
	gas, err := s.est.EstimateGas(to, calldata)
	if err != nil {
		s.log.Warn("gas estimation failed, using fallback",
			zap.String("to", to.Hex()),
			zap.Error(err))
		estimateFallbacks.Inc()
		return DefaultGasLimit
	}
	return gas
}

// -----------------------------------------------------------------------------
// Read-throughs
// -----------------------------------------------------------------------------

// SessionStatus is the session detail plus the convenience flags UIs poll
// for.
type SessionStatus struct {
	Detail  coordinator.Detail
	Expired bool
}

// SessionStatus answers the "open? tallies? end time?" poll without the
// caller talking to the ledger directly.
func (s *Service) SessionStatus(id common.Hash) (*SessionStatus, error) {
	detail, err := s.sessions.Session(id)
	if err != nil {
		return nil, err
	}
	return &SessionStatus{
		Detail:  detail,
		Expired: s.now() > detail.EndTime,
	}, nil
}

// SessionIDs lists every session ever opened.
func (s *Service) SessionIDs() []common.Hash {
	return s.sessions.Sessions()
}

// VoterStatus reports whether an address holds a live ballot in a session.
func (s *Service) VoterStatus(id common.Hash, voter common.Address) (bool, uint64, error) {
	return s.sessions.HasVoted(id, voter)
}

// Token looks up one minted token.
func (s *Service) Token(id uint64) (issuer.TokenRecord, error) {
	return s.tokens.Token(id)
}

// TotalSupply reports how many tokens exist.
func (s *Service) TotalSupply() uint64 {
	return s.tokens.TotalSupply()
}

// TokensOf enumerates an owner's token ids.
func (s *Service) TokensOf(owner common.Address) []uint64 {
	return s.tokens.TokensOf(owner)
}

// RecentEvents replays up to limit events from the tail of the log. The log
// is the only durable record, so this is what status feeds derive from.
func (s *Service) RecentEvents(limit int) ([]chain.Event, error) {
	var all []chain.Event
	if err := s.events.ForEach(func(ev chain.Event) error {
		all = append(all, ev)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "replay events")
	}
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}
