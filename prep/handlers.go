package prep

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/racampos/mintory/codec"
	"github.com/racampos/mintory/coordinator"
	"github.com/racampos/mintory/issuer"
)

// APIResponse is the uniform JSON envelope for every endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Request bodies for the write endpoints.

type OpenVoteRequest struct {
	Cids      []string `json:"cids" binding:"required"`
	Method    string   `json:"method" binding:"required"`
	Gate      string   `json:"gate" binding:"required"`
	DurationS uint64   `json:"duration_s" binding:"required"`
}

type CastVoteRequest struct {
	SessionID      string `json:"session_id" binding:"required"`
	CandidateIndex uint64 `json:"candidate_index"`
}

type CloseVoteRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

type FinalizeMintRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	WinnerCid string `json:"winner_cid" binding:"required"`
	TokenURI  string `json:"token_uri" binding:"required"`
}

type IssueTokenRequest struct {
	To  string `json:"to" binding:"required"`
	URI string `json:"uri" binding:"required"`
}

// preparedTxJSON is the wire shape of a prepared envelope: destination plus
// hex calldata a wallet signs and submits as-is.
type preparedTxJSON struct {
	Destination string  `json:"destination"`
	Calldata    string  `json:"calldata"`
	Value       *string `json:"value,omitempty"`
	GasEstimate uint64  `json:"gas_estimate"`
}

func preparedJSON(tx *PreparedTransaction) preparedTxJSON {
	return preparedTxJSON{
		Destination: tx.To.Hex(),
		Calldata:    hexutil.Encode(tx.Calldata),
		Value:       tx.Value,
		GasEstimate: tx.GasEstimate,
	}
}

// NewRouter builds the gin engine for the service.
func NewRouter(s *Service) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, APIResponse{Success: true})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/prepare/open-vote", s.handlePrepareOpenVote)
		apiV1.POST("/prepare/cast-vote", s.handlePrepareCastVote)
		apiV1.POST("/prepare/close-vote", s.handlePrepareCloseVote)
		apiV1.POST("/prepare/finalize-mint", s.handlePrepareFinalizeMint)
		apiV1.POST("/prepare/issue-token", s.handlePrepareIssueToken)

		apiV1.GET("/sessions", s.handleListSessions)
		apiV1.GET("/sessions/:id", s.handleSessionStatus)
		apiV1.GET("/sessions/:id/voted/:address", s.handleVoterStatus)
		apiV1.GET("/tokens", s.handleTokenSupply)
		apiV1.GET("/tokens/:id", s.handleToken)
		apiV1.GET("/owners/:address/tokens", s.handleTokensOf)
		apiV1.GET("/events", s.handleEvents)
	}

	return router
}

func (s *Service) handlePrepareOpenVote(c *gin.Context) {
	var req OpenVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, "prepare_open_vote", http.StatusBadRequest, err)
		return
	}
	tx, err := s.PrepareOpenVote(req.Cids, req.Method, req.Gate, req.DurationS)
	if err != nil {
		reject(c, "prepare_open_vote", statusFor(err), err)
		return
	}
	accept(c, "prepare_open_vote", preparedJSON(tx))
}

func (s *Service) handlePrepareCastVote(c *gin.Context) {
	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, "prepare_cast_vote", http.StatusBadRequest, err)
		return
	}
	id, err := parseSessionID(req.SessionID)
	if err != nil {
		reject(c, "prepare_cast_vote", http.StatusBadRequest, err)
		return
	}
	tx, err := s.PrepareCastVote(id, req.CandidateIndex)
	if err != nil {
		reject(c, "prepare_cast_vote", statusFor(err), err)
		return
	}
	accept(c, "prepare_cast_vote", preparedJSON(tx))
}

func (s *Service) handlePrepareCloseVote(c *gin.Context) {
	var req CloseVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, "prepare_close_vote", http.StatusBadRequest, err)
		return
	}
	id, err := parseSessionID(req.SessionID)
	if err != nil {
		reject(c, "prepare_close_vote", http.StatusBadRequest, err)
		return
	}
	tx, err := s.PrepareCloseVote(id)
	if err != nil {
		reject(c, "prepare_close_vote", statusFor(err), err)
		return
	}
	accept(c, "prepare_close_vote", preparedJSON(tx))
}

func (s *Service) handlePrepareFinalizeMint(c *gin.Context) {
	var req FinalizeMintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, "prepare_finalize_mint", http.StatusBadRequest, err)
		return
	}
	id, err := parseSessionID(req.SessionID)
	if err != nil {
		reject(c, "prepare_finalize_mint", http.StatusBadRequest, err)
		return
	}
	tx, err := s.PrepareFinalizeMint(id, req.WinnerCid, req.TokenURI)
	if err != nil {
		reject(c, "prepare_finalize_mint", statusFor(err), err)
		return
	}
	accept(c, "prepare_finalize_mint", preparedJSON(tx))
}

func (s *Service) handlePrepareIssueToken(c *gin.Context) {
	var req IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, "prepare_issue_token", http.StatusBadRequest, err)
		return
	}
	to, err := parseAddress(req.To)
	if err != nil {
		reject(c, "prepare_issue_token", http.StatusBadRequest, err)
		return
	}
	tx, err := s.PrepareIssueToken(to, req.URI)
	if err != nil {
		reject(c, "prepare_issue_token", statusFor(err), err)
		return
	}
	accept(c, "prepare_issue_token", preparedJSON(tx))
}

func (s *Service) handleListSessions(c *gin.Context) {
	ids := s.SessionIDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	accept(c, "list_sessions", out)
}

func (s *Service) handleSessionStatus(c *gin.Context) {
	id, err := parseSessionID(c.Param("id"))
	if err != nil {
		reject(c, "session_status", http.StatusBadRequest, err)
		return
	}
	status, err := s.SessionStatus(id)
	if err != nil {
		reject(c, "session_status", statusFor(err), err)
		return
	}
	accept(c, "session_status", sessionJSON(status))
}

func (s *Service) handleVoterStatus(c *gin.Context) {
	id, err := parseSessionID(c.Param("id"))
	if err != nil {
		reject(c, "voter_status", http.StatusBadRequest, err)
		return
	}
	voter, err := parseAddress(c.Param("address"))
	if err != nil {
		reject(c, "voter_status", http.StatusBadRequest, err)
		return
	}
	voted, index, err := s.VoterStatus(id, voter)
	if err != nil {
		reject(c, "voter_status", statusFor(err), err)
		return
	}
	accept(c, "voter_status", gin.H{"voted": voted, "candidate_index": index})
}

func (s *Service) handleTokenSupply(c *gin.Context) {
	accept(c, "token_supply", gin.H{"total_supply": s.TotalSupply()})
}

func (s *Service) handleToken(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		reject(c, "token", http.StatusBadRequest, errors.Wrapf(err, "token id %q", c.Param("id")))
		return
	}
	rec, err := s.Token(id)
	if err != nil {
		reject(c, "token", statusFor(err), err)
		return
	}
	accept(c, "token", gin.H{"id": rec.ID, "owner": rec.Owner.Hex(), "uri": rec.URI})
}

func (s *Service) handleTokensOf(c *gin.Context) {
	owner, err := parseAddress(c.Param("address"))
	if err != nil {
		reject(c, "tokens_of", http.StatusBadRequest, err)
		return
	}
	accept(c, "tokens_of", gin.H{"owner": owner.Hex(), "token_ids": s.TokensOf(owner)})
}

func (s *Service) handleEvents(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			reject(c, "events", http.StatusBadRequest, errors.Errorf("bad limit %q", raw))
			return
		}
		limit = n
	}
	events, err := s.RecentEvents(limit)
	if err != nil {
		reject(c, "events", http.StatusInternalServerError, err)
		return
	}
	accept(c, "events", events)
}

func sessionJSON(status *SessionStatus) gin.H {
	d := status.Detail
	return gin.H{
		"session_id":  d.ID.Hex(),
		"cids":        d.Cids,
		"method":      d.Method.String(),
		"gate":        d.Gate.String(),
		"duration_s":  d.Duration,
		"start_time":  d.StartTime,
		"end_time":    d.EndTime,
		"is_open":     d.IsOpen,
		"expired":     status.Expired,
		"total_votes": d.TotalVotes,
		"counts":      d.Counts,
		"winner_cid":  d.WinnerCid,
		"finalized":   d.Finalized,
	}
}

func accept(c *gin.Context, endpoint string, data interface{}) {
	requestsTotal.WithLabelValues(endpoint, "ok").Inc()
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

func reject(c *gin.Context, endpoint string, status int, err error) {
	requestsTotal.WithLabelValues(endpoint, "error").Inc()
	c.JSON(status, APIResponse{Success: false, Error: err.Error()})
}

func parseSessionID(raw string) (common.Hash, error) {
	b, err := hexutil.Decode(raw)
	if err != nil {
		return common.Hash{}, errors.Wrapf(err, "session id %q", raw)
	}
	if len(b) != common.HashLength {
		return common.Hash{}, errors.Errorf("session id %q: want %d bytes, got %d", raw, common.HashLength, len(b))
	}
	return common.BytesToHash(b), nil
}

func parseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, errors.Errorf("bad address %q", raw)
	}
	return common.HexToAddress(raw), nil
}

// statusFor maps rejection kinds onto HTTP statuses: structural problems are
// the caller's input (400), authorization needs a different identity (403),
// state-machine violations mean stale client state (409), missing entities
// are 404.
func statusFor(err error) int {
	switch {
	case errors.Is(err, coordinator.ErrVoteNotFound),
		errors.Is(err, issuer.ErrTokenNotFound):
		return http.StatusNotFound
	case errors.Is(err, coordinator.ErrUnauthorized),
		errors.Is(err, coordinator.ErrUnauthorizedVoter),
		errors.Is(err, issuer.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, coordinator.ErrVoteAlreadyClosed),
		errors.Is(err, coordinator.ErrVoteNotClosed),
		errors.Is(err, coordinator.ErrVoteExpired),
		errors.Is(err, coordinator.ErrAlreadyFinalized),
		errors.Is(err, coordinator.ErrWinnerMismatch):
		return http.StatusConflict
	case errors.Is(err, coordinator.ErrEmptyCIDs),
		errors.Is(err, coordinator.ErrDuplicateCID),
		errors.Is(err, coordinator.ErrInvalidDuration),
		errors.Is(err, coordinator.ErrInvalidVoteIndex),
		errors.Is(err, coordinator.ErrUnsupportedVoteMethod),
		errors.Is(err, issuer.ErrInvalidLocator),
		errors.Is(err, issuer.ErrBatchMismatch),
		errors.Is(err, codec.ErrUnknownEnum),
		errors.Is(err, codec.ErrInvalidCallData),
		errors.Is(err, codec.ErrInvalidCallSig):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
