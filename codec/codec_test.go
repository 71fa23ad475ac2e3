package codec_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racampos/mintory/codec"
)

var (
	testSession = common.HexToHash("0x1122334455667788112233445566778811223344556677881122334455667788")
	testAddr    = common.HexToAddress("0x00000000000000000000000000000000000A0001")
)

// =============================================================================
// Round trips
// =============================================================================

// TestOpenVoteRoundTrip checks the open-vote encode/decode round trip keeps
// every field and enum mapping intact.
func TestOpenVoteRoundTrip(t *testing.T) {
	cfg := codec.VoteConfig{
		Method:    codec.VoteMethodSimple,
		Gate:      codec.VoteGateTokenGated,
		Duration:  3600,
		StartTime: 1_700_000_000,
		IsOpen:    true,
	}
	cids := []string{"ipfs://a", "ipfs://b", "ipfs://c"}

	calldata, err := codec.EncodeOpenVote(cids, cfg)
	require.NoError(t, err)

	decoded, err := codec.DecodeCoordinatorCall(calldata)
	require.NoError(t, err)
	call, ok := decoded.(*codec.OpenVoteCall)
	require.True(t, ok, "expected OpenVoteCall, got %T", decoded)
	assert.Equal(t, cids, call.Cids)
	assert.Equal(t, cfg, call.Config)
}

// TestCastVoteRoundTrip checks the cast-vote round trip.
func TestCastVoteRoundTrip(t *testing.T) {
	calldata, err := codec.EncodeCastVote(testSession, 2)
	require.NoError(t, err)

	decoded, err := codec.DecodeCoordinatorCall(calldata)
	require.NoError(t, err)
	call, ok := decoded.(*codec.CastVoteCall)
	require.True(t, ok)
	assert.Equal(t, testSession, call.SessionID)
	assert.Equal(t, uint64(2), call.CandidateIndex)
}

// TestCloseVoteRoundTrip checks the close-vote round trip.
func TestCloseVoteRoundTrip(t *testing.T) {
	calldata, err := codec.EncodeCloseVote(testSession)
	require.NoError(t, err)

	decoded, err := codec.DecodeCoordinatorCall(calldata)
	require.NoError(t, err)
	call, ok := decoded.(*codec.CloseVoteCall)
	require.True(t, ok)
	assert.Equal(t, testSession, call.SessionID)
}

// TestFinalizeMintRoundTrip checks the finalize-mint round trip.
func TestFinalizeMintRoundTrip(t *testing.T) {
	calldata, err := codec.EncodeFinalizeMint(testSession, "ipfs://winner", "ipfs://meta")
	require.NoError(t, err)

	decoded, err := codec.DecodeCoordinatorCall(calldata)
	require.NoError(t, err)
	call, ok := decoded.(*codec.FinalizeMintCall)
	require.True(t, ok)
	assert.Equal(t, testSession, call.SessionID)
	assert.Equal(t, "ipfs://winner", call.WinnerCid)
	assert.Equal(t, "ipfs://meta", call.TokenUri)
}

// TestIssuerRoundTrips checks mint, batch mint and the reconfiguration calls.
func TestIssuerRoundTrips(t *testing.T) {
	calldata, err := codec.EncodeMint(testAddr, "ipfs://token")
	require.NoError(t, err)
	decoded, err := codec.DecodeIssuerCall(calldata)
	require.NoError(t, err)
	mint, ok := decoded.(*codec.MintCall)
	require.True(t, ok)
	assert.Equal(t, testAddr, mint.To)
	assert.Equal(t, "ipfs://token", mint.Uri)

	other := common.HexToAddress("0x00000000000000000000000000000000000A0002")
	calldata, err = codec.EncodeBatchMint([]common.Address{testAddr, other}, []string{"ipfs://1", "ipfs://2"})
	require.NoError(t, err)
	decoded, err = codec.DecodeIssuerCall(calldata)
	require.NoError(t, err)
	batch, ok := decoded.(*codec.BatchMintCall)
	require.True(t, ok)
	assert.Equal(t, []common.Address{testAddr, other}, batch.Recipients)
	assert.Equal(t, []string{"ipfs://1", "ipfs://2"}, batch.Uris)

	calldata, err = codec.EncodeSetAuthorizedCaller(other)
	require.NoError(t, err)
	decoded, err = codec.DecodeIssuerCall(calldata)
	require.NoError(t, err)
	auth, ok := decoded.(*codec.SetAuthorizedCallerCall)
	require.True(t, ok)
	assert.Equal(t, other, auth.NewCaller)
}

// TestResultRoundTrips checks the return-value encoders used by dispatch.
func TestResultRoundTrips(t *testing.T) {
	data, err := codec.EncodeOpenVoteResult(testSession)
	require.NoError(t, err)
	id, err := codec.DecodeOpenVoteResult(data)
	require.NoError(t, err)
	assert.Equal(t, testSession, id)

	data, err = codec.EncodeFinalizeMintResult(42)
	require.NoError(t, err)
	tokenID, err := codec.DecodeFinalizeMintResult(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), tokenID)

	data, err = codec.EncodeMintResult(7)
	require.NoError(t, err)
	tokenID, err = codec.DecodeMintResult(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), tokenID)
}

// =============================================================================
// Enum mapping
// =============================================================================

// TestEnumParsing checks the string mapping is exhaustive and fails loudly on
// anything outside the declared variant sets.
func TestEnumParsing(t *testing.T) {
	m, err := codec.ParseVoteMethod("simple")
	require.NoError(t, err)
	assert.Equal(t, codec.VoteMethodSimple, m)
	m, err = codec.ParseVoteMethod("quadratic")
	require.NoError(t, err)
	assert.Equal(t, codec.VoteMethodQuadratic, m)

	_, err = codec.ParseVoteMethod("ranked")
	assert.ErrorIs(t, err, codec.ErrUnknownEnum)
	_, err = codec.ParseVoteMethod("")
	assert.ErrorIs(t, err, codec.ErrUnknownEnum)

	g, err := codec.ParseVoteGate("open")
	require.NoError(t, err)
	assert.Equal(t, codec.VoteGateOpen, g)
	g, err = codec.ParseVoteGate("token_gated")
	require.NoError(t, err)
	assert.Equal(t, codec.VoteGateTokenGated, g)

	_, err = codec.ParseVoteGate("allowlist")
	assert.ErrorIs(t, err, codec.ErrUnknownEnum)
}

// TestEnumStrings checks String stays in sync with parsing.
func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "simple", codec.VoteMethodSimple.String())
	assert.Equal(t, "quadratic", codec.VoteMethodQuadratic.String())
	assert.Equal(t, "open", codec.VoteGateOpen.String())
	assert.Equal(t, "token_gated", codec.VoteGateTokenGated.String())
}

// =============================================================================
// Malformed calldata
// =============================================================================

// TestDecodeRejectsGarbage checks short and unknown calldata is rejected
// instead of guessed at.
func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := codec.DecodeCoordinatorCall(nil)
	assert.ErrorIs(t, err, codec.ErrInvalidCallData)

	_, err = codec.DecodeCoordinatorCall([]byte{0x01, 0x02})
	assert.ErrorIs(t, err, codec.ErrInvalidCallData)

	// A valid-length selector nothing in the ABI matches.
	_, err = codec.DecodeCoordinatorCall([]byte{0xde, 0xad, 0xbe, 0xef})
	assert.ErrorIs(t, err, codec.ErrInvalidCallSig)

	// An issuer selector is not a coordinator call.
	mint, err := codec.EncodeMint(testAddr, "ipfs://x")
	require.NoError(t, err)
	_, err = codec.DecodeCoordinatorCall(mint)
	assert.ErrorIs(t, err, codec.ErrInvalidCallSig)

	// Truncated arguments under a valid selector.
	open, err := codec.EncodeOpenVote([]string{"ipfs://a"}, codec.VoteConfig{Method: codec.VoteMethodSimple, Duration: 60})
	require.NoError(t, err)
	_, err = codec.DecodeCoordinatorCall(open[:8])
	assert.ErrorIs(t, err, codec.ErrInvalidCallData)
}
