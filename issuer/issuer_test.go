package issuer_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racampos/mintory/chain"
	"github.com/racampos/mintory/issuer"
)

var (
	issuerAddr = common.HexToAddress("0x00000000000000000000000000000000C0000002")
	adminAddr  = common.HexToAddress("0x00000000000000000000000000000000000A0001")
	minterAddr = common.HexToAddress("0x00000000000000000000000000000000C0000001")
	aliceAddr  = common.HexToAddress("0x00000000000000000000000000000000000B0001")
	bobAddr    = common.HexToAddress("0x00000000000000000000000000000000000B0002")
)

func callAs(caller common.Address) *chain.CallContext {
	return chain.NewCallContext(caller, 1000, common.Hash{})
}

// newConfigured builds an issuer with the authorized caller already pointed at
// minterAddr, the way main wires it at boot.
func newConfigured(t *testing.T) *issuer.Issuer {
	t.Helper()
	iss := issuer.New(issuerAddr, adminAddr)
	require.NoError(t, iss.SetAuthorizedCaller(callAs(adminAddr), minterAddr))
	return iss
}

// TestMintHappyPath checks ids start at one, increase by one per mint, and the
// ledger records owner and uri so we dont break the read side again.
func TestMintHappyPath(t *testing.T) {
	iss := newConfigured(t)
	ctx := callAs(minterAddr)

	id, err := iss.Mint(ctx, aliceAddr, "ipfs://art-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	id, err = iss.Mint(ctx, bobAddr, "ipfs://art-2")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id)

	assert.Equal(t, uint64(2), iss.TotalSupply())

	owner, err := iss.OwnerOf(1)
	require.NoError(t, err)
	assert.Equal(t, aliceAddr, owner)

	rec, err := iss.Token(2)
	require.NoError(t, err)
	assert.Equal(t, issuer.TokenRecord{ID: 2, Owner: bobAddr, URI: "ipfs://art-2"}, rec)

	// Minting is not idempotent: same args again is a new token.
	id, err = iss.Mint(ctx, aliceAddr, "ipfs://art-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), id)
	assert.Equal(t, []uint64{1, 3}, iss.TokensOf(aliceAddr))
	assert.Equal(t, uint64(2), iss.BalanceOf(aliceAddr))
}

// TestMintAuthority checks only the configured caller can mint and a rejected
// attempt leaves the counter where it was.
func TestMintAuthority(t *testing.T) {
	iss := issuer.New(issuerAddr, adminAddr)

	// Unset authorized caller: nobody mints, not even the admin.
	_, err := iss.Mint(callAs(adminAddr), aliceAddr, "ipfs://x")
	assert.ErrorIs(t, err, issuer.ErrUnauthorized)

	require.NoError(t, iss.SetAuthorizedCaller(callAs(adminAddr), minterAddr))

	_, err = iss.Mint(callAs(aliceAddr), aliceAddr, "ipfs://x")
	assert.ErrorIs(t, err, issuer.ErrUnauthorized)
	_, err = iss.Mint(callAs(adminAddr), aliceAddr, "ipfs://x")
	assert.ErrorIs(t, err, issuer.ErrUnauthorized, "admin role does not imply mint authority")
	assert.Equal(t, uint64(0), iss.TotalSupply())

	id, err := iss.Mint(callAs(minterAddr), aliceAddr, "ipfs://x")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id, "failed attempts must not burn ids")
}

// TestLocatorValidation checks the uri sanity check.
func TestLocatorValidation(t *testing.T) {
	iss := newConfigured(t)
	ctx := callAs(minterAddr)

	_, err := iss.Mint(ctx, aliceAddr, "")
	assert.ErrorIs(t, err, issuer.ErrInvalidLocator)
	_, err = iss.Mint(ctx, aliceAddr, "https://example.com/art")
	assert.ErrorIs(t, err, issuer.ErrInvalidLocator)
	_, err = iss.Mint(ctx, aliceAddr, "ipfs://ok")
	assert.NoError(t, err)
}

// TestBatchMintAtomicity checks a bad entry anywhere in the batch means no
// token is minted at all.
func TestBatchMintAtomicity(t *testing.T) {
	iss := newConfigured(t)
	ctx := callAs(minterAddr)

	_, err := iss.BatchMint(ctx, []common.Address{aliceAddr, bobAddr}, []string{"ipfs://1", "not-a-cid"})
	assert.ErrorIs(t, err, issuer.ErrInvalidLocator)
	assert.Equal(t, uint64(0), iss.TotalSupply())

	_, err = iss.BatchMint(ctx, []common.Address{aliceAddr}, []string{"ipfs://1", "ipfs://2"})
	assert.ErrorIs(t, err, issuer.ErrBatchMismatch)
	_, err = iss.BatchMint(ctx, nil, nil)
	assert.ErrorIs(t, err, issuer.ErrBatchMismatch)

	ids, err := iss.BatchMint(ctx, []common.Address{aliceAddr, bobAddr}, []string{"ipfs://1", "ipfs://2"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids)
	assert.Equal(t, uint64(2), iss.TotalSupply())
}

// TestSetAuthorizedCaller checks the admin gate and the change event.
func TestSetAuthorizedCaller(t *testing.T) {
	iss := issuer.New(issuerAddr, adminAddr)

	err := iss.SetAuthorizedCaller(callAs(aliceAddr), minterAddr)
	assert.ErrorIs(t, err, issuer.ErrUnauthorized)

	ctx := callAs(adminAddr)
	require.NoError(t, iss.SetAuthorizedCaller(ctx, minterAddr))
	assert.Equal(t, minterAddr, iss.AuthorizedCaller())

	events := ctx.Events()
	require.Len(t, events, 1)
	assert.Equal(t, chain.EventAuthorizedCallerChanged, events[0].Name)
	assert.Equal(t, common.Address{}.Hex(), events[0].Attrs["old"])
	assert.Equal(t, minterAddr.Hex(), events[0].Attrs["new"])

	// Re-pointing, including to the same value, is allowed.
	require.NoError(t, iss.SetAuthorizedCaller(callAs(adminAddr), minterAddr))
}

// TestSetAdmin checks the admin handoff actually moves the role.
func TestSetAdmin(t *testing.T) {
	iss := issuer.New(issuerAddr, adminAddr)

	err := iss.SetAdmin(callAs(bobAddr), bobAddr)
	assert.ErrorIs(t, err, issuer.ErrUnauthorized)

	require.NoError(t, iss.SetAdmin(callAs(adminAddr), bobAddr))
	assert.ErrorIs(t, iss.SetAuthorizedCaller(callAs(adminAddr), minterAddr), issuer.ErrUnauthorized,
		"old admin must lose the role")
	require.NoError(t, iss.SetAuthorizedCaller(callAs(bobAddr), minterAddr))
}

// TestReads checks the lookup surface around a small ledger.
func TestReads(t *testing.T) {
	iss := newConfigured(t)
	ctx := callAs(minterAddr)
	_, err := iss.Mint(ctx, aliceAddr, "ipfs://only")
	require.NoError(t, err)

	assert.True(t, iss.Exists(1))
	assert.False(t, iss.Exists(2))

	_, err = iss.OwnerOf(9)
	assert.ErrorIs(t, err, issuer.ErrTokenNotFound)
	_, err = iss.Token(9)
	assert.ErrorIs(t, err, issuer.ErrTokenNotFound)

	assert.Empty(t, iss.TokensOf(bobAddr))
	assert.Equal(t, uint64(0), iss.BalanceOf(bobAddr))
}

// TestMintEvent checks the minted event payload.
func TestMintEvent(t *testing.T) {
	iss := newConfigured(t)
	ctx := callAs(minterAddr)
	_, err := iss.Mint(ctx, aliceAddr, "ipfs://art")
	require.NoError(t, err)

	events := ctx.Events()
	require.Len(t, events, 1)
	assert.Equal(t, chain.EventTokenMinted, events[0].Name)
	assert.Equal(t, "1", events[0].Attrs["token_id"])
	assert.Equal(t, aliceAddr.Hex(), events[0].Attrs["to"])
	assert.Equal(t, "ipfs://art", events[0].Attrs["uri"])
}
