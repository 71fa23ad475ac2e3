// Package issuer holds the restricted token minter: a monotonically
// increasing id counter, the token ledger, and a single authorized-caller
// pointer that the drop coordinator occupies.
package issuer

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/racampos/mintory/chain"
)

// LocatorPrefix is the content-addressing scheme every token locator must
// carry. A cheap sanity check, not full CID validation.
const LocatorPrefix = "ipfs://"

// TokenRecord is one minted token. Immutable once created; there is no burn
// or re-issuance path.
type TokenRecord struct {
	ID    uint64
	Owner common.Address
	URI   string
}

// Issuer owns the token ledger. One exclusive lock serializes every mutation,
// reproducing the ledger's single-writer dispatch.
type Issuer struct {
	mu sync.Mutex

	self       common.Address
	admin      common.Address
	authorized common.Address

	nextID  uint64
	tokens  map[uint64]*TokenRecord
	byOwner map[common.Address][]uint64
}

// New builds an issuer administered by admin. The authorized caller starts
// unset; configure it before expecting mints to pass.
func New(self, admin common.Address) *Issuer {
	return &Issuer{
		self:    self,
		admin:   admin,
		nextID:  1,
		tokens:  make(map[uint64]*TokenRecord),
		byOwner: make(map[common.Address][]uint64),
	}
}

// Address returns where this contract lives on the chain.
func (i *Issuer) Address() common.Address {
	return i.self
}

// SetAuthorizedCaller replaces the single authorized caller. Admin only;
// overwriting with the same value is allowed.
func (i *Issuer) SetAuthorizedCaller(ctx *chain.CallContext, newCaller common.Address) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if ctx.Caller != i.admin {
		return errors.Wrapf(ErrUnauthorized, "caller %s is not the admin", ctx.Caller.Hex())
	}
	old := i.authorized
	i.authorized = newCaller
	emitAuthorizedCallerChanged(ctx, old, newCaller)
	return nil
}

// SetAdmin hands the administrator role to a new address. Admin only.
func (i *Issuer) SetAdmin(ctx *chain.CallContext, newAdmin common.Address) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if ctx.Caller != i.admin {
		return errors.Wrapf(ErrUnauthorized, "caller %s is not the admin", ctx.Caller.Hex())
	}
	i.admin = newAdmin
	return nil
}

// Mint allocates the next id for the recipient. Only the configured
// authorized caller may mint. Deliberately not idempotent: the same arguments
// twice mint two distinct tokens; duplicate-mint protection for a drop lives
// in the coordinator's finalized flag, not here.
func (i *Issuer) Mint(ctx *chain.CallContext, to common.Address, uri string) (uint64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkMintAuthority(ctx.Caller); err != nil {
		return 0, err
	}
	if err := validateLocator(uri); err != nil {
		return 0, err
	}
	return i.mintLocked(ctx, to, uri), nil
}

// BatchMint mints one token per recipient/uri pair. All validation runs
// before the first allocation so a bad entry leaves the ledger untouched.
func (i *Issuer) BatchMint(ctx *chain.CallContext, recipients []common.Address, uris []string) ([]uint64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkMintAuthority(ctx.Caller); err != nil {
		return nil, err
	}
	if len(recipients) == 0 || len(uris) == 0 {
		return nil, errors.Wrap(ErrBatchMismatch, "empty batch")
	}
	if len(recipients) != len(uris) {
		return nil, errors.Wrapf(ErrBatchMismatch, "%d recipients, %d uris", len(recipients), len(uris))
	}
	for _, uri := range uris {
		if err := validateLocator(uri); err != nil {
			return nil, err
		}
	}
	ids := make([]uint64, len(recipients))
	for n, to := range recipients {
		ids[n] = i.mintLocked(ctx, to, uris[n])
	}
	return ids, nil
}

// mintLocked performs the actual allocation. Caller holds the lock and has
// already validated everything.
func (i *Issuer) mintLocked(ctx *chain.CallContext, to common.Address, uri string) uint64 {
	id := i.nextID
	i.nextID++
	i.tokens[id] = &TokenRecord{ID: id, Owner: to, URI: uri}
	i.byOwner[to] = append(i.byOwner[to], id)
	emitTokenMinted(ctx, id, to, uri)
	return id
}

func (i *Issuer) checkMintAuthority(caller common.Address) error {
	if i.authorized == (common.Address{}) || caller != i.authorized {
		return errors.Wrapf(ErrUnauthorized, "caller %s is not the authorized minter", caller.Hex())
	}
	return nil
}

func validateLocator(uri string) error {
	if uri == "" {
		return errors.Wrap(ErrInvalidLocator, "empty uri")
	}
	if !strings.HasPrefix(uri, LocatorPrefix) {
		return errors.Wrapf(ErrInvalidLocator, "uri %q lacks %s prefix", uri, LocatorPrefix)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

// TotalSupply is how many tokens exist.
func (i *Issuer) TotalSupply() uint64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.nextID - 1
}

// OwnerOf looks up a token's owner.
func (i *Issuer) OwnerOf(id uint64) (common.Address, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	rec, ok := i.tokens[id]
	if !ok {
		return common.Address{}, errors.Wrapf(ErrTokenNotFound, "id %d", id)
	}
	return rec.Owner, nil
}

// Token returns the full record for an id.
func (i *Issuer) Token(id uint64) (TokenRecord, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	rec, ok := i.tokens[id]
	if !ok {
		return TokenRecord{}, errors.Wrapf(ErrTokenNotFound, "id %d", id)
	}
	return *rec, nil
}

// Exists reports whether an id has been minted.
func (i *Issuer) Exists(id uint64) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, ok := i.tokens[id]
	return ok
}

// TokensOf enumerates the ids an address owns, via the owner index rather
// than a scan of the id space.
func (i *Issuer) TokensOf(owner common.Address) []uint64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	ids := i.byOwner[owner]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

// BalanceOf counts the tokens an address owns. The coordinator leans on this
// for token-gated sessions.
func (i *Issuer) BalanceOf(owner common.Address) uint64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return uint64(len(i.byOwner[owner]))
}

// AuthorizedCaller reports the currently configured minter.
func (i *Issuer) AuthorizedCaller() common.Address {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.authorized
}
