package ledger

import "context"

// TokenService moves non-fungible collateral between custody accounts.
// Transfers are all-or-nothing within the caller's transaction; the sender
// must currently hold the asset.
type TokenService interface {
	Transfer(ctx context.Context, asset, from, to string) error
	Mint(ctx context.Context, asset, owner string) error
	GetHolding(ctx context.Context, asset string) (*TokenHolding, error)
}

// CurrencyService moves the native currency between accounts. The debit
// fails with ErrInsufficientFunds rather than going negative; the credit
// auto-creates the destination account.
type CurrencyService interface {
	Transfer(ctx context.Context, from, to string, amount uint64) error
	Mint(ctx context.Context, address string, amount uint64) error
	GetAccount(ctx context.Context, address string) (*Account, error)
}
