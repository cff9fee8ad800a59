package ledgermock

import (
	"context"

	"nftpawn-backend/internal/domain/ledger"

	"gorm.io/gorm"
)

// Function-backed mocks for the transfer collaborators. Unfilled transfer
// functions succeed, so state-machine tests only wire the failures they
// exercise.

var _ ledger.TokenService = (*TokenService)(nil)

type TokenService struct {
	TransferFn   func(ctx context.Context, asset, from, to string) error
	MintFn       func(ctx context.Context, asset, owner string) error
	GetHoldingFn func(ctx context.Context, asset string) (*ledger.TokenHolding, error)
}

func (m *TokenService) Transfer(ctx context.Context, asset, from, to string) error {
	if m.TransferFn != nil {
		return m.TransferFn(ctx, asset, from, to)
	}
	return nil
}

func (m *TokenService) Mint(ctx context.Context, asset, owner string) error {
	if m.MintFn != nil {
		return m.MintFn(ctx, asset, owner)
	}
	return nil
}

func (m *TokenService) GetHolding(ctx context.Context, asset string) (*ledger.TokenHolding, error) {
	if m.GetHoldingFn != nil {
		return m.GetHoldingFn(ctx, asset)
	}
	return nil, gorm.ErrRecordNotFound
}

var _ ledger.CurrencyService = (*CurrencyService)(nil)

type CurrencyService struct {
	TransferFn   func(ctx context.Context, from, to string, amount uint64) error
	MintFn       func(ctx context.Context, address string, amount uint64) error
	GetAccountFn func(ctx context.Context, address string) (*ledger.Account, error)
}

func (m *CurrencyService) Transfer(ctx context.Context, from, to string, amount uint64) error {
	if m.TransferFn != nil {
		return m.TransferFn(ctx, from, to, amount)
	}
	return nil
}

func (m *CurrencyService) Mint(ctx context.Context, address string, amount uint64) error {
	if m.MintFn != nil {
		return m.MintFn(ctx, address, amount)
	}
	return nil
}

func (m *CurrencyService) GetAccount(ctx context.Context, address string) (*ledger.Account, error) {
	if m.GetAccountFn != nil {
		return m.GetAccountFn(ctx, address)
	}
	return nil, gorm.ErrRecordNotFound
}
