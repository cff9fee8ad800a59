package mysql

import (
	"context"
	"errors"
	"math"

	ledgerDomain "nftpawn-backend/internal/domain/ledger"

	"gorm.io/gorm"
)

// TokenLedger is the GORM-backed non-fungible custody ledger. A transfer is
// a single guarded owner rewrite, so it is all-or-nothing inside the
// enclosing transaction.
type TokenLedger struct{ db *gorm.DB }

func NewTokenLedger(db *gorm.DB) *TokenLedger { return &TokenLedger{db: db} }

func (r *TokenLedger) Transfer(ctx context.Context, asset, from, to string) error {
	var h ledgerDomain.TokenHolding
	res := r.db.WithContext(ctx).Where("asset = ?", asset).First(&h)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return ledgerDomain.ErrAssetNotFound
		}
		return res.Error
	}
	if h.Owner != from {
		return ledgerDomain.ErrNotAssetOwner
	}
	h.Owner = to
	return r.db.WithContext(ctx).Save(&h).Error
}

func (r *TokenLedger) Mint(ctx context.Context, asset, owner string) error {
	return r.db.WithContext(ctx).Create(&ledgerDomain.TokenHolding{Asset: asset, Owner: owner}).Error
}

func (r *TokenLedger) GetHolding(ctx context.Context, asset string) (*ledgerDomain.TokenHolding, error) {
	var out ledgerDomain.TokenHolding
	res := r.db.WithContext(ctx).Where("asset = ?", asset).First(&out)
	return &out, res.Error
}

// CurrencyLedger is the GORM-backed fungible balance ledger. The sender must
// exist and cover the amount; the receiving account is created on first
// credit.
type CurrencyLedger struct{ db *gorm.DB }

func NewCurrencyLedger(db *gorm.DB) *CurrencyLedger { return &CurrencyLedger{db: db} }

func (r *CurrencyLedger) Transfer(ctx context.Context, from, to string, amount uint64) error {
	var src ledgerDomain.Account
	res := r.db.WithContext(ctx).Where("address = ?", from).First(&src)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return ledgerDomain.ErrInsufficientFunds
		}
		return res.Error
	}
	if src.Balance < amount {
		return ledgerDomain.ErrInsufficientFunds
	}
	src.Balance -= amount
	if err := r.db.WithContext(ctx).Save(&src).Error; err != nil {
		return err
	}
	return r.credit(ctx, to, amount)
}

func (r *CurrencyLedger) Mint(ctx context.Context, address string, amount uint64) error {
	return r.credit(ctx, address, amount)
}

func (r *CurrencyLedger) GetAccount(ctx context.Context, address string) (*ledgerDomain.Account, error) {
	var out ledgerDomain.Account
	res := r.db.WithContext(ctx).Where("address = ?", address).First(&out)
	return &out, res.Error
}

func (r *CurrencyLedger) credit(ctx context.Context, address string, amount uint64) error {
	var dst ledgerDomain.Account
	res := r.db.WithContext(ctx).Where("address = ?", address).First(&dst)
	if res.Error != nil {
		if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return res.Error
		}
		return r.db.WithContext(ctx).Create(&ledgerDomain.Account{Address: address, Balance: amount}).Error
	}
	if dst.Balance > math.MaxUint64-amount {
		return ledgerDomain.ErrBalanceOverflow
	}
	dst.Balance += amount
	return r.db.WithContext(ctx).Save(&dst).Error
}
