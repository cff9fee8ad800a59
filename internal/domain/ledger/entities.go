package ledger

import (
	"errors"
	"time"
)

var (
	ErrAssetNotFound     = errors.New("asset not found")
	ErrNotAssetOwner     = errors.New("sender does not hold the asset")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBalanceOverflow   = errors.New("balance overflow")
)

// TokenHolding records custody of a non-fungible asset. One row per asset;
// transfers rewrite the owner.
type TokenHolding struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	Asset     string    `gorm:"size:32;column:asset;uniqueIndex:ux_token_holdings_asset" json:"asset"`
	Owner     string    `gorm:"size:32;column:owner;index:idx_token_holdings_owner" json:"owner"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (TokenHolding) TableName() string { return "token_holdings" }

// Account is a fungible-currency balance in base units.
type Account struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	Address   string    `gorm:"size:32;column:address;uniqueIndex:ux_accounts_address" json:"address"`
	Balance   uint64    `gorm:"column:balance" json:"balance"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (Account) TableName() string { return "accounts" }
