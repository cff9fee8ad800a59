package pawn

import (
	"errors"
	"time"
)

// HistoryCapacity bounds the per-loan funding log. The record layout reserves
// room for exactly this many detail entries, so an append beyond it is
// rejected rather than silently truncated.
const HistoryCapacity = 10

// DefaultFeeBps is the flat repayment fee applied to every deployment,
// in basis points (0.30%). Set once at initialization, never overridden
// per loan.
const DefaultFeeBps uint64 = 30

var (
	ErrAlreadyInitialized = errors.New("protocol already initialized")
	ErrNotInitialized     = errors.New("protocol not initialized")
	ErrLoanIsActive       = errors.New("loan is active")
	ErrLoanIsNotActive    = errors.New("loan is not active")
	ErrBorrowerNotFound   = errors.New("borrower not found")
	ErrMathOverflow       = errors.New("math overflow")
	ErrHistoryFull        = errors.New("loan history is full")
	ErrEscrowMismatch     = errors.New("escrow authority not bound to this loan")
)

type LoanStatus string

const (
	StatusActive LoanStatus = "ACTIVE"
	StatusClosed LoanStatus = "CLOSED"
)

// Config holds the deployment-wide protocol parameters. There is exactly one
// row per deployment; every operation reads it, nothing mutates it.
type Config struct {
	ID         uint64    `gorm:"primaryKey;column:id" json:"-"`
	ConfigID   string    `gorm:"size:32;column:config_id;uniqueIndex:ux_configs_config_id" json:"config_id"`
	Admin      string    `gorm:"size:32;column:admin;uniqueIndex:ux_configs_admin" json:"admin"`
	LoanAmount uint64    `gorm:"column:loan_amount" json:"loan_amount"`
	FeeBps     uint64    `gorm:"column:fee_bps" json:"fee_bps"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Config) TableName() string { return "configs" }

// Loan is the per-(borrower, collateral asset) escrow record. LoanID is
// derived deterministically from the pair, so the same pair always maps to
// the same row and a second deposit collides with the first.
type Loan struct {
	ID              uint64       `gorm:"primaryKey;column:id" json:"-"`
	LoanID          string       `gorm:"size:32;column:loan_id;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	Borrower        string       `gorm:"size:32;column:borrower;index:idx_loans_borrower" json:"borrower"`
	CollateralAsset string       `gorm:"size:32;column:collateral_asset" json:"collateral_asset"`
	Amount          uint64       `gorm:"column:amount" json:"amount"`
	Active          bool         `gorm:"column:active" json:"active"`
	History         []LoanDetail `gorm:"foreignKey:LoanRef;references:ID" json:"history"`
	CreatedAt       time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// LastDetail returns the most recently appended history entry, or nil for a
// loan that was never funded.
func (l *Loan) LastDetail() *LoanDetail {
	if len(l.History) == 0 {
		return nil
	}
	return &l.History[len(l.History)-1]
}

// LoanDetail is one funding event. DetailID doubles as the funding timestamp
// (unix seconds), matching the audit-trail layout.
type LoanDetail struct {
	ID        uint64     `gorm:"primaryKey;column:id" json:"-"`
	LoanRef   uint64     `gorm:"column:loan_ref;index:idx_loan_details_loan_ref" json:"-"`
	DetailID  uint64     `gorm:"column:detail_id" json:"detail_id"`
	Timestamp time.Time  `gorm:"column:timestamp" json:"timestamp"`
	Lender    string     `gorm:"size:32;column:lender" json:"lender"`
	Borrower  string     `gorm:"size:32;column:borrower" json:"borrower"`
	Amount    uint64     `gorm:"column:amount" json:"amount"`
	Status    LoanStatus `gorm:"size:8;column:status" json:"status"`
}

func (LoanDetail) TableName() string { return "loan_details" }

// EscrowAuthority is the custody capability that releases collateral at
// repayment. It is bound to exactly one loan for its whole lifetime; the
// binding, not a party-supplied key, is what authorizes the release.
type EscrowAuthority struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	Owner     string    `gorm:"size:32;column:owner" json:"owner"`
	LoanID    string    `gorm:"size:32;column:loan_id;uniqueIndex:ux_escrows_loan_id" json:"loan_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
}

func (EscrowAuthority) TableName() string { return "escrow_authorities" }

// AuthorizeRelease checks that this authority is the one bound to the given
// loan. It is the only gate on moving collateral out of escrow custody.
func (e *EscrowAuthority) AuthorizeRelease(l *Loan) error {
	if e == nil || l == nil || e.LoanID != l.LoanID {
		return ErrEscrowMismatch
	}
	return nil
}
