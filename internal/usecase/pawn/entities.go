package pawn

import (
	"time"

	domain "nftpawn-backend/internal/domain/pawn"
)

type InitializeInput struct {
	AdminID    string `json:"admin_id"`
	LoanAmount uint64 `json:"loan_amount"`
}

type DepositInput struct {
	BorrowerID      string `json:"borrower_id"`
	CollateralAsset string `json:"collateral_asset"`
}

type FundInput struct {
	LoanID   string `json:"loan_id"`
	LenderID string `json:"lender_id"`
}

type RepayInput struct {
	LoanID     string `json:"loan_id"`
	BorrowerID string `json:"borrower_id"`
}

type ConfigDTO struct {
	ConfigID   string    `json:"config_id"`
	Admin      string    `json:"admin"`
	LoanAmount uint64    `json:"loan_amount"`
	FeeBps     uint64    `json:"fee_bps"`
	CreatedAt  time.Time `json:"created_at"`
}

type LoanDetailDTO struct {
	DetailID  uint64    `json:"detail_id"`
	Timestamp time.Time `json:"timestamp"`
	Lender    string    `json:"lender"`
	Borrower  string    `json:"borrower"`
	Amount    uint64    `json:"amount"`
	Status    string    `json:"status"`
}

type LoanDTO struct {
	LoanID          string          `json:"loan_id"`
	Borrower        string          `json:"borrower"`
	CollateralAsset string          `json:"collateral_asset"`
	Amount          uint64          `json:"amount"`
	Active          bool            `json:"active"`
	History         []LoanDetailDTO `json:"history"`
	CreatedAt       time.Time       `json:"created_at"`
}

// RepayReceiptDTO reports the settled amounts of a successful repayment.
type RepayReceiptDTO struct {
	LoanID    string `json:"loan_id"`
	Principal uint64 `json:"principal"`
	Fee       uint64 `json:"fee"`
	Total     uint64 `json:"total"`
}

func toDetailDTO(d *domain.LoanDetail) LoanDetailDTO {
	return LoanDetailDTO{
		DetailID:  d.DetailID,
		Timestamp: d.Timestamp,
		Lender:    d.Lender,
		Borrower:  d.Borrower,
		Amount:    d.Amount,
		Status:    string(d.Status),
	}
}

func toLoanDTO(l *domain.Loan) *LoanDTO {
	history := make([]LoanDetailDTO, 0, len(l.History))
	for i := range l.History {
		history = append(history, toDetailDTO(&l.History[i]))
	}
	return &LoanDTO{
		LoanID:          l.LoanID,
		Borrower:        l.Borrower,
		CollateralAsset: l.CollateralAsset,
		Amount:          l.Amount,
		Active:          l.Active,
		History:         history,
		CreatedAt:       l.CreatedAt,
	}
}
