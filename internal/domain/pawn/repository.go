package pawn

import "context"

type ConfigRepository interface {
	Create(ctx context.Context, c *Config) error
	// Get returns the deployment's singleton config.
	Get(ctx context.Context) (*Config, error)
	GetByAdmin(ctx context.Context, admin string) (*Config, error)
}

type LoanRepository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByLoanIDForUpdate locks the loan row for the enclosing transaction.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	Save(ctx context.Context, l *Loan) error
	AppendDetail(ctx context.Context, l *Loan, d *LoanDetail) error
	SaveDetail(ctx context.Context, d *LoanDetail) error
}

type EscrowRepository interface {
	Create(ctx context.Context, e *EscrowAuthority) error
	GetByLoanID(ctx context.Context, loanID string) (*EscrowAuthority, error)
}
