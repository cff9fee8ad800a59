package pawnmock

import (
	"context"

	domain "nftpawn-backend/internal/domain/pawn"

	"gorm.io/gorm"
)

// Function-backed mocks satisfying the pawn repository interfaces. Only fill
// in the fields a test needs; unfilled getters report record-not-found.

var _ domain.ConfigRepository = (*ConfigRepo)(nil)

type ConfigRepo struct {
	CreateFn     func(ctx context.Context, c *domain.Config) error
	GetFn        func(ctx context.Context) (*domain.Config, error)
	GetByAdminFn func(ctx context.Context, admin string) (*domain.Config, error)
}

func (m *ConfigRepo) Create(ctx context.Context, c *domain.Config) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *ConfigRepo) Get(ctx context.Context) (*domain.Config, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *ConfigRepo) GetByAdmin(ctx context.Context, admin string) (*domain.Config, error) {
	if m.GetByAdminFn != nil {
		return m.GetByAdminFn(ctx, admin)
	}
	return nil, gorm.ErrRecordNotFound
}

var _ domain.LoanRepository = (*LoanRepo)(nil)

type LoanRepo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
	AppendDetailFn         func(ctx context.Context, l *domain.Loan, d *domain.LoanDetail) error
	SaveDetailFn           func(ctx context.Context, d *domain.LoanDetail) error
}

func (m *LoanRepo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *LoanRepo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *LoanRepo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *LoanRepo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *LoanRepo) AppendDetail(ctx context.Context, l *domain.Loan, d *domain.LoanDetail) error {
	if m.AppendDetailFn != nil {
		return m.AppendDetailFn(ctx, l, d)
	}
	l.History = append(l.History, *d)
	return nil
}

func (m *LoanRepo) SaveDetail(ctx context.Context, d *domain.LoanDetail) error {
	if m.SaveDetailFn != nil {
		return m.SaveDetailFn(ctx, d)
	}
	return nil
}

var _ domain.EscrowRepository = (*EscrowRepo)(nil)

type EscrowRepo struct {
	CreateFn      func(ctx context.Context, e *domain.EscrowAuthority) error
	GetByLoanIDFn func(ctx context.Context, loanID string) (*domain.EscrowAuthority, error)
}

func (m *EscrowRepo) Create(ctx context.Context, e *domain.EscrowAuthority) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, e)
	}
	return nil
}

func (m *EscrowRepo) GetByLoanID(ctx context.Context, loanID string) (*domain.EscrowAuthority, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, gorm.ErrRecordNotFound
}
