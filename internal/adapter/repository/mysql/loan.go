package mysql

import (
	"context"

	pawnDomain "nftpawn-backend/internal/domain/pawn"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *pawnDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *pawnDomain.Loan) error {
	return r.db.WithContext(ctx).Omit("History").Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*pawnDomain.Loan, error) {
	var out pawnDomain.Loan
	res := r.withHistory(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

// GetByLoanIDForUpdate locks the loan row for the enclosing transaction.
// SQLite (used in tests) serializes writers on its own and rejects FOR
// UPDATE, so the locking clause is applied on MySQL only.
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*pawnDomain.Loan, error) {
	tx := r.withHistory(ctx)
	if r.db.Dialector.Name() == "mysql" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var out pawnDomain.Loan
	res := tx.Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

// AppendDetail persists one funding event and keeps the in-memory history in
// step with the row just written.
func (r *LoanRepository) AppendDetail(ctx context.Context, l *pawnDomain.Loan, d *pawnDomain.LoanDetail) error {
	d.LoanRef = l.ID
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return err
	}
	l.History = append(l.History, *d)
	return nil
}

func (r *LoanRepository) SaveDetail(ctx context.Context, d *pawnDomain.LoanDetail) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *LoanRepository) withHistory(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("History", func(db *gorm.DB) *gorm.DB {
		return db.Order("loan_details.id ASC")
	})
}
