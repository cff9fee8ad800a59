package mysql

import (
	"context"

	pawnDomain "nftpawn-backend/internal/domain/pawn"

	"gorm.io/gorm"
)

type EscrowRepository struct{ db *gorm.DB }

func NewEscrowRepository(db *gorm.DB) *EscrowRepository { return &EscrowRepository{db: db} }

func (r *EscrowRepository) Create(ctx context.Context, e *pawnDomain.EscrowAuthority) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EscrowRepository) GetByLoanID(ctx context.Context, loanID string) (*pawnDomain.EscrowAuthority, error) {
	var out pawnDomain.EscrowAuthority
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}
