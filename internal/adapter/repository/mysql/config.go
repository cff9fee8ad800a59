package mysql

import (
	"context"

	pawnDomain "nftpawn-backend/internal/domain/pawn"

	"gorm.io/gorm"
)

type ConfigRepository struct{ db *gorm.DB }

func NewConfigRepository(db *gorm.DB) *ConfigRepository { return &ConfigRepository{db: db} }

func (r *ConfigRepository) Create(ctx context.Context, c *pawnDomain.Config) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// Get returns the deployment's singleton config row.
func (r *ConfigRepository) Get(ctx context.Context) (*pawnDomain.Config, error) {
	var out pawnDomain.Config
	res := r.db.WithContext(ctx).Order("id ASC").First(&out)
	return &out, res.Error
}

func (r *ConfigRepository) GetByAdmin(ctx context.Context, admin string) (*pawnDomain.Config, error) {
	var out pawnDomain.Config
	res := r.db.WithContext(ctx).Where("admin = ?", admin).First(&out)
	return &out, res.Error
}
