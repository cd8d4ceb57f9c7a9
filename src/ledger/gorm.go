package ledger

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Gorm stores entries in the interactions table.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// Migrate creates or updates the interactions table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("ledger: migrate: %w", err)
	}
	return nil
}

func (g *Gorm) Record(ctx context.Context, e *Entry) error {
	if err := g.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("ledger: record: %w", err)
	}
	return nil
}

func (g *Gorm) Recent(ctx context.Context, tokenID uint64, limit int) ([]Entry, error) {
	var out []Entry
	err := g.db.WithContext(ctx).
		Where("token_id = ?", tokenID).
		Order("id desc").
		Limit(clampLimit(limit)).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("ledger: recent: %w", err)
	}
	return out, nil
}
