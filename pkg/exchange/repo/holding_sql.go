package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joripage/exchange-engine/pkg/exchange/model"
)

type HoldingSQLRepo struct {
	db *gorm.DB
}

func NewHoldingSQLRepo(db *gorm.DB) *HoldingSQLRepo {
	return &HoldingSQLRepo{
		db: db,
	}
}

func (s *HoldingSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *HoldingSQLRepo) Upsert(ctx context.Context, holding *model.Holding) error {
	return s.dbWithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "trader"}, {Name: "ticker"}},
			UpdateAll: true,
		}).
		Create(&holdingRow{Trader: holding.Trader, Ticker: holding.Ticker, Quantity: holding.Quantity}).Error
}

// Delete mirrors the ledger rule that a depleted holding is removed, never
// stored at zero.
func (s *HoldingSQLRepo) Delete(ctx context.Context, trader, ticker string) error {
	return s.dbWithContext(ctx).
		Where("trader = ? AND ticker = ?", trader, ticker).
		Delete(&holdingRow{}).Error
}
