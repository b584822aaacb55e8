package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joripage/exchange-engine/pkg/exchange/model"
)

type TraderSQLRepo struct {
	db *gorm.DB
}

func NewTraderSQLRepo(db *gorm.DB) *TraderSQLRepo {
	return &TraderSQLRepo{
		db: db,
	}
}

func (s *TraderSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *TraderSQLRepo) Upsert(ctx context.Context, trader *model.Trader) error {
	return s.dbWithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			UpdateAll: true,
		}).
		Create(&traderRow{Name: trader.Name, Cash: trader.Cash}).Error
}
