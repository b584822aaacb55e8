package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joripage/exchange-engine/pkg/exchange/model"
)

type ExecutionSQLRepo struct {
	db *gorm.DB
}

func NewExecutionSQLRepo(db *gorm.DB) *ExecutionSQLRepo {
	return &ExecutionSQLRepo{
		db: db,
	}
}

func (s *ExecutionSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Create inserts one execution; replays of the same event are ignored, the
// audit trail is immutable.
func (s *ExecutionSQLRepo) Create(ctx context.Context, exec *model.Execution) error {
	return s.dbWithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(newExecutionRow(exec)).Error
}

func (s *ExecutionSQLRepo) BulkCreate(ctx context.Context, execs []*model.Execution) error {
	rows := make([]*executionRow, 0, len(execs))
	for _, e := range execs {
		rows = append(rows, newExecutionRow(e))
	}
	return s.dbWithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rows).Error
}
