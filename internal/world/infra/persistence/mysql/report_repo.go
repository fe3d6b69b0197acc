package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Dominion/internal/world/app/port"
	"Dominion/internal/world/entity"
	"Dominion/internal/world/infra/persistence/model"
	"Dominion/modules/kit/errx"
)

type ReportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) *ReportRepo {
	return &ReportRepo{
		db: db,
	}
}

// Migrate 建表，启动时显式调用。
func (r *ReportRepo) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&model.BattleReport{})
}

// SaveReports 批量写入，主键冲突时忽略，重放同一批是幂等的。
func (r *ReportRepo) SaveReports(ctx context.Context, reports []entity.BattleReport) error {
	if len(reports) == 0 {
		return nil
	}
	rows := make([]model.BattleReport, len(reports))
	for i, rep := range reports {
		rows[i] = model.ReportToRow(rep)
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, 200).Error
	if err != nil {
		//  纯技术错误，交给上层重排
		return errx.ErrUnavailable.WithData("reports", len(rows)).WithCause(err)
	}
	return nil
}

func (r *ReportRepo) ListReports(ctx context.Context, worldID entity.WorldID, kingdom entity.KingdomID, limit int) ([]entity.BattleReport, error) {
	q := r.db.WithContext(ctx).Where("world_id = ?", string(worldID))
	if kingdom != "" {
		q = q.Where("attacker = ? OR defender = ?", string(kingdom), string(kingdom))
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []model.BattleReport
	if err := q.Order("at DESC").Find(&rows).Error; err != nil {
		return nil, errx.ErrUnavailable.WithData("world_id", worldID).WithCause(err)
	}
	out := make([]entity.BattleReport, len(rows))
	for i, row := range rows {
		out[i] = model.RowToReport(row)
	}
	return out, nil
}

var _ port.ReportRepository = (*ReportRepo)(nil)
