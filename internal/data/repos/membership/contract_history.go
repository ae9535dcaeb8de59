package membership

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/gymflow-backend/internal/domain"
	"github.com/yungbote/gymflow-backend/internal/platform/dbctx"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
)

// ContractHistoryRepo is append-only: there is no update or delete.
type ContractHistoryRepo interface {
	Create(dbc dbctx.Context, rows []*types.ContractHistory) ([]*types.ContractHistory, error)
	ListByContractIDDesc(dbc dbctx.Context, contractID uint) ([]*types.ContractHistory, error)
	CountByContractID(dbc dbctx.Context, contractID uint) (int64, error)
}

type contractHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContractHistoryRepo(db *gorm.DB, baseLog *logger.Logger) ContractHistoryRepo {
	return &contractHistoryRepo{db: db, log: baseLog.With("repo", "ContractHistoryRepo")}
}

func (r *contractHistoryRepo) Create(dbc dbctx.Context, rows []*types.ContractHistory) ([]*types.ContractHistory, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.ContractHistory{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Omit(clause.Associations).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *contractHistoryRepo) ListByContractIDDesc(dbc dbctx.Context, contractID uint) ([]*types.ContractHistory, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ContractHistory
	if contractID == 0 {
		return out, nil
	}
	err := t.WithContext(dbc.Ctx).
		Preload("Actor").
		Where("contract_id = ?", contractID).
		Order("changed_at DESC").
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	for _, row := range out {
		if row.Actor != nil {
			row.ActorName = row.Actor.FullName()
		}
	}
	return out, nil
}

func (r *contractHistoryRepo) CountByContractID(dbc dbctx.Context, contractID uint) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(dbc.Ctx).
		Model(&types.ContractHistory{}).
		Where("contract_id = ?", contractID).
		Count(&n).Error
	return n, err
}
