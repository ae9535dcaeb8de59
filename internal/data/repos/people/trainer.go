package people

import (
	"gorm.io/gorm"

	types "github.com/yungbote/gymflow-backend/internal/domain"
	"github.com/yungbote/gymflow-backend/internal/platform/dbctx"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
)

type TrainerRepo interface {
	Create(dbc dbctx.Context, rows []*types.Trainer) ([]*types.Trainer, error)
	GetByUserID(dbc dbctx.Context, userID uint) (*types.Trainer, error)
}

type trainerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrainerRepo(db *gorm.DB, baseLog *logger.Logger) TrainerRepo {
	return &trainerRepo{db: db, log: baseLog.With("repo", "TrainerRepo")}
}

func (r *trainerRepo) Create(dbc dbctx.Context, rows []*types.Trainer) ([]*types.Trainer, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Trainer{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *trainerRepo) GetByUserID(dbc dbctx.Context, userID uint) (*types.Trainer, error) {
	if userID == 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Trainer
	if err := t.WithContext(dbc.Ctx).Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}
