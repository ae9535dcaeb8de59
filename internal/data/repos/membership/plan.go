package membership

import (
	"gorm.io/gorm"

	types "github.com/yungbote/gymflow-backend/internal/domain"
	"github.com/yungbote/gymflow-backend/internal/platform/dbctx"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
)

type MembershipPlanRepo interface {
	Create(dbc dbctx.Context, rows []*types.MembershipPlan) ([]*types.MembershipPlan, error)
	GetByID(dbc dbctx.Context, id uint) (*types.MembershipPlan, error)
	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
}

type membershipPlanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMembershipPlanRepo(db *gorm.DB, baseLog *logger.Logger) MembershipPlanRepo {
	return &membershipPlanRepo{db: db, log: baseLog.With("repo", "MembershipPlanRepo")}
}

func (r *membershipPlanRepo) Create(dbc dbctx.Context, rows []*types.MembershipPlan) ([]*types.MembershipPlan, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.MembershipPlan{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *membershipPlanRepo) GetByID(dbc dbctx.Context, id uint) (*types.MembershipPlan, error) {
	if id == 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.MembershipPlan
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *membershipPlanRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Model(&types.MembershipPlan{}).Where("id = ?", id).Updates(updates).Error
}
