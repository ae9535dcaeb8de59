package people

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/gymflow-backend/internal/domain"
	"github.com/yungbote/gymflow-backend/internal/platform/dbctx"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
)

type PersonRepo interface {
	Create(dbc dbctx.Context, rows []*types.Person) ([]*types.Person, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Person, error)
	// GetWithUserByID preloads the linked user account, used for notification recipients.
	GetWithUserByID(dbc dbctx.Context, id uint) (*types.Person, error)
	// LockByID takes a row lock scoping per-person uniqueness checks.
	LockByID(dbc dbctx.Context, id uint) (*types.Person, error)
}

type personRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPersonRepo(db *gorm.DB, baseLog *logger.Logger) PersonRepo {
	return &personRepo{db: db, log: baseLog.With("repo", "PersonRepo")}
}

func (r *personRepo) Create(dbc dbctx.Context, rows []*types.Person) ([]*types.Person, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Person{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *personRepo) GetByID(dbc dbctx.Context, id uint) (*types.Person, error) {
	return r.getByID(dbc, id, false, false)
}

func (r *personRepo) GetWithUserByID(dbc dbctx.Context, id uint) (*types.Person, error) {
	return r.getByID(dbc, id, true, false)
}

func (r *personRepo) LockByID(dbc dbctx.Context, id uint) (*types.Person, error) {
	return r.getByID(dbc, id, false, true)
}

func (r *personRepo) getByID(dbc dbctx.Context, id uint, withUser, lock bool) (*types.Person, error) {
	if id == 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if withUser {
		q = q.Preload("User")
	}
	var row types.Person
	if err := q.Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}
