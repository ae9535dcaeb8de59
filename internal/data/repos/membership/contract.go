package membership

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/gymflow-backend/internal/domain"
	domainmembership "github.com/yungbote/gymflow-backend/internal/domain/membership"
	"github.com/yungbote/gymflow-backend/internal/platform/dbctx"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
)

// ContractFilter narrows list/count queries. Zero values are ignored.
type ContractFilter struct {
	PersonID uint
	Statuses []string
}

type ContractRepo interface {
	Create(dbc dbctx.Context, row *types.Contract) error

	GetByID(dbc dbctx.Context, id uint) (*types.Contract, error)
	LockByID(dbc dbctx.Context, id uint) (*types.Contract, error)
	// GetJoinedByID preloads person, plan, creator, updater and history (newest first).
	GetJoinedByID(dbc dbctx.Context, id uint) (*types.Contract, error)

	FindOpenByPersonID(dbc dbctx.Context, personID uint) (*types.Contract, error)
	HasBookableContract(dbc dbctx.Context, personID uint) (bool, error)

	// LastCode returns the highest issued code ordered by length then value.
	LastCode(dbc dbctx.Context) (string, error)
	MaxID(dbc dbctx.Context) (uint, error)

	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error

	List(dbc dbctx.Context, f ContractFilter, limit, offset int) ([]*types.Contract, error)
	Count(dbc dbctx.Context, f ContractFilter) (int64, error)
	// ListEndingOnOrBefore returns contracts in statuses whose end date is <= day.
	ListEndingOnOrBefore(dbc dbctx.Context, statuses []string, day time.Time) ([]*types.Contract, error)
}

type contractRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContractRepo(db *gorm.DB, baseLog *logger.Logger) ContractRepo {
	return &contractRepo{db: db, log: baseLog.With("repo", "ContractRepo")}
}

func (r *contractRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *contractRepo) Create(dbc dbctx.Context, row *types.Contract) error {
	if row == nil {
		return nil
	}
	return r.tx(dbc).Omit(clause.Associations).Create(row).Error
}

func (r *contractRepo) GetByID(dbc dbctx.Context, id uint) (*types.Contract, error) {
	return r.first(r.tx(dbc), id)
}

func (r *contractRepo) LockByID(dbc dbctx.Context, id uint) (*types.Contract, error) {
	return r.first(r.tx(dbc).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *contractRepo) GetJoinedByID(dbc dbctx.Context, id uint) (*types.Contract, error) {
	q := r.tx(dbc).
		Preload("Person").
		Preload("Plan").
		Preload("Creator").
		Preload("Updater").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at DESC, id DESC")
		}).
		Preload("History.Actor")
	row, err := r.first(q, id)
	if err != nil || row == nil {
		return row, err
	}
	fillActorNames(row.History)
	return row, nil
}

func (r *contractRepo) first(q *gorm.DB, id uint) (*types.Contract, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.Contract
	if err := q.Where("contract.id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *contractRepo) FindOpenByPersonID(dbc dbctx.Context, personID uint) (*types.Contract, error) {
	var row types.Contract
	err := r.tx(dbc).
		Where("person_id = ? AND status IN ?", personID, domainmembership.OpenContractStatuses).
		Order("id DESC").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *contractRepo) HasBookableContract(dbc dbctx.Context, personID uint) (bool, error) {
	var n int64
	err := r.tx(dbc).
		Model(&types.Contract{}).
		Where("person_id = ? AND status IN ?", personID, domainmembership.BookableContractStatuses).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *contractRepo) LastCode(dbc dbctx.Context) (string, error) {
	var codes []string
	err := r.tx(dbc).
		Model(&types.Contract{}).
		Order("LENGTH(code) DESC").
		Order("code DESC").
		Limit(1).
		Pluck("code", &codes).Error
	if err != nil {
		return "", err
	}
	if len(codes) == 0 {
		return "", nil
	}
	return codes[0], nil
}

func (r *contractRepo) MaxID(dbc dbctx.Context) (uint, error) {
	var ids []uint
	if err := r.tx(dbc).Model(&types.Contract{}).Order("id DESC").Limit(1).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[0], nil
}

func (r *contractRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.tx(dbc).Model(&types.Contract{}).Where("id = ?", id).Updates(updates).Error
}

func (r *contractRepo) filtered(dbc dbctx.Context, f ContractFilter) *gorm.DB {
	q := r.tx(dbc).Model(&types.Contract{})
	if f.PersonID != 0 {
		q = q.Where("person_id = ?", f.PersonID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	return q
}

func (r *contractRepo) List(dbc dbctx.Context, f ContractFilter, limit, offset int) ([]*types.Contract, error) {
	var out []*types.Contract
	q := r.filtered(dbc, f).
		Preload("Person").
		Preload("Plan").
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contractRepo) Count(dbc dbctx.Context, f ContractFilter) (int64, error) {
	var n int64
	if err := r.filtered(dbc, f).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *contractRepo) ListEndingOnOrBefore(dbc dbctx.Context, statuses []string, day time.Time) ([]*types.Contract, error) {
	var out []*types.Contract
	if len(statuses) == 0 {
		return out, nil
	}
	err := r.tx(dbc).
		Where("status IN ? AND end_date <= ?", statuses, datatypes.Date(day)).
		Order("end_date ASC").
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func fillActorNames(rows []types.ContractHistory) {
	for i := range rows {
		if rows[i].Actor != nil {
			rows[i].ActorName = rows[i].Actor.FullName()
		}
	}
}
