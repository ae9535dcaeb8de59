package scheduling

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/gymflow-backend/internal/domain"
	"github.com/yungbote/gymflow-backend/internal/platform/dbctx"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
)

// ConflictQuery scans non-cancelled sessions overlapping [Start, End).
// With TrainerID and/or ClientID set, a row conflicts when it shares either resource;
// with neither set the scan is by time only.
type ConflictQuery struct {
	Start     time.Time
	End       time.Time
	TrainerID *uint
	ClientID  *uint
	ExcludeID uint
}

// SessionFilter narrows calendar and list queries. Zero values are ignored.
// With Now set, Status matches the derived status instead of the stored column.
type SessionFilter struct {
	TrainerID        uint
	ClientID         uint
	From             *time.Time
	To               *time.Time
	Status           string
	Now              time.Time
	IncludeCancelled bool
}

type TrainingSessionRepo interface {
	Create(dbc dbctx.Context, row *types.TrainingSession) error
	GetByID(dbc dbctx.Context, id uint) (*types.TrainingSession, error)
	GetJoinedByID(dbc dbctx.Context, id uint) (*types.TrainingSession, error)
	LockByID(dbc dbctx.Context, id uint) (*types.TrainingSession, error)
	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error

	FindConflicts(dbc dbctx.Context, q ConflictQuery) ([]*types.TrainingSession, error)

	List(dbc dbctx.Context, f SessionFilter, limit, offset int) ([]*types.TrainingSession, error)
	Count(dbc dbctx.Context, f SessionFilter) (int64, error)
}

type trainingSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrainingSessionRepo(db *gorm.DB, baseLog *logger.Logger) TrainingSessionRepo {
	return &trainingSessionRepo{db: db, log: baseLog.With("repo", "TrainingSessionRepo")}
}

func (r *trainingSessionRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *trainingSessionRepo) Create(dbc dbctx.Context, row *types.TrainingSession) error {
	if row == nil {
		return nil
	}
	return r.tx(dbc).Omit(clause.Associations).Create(row).Error
}

func (r *trainingSessionRepo) GetByID(dbc dbctx.Context, id uint) (*types.TrainingSession, error) {
	return r.first(r.tx(dbc), id)
}

func (r *trainingSessionRepo) GetJoinedByID(dbc dbctx.Context, id uint) (*types.TrainingSession, error) {
	return r.first(r.tx(dbc).Preload("Trainer").Preload("Client"), id)
}

func (r *trainingSessionRepo) LockByID(dbc dbctx.Context, id uint) (*types.TrainingSession, error) {
	return r.first(r.tx(dbc).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *trainingSessionRepo) first(q *gorm.DB, id uint) (*types.TrainingSession, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.TrainingSession
	if err := q.Where("training_session.id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *trainingSessionRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.tx(dbc).Model(&types.TrainingSession{}).Where("id = ?", id).Updates(updates).Error
}

func (r *trainingSessionRepo) FindConflicts(dbc dbctx.Context, cq ConflictQuery) ([]*types.TrainingSession, error) {
	q := r.tx(dbc).
		Where("status <> ?", string(types.SessionCancelled)).
		Where("start_time < ? AND end_time > ?", cq.End.UTC(), cq.Start.UTC())
	switch {
	case cq.TrainerID != nil && cq.ClientID != nil:
		q = q.Where("(trainer_id = ? OR client_id = ?)", *cq.TrainerID, *cq.ClientID)
	case cq.TrainerID != nil:
		q = q.Where("trainer_id = ?", *cq.TrainerID)
	case cq.ClientID != nil:
		q = q.Where("client_id = ?", *cq.ClientID)
	}
	if cq.ExcludeID != 0 {
		q = q.Where("id <> ?", cq.ExcludeID)
	}
	var out []*types.TrainingSession
	if err := q.Order("start_time ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *trainingSessionRepo) filtered(dbc dbctx.Context, f SessionFilter) *gorm.DB {
	q := r.tx(dbc).Model(&types.TrainingSession{})
	if f.TrainerID != 0 {
		q = q.Where("trainer_id = ?", f.TrainerID)
	}
	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.From != nil {
		q = q.Where("start_time >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("start_time < ?", f.To.UTC())
	}
	if f.Status != "" {
		q = whereStatus(q, types.SessionStatus(f.Status), f.Now)
	} else if !f.IncludeCancelled {
		q = q.Where("status <> ?", string(types.SessionCancelled))
	}
	return q
}

func whereStatus(q *gorm.DB, status types.SessionStatus, now time.Time) *gorm.DB {
	if now.IsZero() || status == types.SessionCancelled {
		return q.Where("status = ?", string(status))
	}
	now = now.UTC()
	terminal := []string{string(types.SessionCancelled), string(types.SessionCompleted)}
	switch status {
	case types.SessionCompleted:
		return q.Where("(status = ? OR (status <> ? AND end_time <= ?))",
			string(types.SessionCompleted), string(types.SessionCancelled), now)
	case types.SessionInProgress:
		return q.Where("status NOT IN ? AND start_time <= ? AND end_time > ?", terminal, now, now)
	case types.SessionScheduled:
		return q.Where("status NOT IN ? AND start_time > ?", terminal, now)
	}
	return q.Where("status = ?", string(status))
}

func (r *trainingSessionRepo) List(dbc dbctx.Context, f SessionFilter, limit, offset int) ([]*types.TrainingSession, error) {
	var out []*types.TrainingSession
	q := r.filtered(dbc, f).
		Preload("Trainer").
		Preload("Client").
		Order("start_time ASC").
		Order("id ASC")
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

func (r *trainingSessionRepo) Count(dbc dbctx.Context, f SessionFilter) (int64, error) {
	var n int64
	if err := r.filtered(dbc, f).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
