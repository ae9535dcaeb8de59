package scheduling

import (
	"time"

	"github.com/yungbote/gymflow-backend/internal/domain/people"
)

type SessionStatus string

const (
	SessionScheduled  SessionStatus = "scheduled"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
)

func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

// TrainingSession books a trainer (user) with a client (person) over [StartTime, EndTime).
type TrainingSession struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Description string         `gorm:"column:description" json:"description,omitempty"`
	StartTime   time.Time      `gorm:"column:start_time;not null;index" json:"start_time"`
	EndTime     time.Time      `gorm:"column:end_time;not null;index" json:"end_time"`
	TrainerID   uint           `gorm:"column:trainer_id;not null;index" json:"trainer_id"`
	Trainer     *people.User   `gorm:"foreignKey:TrainerID" json:"trainer,omitempty"`
	ClientID    uint           `gorm:"column:client_id;not null;index" json:"client_id"`
	Client      *people.Person `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Status      string         `gorm:"column:status;not null;index" json:"status"`
	Notes       string         `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (TrainingSession) TableName() string { return "training_session" }

// DeriveSessionStatus projects the display status at now. Terminal stored values win;
// non-terminal ones are recomputed from the interval.
func DeriveSessionStatus(stored SessionStatus, start, end, now time.Time) SessionStatus {
	if stored.Terminal() {
		return stored
	}
	switch {
	case !now.Before(end):
		return SessionCompleted
	case !now.Before(start):
		return SessionInProgress
	default:
		return SessionScheduled
	}
}

// Projected returns a copy carrying the derived status. The receiver is not modified.
func (s TrainingSession) Projected(now time.Time) TrainingSession {
	s.Status = string(DeriveSessionStatus(SessionStatus(s.Status), s.StartTime, s.EndTime, now))
	return s
}

func ProjectAll(rows []*TrainingSession, now time.Time) []*TrainingSession {
	out := make([]*TrainingSession, 0, len(rows))
	for _, r := range rows {
		if r == nil {
			continue
		}
		p := r.Projected(now)
		out = append(out, &p)
	}
	return out
}
