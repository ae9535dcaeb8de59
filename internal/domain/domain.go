package domain

import (
	"github.com/yungbote/gymflow-backend/internal/domain/membership"
	"github.com/yungbote/gymflow-backend/internal/domain/people"
	"github.com/yungbote/gymflow-backend/internal/domain/scheduling"
)

type User = people.User
type Person = people.Person
type Trainer = people.Trainer

type MembershipPlan = membership.MembershipPlan
type Contract = membership.Contract
type ContractHistory = membership.ContractHistory
type ContractStatus = membership.ContractStatus

type TrainingSession = scheduling.TrainingSession
type SessionStatus = scheduling.SessionStatus

const (
	ContractActive        = membership.ContractActive
	ContractFrozen        = membership.ContractFrozen
	ContractExpired       = membership.ContractExpired
	ContractCancelled     = membership.ContractCancelled
	ContractAboutToExpire = membership.ContractAboutToExpire

	SessionScheduled  = scheduling.SessionScheduled
	SessionInProgress = scheduling.SessionInProgress
	SessionCompleted  = scheduling.SessionCompleted
	SessionCancelled  = scheduling.SessionCancelled
)

var DeriveSessionStatus = scheduling.DeriveSessionStatus

// Models lists every persisted table in migration order.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Person{},
		&Trainer{},
		&MembershipPlan{},
		&Contract{},
		&ContractHistory{},
		&TrainingSession{},
	}
}
