package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/gymflow-backend/internal/data/repos/membership"
	"github.com/yungbote/gymflow-backend/internal/data/repos/people"
	"github.com/yungbote/gymflow-backend/internal/data/repos/scheduling"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
)

type UserRepo = people.UserRepo
type PersonRepo = people.PersonRepo
type TrainerRepo = people.TrainerRepo

type MembershipPlanRepo = membership.MembershipPlanRepo
type ContractRepo = membership.ContractRepo
type ContractHistoryRepo = membership.ContractHistoryRepo
type ContractFilter = membership.ContractFilter

type TrainingSessionRepo = scheduling.TrainingSessionRepo
type ConflictQuery = scheduling.ConflictQuery
type SessionFilter = scheduling.SessionFilter

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return people.NewUserRepo(db, baseLog)
}
func NewPersonRepo(db *gorm.DB, baseLog *logger.Logger) PersonRepo {
	return people.NewPersonRepo(db, baseLog)
}
func NewTrainerRepo(db *gorm.DB, baseLog *logger.Logger) TrainerRepo {
	return people.NewTrainerRepo(db, baseLog)
}

func NewMembershipPlanRepo(db *gorm.DB, baseLog *logger.Logger) MembershipPlanRepo {
	return membership.NewMembershipPlanRepo(db, baseLog)
}
func NewContractRepo(db *gorm.DB, baseLog *logger.Logger) ContractRepo {
	return membership.NewContractRepo(db, baseLog)
}
func NewContractHistoryRepo(db *gorm.DB, baseLog *logger.Logger) ContractHistoryRepo {
	return membership.NewContractHistoryRepo(db, baseLog)
}

func NewTrainingSessionRepo(db *gorm.DB, baseLog *logger.Logger) TrainingSessionRepo {
	return scheduling.NewTrainingSessionRepo(db, baseLog)
}
