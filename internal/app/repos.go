package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/gymflow-backend/internal/data/repos"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
)

type Repos struct {
	User     repos.UserRepo
	Person   repos.PersonRepo
	Trainer  repos.TrainerRepo
	Plan     repos.MembershipPlanRepo
	Contract repos.ContractRepo
	History  repos.ContractHistoryRepo
	Session  repos.TrainingSessionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:     repos.NewUserRepo(db, log),
		Person:   repos.NewPersonRepo(db, log),
		Trainer:  repos.NewTrainerRepo(db, log),
		Plan:     repos.NewMembershipPlanRepo(db, log),
		Contract: repos.NewContractRepo(db, log),
		History:  repos.NewContractHistoryRepo(db, log),
		Session:  repos.NewTrainingSessionRepo(db, log),
	}
}
