package db

import "gorm.io/gorm"

type Repositories struct {
	Users               *UserRepository
	Procedures          *ProcedureRepository
	ScheduledProcedures *ScheduledProcedureRepository
	Challenges          *ChallengeRepository
	Recommendations     *RecommendationRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:               NewUserRepository(database),
		Procedures:          NewProcedureRepository(database),
		ScheduledProcedures: NewScheduledProcedureRepository(database),
		Challenges:          NewChallengeRepository(database),
		Recommendations:     NewRecommendationRepository(database),
	}
}
