package models

import (
	"github.com/civicsolver/civicsolver_backend/config"
)

func MigrateTable() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&Problem{},
		&ProblemVote{},
		&ProblemStatusHistory{},
		&ProblemEventRecord{},
		&User{},
	)
}
