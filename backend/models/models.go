package models

import "gorm.io/gorm"

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&UserProfile{},
		&EnrollmentCycle{},
		&Candidacy{},
		&InterviewRecord{},
		&Course{},
		&Section{},
		&Lesson{},
		&Activity{},
		&ActivitySignup{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
