package models

import "time"

const DefaultActivityLimit = 100

type Activity struct {
	Base
	EnrollmentID uint      `gorm:"not null;index" json:"enrollment_id"`
	Name         string    `gorm:"not null" json:"name"`
	Description  string    `json:"description"`
	PictureURL   string    `json:"picture_url"`
	Limit        int       `gorm:"column:signup_limit;not null" json:"limit"`
	EndAt        time.Time `gorm:"not null" json:"end_at"`
	PeopleCount  int64     `gorm:"-" json:"peopleCount"`
}

// ActivitySignup counts toward the activity limit only while Attending is true.
type ActivitySignup struct {
	Base
	UserID     uint         `gorm:"not null;uniqueIndex:idx_signup_user_activity" json:"user_id"`
	ActivityID uint         `gorm:"not null;uniqueIndex:idx_signup_user_activity;index" json:"activity_id"`
	Attending  bool         `gorm:"not null" json:"attending"`
	User       *UserProfile `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
