package models

import "time"

// EnrollmentCycle is one admissions round. It owns courses, activities and candidacies.
type EnrollmentCycle struct {
	Base
	Name        string     `gorm:"not null" json:"name"`
	Description string     `json:"description"`
	PictureURL  string     `json:"picture_url"`
	OpenStatus  bool       `gorm:"not null" json:"open_status"`
	EndAt       *time.Time `json:"end_at,omitempty"`
}

func (EnrollmentCycle) TableName() string { return "enrollment_cycles" }

// AcceptsRegistrations is false once the cycle is closed by flag or by its close timestamp.
func (e EnrollmentCycle) AcceptsRegistrations(now time.Time) bool {
	if !e.OpenStatus {
		return false
	}
	return e.EndAt == nil || now.Before(*e.EndAt)
}

type CandidacyStatus string

const (
	StatusRegistered     CandidacyStatus = "registered"
	StatusUnderInterview CandidacyStatus = "under_interview"
	StatusAccepted       CandidacyStatus = "accepted"
	StatusObserver       CandidacyStatus = "observer"
	StatusRefused        CandidacyStatus = "refused"
)

// StatusNone is reported for enrollments the user has not acted on. It is never stored.
const StatusNone CandidacyStatus = "none"

var CandidacyStatuses = []CandidacyStatus{
	StatusRegistered,
	StatusUnderInterview,
	StatusAccepted,
	StatusObserver,
	StatusRefused,
}

func (s CandidacyStatus) Valid() bool {
	for _, known := range CandidacyStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s CandidacyStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusObserver || s == StatusRefused
}

// Candidacy is one user's participation status in one enrollment cycle.
type Candidacy struct {
	Base
	UserID       uint             `gorm:"not null;index" json:"user_id"`
	EnrollmentID uint             `gorm:"not null;index" json:"enrollment_id"`
	Status       CandidacyStatus  `gorm:"size:20;not null;index" json:"status"`
	User         *UserProfile     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Enrollment   *EnrollmentCycle `gorm:"foreignKey:EnrollmentID" json:"enrollment,omitempty"`
}

func (Candidacy) TableName() string { return "candidacies" }
