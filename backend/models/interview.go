package models

import "time"

// InterviewRecord links one interviewer to one candidate in an enrollment cycle.
type InterviewRecord struct {
	Base
	EnrollmentID  uint         `gorm:"not null;index" json:"enrollment_id"`
	CandidacyID   uint         `gorm:"not null;index" json:"candidacy_id"`
	InterviewerID uint         `gorm:"not null;index" json:"interviewer_id"`
	IntervieweeID uint         `gorm:"not null;index" json:"interviewee_id"`
	Score         int          `gorm:"default:0" json:"score"`
	Review        string       `json:"review"`
	ScoredAt      *time.Time   `json:"scored_at,omitempty"`
	Interviewer   *UserProfile `gorm:"foreignKey:InterviewerID" json:"interviewer,omitempty"`
	Interviewee   *UserProfile `gorm:"foreignKey:IntervieweeID" json:"interviewee,omitempty"`
}

func (InterviewRecord) TableName() string { return "interview_records" }
