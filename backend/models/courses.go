package models

type Course struct {
	Base
	EnrollmentID uint      `gorm:"not null;index" json:"enrollment_id"`
	Name         string    `gorm:"not null" json:"name"`
	Description  string    `json:"description"`
	Sections     []Section `json:"sections,omitempty"`
}

type Section struct {
	Base
	CourseID uint     `gorm:"not null;index" json:"course_id"`
	Name     string   `gorm:"not null" json:"name"`
	Lessons  []Lesson `json:"lessons,omitempty"`
}

// Lesson is sequenced inside its section by Order, never by creation time.
type Lesson struct {
	Base
	SectionID   uint   `gorm:"not null;index" json:"section_id"`
	Order       int    `gorm:"column:sort_order;not null;default:0" json:"order"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Teacher     string `json:"teacher"`
	Card        string `json:"card"`
	Slides      string `json:"slides"`
	Videos      string `json:"videos"`
	Notes       string `json:"notes"`
}

// LessonOrder is the ordering clause for lessons: by order, then by creation.
const LessonOrder = "sort_order ASC, id ASC"
