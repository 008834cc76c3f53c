package models

import "time"

// Course is owned by course authoring; the grading core only reads it.
type Course struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Category     string    `gorm:"size:64" json:"category"`
	InstructorID uint      `gorm:"index" json:"instructor_id"`
	IsPublished  bool      `gorm:"not null;default:false" json:"is_published"`
	MaxStudents  int       `gorm:"not null;default:0" json:"max_students"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Lessons      []Lesson  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"lessons,omitempty"`
}

// HasCapacity reports whether another student fits. Zero means unlimited.
func (c Course) HasCapacity(enrolled int64) bool {
	return c.MaxStudents <= 0 || enrolled < int64(c.MaxStudents)
}

// Lesson is a unit of course content.
type Lesson struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CourseID        uint      `gorm:"index;not null" json:"course_id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Position        int       `gorm:"not null;default:0" json:"position"`
	DurationMinutes int       `gorm:"not null;default:0" json:"duration_minutes"`
	IsPublished     bool      `gorm:"not null;default:true" json:"is_published"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CourseTotals is the denominator of the progress percentage.
type CourseTotals struct {
	Lessons int `json:"lessons"`
	Quizzes int `json:"quizzes"`
}

// Items returns the number of trackable course items.
func (t CourseTotals) Items() int {
	return max(t.Lessons, 0) + max(t.Quizzes, 0)
}
