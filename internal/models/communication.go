package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is a message delivered to one student, e.g. a graded quiz.
type Notification struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"index;not null" json:"user_id"`
	Type      string            `gorm:"size:64" json:"type"`
	Message   string            `gorm:"type:text" json:"message"`
	Payload   datatypes.JSONMap `gorm:"type:json" json:"payload"`
	Read      bool              `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ForumThread is a course discussion topic.
type ForumThread struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	CourseID  uint         `gorm:"index;not null" json:"course_id"`
	AuthorID  uint         `gorm:"index;not null" json:"author_id"`
	Title     string       `gorm:"size:255;not null" json:"title"`
	Body      string       `gorm:"type:text" json:"body"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Replies   []ForumReply `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE" json:"replies,omitempty"`
}

// ForumReply is a reply within a forum thread.
type ForumReply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ThreadID  uint      `gorm:"index;not null" json:"thread_id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
