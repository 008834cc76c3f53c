package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/techbridge-api/internal/models"
)

// Participation counts a student's forum activity in one course.
type Participation struct {
	Posts   int
	Replies int
}

// ForumRepository reads forum activity.
type ForumRepository interface {
	Participation(ctx context.Context, studentID, courseID uint) (Participation, error)
}

type forumRepository struct {
	db *gorm.DB
}

// NewForumRepository constructs a forum repository.
func NewForumRepository(db *gorm.DB) ForumRepository {
	return &forumRepository{db: db}
}

func (r *forumRepository) Participation(ctx context.Context, studentID, courseID uint) (Participation, error) {
	var posts, replies int64

	if err := r.db.WithContext(ctx).Model(&models.ForumThread{}).
		Where("course_id = ? AND author_id = ?", courseID, studentID).
		Count(&posts).Error; err != nil {
		return Participation{}, err
	}

	if err := r.db.WithContext(ctx).Model(&models.ForumReply{}).
		Joins("JOIN forum_threads ON forum_threads.id = forum_replies.thread_id").
		Where("forum_threads.course_id = ? AND forum_replies.author_id = ?", courseID, studentID).
		Count(&replies).Error; err != nil {
		return Participation{}, err
	}

	return Participation{Posts: int(posts), Replies: int(replies)}, nil
}
