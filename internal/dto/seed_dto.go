package dto

import "github.com/noah-isme/techbridge-api/internal/models"

// SeedCatalogueRequest loads authored content for local and demo environments.
type SeedCatalogueRequest struct {
	Courses     []models.Course     `json:"courses" validate:"omitempty,dive"`
	Quizzes     []models.Quiz       `json:"quizzes" validate:"omitempty,dive"`
	Assignments []models.Assignment `json:"assignments" validate:"omitempty,dive"`
	Students    []models.Student    `json:"students" validate:"omitempty,dive"`
}
