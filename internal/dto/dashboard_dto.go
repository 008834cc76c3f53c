package dto

import "time"

// StudentDashboardResponse aggregates course progress for a student.
type StudentDashboardResponse struct {
	Summary            DashboardSummary     `json:"summary"`
	Courses            []EnrollmentResponse `json:"courses"`
	PendingAssignments []AssignmentProgress `json:"pending_assignments"`
	RecentAttempts     []QuizAttemptSummary `json:"recent_attempts"`
}

// DashboardSummary captures aggregated statistics for the dashboard.
type DashboardSummary struct {
	EnrolledCourses    int     `json:"enrolled_courses"`
	CompletedCourses   int     `json:"completed_courses"`
	InProgressCourses  int     `json:"in_progress_courses"`
	CertificatesEarned int     `json:"certificates_earned"`
	AverageProgress    float64 `json:"average_progress"`
	TotalTimeSpent     int     `json:"total_time_spent"`
	Points             int     `json:"points"`
	PendingAssignments int     `json:"pending_assignments"`
	OverdueAssignments int     `json:"overdue_assignments"`
}

// AssignmentProgress describes the state of a single assignment relative to a student.
type AssignmentProgress struct {
	AssignmentID  uint      `json:"assignment_id"`
	CourseID      uint      `json:"course_id"`
	Title         string    `json:"title"`
	DueDate       time.Time `json:"due_date"`
	Status        string    `json:"status"`
	SubmissionID  *uint     `json:"submission_id"`
	AdjustedScore *int      `json:"adjusted_score"`
	Overdue       bool      `json:"overdue"`
}

// QuizAttemptSummary is a compact attempt line for the dashboard.
type QuizAttemptSummary struct {
	QuizID        uint      `json:"quiz_id"`
	AttemptNumber int       `json:"attempt_number"`
	Score         int       `json:"score"`
	Passed        bool      `json:"passed"`
	CompletedAt   time.Time `json:"completed_at"`
}

// LeaderboardEntry ranks a student by accumulated points.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	StudentID uint   `json:"student_id"`
	Name      string `json:"name"`
	Points    int    `json:"points"`
}

// CourseAnalyticsResponse summarises how a course cohort is doing.
type CourseAnalyticsResponse struct {
	CourseID         uint    `json:"course_id"`
	Title            string  `json:"title"`
	Enrolled         int64   `json:"enrolled"`
	Completed        int64   `json:"completed"`
	CompletionRate   float64 `json:"completion_rate"`
	AverageProgress  float64 `json:"average_progress"`
	AverageTimeSpent float64 `json:"average_time_spent"`
	QuizAttempts     int64   `json:"quiz_attempts"`
	AverageQuizScore float64 `json:"average_quiz_score"`
}
