package model

import (
	"time"

	"gorm.io/gorm"
)

// QuestionResponse is a candidate's multiple-choice answer to one snapshot.
// At most one live response exists per (candidate, snapshot); resubmission
// updates the row in place. Rows are frozen once the attempt is submitted.
type QuestionResponse struct {
	ID                 uint `gorm:"primarykey" json:"id"`
	TestInstanceID     uint `json:"test_instance_id" gorm:"not null;index"`
	CandidateID        uint `json:"candidate_id" gorm:"not null;index"`
	QuestionSnapshotID uint `json:"question_snapshot_id" gorm:"not null;index"`

	SelectedAnswers string `json:"selected_answers" gorm:"type:text;not null"` // JSON array of option ids
	ResponseTimeMs  *int   `json:"response_time_ms,omitempty"`

	AnsweredAt time.Time `json:"answered_at"`

	// Set only by auto-grading at submission.
	IsCorrect    *bool    `json:"is_correct,omitempty"`
	PointsEarned *float64 `json:"points_earned,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
