package model

import (
	"time"

	"gorm.io/gorm"
)

// TestInstance is one candidate's single attempt at one test type.
// Instances are never hard-deleted; submitted attempts form the audit trail.
type TestInstance struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	CandidateID     uint            `json:"candidate_id" gorm:"not null;index:idx_instance_candidate_type"`
	TestType        TestType        `json:"test_type" gorm:"not null;index:idx_instance_candidate_type"`
	Status          TestStatus      `json:"status" gorm:"not null;default:'not_started'"`
	DifficultyLevel DifficultyLevel `json:"difficulty_level,omitempty"`

	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`

	RawScore         *float64 `json:"raw_score,omitempty"`
	MaxPossibleScore *float64 `json:"max_possible_score,omitempty"`
	Score            *float64 `json:"score,omitempty"` // percentage, 0-100, 2 decimals

	// Portuguese attempts pin the reading text (and its version at assignment
	// time) so later edits to the text do not affect the attempt.
	ReadingTextID      *uint `json:"reading_text_id,omitempty"`
	ReadingTextVersion *int  `json:"reading_text_version,omitempty"`

	Snapshots []QuestionSnapshot `json:"snapshots,omitempty" gorm:"foreignKey:TestInstanceID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *TestInstance) IsOwnedBy(candidateID uint) bool {
	return t.CandidateID == candidateID
}
