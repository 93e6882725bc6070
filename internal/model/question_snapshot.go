package model

import (
	"time"

	"gorm.io/gorm"
)

// QuestionSnapshot is an immutable, attempt-scoped copy of a bank template.
// Content is frozen at attempt-creation time: later edits or deletions in the
// question bank never reach an already-created snapshot. Video slots with no
// curated template behind them have a nil SourceTemplateID.
type QuestionSnapshot struct {
	ID               uint  `gorm:"primarykey" json:"id"`
	TestInstanceID   uint  `json:"test_instance_id" gorm:"not null;index"`
	SourceTemplateID *uint `json:"source_template_id,omitempty"`

	QuestionText         string `json:"question_text" gorm:"type:text;not null"`
	OptionsPayload       string `json:"options_payload,omitempty" gorm:"type:text"`
	AllowMultipleAnswers bool   `json:"allow_multiple_answers"`
	MaxAnswersAllowed    *int   `json:"max_answers_allowed,omitempty"`

	OrderInTest          int     `json:"order_in_test" gorm:"not null"` // 1-based, unique within the attempt
	PointValue           float64 `json:"point_value"`
	EstimatedTimeSeconds *int    `json:"estimated_time_seconds,omitempty"`

	// CorrectAnswerSnapshot holds the answer key copied from the template for
	// auto-gradable types. It must never be serialized to the client.
	CorrectAnswerSnapshot *string `json:"-" gorm:"type:text"`
	// ExpectedAnswerGuide is the reviewer-facing reference for subjective and
	// video slots. Also never sent to candidates.
	ExpectedAnswerGuide *string `json:"-" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AutoGradable reports whether the snapshot carries an answer key.
func (s *QuestionSnapshot) AutoGradable() bool {
	return s.CorrectAnswerSnapshot != nil && *s.CorrectAnswerSnapshot != ""
}
