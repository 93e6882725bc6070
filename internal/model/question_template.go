package model

import (
	"time"

	"gorm.io/gorm"
)

// QuestionTemplate is a bank-resident, recruiter-editable question definition.
// The engine only reads templates; attempts hold frozen copies, never
// references into this table.
type QuestionTemplate struct {
	ID       uint     `gorm:"primarykey" json:"id"`
	TestType TestType `json:"test_type" gorm:"not null;index"`

	QuestionText         string          `json:"question_text" gorm:"type:text;not null"`
	OptionsPayload       string          `json:"options_payload,omitempty" gorm:"type:text"`
	AllowMultipleAnswers bool            `json:"allow_multiple_answers"`
	MaxAnswersAllowed    *int            `json:"max_answers_allowed,omitempty"`
	DifficultyLevel      DifficultyLevel `json:"difficulty_level" gorm:"index"`
	PointValue           float64         `json:"point_value"`
	EstimatedTimeSeconds *int            `json:"estimated_time_seconds,omitempty"`

	// Answer key and grading guide. Copied into snapshots for auto-gradable
	// types only; video-slot types never receive a key.
	CorrectAnswerPayload *string `json:"-" gorm:"type:text"`
	ExpectedAnswerGuide  *string `json:"-" gorm:"type:text"`

	Active   bool `json:"active" gorm:"default:true;index"`
	Position int  `json:"position"` // canonical order for fixed-order test types

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// QuestionGroup is a curated, ordered set of templates used by video-slot test
// types. At most one active group exists per type.
type QuestionGroup struct {
	ID       uint     `gorm:"primarykey" json:"id"`
	TestType TestType `json:"test_type" gorm:"not null;index"`
	Name     string   `json:"name"`
	Active   bool     `json:"active" gorm:"default:true;index"`

	Items []QuestionGroupItem `json:"items,omitempty" gorm:"foreignKey:QuestionGroupID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type QuestionGroupItem struct {
	ID                 uint             `gorm:"primarykey" json:"id"`
	QuestionGroupID    uint             `json:"question_group_id" gorm:"not null;index"`
	QuestionTemplateID uint             `json:"question_template_id" gorm:"not null"`
	Template           QuestionTemplate `json:"template,omitempty" gorm:"foreignKey:QuestionTemplateID"`
	Position           int              `json:"position" gorm:"not null"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
