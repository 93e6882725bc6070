package dto

import "time"

// --- Requests ---

// TestCreateDTO creates a new attempt for a candidate. CandidateID stands in
// for the identity the auth layer would supply.
type TestCreateDTO struct {
	CandidateID     uint   `json:"candidate_id" binding:"required"`
	TestType        string `json:"test_type" binding:"required,oneof=portuguese math psychology visual_retention interview"`
	DifficultyLevel string `json:"difficulty_level" binding:"omitempty,oneof=easy medium hard"`
}

type TestStartDTO struct {
	CandidateID uint `json:"candidate_id" binding:"required"`
}

// AnswerSubmitDTO is one multiple-choice answer inside a batch.
type AnswerSubmitDTO struct {
	QuestionSnapshotID uint     `json:"question_snapshot_id" binding:"required"`
	SelectedAnswers    []string `json:"selected_answers" binding:"required"`
	ResponseTimeMs     *int     `json:"response_time_ms"`
}

// AnswerBatchDTO submits or revises answers while the attempt is open.
type AnswerBatchDTO struct {
	CandidateID uint              `json:"candidate_id" binding:"required"`
	Answers     []AnswerSubmitDTO `json:"answers" binding:"required,min=1,dive"`
}

// TestSubmitDTO finalizes the attempt. Answers may be empty when everything
// was submitted incrementally beforehand.
type TestSubmitDTO struct {
	CandidateID uint              `json:"candidate_id" binding:"required"`
	Answers     []AnswerSubmitDTO `json:"answers" binding:"omitempty,dive"`
}

// --- Responses ---

// QuestionSnapshotDTO is the candidate-facing view of a snapshot. There is
// deliberately no answer-key field here.
type QuestionSnapshotDTO struct {
	ID                   uint    `json:"id"`
	TestInstanceID       uint    `json:"test_instance_id"`
	SourceTemplateID     *uint   `json:"source_template_id,omitempty"`
	QuestionText         string  `json:"question_text"`
	OptionsPayload       string  `json:"options_payload,omitempty"`
	AllowMultipleAnswers bool    `json:"allow_multiple_answers"`
	MaxAnswersAllowed    *int    `json:"max_answers_allowed,omitempty"`
	OrderInTest          int     `json:"order_in_test"`
	PointValue           float64 `json:"point_value"`
	EstimatedTimeSeconds *int    `json:"estimated_time_seconds,omitempty"`
}

type QuestionResponseDTO struct {
	ID                 uint      `json:"id"`
	TestInstanceID     uint      `json:"test_instance_id"`
	QuestionSnapshotID uint      `json:"question_snapshot_id"`
	SelectedAnswers    []string  `json:"selected_answers"`
	ResponseTimeMs     *int      `json:"response_time_ms,omitempty"`
	AnsweredAt         time.Time `json:"answered_at"`
	IsCorrect          *bool     `json:"is_correct,omitempty"`
	PointsEarned       *float64  `json:"points_earned,omitempty"`
}

type VideoResponseDTO struct {
	ID                 uint      `json:"id"`
	TestInstanceID     uint      `json:"test_instance_id"`
	QuestionSnapshotID *uint     `json:"question_snapshot_id,omitempty"`
	QuestionNumber     int       `json:"question_number"`
	ResponseType       string    `json:"response_type"`
	BlobReference      string    `json:"blob_reference"`
	FileSizeBytes      int64     `json:"file_size_bytes"`
	ContentType        string    `json:"content_type,omitempty"`
	UploadedAt         time.Time `json:"uploaded_at"`
}

// TestInstanceDetailDTO is the hydrated attempt view.
type TestInstanceDetailDTO struct {
	ID                 uint       `json:"id"`
	CandidateID        uint       `json:"candidate_id"`
	TestType           string     `json:"test_type"`
	Status             string     `json:"status"`
	DifficultyLevel    string     `json:"difficulty_level,omitempty"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	DurationSeconds    *int       `json:"duration_seconds,omitempty"`
	RawScore           *float64   `json:"raw_score,omitempty"`
	MaxPossibleScore   *float64   `json:"max_possible_score,omitempty"`
	Score              *float64   `json:"score,omitempty"`
	ReadingTextID      *uint      `json:"reading_text_id,omitempty"`
	ReadingTextVersion *int       `json:"reading_text_version,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`

	Snapshots []QuestionSnapshotDTO `json:"snapshots,omitempty"`
	Responses []QuestionResponseDTO `json:"responses,omitempty"`
	Videos    []VideoResponseDTO    `json:"videos,omitempty"`
}

// TestInstanceSummaryDTO lists a candidate's attempts.
type TestInstanceSummaryDTO struct {
	ID              uint       `json:"id"`
	TestType        string     `json:"test_type"`
	Status          string     `json:"status"`
	DifficultyLevel string     `json:"difficulty_level,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Score           *float64   `json:"score,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// RemainingTimeDTO is advisory countdown information; RemainingSeconds is
// absent for untimed types and for attempts not yet started.
type RemainingTimeDTO struct {
	TestInstanceID   uint `json:"test_instance_id"`
	TimeLimited      bool `json:"time_limited"`
	RemainingSeconds *int `json:"remaining_seconds,omitempty"`
}

type VideoPlaybackDTO struct {
	VideoResponseID uint   `json:"video_response_id"`
	URL             string `json:"url"`
	ExpiresInSecs   int    `json:"expires_in_seconds"`
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
