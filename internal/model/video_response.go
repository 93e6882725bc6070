package model

import (
	"time"

	"gorm.io/gorm"
)

// VideoResponse records a candidate's uploaded video answer. The bytes live in
// the blob store; only the opaque reference is kept here.
type VideoResponse struct {
	ID                 uint  `gorm:"primarykey" json:"id"`
	TestInstanceID     uint  `json:"test_instance_id" gorm:"not null;index"`
	CandidateID        uint  `json:"candidate_id" gorm:"not null;index"`
	QuestionSnapshotID *uint `json:"question_snapshot_id,omitempty"`

	QuestionNumber int               `json:"question_number"` // 1-based, matches the snapshot order when one is referenced
	ResponseType   VideoResponseType `json:"response_type" gorm:"not null"`

	BlobReference string `json:"blob_reference" gorm:"not null"`
	FileSizeBytes int64  `json:"file_size_bytes"`
	ContentType   string `json:"content_type"`
	UploadedAt    time.Time `json:"uploaded_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
