package repository

import (
	"errors"

	"github.com/talentgate/assessment-api/internal/model"
	"gorm.io/gorm"
)

type ReadingTextRepository interface {
	// FindRandomActive picks one active reading text, or nil when the pool is
	// empty.
	FindRandomActive() (*model.ReadingText, error)
	FindByID(id uint) (*model.ReadingText, error)
}

type readingTextRepository struct {
	db *gorm.DB
}

func NewReadingTextRepository(db *gorm.DB) ReadingTextRepository {
	return &readingTextRepository{db: db}
}

func (r *readingTextRepository) FindRandomActive() (*model.ReadingText, error) {
	var text model.ReadingText
	err := r.db.Where("active = ?", true).Order("RANDOM()").First(&text).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &text, nil
}

func (r *readingTextRepository) FindByID(id uint) (*model.ReadingText, error) {
	var text model.ReadingText
	if err := r.db.First(&text, id).Error; err != nil {
		return nil, translateNotFound(err, "reading text %d", id)
	}
	return &text, nil
}
