package repository

import (
	"errors"

	"github.com/talentgate/assessment-api/internal/model"
	"gorm.io/gorm"
)

type QuestionResponseRepository interface {
	Create(response *model.QuestionResponse) error
	Update(response *model.QuestionResponse) error
	Delete(id uint) error
	FindByID(id uint) (*model.QuestionResponse, error)
	// FindLive returns the single live response for (attempt, snapshot,
	// candidate), or nil when none exists yet.
	FindLive(testInstanceID, snapshotID, candidateID uint) (*model.QuestionResponse, error)
	FindAllByTestInstanceID(testInstanceID uint) ([]model.QuestionResponse, error)
}

type questionResponseRepository struct {
	db *gorm.DB
}

func NewQuestionResponseRepository(db *gorm.DB) QuestionResponseRepository {
	return &questionResponseRepository{db: db}
}

func (r *questionResponseRepository) Create(response *model.QuestionResponse) error {
	return r.db.Create(response).Error
}

func (r *questionResponseRepository) Update(response *model.QuestionResponse) error {
	return r.db.Save(response).Error
}

func (r *questionResponseRepository) Delete(id uint) error {
	return r.db.Delete(&model.QuestionResponse{}, id).Error
}

func (r *questionResponseRepository) FindByID(id uint) (*model.QuestionResponse, error) {
	var response model.QuestionResponse
	if err := r.db.First(&response, id).Error; err != nil {
		return nil, translateNotFound(err, "question response %d", id)
	}
	return &response, nil
}

func (r *questionResponseRepository) FindLive(testInstanceID, snapshotID, candidateID uint) (*model.QuestionResponse, error) {
	var response model.QuestionResponse
	err := r.db.Where("test_instance_id = ? AND question_snapshot_id = ? AND candidate_id = ?",
		testInstanceID, snapshotID, candidateID).First(&response).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *questionResponseRepository) FindAllByTestInstanceID(testInstanceID uint) ([]model.QuestionResponse, error) {
	var responses []model.QuestionResponse
	err := r.db.Where("test_instance_id = ?", testInstanceID).Order("question_snapshot_id ASC").Find(&responses).Error
	return responses, err
}
