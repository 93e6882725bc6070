package repository

import (
	"github.com/talentgate/assessment-api/internal/model"
	"gorm.io/gorm"
)

type VideoResponseRepository interface {
	Create(video *model.VideoResponse) error
	Delete(id uint) error
	FindByID(id uint) (*model.VideoResponse, error)
	FindAllByTestInstanceID(testInstanceID uint) ([]model.VideoResponse, error)
	CountByTestInstanceID(testInstanceID uint) (int64, error)
}

type videoResponseRepository struct {
	db *gorm.DB
}

func NewVideoResponseRepository(db *gorm.DB) VideoResponseRepository {
	return &videoResponseRepository{db: db}
}

func (r *videoResponseRepository) Create(video *model.VideoResponse) error {
	return r.db.Create(video).Error
}

func (r *videoResponseRepository) Delete(id uint) error {
	return r.db.Delete(&model.VideoResponse{}, id).Error
}

func (r *videoResponseRepository) FindByID(id uint) (*model.VideoResponse, error) {
	var video model.VideoResponse
	if err := r.db.First(&video, id).Error; err != nil {
		return nil, translateNotFound(err, "video response %d", id)
	}
	return &video, nil
}

func (r *videoResponseRepository) FindAllByTestInstanceID(testInstanceID uint) ([]model.VideoResponse, error) {
	var videos []model.VideoResponse
	err := r.db.Where("test_instance_id = ?", testInstanceID).Order("question_number ASC").Find(&videos).Error
	return videos, err
}

func (r *videoResponseRepository) CountByTestInstanceID(testInstanceID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.VideoResponse{}).Where("test_instance_id = ?", testInstanceID).Count(&count).Error
	return count, err
}
