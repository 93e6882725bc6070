package repository

import (
	"github.com/talentgate/assessment-api/internal/model"
	"gorm.io/gorm"
)

type QuestionSnapshotRepository interface {
	CreateInBatch(snapshots []model.QuestionSnapshot) error
	FindByID(id uint) (*model.QuestionSnapshot, error)
	FindByTestInstanceID(testInstanceID uint) ([]model.QuestionSnapshot, error)
}

type questionSnapshotRepository struct {
	db *gorm.DB
}

func NewQuestionSnapshotRepository(db *gorm.DB) QuestionSnapshotRepository {
	return &questionSnapshotRepository{db: db}
}

func (r *questionSnapshotRepository) CreateInBatch(snapshots []model.QuestionSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return r.db.Create(&snapshots).Error
}

func (r *questionSnapshotRepository) FindByID(id uint) (*model.QuestionSnapshot, error) {
	var snapshot model.QuestionSnapshot
	if err := r.db.First(&snapshot, id).Error; err != nil {
		return nil, translateNotFound(err, "question snapshot %d", id)
	}
	return &snapshot, nil
}

func (r *questionSnapshotRepository) FindByTestInstanceID(testInstanceID uint) ([]model.QuestionSnapshot, error) {
	var snapshots []model.QuestionSnapshot
	err := r.db.Where("test_instance_id = ?", testInstanceID).Order("order_in_test ASC").Find(&snapshots).Error
	return snapshots, err
}
