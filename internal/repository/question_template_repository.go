package repository

import (
	"errors"

	"github.com/talentgate/assessment-api/internal/model"
	"gorm.io/gorm"
)

// QuestionTemplateRepository is the question-bank reader (plus the maintenance
// writes recruiters perform through other tooling). The snapshot engine only
// ever reads from it.
type QuestionTemplateRepository interface {
	Create(template *model.QuestionTemplate) error
	Update(template *model.QuestionTemplate) error
	Delete(id uint) error
	FindByID(id uint) (*model.QuestionTemplate, error)
	// FindAllActiveOrdered returns every active template of the type in its
	// canonical stored order (fixed-order test types).
	FindAllActiveOrdered(testType model.TestType) ([]model.QuestionTemplate, error)
	// FindRandomActive samples count active templates of the type at the given
	// difficulty. May return fewer than count.
	FindRandomActive(testType model.TestType, count int, difficulty model.DifficultyLevel) ([]model.QuestionTemplate, error)
}

type questionTemplateRepository struct {
	db *gorm.DB
}

func NewQuestionTemplateRepository(db *gorm.DB) QuestionTemplateRepository {
	return &questionTemplateRepository{db: db}
}

func (r *questionTemplateRepository) Create(template *model.QuestionTemplate) error {
	return r.db.Create(template).Error
}

func (r *questionTemplateRepository) Update(template *model.QuestionTemplate) error {
	return r.db.Save(template).Error
}

func (r *questionTemplateRepository) Delete(id uint) error {
	return r.db.Delete(&model.QuestionTemplate{}, id).Error
}

func (r *questionTemplateRepository) FindByID(id uint) (*model.QuestionTemplate, error) {
	var template model.QuestionTemplate
	if err := r.db.First(&template, id).Error; err != nil {
		return nil, translateNotFound(err, "question template %d", id)
	}
	return &template, nil
}

func (r *questionTemplateRepository) FindAllActiveOrdered(testType model.TestType) ([]model.QuestionTemplate, error) {
	var templates []model.QuestionTemplate
	err := r.db.Where("test_type = ? AND active = ?", testType, true).
		Order("position ASC, id ASC").
		Find(&templates).Error
	return templates, err
}

func (r *questionTemplateRepository) FindRandomActive(testType model.TestType, count int, difficulty model.DifficultyLevel) ([]model.QuestionTemplate, error) {
	var templates []model.QuestionTemplate
	query := r.db.Where("test_type = ? AND active = ?", testType, true)
	if difficulty != "" {
		query = query.Where("difficulty_level = ?", difficulty)
	}
	err := query.Order("RANDOM()").Limit(count).Find(&templates).Error
	return templates, err
}

// QuestionGroupRepository resolves the curated ordered group for video-slot
// test types.
type QuestionGroupRepository interface {
	// FindActiveWithItems returns the active group of the type with its items
	// (and their templates) in position order, or nil when none is configured.
	FindActiveWithItems(testType model.TestType) (*model.QuestionGroup, error)
}

type questionGroupRepository struct {
	db *gorm.DB
}

func NewQuestionGroupRepository(db *gorm.DB) QuestionGroupRepository {
	return &questionGroupRepository{db: db}
}

func (r *questionGroupRepository) FindActiveWithItems(testType model.TestType) (*model.QuestionGroup, error) {
	var group model.QuestionGroup
	err := r.db.Where("test_type = ? AND active = ?", testType, true).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_group_items.position ASC")
		}).
		Preload("Items.Template").
		First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}
