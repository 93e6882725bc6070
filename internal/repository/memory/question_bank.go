package memory

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/talentgate/assessment-api/internal/apperr"
	"github.com/talentgate/assessment-api/internal/model"
	"github.com/talentgate/assessment-api/internal/repository"
)

// QuestionTemplateRepository is the in-memory question bank. Tests mutate it
// freely to simulate recruiters editing templates behind live attempts.
type QuestionTemplateRepository struct {
	mu        sync.Mutex
	nextID    uint
	templates map[uint]model.QuestionTemplate
}

func NewQuestionTemplateRepository() *QuestionTemplateRepository {
	return &QuestionTemplateRepository{templates: make(map[uint]model.QuestionTemplate)}
}

var _ repository.QuestionTemplateRepository = (*QuestionTemplateRepository)(nil)

func (r *QuestionTemplateRepository) Create(template *model.QuestionTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	template.ID = r.nextID
	r.templates[template.ID] = *template
	return nil
}

func (r *QuestionTemplateRepository) Update(template *model.QuestionTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[template.ID]; !ok {
		return fmt.Errorf("question template %d: %w", template.ID, apperr.ErrNotFound)
	}
	r.templates[template.ID] = *template
	return nil
}

func (r *QuestionTemplateRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.templates, id)
	return nil
}

func (r *QuestionTemplateRepository) FindByID(id uint) (*model.QuestionTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	template, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("question template %d: %w", id, apperr.ErrNotFound)
	}
	return &template, nil
}

func (r *QuestionTemplateRepository) FindAllActiveOrdered(testType model.TestType) ([]model.QuestionTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.QuestionTemplate
	for _, template := range r.templates {
		if template.TestType == testType && template.Active {
			out = append(out, template)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *QuestionTemplateRepository) FindRandomActive(testType model.TestType, count int, difficulty model.DifficultyLevel) ([]model.QuestionTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pool []model.QuestionTemplate
	for _, template := range r.templates {
		if template.TestType != testType || !template.Active {
			continue
		}
		if difficulty != "" && template.DifficultyLevel != difficulty {
			continue
		}
		pool = append(pool, template)
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > count {
		pool = pool[:count]
	}
	return pool, nil
}

// QuestionGroupRepository holds the curated ordered groups for video-slot
// test types.
type QuestionGroupRepository struct {
	mu     sync.Mutex
	groups map[model.TestType]model.QuestionGroup
}

func NewQuestionGroupRepository() *QuestionGroupRepository {
	return &QuestionGroupRepository{groups: make(map[model.TestType]model.QuestionGroup)}
}

var _ repository.QuestionGroupRepository = (*QuestionGroupRepository)(nil)

// SetGroup installs the active group for a type (test setup helper).
func (r *QuestionGroupRepository) SetGroup(group model.QuestionGroup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sort.Slice(group.Items, func(i, j int) bool { return group.Items[i].Position < group.Items[j].Position })
	r.groups[group.TestType] = group
}

func (r *QuestionGroupRepository) FindActiveWithItems(testType model.TestType) (*model.QuestionGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	group, ok := r.groups[testType]
	if !ok || !group.Active {
		return nil, nil
	}
	return &group, nil
}

// ReadingTextRepository is the in-memory reading-passage pool.
type ReadingTextRepository struct {
	mu     sync.Mutex
	nextID uint
	texts  map[uint]model.ReadingText
}

func NewReadingTextRepository() *ReadingTextRepository {
	return &ReadingTextRepository{texts: make(map[uint]model.ReadingText)}
}

var _ repository.ReadingTextRepository = (*ReadingTextRepository)(nil)

func (r *ReadingTextRepository) Add(text model.ReadingText) model.ReadingText {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	text.ID = r.nextID
	r.texts[text.ID] = text
	return text
}

func (r *ReadingTextRepository) FindRandomActive() (*model.ReadingText, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pool []model.ReadingText
	for _, text := range r.texts {
		if text.Active {
			pool = append(pool, text)
		}
	}
	if len(pool) == 0 {
		return nil, nil
	}
	picked := pool[rand.Intn(len(pool))]
	return &picked, nil
}

func (r *ReadingTextRepository) FindByID(id uint) (*model.ReadingText, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	text, ok := r.texts[id]
	if !ok {
		return nil, fmt.Errorf("reading text %d: %w", id, apperr.ErrNotFound)
	}
	return &text, nil
}
