package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/talentgate/assessment-api/internal/apperr"
	"github.com/talentgate/assessment-api/internal/model"
	"github.com/talentgate/assessment-api/internal/repository"
)

type QuestionResponseRepository struct {
	mu        sync.Mutex
	nextID    uint
	responses map[uint]model.QuestionResponse
}

func NewQuestionResponseRepository() *QuestionResponseRepository {
	return &QuestionResponseRepository{responses: make(map[uint]model.QuestionResponse)}
}

var _ repository.QuestionResponseRepository = (*QuestionResponseRepository)(nil)

func (r *QuestionResponseRepository) Create(response *model.QuestionResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	response.ID = r.nextID
	r.responses[response.ID] = *response
	return nil
}

func (r *QuestionResponseRepository) Update(response *model.QuestionResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.responses[response.ID]; !ok {
		return fmt.Errorf("question response %d: %w", response.ID, apperr.ErrNotFound)
	}
	r.responses[response.ID] = *response
	return nil
}

func (r *QuestionResponseRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.responses, id)
	return nil
}

func (r *QuestionResponseRepository) FindByID(id uint) (*model.QuestionResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	response, ok := r.responses[id]
	if !ok {
		return nil, fmt.Errorf("question response %d: %w", id, apperr.ErrNotFound)
	}
	return &response, nil
}

func (r *QuestionResponseRepository) FindLive(testInstanceID, snapshotID, candidateID uint) (*model.QuestionResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, response := range r.responses {
		if response.TestInstanceID == testInstanceID &&
			response.QuestionSnapshotID == snapshotID &&
			response.CandidateID == candidateID {
			found := response
			return &found, nil
		}
	}
	return nil, nil
}

func (r *QuestionResponseRepository) FindAllByTestInstanceID(testInstanceID uint) ([]model.QuestionResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.QuestionResponse
	for _, response := range r.responses {
		if response.TestInstanceID == testInstanceID {
			out = append(out, response)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionSnapshotID < out[j].QuestionSnapshotID })
	return out, nil
}
