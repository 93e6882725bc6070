// Package memory holds map-backed implementations of the repository
// contracts. They mirror the postgres repositories' semantics (copies out,
// typed not-found errors, serialized transitions) and back the service tests.
package memory

import (
	"fmt"
	"sync"

	"github.com/talentgate/assessment-api/internal/apperr"
	"github.com/talentgate/assessment-api/internal/model"
	"github.com/talentgate/assessment-api/internal/repository"
)

type TestInstanceRepository struct {
	mu        sync.Mutex
	nextID    uint
	instances map[uint]model.TestInstance
}

func NewTestInstanceRepository() *TestInstanceRepository {
	return &TestInstanceRepository{instances: make(map[uint]model.TestInstance)}
}

var _ repository.TestInstanceRepository = (*TestInstanceRepository)(nil)

func (r *TestInstanceRepository) Create(instance *model.TestInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	instance.ID = r.nextID
	r.instances[instance.ID] = *instance
	return nil
}

func (r *TestInstanceRepository) CreateIfEligible(instance *model.TestInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Check and insert under one lock; racing creates for the same
	// (candidate, type) serialize here.
	for _, existing := range r.instances {
		if existing.CandidateID != instance.CandidateID || existing.TestType != instance.TestType {
			continue
		}
		if existing.Status == model.StatusSubmitted {
			return fmt.Errorf("candidate %d already completed a %s attempt: %w",
				instance.CandidateID, instance.TestType, apperr.ErrConflict)
		}
		return fmt.Errorf("candidate %d already has an open %s attempt: %w",
			instance.CandidateID, instance.TestType, apperr.ErrConflict)
	}
	r.nextID++
	instance.ID = r.nextID
	r.instances[instance.ID] = *instance
	return nil
}

func (r *TestInstanceRepository) Save(instance *model.TestInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.instances[instance.ID]; !ok {
		return fmt.Errorf("test instance %d: %w", instance.ID, apperr.ErrNotFound)
	}
	r.instances[instance.ID] = *instance
	return nil
}

func (r *TestInstanceRepository) FindByID(id uint) (*model.TestInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	instance, ok := r.instances[id]
	if !ok {
		return nil, fmt.Errorf("test instance %d: %w", id, apperr.ErrNotFound)
	}
	return &instance, nil
}

func (r *TestInstanceRepository) FindByIDWithSnapshots(id uint) (*model.TestInstance, error) {
	// Snapshot hydration is the snapshot repository's concern in the memory
	// setup; callers combine the two stores explicitly in tests.
	return r.FindByID(id)
}

func (r *TestInstanceRepository) FindAllByCandidate(candidateID uint) ([]model.TestInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.TestInstance
	for _, instance := range r.instances {
		if instance.CandidateID == candidateID {
			out = append(out, instance)
		}
	}
	return out, nil
}

func (r *TestInstanceRepository) HasActive(candidateID uint, testType model.TestType) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, instance := range r.instances {
		if instance.CandidateID == candidateID && instance.TestType == testType &&
			(instance.Status == model.StatusNotStarted || instance.Status == model.StatusInProgress) {
			return true, nil
		}
	}
	return false, nil
}

func (r *TestInstanceRepository) HasSubmitted(candidateID uint, testType model.TestType) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, instance := range r.instances {
		if instance.CandidateID == candidateID && instance.TestType == testType &&
			instance.Status == model.StatusSubmitted {
			return true, nil
		}
	}
	return false, nil
}

func (r *TestInstanceRepository) Transition(id uint, fn func(instance *model.TestInstance) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	instance, ok := r.instances[id]
	if !ok {
		return fmt.Errorf("test instance %d: %w", id, apperr.ErrNotFound)
	}
	if err := fn(&instance); err != nil {
		return err
	}
	r.instances[id] = instance
	return nil
}
