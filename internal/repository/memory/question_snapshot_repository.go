package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/talentgate/assessment-api/internal/apperr"
	"github.com/talentgate/assessment-api/internal/model"
	"github.com/talentgate/assessment-api/internal/repository"
)

type QuestionSnapshotRepository struct {
	mu        sync.Mutex
	nextID    uint
	snapshots map[uint]model.QuestionSnapshot
}

func NewQuestionSnapshotRepository() *QuestionSnapshotRepository {
	return &QuestionSnapshotRepository{snapshots: make(map[uint]model.QuestionSnapshot)}
}

var _ repository.QuestionSnapshotRepository = (*QuestionSnapshotRepository)(nil)

func (r *QuestionSnapshotRepository) CreateInBatch(snapshots []model.QuestionSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range snapshots {
		r.nextID++
		snapshots[i].ID = r.nextID
		r.snapshots[snapshots[i].ID] = snapshots[i]
	}
	return nil
}

func (r *QuestionSnapshotRepository) FindByID(id uint) (*model.QuestionSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot, ok := r.snapshots[id]
	if !ok {
		return nil, fmt.Errorf("question snapshot %d: %w", id, apperr.ErrNotFound)
	}
	return &snapshot, nil
}

func (r *QuestionSnapshotRepository) FindByTestInstanceID(testInstanceID uint) ([]model.QuestionSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.QuestionSnapshot
	for _, snapshot := range r.snapshots {
		if snapshot.TestInstanceID == testInstanceID {
			out = append(out, snapshot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderInTest < out[j].OrderInTest })
	return out, nil
}
