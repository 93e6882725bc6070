package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/talentgate/assessment-api/internal/apperr"
	"github.com/talentgate/assessment-api/internal/model"
	"github.com/talentgate/assessment-api/internal/repository"
)

type VideoResponseRepository struct {
	mu     sync.Mutex
	nextID uint
	videos map[uint]model.VideoResponse
}

func NewVideoResponseRepository() *VideoResponseRepository {
	return &VideoResponseRepository{videos: make(map[uint]model.VideoResponse)}
}

var _ repository.VideoResponseRepository = (*VideoResponseRepository)(nil)

func (r *VideoResponseRepository) Create(video *model.VideoResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	video.ID = r.nextID
	r.videos[video.ID] = *video
	return nil
}

func (r *VideoResponseRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.videos, id)
	return nil
}

func (r *VideoResponseRepository) FindByID(id uint) (*model.VideoResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	video, ok := r.videos[id]
	if !ok {
		return nil, fmt.Errorf("video response %d: %w", id, apperr.ErrNotFound)
	}
	return &video, nil
}

func (r *VideoResponseRepository) FindAllByTestInstanceID(testInstanceID uint) ([]model.VideoResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.VideoResponse
	for _, video := range r.videos {
		if video.TestInstanceID == testInstanceID {
			out = append(out, video)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionNumber < out[j].QuestionNumber })
	return out, nil
}

func (r *VideoResponseRepository) CountByTestInstanceID(testInstanceID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, video := range r.videos {
		if video.TestInstanceID == testInstanceID {
			count++
		}
	}
	return count, nil
}
