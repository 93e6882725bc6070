package service

import (
	"fmt"
	"time"

	"github.com/talentgate/assessment-api/internal/apperr"
	"github.com/talentgate/assessment-api/internal/dto"
	"github.com/talentgate/assessment-api/internal/repository"
)

// TimeGuardService computes advisory remaining time for time-boxed test
// types. It enforces nothing: an overdue in-progress attempt stays
// submittable, the countdown is for the caller's UX only.
type TimeGuardService interface {
	RemainingTime(testID, candidateID uint) (*dto.RemainingTimeDTO, error)
}

type timeGuardService struct {
	instanceRepo repository.TestInstanceRepository
	now          func() time.Time
}

func NewTimeGuardService(instanceRepo repository.TestInstanceRepository) TimeGuardService {
	return &timeGuardService{instanceRepo: instanceRepo, now: time.Now}
}

func (s *timeGuardService) RemainingTime(testID, candidateID uint) (*dto.RemainingTimeDTO, error) {
	instance, err := s.instanceRepo.FindByID(testID)
	if err != nil {
		return nil, err
	}
	if !instance.IsOwnedBy(candidateID) {
		return nil, fmt.Errorf("test %d: %w", testID, apperr.ErrUnauthorized)
	}

	result := &dto.RemainingTimeDTO{TestInstanceID: testID}

	cfg, ok := ConfigForTestType(instance.TestType)
	if !ok || cfg.TimeLimitSecs == nil {
		return result, nil
	}
	result.TimeLimited = true

	// No countdown before the clock starts.
	if instance.StartedAt == nil {
		return result, nil
	}

	elapsed := int(s.now().Sub(*instance.StartedAt).Seconds())
	remaining := *cfg.TimeLimitSecs - elapsed
	if remaining < 0 {
		remaining = 0
	}
	result.RemainingSeconds = &remaining
	return result, nil
}
