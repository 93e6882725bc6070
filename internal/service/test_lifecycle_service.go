package service

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/talentgate/assessment-api/internal/apperr"
	"github.com/talentgate/assessment-api/internal/dto"
	"github.com/talentgate/assessment-api/internal/model"
	"github.com/talentgate/assessment-api/internal/repository"
)

// TestLifecycleService drives the attempt state machine:
// not_started -> in_progress -> submitted. No transition skips a state or
// moves backward.
type TestLifecycleService interface {
	StartTest(testID, candidateID uint) (*dto.TestInstanceDetailDTO, error)
	SubmitTest(testID, candidateID uint, req dto.TestSubmitDTO) (*dto.TestInstanceDetailDTO, error)
}

type testLifecycleService struct {
	instanceRepo repository.TestInstanceRepository
	snapshotRepo repository.QuestionSnapshotRepository
	responseRepo repository.QuestionResponseRepository
	grading      GradingService
}

func NewTestLifecycleService(
	instanceRepo repository.TestInstanceRepository,
	snapshotRepo repository.QuestionSnapshotRepository,
	responseRepo repository.QuestionResponseRepository,
	grading GradingService,
) TestLifecycleService {
	return &testLifecycleService{
		instanceRepo: instanceRepo,
		snapshotRepo: snapshotRepo,
		responseRepo: responseRepo,
		grading:      grading,
	}
}

func (s *testLifecycleService) StartTest(testID, candidateID uint) (*dto.TestInstanceDetailDTO, error) {
	err := s.instanceRepo.Transition(testID, func(instance *model.TestInstance) error {
		if !instance.IsOwnedBy(candidateID) {
			return fmt.Errorf("test %d: %w", testID, apperr.ErrUnauthorized)
		}
		if instance.Status != model.StatusNotStarted {
			return fmt.Errorf("test %d is %s, cannot start: %w", testID, instance.Status, apperr.ErrInvalidTransition)
		}
		now := time.Now()
		instance.Status = model.StatusInProgress
		instance.StartedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("testID", testID).Uint("candidateID", candidateID).Msg("Test started")
	instance, err := s.instanceRepo.FindByIDWithSnapshots(testID)
	if err != nil {
		return nil, err
	}
	return instanceDetailDTO(instance), nil
}

// SubmitTest merges any final answers, grades the attempt and closes it. The
// whole transition runs under the instance row lock, so a submit racing
// another submit observes the submitted state and fails with
// ErrInvalidTransition instead of double-grading. Graded responses are
// persisted before the transition commits: a storage failure aborts the
// submit, so an attempt is never submitted with scores its stored responses
// cannot reproduce.
func (s *testLifecycleService) SubmitTest(testID, candidateID uint, req dto.TestSubmitDTO) (*dto.TestInstanceDetailDTO, error) {
	err := s.instanceRepo.Transition(testID, func(instance *model.TestInstance) error {
		if !instance.IsOwnedBy(candidateID) {
			return fmt.Errorf("test %d: %w", testID, apperr.ErrUnauthorized)
		}
		if instance.Status != model.StatusInProgress {
			return fmt.Errorf("test %d is %s, only in-progress tests can be submitted: %w", testID, instance.Status, apperr.ErrInvalidTransition)
		}

		if len(req.Answers) > 0 {
			applyAnswerBatch(s.snapshotRepo, s.responseRepo, instance, req.Answers)
		}

		snapshots, err := s.snapshotRepo.FindByTestInstanceID(testID)
		if err != nil {
			return fmt.Errorf("loading snapshots for grading: %w", err)
		}
		stored, err := s.responseRepo.FindAllByTestInstanceID(testID)
		if err != nil {
			return fmt.Errorf("loading responses for grading: %w", err)
		}
		responses := make([]*model.QuestionResponse, len(stored))
		for i := range stored {
			responses[i] = &stored[i]
		}

		s.grading.GradeAttempt(instance, snapshots, responses)
		for _, response := range responses {
			if response.IsCorrect == nil {
				continue
			}
			if err := s.responseRepo.Update(response); err != nil {
				return fmt.Errorf("persisting graded response %d: %w", response.ID, err)
			}
		}

		now := time.Now()
		instance.Status = model.StatusSubmitted
		instance.CompletedAt = &now
		if instance.StartedAt != nil {
			duration := int(now.Sub(*instance.StartedAt).Seconds())
			instance.DurationSeconds = &duration
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	instance, err := s.instanceRepo.FindByIDWithSnapshots(testID)
	if err != nil {
		return nil, err
	}
	detail := instanceDetailDTO(instance)
	stored, err := s.responseRepo.FindAllByTestInstanceID(testID)
	if err == nil {
		detail.Responses = responseDTOs(stored)
	}

	log.Info().
		Uint("testID", testID).
		Uint("candidateID", candidateID).
		Float64("score", valueOrZero(instance.Score)).
		Msg("Test submitted and graded")
	return detail, nil
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
