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

// AnswerSubmissionService accepts incremental multiple-choice answers while
// the attempt is open.
type AnswerSubmissionService interface {
	SubmitAnswers(testID, candidateID uint, items []dto.AnswerSubmitDTO) ([]dto.QuestionResponseDTO, error)
	DeleteResponse(testID, candidateID, responseID uint) error
}

type answerSubmissionService struct {
	instanceRepo repository.TestInstanceRepository
	snapshotRepo repository.QuestionSnapshotRepository
	responseRepo repository.QuestionResponseRepository
}

func NewAnswerSubmissionService(
	instanceRepo repository.TestInstanceRepository,
	snapshotRepo repository.QuestionSnapshotRepository,
	responseRepo repository.QuestionResponseRepository,
) AnswerSubmissionService {
	return &answerSubmissionService{
		instanceRepo: instanceRepo,
		snapshotRepo: snapshotRepo,
		responseRepo: responseRepo,
	}
}

func (s *answerSubmissionService) SubmitAnswers(testID, candidateID uint, items []dto.AnswerSubmitDTO) ([]dto.QuestionResponseDTO, error) {
	instance, err := s.instanceRepo.FindByID(testID)
	if err != nil {
		return nil, err
	}
	if !instance.IsOwnedBy(candidateID) {
		return nil, fmt.Errorf("test %d: %w", testID, apperr.ErrUnauthorized)
	}
	if instance.Status == model.StatusSubmitted {
		return nil, fmt.Errorf("test %d is already submitted: %w", testID, apperr.ErrInvalidTransition)
	}

	responses := applyAnswerBatch(s.snapshotRepo, s.responseRepo, instance, items)
	out := make([]dto.QuestionResponseDTO, len(responses))
	for i, r := range responses {
		out[i] = responseDTO(r)
	}
	return out, nil
}

func (s *answerSubmissionService) DeleteResponse(testID, candidateID, responseID uint) error {
	instance, err := s.instanceRepo.FindByID(testID)
	if err != nil {
		return err
	}
	if !instance.IsOwnedBy(candidateID) {
		return fmt.Errorf("test %d: %w", testID, apperr.ErrUnauthorized)
	}
	if instance.Status == model.StatusSubmitted {
		return fmt.Errorf("test %d is already submitted, responses are frozen: %w", testID, apperr.ErrInvalidTransition)
	}

	response, err := s.responseRepo.FindByID(responseID)
	if err != nil {
		return err
	}
	if response.TestInstanceID != testID {
		return fmt.Errorf("response %d does not belong to test %d: %w", responseID, testID, apperr.ErrNotFound)
	}
	return s.responseRepo.Delete(responseID)
}

// applyAnswerBatch persists one batch of answers: update-in-place when a live
// response exists for the (candidate, snapshot), create otherwise. Items whose
// snapshot does not belong to the attempt are skipped and logged, never fatal,
// so one malformed item cannot block the rest of the batch. Shared by the
// incremental path and the final-submit merge.
func applyAnswerBatch(
	snapshotRepo repository.QuestionSnapshotRepository,
	responseRepo repository.QuestionResponseRepository,
	instance *model.TestInstance,
	items []dto.AnswerSubmitDTO,
) []*model.QuestionResponse {
	var persisted []*model.QuestionResponse
	now := time.Now()

	for _, item := range items {
		snapshot, err := snapshotRepo.FindByID(item.QuestionSnapshotID)
		if err != nil || snapshot.TestInstanceID != instance.ID {
			log.Warn().
				Uint("snapshotID", item.QuestionSnapshotID).
				Uint("testID", instance.ID).
				Msg("answer batch: snapshot not part of this test, item skipped")
			continue
		}

		encoded := model.EncodeAnswerSet(item.SelectedAnswers)
		existing, err := responseRepo.FindLive(instance.ID, snapshot.ID, instance.CandidateID)
		if err != nil {
			log.Error().Err(err).Uint("snapshotID", snapshot.ID).Msg("answer batch: lookup failed, item skipped")
			continue
		}

		if existing != nil {
			existing.SelectedAnswers = encoded
			existing.ResponseTimeMs = item.ResponseTimeMs
			existing.AnsweredAt = now
			if err := responseRepo.Update(existing); err != nil {
				log.Error().Err(err).Uint("responseID", existing.ID).Msg("answer batch: update failed, item skipped")
				continue
			}
			persisted = append(persisted, existing)
			continue
		}

		response := &model.QuestionResponse{
			TestInstanceID:     instance.ID,
			CandidateID:        instance.CandidateID,
			QuestionSnapshotID: snapshot.ID,
			SelectedAnswers:    encoded,
			ResponseTimeMs:     item.ResponseTimeMs,
			AnsweredAt:         now,
		}
		if err := responseRepo.Create(response); err != nil {
			log.Error().Err(err).Uint("snapshotID", snapshot.ID).Msg("answer batch: create failed, item skipped")
			continue
		}
		persisted = append(persisted, response)
	}
	return persisted
}
