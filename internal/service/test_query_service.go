package service

import (
	"fmt"

	"github.com/talentgate/assessment-api/internal/apperr"
	"github.com/talentgate/assessment-api/internal/dto"
	"github.com/talentgate/assessment-api/internal/repository"
)

// TestQueryService serves ownership-checked read views of attempts.
type TestQueryService interface {
	GetTest(testID, candidateID uint) (*dto.TestInstanceDetailDTO, error)
	GetCandidateTests(candidateID uint) ([]dto.TestInstanceSummaryDTO, error)
}

type testQueryService struct {
	instanceRepo repository.TestInstanceRepository
	responseRepo repository.QuestionResponseRepository
	videoRepo    repository.VideoResponseRepository
}

func NewTestQueryService(
	instanceRepo repository.TestInstanceRepository,
	responseRepo repository.QuestionResponseRepository,
	videoRepo repository.VideoResponseRepository,
) TestQueryService {
	return &testQueryService{
		instanceRepo: instanceRepo,
		responseRepo: responseRepo,
		videoRepo:    videoRepo,
	}
}

func (s *testQueryService) GetTest(testID, candidateID uint) (*dto.TestInstanceDetailDTO, error) {
	instance, err := s.instanceRepo.FindByIDWithSnapshots(testID)
	if err != nil {
		return nil, err
	}
	if !instance.IsOwnedBy(candidateID) {
		return nil, fmt.Errorf("test %d: %w", testID, apperr.ErrUnauthorized)
	}

	detail := instanceDetailDTO(instance)

	responses, err := s.responseRepo.FindAllByTestInstanceID(testID)
	if err != nil {
		return nil, fmt.Errorf("loading responses: %w", err)
	}
	detail.Responses = responseDTOs(responses)

	videos, err := s.videoRepo.FindAllByTestInstanceID(testID)
	if err != nil {
		return nil, fmt.Errorf("loading videos: %w", err)
	}
	detail.Videos = videoDTOs(videos)
	return detail, nil
}

func (s *testQueryService) GetCandidateTests(candidateID uint) ([]dto.TestInstanceSummaryDTO, error) {
	instances, err := s.instanceRepo.FindAllByCandidate(candidateID)
	if err != nil {
		return nil, fmt.Errorf("loading candidate tests: %w", err)
	}
	return instanceSummaryDTOs(instances), nil
}
