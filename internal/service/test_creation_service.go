package service

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/talentgate/assessment-api/internal/apperr"
	"github.com/talentgate/assessment-api/internal/dto"
	"github.com/talentgate/assessment-api/internal/model"
	"github.com/talentgate/assessment-api/internal/repository"
)

// TestCreationService is the snapshot engine: it checks eligibility, selects
// templates per the type's policy and freezes them into attempt-owned copies.
type TestCreationService interface {
	CreateTest(candidateID uint, testType model.TestType, difficulty model.DifficultyLevel) (*dto.TestInstanceDetailDTO, error)
}

type testCreationService struct {
	instanceRepo repository.TestInstanceRepository
	snapshotRepo repository.QuestionSnapshotRepository
	templateRepo repository.QuestionTemplateRepository
	groupRepo    repository.QuestionGroupRepository
	readingRepo  repository.ReadingTextRepository
}

func NewTestCreationService(
	instanceRepo repository.TestInstanceRepository,
	snapshotRepo repository.QuestionSnapshotRepository,
	templateRepo repository.QuestionTemplateRepository,
	groupRepo repository.QuestionGroupRepository,
	readingRepo repository.ReadingTextRepository,
) TestCreationService {
	return &testCreationService{
		instanceRepo: instanceRepo,
		snapshotRepo: snapshotRepo,
		templateRepo: templateRepo,
		groupRepo:    groupRepo,
		readingRepo:  readingRepo,
	}
}

func (s *testCreationService) CreateTest(candidateID uint, testType model.TestType, difficulty model.DifficultyLevel) (*dto.TestInstanceDetailDTO, error) {
	if !model.ValidTestType(testType) {
		return nil, fmt.Errorf("unknown test type %q: %w", testType, apperr.ErrNotFound)
	}
	cfg, ok := ConfigForTestType(testType)
	if !ok {
		return nil, fmt.Errorf("no configuration for test type %q: %w", testType, apperr.ErrNotFound)
	}

	if err := s.checkEligibility(candidateID, testType); err != nil {
		return nil, err
	}

	instance := model.TestInstance{
		CandidateID:     candidateID,
		TestType:        testType,
		Status:          model.StatusNotStarted,
		DifficultyLevel: difficulty,
	}

	var snapshots []model.QuestionSnapshot
	var err error
	switch cfg.Selection {
	case SelectFixedOrder:
		snapshots, err = s.buildFixedOrderSnapshots(testType)
	case SelectRandomSample:
		snapshots, err = s.buildRandomSnapshots(testType, cfg.QuestionCount, difficulty)
	case SelectVideoSlots:
		snapshots, err = s.buildVideoSlotSnapshots(&instance, testType, cfg)
	default:
		err = fmt.Errorf("unhandled selection mode for test type %q", testType)
	}
	if err != nil {
		return nil, err
	}

	// Instance first, snapshots second: the snapshots reference the instance
	// id. The insert re-checks eligibility under a (candidate, type) lock, so
	// racing creates that all passed the check above still yield one attempt.
	if err := s.instanceRepo.CreateIfEligible(&instance); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		log.Error().Err(err).Uint("candidateID", candidateID).Str("testType", string(testType)).Msg("CreateTest: failed to persist test instance")
		return nil, fmt.Errorf("creating test instance: %w", err)
	}
	for i := range snapshots {
		snapshots[i].TestInstanceID = instance.ID
	}
	if err := s.snapshotRepo.CreateInBatch(snapshots); err != nil {
		log.Error().Err(err).Uint("testID", instance.ID).Msg("CreateTest: failed to persist question snapshots")
		return nil, fmt.Errorf("creating question snapshots: %w", err)
	}

	// Hand the caller a hydrated result without a second round trip.
	instance.Snapshots = snapshots

	log.Info().
		Uint("testID", instance.ID).
		Uint("candidateID", candidateID).
		Str("testType", string(testType)).
		Int("questionCount", len(snapshots)).
		Msg("Test instance created")
	return instanceDetailDTO(&instance), nil
}

// checkEligibility rejects ineligible candidates before any snapshot work.
// It is an early read, not the enforcement: CreateIfEligible re-checks under a
// lock at insert time. Rejections are conflicts, not generic errors, so the
// boundary can answer 409 instead of 500.
func (s *testCreationService) checkEligibility(candidateID uint, testType model.TestType) error {
	active, err := s.instanceRepo.HasActive(candidateID, testType)
	if err != nil {
		return fmt.Errorf("checking active attempts: %w", err)
	}
	if active {
		return fmt.Errorf("candidate %d already has an open %s attempt: %w", candidateID, testType, apperr.ErrConflict)
	}
	submitted, err := s.instanceRepo.HasSubmitted(candidateID, testType)
	if err != nil {
		return fmt.Errorf("checking submitted attempts: %w", err)
	}
	if submitted {
		return fmt.Errorf("candidate %d already completed a %s attempt: %w", candidateID, testType, apperr.ErrConflict)
	}
	return nil
}

// buildFixedOrderSnapshots copies the complete instrument in canonical order.
// The requested difficulty is ignored: every candidate must see the identical
// question set.
func (s *testCreationService) buildFixedOrderSnapshots(testType model.TestType) ([]model.QuestionSnapshot, error) {
	templates, err := s.templateRepo.FindAllActiveOrdered(testType)
	if err != nil {
		return nil, fmt.Errorf("loading %s templates: %w", testType, err)
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("no active %s templates in the question bank: %w", testType, apperr.ErrInsufficientQuestionBank)
	}
	snapshots := make([]model.QuestionSnapshot, len(templates))
	for i := range templates {
		snapshots[i] = snapshotFromTemplate(&templates[i], i+1, true)
	}
	return snapshots, nil
}

func (s *testCreationService) buildRandomSnapshots(testType model.TestType, count int, difficulty model.DifficultyLevel) ([]model.QuestionSnapshot, error) {
	templates, err := s.templateRepo.FindRandomActive(testType, count, difficulty)
	if err != nil {
		return nil, fmt.Errorf("sampling %s templates: %w", testType, err)
	}
	if len(templates) < count {
		return nil, fmt.Errorf("need %d %s templates at difficulty %q, bank has %d: %w",
			count, testType, difficulty, len(templates), apperr.ErrInsufficientQuestionBank)
	}
	snapshots := make([]model.QuestionSnapshot, count)
	for i := 0; i < count; i++ {
		snapshots[i] = snapshotFromTemplate(&templates[i], i+1, true)
	}
	return snapshots, nil
}

// buildVideoSlotSnapshots fills the type's slots from the curated group in its
// order, padding any remainder with synthesized prompts. Video slots are
// always manually graded, so no answer key is ever copied.
func (s *testCreationService) buildVideoSlotSnapshots(instance *model.TestInstance, testType model.TestType, cfg TestTypeConfig) ([]model.QuestionSnapshot, error) {
	snapshots := make([]model.QuestionSnapshot, 0, cfg.QuestionCount)
	order := 1

	if cfg.ReadingSlot {
		if err := s.assignReadingText(instance); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, readingSlotSnapshot(order))
		order++
	}

	group, err := s.groupRepo.FindActiveWithItems(testType)
	if err != nil {
		return nil, fmt.Errorf("loading %s question group: %w", testType, err)
	}
	if group != nil {
		for i := range group.Items {
			if order > cfg.QuestionCount {
				break
			}
			snapshots = append(snapshots, snapshotFromTemplate(&group.Items[i].Template, order, false))
			order++
		}
	} else {
		log.Warn().Str("testType", string(testType)).Msg("CreateTest: no active question group configured, using placeholder prompts")
	}

	for ; order <= cfg.QuestionCount; order++ {
		snapshots = append(snapshots, placeholderSnapshot(testType, order))
	}
	return snapshots, nil
}

func (s *testCreationService) assignReadingText(instance *model.TestInstance) error {
	text, err := s.readingRepo.FindRandomActive()
	if err != nil {
		return fmt.Errorf("picking reading text: %w", err)
	}
	if text == nil {
		log.Warn().Uint("candidateID", instance.CandidateID).Msg("CreateTest: no active reading text available for portuguese attempt")
		return nil
	}
	instance.ReadingTextID = &text.ID
	instance.ReadingTextVersion = &text.Version
	return nil
}

// snapshotFromTemplate freezes the template's content as of this instant. The
// answer key is copied only for auto-gradable selections.
func snapshotFromTemplate(t *model.QuestionTemplate, order int, includeKey bool) model.QuestionSnapshot {
	templateID := t.ID
	snap := model.QuestionSnapshot{
		SourceTemplateID:     &templateID,
		QuestionText:         t.QuestionText,
		OptionsPayload:       t.OptionsPayload,
		AllowMultipleAnswers: t.AllowMultipleAnswers,
		MaxAnswersAllowed:    t.MaxAnswersAllowed,
		OrderInTest:          order,
		PointValue:           t.PointValue,
		EstimatedTimeSeconds: t.EstimatedTimeSeconds,
		ExpectedAnswerGuide:  copyStringPtr(t.ExpectedAnswerGuide),
	}
	if includeKey {
		snap.CorrectAnswerSnapshot = copyStringPtr(t.CorrectAnswerPayload)
	}
	return snap
}

// placeholderSnapshot synthesizes a generic video prompt for a slot the
// curated group could not fill. Deterministic, so identical slots read the
// same for every candidate.
func placeholderSnapshot(testType model.TestType, order int) model.QuestionSnapshot {
	return model.QuestionSnapshot{
		QuestionText: fmt.Sprintf(
			"Question %d: record a video answering the %s prompt presented by the interviewer.",
			order, testTypeLabel(testType)),
		OrderInTest:          order,
		EstimatedTimeSeconds: intPtr(180),
	}
}

func readingSlotSnapshot(order int) model.QuestionSnapshot {
	return model.QuestionSnapshot{
		QuestionText:         fmt.Sprintf("Question %d: read the assigned text aloud on camera, clearly and at a natural pace.", order),
		OrderInTest:          order,
		EstimatedTimeSeconds: intPtr(300),
	}
}

func testTypeLabel(testType model.TestType) string {
	switch testType {
	case model.TestTypePortuguese:
		return "Portuguese"
	case model.TestTypeMath:
		return "mathematics"
	case model.TestTypeInterview:
		return "interview"
	case model.TestTypePsychology:
		return "psychology"
	case model.TestTypeVisualRetention:
		return "visual retention"
	}
	return string(testType)
}

func copyStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
