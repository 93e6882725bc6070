package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/talentgate/assessment-api/internal/apperr"
	"github.com/talentgate/assessment-api/internal/model"
	"github.com/talentgate/assessment-api/internal/repository/memory"
)

type creationFixture struct {
	instances *memory.TestInstanceRepository
	snapshots *memory.QuestionSnapshotRepository
	templates *memory.QuestionTemplateRepository
	groups    *memory.QuestionGroupRepository
	readings  *memory.ReadingTextRepository
	svc       TestCreationService
}

func newCreationFixture() *creationFixture {
	f := &creationFixture{
		instances: memory.NewTestInstanceRepository(),
		snapshots: memory.NewQuestionSnapshotRepository(),
		templates: memory.NewQuestionTemplateRepository(),
		groups:    memory.NewQuestionGroupRepository(),
		readings:  memory.NewReadingTextRepository(),
	}
	f.svc = NewTestCreationService(f.instances, f.snapshots, f.templates, f.groups, f.readings)
	return f
}

func (f *creationFixture) seedTemplates(t *testing.T, testType model.TestType, count int, difficulty model.DifficultyLevel) []model.QuestionTemplate {
	t.Helper()
	out := make([]model.QuestionTemplate, count)
	for i := 0; i < count; i++ {
		template := model.QuestionTemplate{
			TestType:             testType,
			QuestionText:         fmt.Sprintf("%s question %d", testType, i+1),
			OptionsPayload:       `["A","B","C","D"]`,
			DifficultyLevel:      difficulty,
			PointValue:           1,
			CorrectAnswerPayload: strPtr(model.EncodeAnswerSet([]string{"A"})),
			Active:               true,
			Position:             i + 1,
		}
		if err := f.templates.Create(&template); err != nil {
			t.Fatalf("seeding template: %v", err)
		}
		out[i] = template
	}
	return out
}

func (f *creationFixture) seedGroup(t *testing.T, testType model.TestType, prompts ...string) {
	t.Helper()
	group := model.QuestionGroup{TestType: testType, Name: "default", Active: true}
	for i, prompt := range prompts {
		template := model.QuestionTemplate{
			TestType:     testType,
			QuestionText: prompt,
			Active:       true,
		}
		if err := f.templates.Create(&template); err != nil {
			t.Fatalf("seeding group template: %v", err)
		}
		group.Items = append(group.Items, model.QuestionGroupItem{
			QuestionTemplateID: template.ID,
			Template:           template,
			Position:           i + 1,
		})
	}
	f.groups.SetGroup(group)
}

func TestCreateTestEligibility(t *testing.T) {
	f := newCreationFixture()
	f.seedTemplates(t, model.TestTypePsychology, 3, model.DifficultyMedium)

	if _, err := f.svc.CreateTest(1, model.TestTypePsychology, ""); err != nil {
		t.Fatalf("first create: %v", err)
	}

	// A second attempt of the same type conflicts while the first is open.
	_, err := f.svc.CreateTest(1, model.TestTypePsychology, "")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("second create: got %v, want ErrConflict", err)
	}

	// A different type is unaffected.
	f.seedTemplates(t, model.TestTypeVisualRetention, 5, model.DifficultyMedium)
	if _, err := f.svc.CreateTest(1, model.TestTypeVisualRetention, model.DifficultyMedium); err != nil {
		t.Fatalf("create of a different type: %v", err)
	}

	// Another candidate is unaffected.
	if _, err := f.svc.CreateTest(2, model.TestTypePsychology, ""); err != nil {
		t.Fatalf("create for another candidate: %v", err)
	}
}

// Racing creates for the same (candidate, type) must yield exactly one
// attempt; the rest conflict. The existence check alone cannot guarantee this,
// the serialized insert does.
func TestCreateTestConcurrentCreatesYieldOneAttempt(t *testing.T) {
	const workers = 16
	for iter := 0; iter < 50; iter++ {
		f := newCreationFixture()
		f.seedTemplates(t, model.TestTypePsychology, 3, model.DifficultyMedium)

		start := make(chan struct{})
		errs := make(chan error, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, err := f.svc.CreateTest(1, model.TestTypePsychology, "")
				errs <- err
			}()
		}
		close(start)
		wg.Wait()
		close(errs)

		created := 0
		for err := range errs {
			switch {
			case err == nil:
				created++
			case errors.Is(err, apperr.ErrConflict):
			default:
				t.Fatalf("iteration %d: unexpected error: %v", iter, err)
			}
		}
		if created != 1 {
			t.Fatalf("iteration %d: %d of %d racing creates succeeded, want exactly 1", iter, created, workers)
		}

		attempts, err := f.instances.FindAllByCandidate(1)
		if err != nil {
			t.Fatalf("iteration %d: listing attempts: %v", iter, err)
		}
		if len(attempts) != 1 {
			t.Fatalf("iteration %d: %d attempts persisted, want 1", iter, len(attempts))
		}
	}
}

func TestCreateTestRejectsSubmittedRetake(t *testing.T) {
	f := newCreationFixture()
	f.seedTemplates(t, model.TestTypePsychology, 3, model.DifficultyMedium)

	detail, err := f.svc.CreateTest(1, model.TestTypePsychology, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	err = f.instances.Transition(detail.ID, func(instance *model.TestInstance) error {
		instance.Status = model.StatusSubmitted
		return nil
	})
	if err != nil {
		t.Fatalf("marking submitted: %v", err)
	}

	_, err = f.svc.CreateTest(1, model.TestTypePsychology, "")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("retake after submit: got %v, want ErrConflict", err)
	}
}

func TestCreateTestUnknownType(t *testing.T) {
	f := newCreationFixture()
	_, err := f.svc.CreateTest(1, model.TestType("chemistry"), "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestCreateTestInsufficientBank(t *testing.T) {
	t.Run("fixed order with empty bank", func(t *testing.T) {
		f := newCreationFixture()
		_, err := f.svc.CreateTest(1, model.TestTypePsychology, "")
		if !errors.Is(err, apperr.ErrInsufficientQuestionBank) {
			t.Fatalf("got %v, want ErrInsufficientQuestionBank", err)
		}
	})

	t.Run("random sample with a short pool", func(t *testing.T) {
		f := newCreationFixture()
		f.seedTemplates(t, model.TestTypeVisualRetention, 3, model.DifficultyEasy) // needs 5
		_, err := f.svc.CreateTest(1, model.TestTypeVisualRetention, model.DifficultyEasy)
		if !errors.Is(err, apperr.ErrInsufficientQuestionBank) {
			t.Fatalf("got %v, want ErrInsufficientQuestionBank", err)
		}
	})
}

func TestCreateTestFixedOrderTakesWholeInstrument(t *testing.T) {
	f := newCreationFixture()
	seeded := f.seedTemplates(t, model.TestTypePsychology, 6, model.DifficultyMedium)

	// The requested difficulty is ignored for fixed-order instruments.
	detail, err := f.svc.CreateTest(1, model.TestTypePsychology, model.DifficultyHard)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(detail.Snapshots) != len(seeded) {
		t.Fatalf("got %d snapshots, want the whole instrument of %d", len(detail.Snapshots), len(seeded))
	}
	for i, snap := range detail.Snapshots {
		if snap.OrderInTest != i+1 {
			t.Errorf("snapshot %d has order %d, want %d", i, snap.OrderInTest, i+1)
		}
		if snap.QuestionText != seeded[i].QuestionText {
			t.Errorf("snapshot %d text %q, want canonical order text %q", i, snap.QuestionText, seeded[i].QuestionText)
		}
	}
}

func TestCreateTestRandomSampleCount(t *testing.T) {
	f := newCreationFixture()
	f.seedTemplates(t, model.TestTypeVisualRetention, 12, model.DifficultyMedium)

	detail, err := f.svc.CreateTest(1, model.TestTypeVisualRetention, model.DifficultyMedium)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(detail.Snapshots) != 5 {
		t.Fatalf("got %d snapshots, want 5", len(detail.Snapshots))
	}
	seen := make(map[uint]bool)
	for i, snap := range detail.Snapshots {
		if snap.OrderInTest != i+1 {
			t.Errorf("snapshot %d has order %d, want contiguous 1-based order", i, snap.OrderInTest)
		}
		if snap.SourceTemplateID == nil {
			t.Fatalf("snapshot %d missing source template id", i)
		}
		if seen[*snap.SourceTemplateID] {
			t.Errorf("template %d sampled twice", *snap.SourceTemplateID)
		}
		seen[*snap.SourceTemplateID] = true
	}
}

func TestCreateTestSnapshotsAreImmutable(t *testing.T) {
	f := newCreationFixture()
	seeded := f.seedTemplates(t, model.TestTypePsychology, 2, model.DifficultyMedium)

	detail, err := f.svc.CreateTest(1, model.TestTypePsychology, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A recruiter edits one template and deletes the other behind the attempt.
	edited := seeded[0]
	edited.QuestionText = "rewritten after the attempt was created"
	edited.CorrectAnswerPayload = strPtr(model.EncodeAnswerSet([]string{"D"}))
	if err := f.templates.Update(&edited); err != nil {
		t.Fatalf("editing template: %v", err)
	}
	if err := f.templates.Delete(seeded[1].ID); err != nil {
		t.Fatalf("deleting template: %v", err)
	}

	frozen, err := f.snapshots.FindByTestInstanceID(detail.ID)
	if err != nil {
		t.Fatalf("loading snapshots: %v", err)
	}
	if len(frozen) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(frozen))
	}
	if frozen[0].QuestionText != seeded[0].QuestionText {
		t.Errorf("snapshot text changed after template edit: %q", frozen[0].QuestionText)
	}
	if frozen[0].CorrectAnswerSnapshot == nil || *frozen[0].CorrectAnswerSnapshot != model.EncodeAnswerSet([]string{"A"}) {
		t.Errorf("snapshot answer key changed after template edit")
	}
	if frozen[1].QuestionText != seeded[1].QuestionText {
		t.Errorf("snapshot of the deleted template lost its text: %q", frozen[1].QuestionText)
	}
}

func TestCreateTestVideoSlotsFollowGroupOrder(t *testing.T) {
	f := newCreationFixture()
	f.seedGroup(t, model.TestTypeInterview,
		"tell us about yourself",
		"describe a conflict you resolved",
		"why this role",
	)

	detail, err := f.svc.CreateTest(1, model.TestTypeInterview, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(detail.Snapshots) != 5 {
		t.Fatalf("got %d snapshots, want 5 interview slots", len(detail.Snapshots))
	}
	if detail.Snapshots[0].QuestionText != "tell us about yourself" {
		t.Errorf("slot 1 = %q, want the group's first prompt", detail.Snapshots[0].QuestionText)
	}
	if detail.Snapshots[2].QuestionText != "why this role" {
		t.Errorf("slot 3 = %q, want the group's third prompt", detail.Snapshots[2].QuestionText)
	}
	// Slots beyond the group are padded with synthesized prompts.
	for _, snap := range detail.Snapshots[3:] {
		if !strings.Contains(snap.QuestionText, "record a video") {
			t.Errorf("slot %d = %q, want a synthesized prompt", snap.OrderInTest, snap.QuestionText)
		}
	}

	// Video slots never carry an answer key.
	frozen, err := f.snapshots.FindByTestInstanceID(detail.ID)
	if err != nil {
		t.Fatalf("loading snapshots: %v", err)
	}
	for _, snap := range frozen {
		if snap.CorrectAnswerSnapshot != nil {
			t.Errorf("video slot %d carries an answer key", snap.OrderInTest)
		}
	}
}

func TestCreateTestPortugueseReadingSlot(t *testing.T) {
	f := newCreationFixture()
	text := f.readings.Add(model.ReadingText{Title: "fable", Body: "once upon a time", Version: 3, Active: true})
	f.seedGroup(t, model.TestTypePortuguese, "describe your weekend", "talk about your city")

	detail, err := f.svc.CreateTest(1, model.TestTypePortuguese, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(detail.Snapshots) != 4 {
		t.Fatalf("got %d snapshots, want 4 portuguese slots", len(detail.Snapshots))
	}
	if !strings.Contains(detail.Snapshots[0].QuestionText, "read the assigned text aloud") {
		t.Errorf("slot 1 = %q, want the read-aloud prompt", detail.Snapshots[0].QuestionText)
	}
	if detail.Snapshots[1].QuestionText != "describe your weekend" {
		t.Errorf("slot 2 = %q, want the group's first prompt after the reading slot", detail.Snapshots[1].QuestionText)
	}
	if detail.ReadingTextID == nil || *detail.ReadingTextID != text.ID {
		t.Errorf("ReadingTextID = %v, want %d", detail.ReadingTextID, text.ID)
	}
	if detail.ReadingTextVersion == nil || *detail.ReadingTextVersion != 3 {
		t.Errorf("ReadingTextVersion = %v, want the version pinned at assignment", detail.ReadingTextVersion)
	}
}

func TestCreateTestVideoSlotsWithoutGroupUsesPlaceholders(t *testing.T) {
	f := newCreationFixture()

	detail, err := f.svc.CreateTest(1, model.TestTypeMath, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(detail.Snapshots) != 2 {
		t.Fatalf("got %d snapshots, want 2 math slots", len(detail.Snapshots))
	}
	for i, snap := range detail.Snapshots {
		if snap.OrderInTest != i+1 {
			t.Errorf("slot %d has order %d", i, snap.OrderInTest)
		}
		if snap.QuestionText == "" {
			t.Errorf("slot %d has an empty prompt", i+1)
		}
	}
}
