package service

import (
	"errors"
	"testing"
	"time"

	"github.com/talentgate/assessment-api/internal/apperr"
	"github.com/talentgate/assessment-api/internal/model"
	"github.com/talentgate/assessment-api/internal/repository/memory"
)

func newTimeGuardAt(instances *memory.TestInstanceRepository, now time.Time) TimeGuardService {
	return &timeGuardService{instanceRepo: instances, now: func() time.Time { return now }}
}

func TestRemainingTime(t *testing.T) {
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		testType      model.TestType
		startedAgo    time.Duration // 0 means not started
		wantLimited   bool
		wantRemaining *int
	}{
		{
			name:          "visual retention mid-attempt",
			testType:      model.TestTypeVisualRetention, // 10 min limit
			startedAgo:    4 * time.Minute,
			wantLimited:   true,
			wantRemaining: intPtr(6 * 60),
		},
		{
			name:        "limited type before start has no countdown",
			testType:    model.TestTypePsychology,
			wantLimited: true,
		},
		{
			name:          "overdue attempt clamps at zero",
			testType:      model.TestTypeVisualRetention,
			startedAgo:    25 * time.Minute,
			wantLimited:   true,
			wantRemaining: intPtr(0),
		},
		{
			name:       "interview is untimed",
			testType:   model.TestTypeInterview,
			startedAgo: 3 * time.Hour,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			instances := memory.NewTestInstanceRepository()
			instance := model.TestInstance{CandidateID: 1, TestType: tc.testType, Status: model.StatusNotStarted}
			if tc.startedAgo > 0 {
				started := base.Add(-tc.startedAgo)
				instance.Status = model.StatusInProgress
				instance.StartedAt = &started
			}
			if err := instances.Create(&instance); err != nil {
				t.Fatalf("seeding: %v", err)
			}

			svc := newTimeGuardAt(instances, base)
			got, err := svc.RemainingTime(instance.ID, 1)
			if err != nil {
				t.Fatalf("RemainingTime: %v", err)
			}
			if got.TimeLimited != tc.wantLimited {
				t.Errorf("TimeLimited = %v, want %v", got.TimeLimited, tc.wantLimited)
			}
			switch {
			case tc.wantRemaining == nil && got.RemainingSeconds != nil:
				t.Errorf("RemainingSeconds = %d, want absent", *got.RemainingSeconds)
			case tc.wantRemaining != nil && got.RemainingSeconds == nil:
				t.Errorf("RemainingSeconds absent, want %d", *tc.wantRemaining)
			case tc.wantRemaining != nil && *got.RemainingSeconds != *tc.wantRemaining:
				t.Errorf("RemainingSeconds = %d, want %d", *got.RemainingSeconds, *tc.wantRemaining)
			}
		})
	}
}

func TestRemainingTimeOwnership(t *testing.T) {
	instances := memory.NewTestInstanceRepository()
	instance := model.TestInstance{CandidateID: 1, TestType: model.TestTypePsychology, Status: model.StatusNotStarted}
	if err := instances.Create(&instance); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	svc := newTimeGuardAt(instances, time.Now())
	if _, err := svc.RemainingTime(instance.ID, 42); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("foreign countdown: got %v, want ErrUnauthorized", err)
	}
	if _, err := svc.RemainingTime(999, 1); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown test: got %v, want ErrNotFound", err)
	}
}
