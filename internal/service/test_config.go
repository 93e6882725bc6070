package service

import (
	"github.com/talentgate/assessment-api/internal/model"
)

// SelectionMode decides how the snapshot engine picks templates for a type.
type SelectionMode int

const (
	// SelectFixedOrder snapshots every active template in canonical order,
	// ignoring the requested difficulty. The whole instrument, same for every
	// candidate.
	SelectFixedOrder SelectionMode = iota
	// SelectRandomSample snapshots a fixed number of random templates at the
	// requested difficulty.
	SelectRandomSample
	// SelectVideoSlots snapshots the curated question group, padding missing
	// slots with synthesized prompts. Always manually graded.
	SelectVideoSlots
)

// TestTypeConfig is the read-only per-type table shared by all requests.
type TestTypeConfig struct {
	Selection     SelectionMode
	QuestionCount int  // 0 means "all" (fixed-order types)
	TimeLimitSecs *int // nil means no time limit
	ReadingSlot   bool // slot 1 is a read-aloud prompt tied to a reading text
}

var testTypeConfigs = map[model.TestType]TestTypeConfig{
	model.TestTypePortuguese: {
		Selection:     SelectVideoSlots,
		QuestionCount: 4,
		TimeLimitSecs: intPtr(20 * 60),
		ReadingSlot:   true,
	},
	model.TestTypeMath: {
		Selection:     SelectVideoSlots,
		QuestionCount: 2,
		TimeLimitSecs: intPtr(30 * 60),
	},
	model.TestTypeInterview: {
		Selection:     SelectVideoSlots,
		QuestionCount: 5,
		// Interviews are not time-boxed.
	},
	model.TestTypePsychology: {
		Selection:     SelectFixedOrder,
		TimeLimitSecs: intPtr(40 * 60),
	},
	model.TestTypeVisualRetention: {
		Selection:     SelectRandomSample,
		QuestionCount: 5,
		TimeLimitSecs: intPtr(10 * 60),
	},
}

// ConfigForTestType returns the per-type configuration table entry.
func ConfigForTestType(testType model.TestType) (TestTypeConfig, bool) {
	cfg, ok := testTypeConfigs[testType]
	return cfg, ok
}

// Video upload validation limits.
const MaxVideoFileSizeBytes int64 = 200 << 20 // 200 MB

var allowedVideoContentTypes = map[string]bool{
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
	"video/x-msvideo": true,
}

var allowedVideoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mov":  true,
	".avi":  true,
}

func intPtr(v int) *int { return &v }
