package model

// TestType identifies one of the fixed assessments a candidate can take.
type TestType string

const (
	TestTypePortuguese      TestType = "portuguese"
	TestTypeMath            TestType = "math"
	TestTypePsychology      TestType = "psychology"
	TestTypeVisualRetention TestType = "visual_retention"
	TestTypeInterview       TestType = "interview"
)

// TestStatus is the attempt state machine: not_started -> in_progress -> submitted.
type TestStatus string

const (
	StatusNotStarted TestStatus = "not_started"
	StatusInProgress TestStatus = "in_progress"
	StatusSubmitted  TestStatus = "submitted"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// VideoResponseType distinguishes the Portuguese read-aloud slot from regular
// question answers.
type VideoResponseType string

const (
	VideoResponseReading        VideoResponseType = "reading"
	VideoResponseQuestionAnswer VideoResponseType = "question_answer"
)

func ValidTestType(t TestType) bool {
	switch t {
	case TestTypePortuguese, TestTypeMath, TestTypePsychology, TestTypeVisualRetention, TestTypeInterview:
		return true
	}
	return false
}
