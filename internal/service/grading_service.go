package service

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/talentgate/assessment-api/internal/model"
)

// GradingService scores multiple-choice responses against snapshot answer
// keys. Video and other key-less snapshots never contribute to either side of
// the score.
type GradingService interface {
	// GradeAttempt marks every gradable response and fills the instance's
	// RawScore, MaxPossibleScore and Score. Responses are mutated in place;
	// persistence is the caller's job.
	GradeAttempt(instance *model.TestInstance, snapshots []model.QuestionSnapshot, responses []*model.QuestionResponse)
}

type gradingService struct{}

func NewGradingService() GradingService {
	return &gradingService{}
}

func (s *gradingService) GradeAttempt(instance *model.TestInstance, snapshots []model.QuestionSnapshot, responses []*model.QuestionResponse) {
	bySnapshot := make(map[uint]*model.QuestionResponse, len(responses))
	for _, r := range responses {
		bySnapshot[r.QuestionSnapshotID] = r
	}

	var earned, total float64
	for i := range snapshots {
		snap := &snapshots[i]
		if !snap.AutoGradable() {
			continue
		}
		// The denominator counts every gradable snapshot, answered or not.
		total += snap.PointValue

		resp, ok := bySnapshot[snap.ID]
		if !ok {
			continue
		}

		correctSet, err := model.DecodeAnswerSet(*snap.CorrectAnswerSnapshot)
		if err != nil {
			log.Error().Err(err).Uint("snapshotID", snap.ID).Msg("GradeAttempt: unreadable answer key, snapshot left ungraded")
			continue
		}
		selectedSet, err := model.DecodeAnswerSet(resp.SelectedAnswers)
		if err != nil {
			log.Warn().Err(err).Uint("responseID", resp.ID).Msg("GradeAttempt: unreadable selected answers, marking incorrect")
			selectedSet = nil
		}

		correct := answerSetsEqual(selectedSet, correctSet)
		points := 0.0
		if correct {
			points = snap.PointValue
		}
		resp.IsCorrect = &correct
		resp.PointsEarned = &points
		earned += points
	}

	score := 0.0
	if total > 0 {
		score = round2(earned / total * 100)
	}
	instance.RawScore = &earned
	instance.MaxPossibleScore = &total
	instance.Score = &score
}

// answerSetsEqual compares two answer sets ignoring selection order.
func answerSetsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
