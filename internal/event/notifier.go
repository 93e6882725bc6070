package event

import "github.com/rs/zerolog/log"

// VideoAnalysisNotifier hands an uploaded video off to the external AI-analysis
// pipeline. Dispatch is fire-and-forget: failures are logged by the caller and
// never affect the upload itself.
type VideoAnalysisNotifier interface {
	NotifyVideoReady(videoResponseID uint) error
}

// LogNotifier is the dev fallback used when no broker is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) NotifyVideoReady(videoResponseID uint) error {
	log.Info().Uint("videoResponseID", videoResponseID).Msg("video ready (no broker configured, notification logged only)")
	return nil
}
