package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/talentgate/assessment-api/internal/apperr"
	"github.com/talentgate/assessment-api/internal/dto"
	"github.com/talentgate/assessment-api/internal/event"
	"github.com/talentgate/assessment-api/internal/model"
	"github.com/talentgate/assessment-api/internal/repository"
	"github.com/talentgate/assessment-api/internal/storage"
)

const playbackURLTTL = 15 * time.Minute

// VideoResponseService handles uploaded video answers: validation, blob
// delegation, metadata persistence and the best-effort analysis hand-off.
type VideoResponseService interface {
	UploadVideo(ctx context.Context, testID, candidateID uint, snapshotID *uint, file *multipart.FileHeader) (*dto.VideoResponseDTO, error)
	DeleteVideo(ctx context.Context, testID, candidateID, videoID uint) error
	PlaybackURL(ctx context.Context, testID, candidateID, videoID uint) (*dto.VideoPlaybackDTO, error)
}

type videoResponseService struct {
	instanceRepo repository.TestInstanceRepository
	snapshotRepo repository.QuestionSnapshotRepository
	videoRepo    repository.VideoResponseRepository
	blobStore    storage.BlobStore
	notifier     event.VideoAnalysisNotifier
}

func NewVideoResponseService(
	instanceRepo repository.TestInstanceRepository,
	snapshotRepo repository.QuestionSnapshotRepository,
	videoRepo repository.VideoResponseRepository,
	blobStore storage.BlobStore,
	notifier event.VideoAnalysisNotifier,
) VideoResponseService {
	return &videoResponseService{
		instanceRepo: instanceRepo,
		snapshotRepo: snapshotRepo,
		videoRepo:    videoRepo,
		blobStore:    blobStore,
		notifier:     notifier,
	}
}

func (s *videoResponseService) UploadVideo(ctx context.Context, testID, candidateID uint, snapshotID *uint, file *multipart.FileHeader) (*dto.VideoResponseDTO, error) {
	// Ownership and state first: a non-owner learns nothing about the file
	// checks. Media validation still precedes any byte reaching the blob store.
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
	if err := validateVideoFile(file); err != nil {
		return nil, err
	}

	questionNumber, err := s.resolveQuestionNumber(testID, snapshotID)
	if err != nil {
		return nil, err
	}

	responseType := model.VideoResponseQuestionAnswer
	if instance.TestType == model.TestTypePortuguese && questionNumber == 1 {
		responseType = model.VideoResponseReading
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("opening uploaded file: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	key := fmt.Sprintf("tests/%d/q%02d-%d%s", testID, questionNumber, time.Now().UnixNano(), ext)
	contentType := file.Header.Get("Content-Type")

	reference, err := s.blobStore.Upload(ctx, key, src, file.Size, contentType)
	if err != nil {
		log.Error().Err(err).Uint("testID", testID).Msg("UploadVideo: blob upload failed")
		return nil, fmt.Errorf("uploading video: %w", err)
	}

	video := &model.VideoResponse{
		TestInstanceID:     testID,
		CandidateID:        candidateID,
		QuestionSnapshotID: snapshotID,
		QuestionNumber:     questionNumber,
		ResponseType:       responseType,
		BlobReference:      reference,
		FileSizeBytes:      file.Size,
		ContentType:        contentType,
		UploadedAt:         time.Now(),
	}
	if err := s.videoRepo.Create(video); err != nil {
		log.Error().Err(err).Uint("testID", testID).Msg("UploadVideo: failed to persist video metadata")
		return nil, fmt.Errorf("saving video metadata: %w", err)
	}

	// Analysis hand-off is fire-and-forget: a broker hiccup must never fail or
	// roll back the upload.
	go func(videoID uint) {
		if err := s.notifier.NotifyVideoReady(videoID); err != nil {
			log.Error().Err(err).Uint("videoResponseID", videoID).Msg("video analysis notification failed")
		}
	}(video.ID)

	log.Info().
		Uint("testID", testID).
		Uint("videoID", video.ID).
		Int("questionNumber", questionNumber).
		Int64("sizeBytes", file.Size).
		Msg("Video response uploaded")
	d := videoDTO(video)
	return &d, nil
}

func (s *videoResponseService) DeleteVideo(ctx context.Context, testID, candidateID, videoID uint) error {
	instance, err := s.instanceRepo.FindByID(testID)
	if err != nil {
		return err
	}
	if !instance.IsOwnedBy(candidateID) {
		return fmt.Errorf("test %d: %w", testID, apperr.ErrUnauthorized)
	}
	if instance.Status == model.StatusSubmitted {
		return fmt.Errorf("test %d is already submitted, videos are frozen: %w", testID, apperr.ErrInvalidTransition)
	}

	video, err := s.videoRepo.FindByID(videoID)
	if err != nil {
		return err
	}
	if video.TestInstanceID != testID {
		return fmt.Errorf("video %d does not belong to test %d: %w", videoID, testID, apperr.ErrNotFound)
	}

	// Blob delete is best-effort: a storage hiccup must not orphan an
	// otherwise valid deletion.
	if err := s.blobStore.Delete(ctx, video.BlobReference); err != nil {
		log.Warn().Err(err).Str("reference", video.BlobReference).Msg("DeleteVideo: blob delete failed, metadata will still be removed")
	}
	return s.videoRepo.Delete(videoID)
}

func (s *videoResponseService) PlaybackURL(ctx context.Context, testID, candidateID, videoID uint) (*dto.VideoPlaybackDTO, error) {
	instance, err := s.instanceRepo.FindByID(testID)
	if err != nil {
		return nil, err
	}
	if !instance.IsOwnedBy(candidateID) {
		return nil, fmt.Errorf("test %d: %w", testID, apperr.ErrUnauthorized)
	}

	video, err := s.videoRepo.FindByID(videoID)
	if err != nil {
		return nil, err
	}
	if video.TestInstanceID != testID {
		return nil, fmt.Errorf("video %d does not belong to test %d: %w", videoID, testID, apperr.ErrNotFound)
	}

	url, err := s.blobStore.TemporaryURL(ctx, video.BlobReference, playbackURLTTL)
	if err != nil {
		return nil, fmt.Errorf("generating playback url: %w", err)
	}
	return &dto.VideoPlaybackDTO{
		VideoResponseID: videoID,
		URL:             url,
		ExpiresInSecs:   int(playbackURLTTL.Seconds()),
	}, nil
}

// resolveQuestionNumber derives the slot from the snapshot's order when a
// snapshot is referenced, otherwise assigns the next sequential number.
func (s *videoResponseService) resolveQuestionNumber(testID uint, snapshotID *uint) (int, error) {
	if snapshotID != nil {
		snapshot, err := s.snapshotRepo.FindByID(*snapshotID)
		if err != nil {
			return 0, err
		}
		if snapshot.TestInstanceID != testID {
			return 0, fmt.Errorf("snapshot %d does not belong to test %d: %w", *snapshotID, testID, apperr.ErrNotFound)
		}
		return snapshot.OrderInTest, nil
	}
	count, err := s.videoRepo.CountByTestInstanceID(testID)
	if err != nil {
		return 0, fmt.Errorf("counting existing videos: %w", err)
	}
	return int(count) + 1, nil
}

func validateVideoFile(file *multipart.FileHeader) error {
	if file == nil {
		return fmt.Errorf("no file provided: %w", apperr.ErrInvalidMedia)
	}
	if file.Size <= 0 || file.Size > MaxVideoFileSizeBytes {
		return fmt.Errorf("file size %d outside allowed range (max %d bytes): %w", file.Size, MaxVideoFileSizeBytes, apperr.ErrInvalidMedia)
	}
	contentType := file.Header.Get("Content-Type")
	if !allowedVideoContentTypes[contentType] {
		return fmt.Errorf("content type %q not allowed: %w", contentType, apperr.ErrInvalidMedia)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedVideoExtensions[ext] {
		return fmt.Errorf("file extension %q not allowed: %w", ext, apperr.ErrInvalidMedia)
	}
	return nil
}
