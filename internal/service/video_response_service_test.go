package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/talentgate/assessment-api/internal/apperr"
	"github.com/talentgate/assessment-api/internal/model"
	"github.com/talentgate/assessment-api/internal/repository/memory"
)

type fakeBlobStore struct {
	mu        sync.Mutex
	uploads   map[string][]byte
	deleted   []string
	deleteErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{uploads: make(map[string][]byte)}
}

func (s *fakeBlobStore) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[key] = data
	return key, nil
}

func (s *fakeBlobStore) Delete(_ context.Context, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, reference)
	delete(s.uploads, reference)
	return nil
}

func (s *fakeBlobStore) TemporaryURL(_ context.Context, reference string, _ time.Duration) (string, error) {
	return "https://signed.example/" + reference, nil
}

type recordingNotifier struct {
	notified chan uint
	err      error
}

func (n *recordingNotifier) NotifyVideoReady(videoResponseID uint) error {
	if n.notified != nil {
		n.notified <- videoResponseID
	}
	return n.err
}

type videoFixture struct {
	instances *memory.TestInstanceRepository
	snapshots *memory.QuestionSnapshotRepository
	videos    *memory.VideoResponseRepository
	blobs     *fakeBlobStore
	notifier  *recordingNotifier
	svc       VideoResponseService
}

func newVideoFixture() *videoFixture {
	f := &videoFixture{
		instances: memory.NewTestInstanceRepository(),
		snapshots: memory.NewQuestionSnapshotRepository(),
		videos:    memory.NewVideoResponseRepository(),
		blobs:     newFakeBlobStore(),
		notifier:  &recordingNotifier{notified: make(chan uint, 8)},
	}
	f.svc = NewVideoResponseService(f.instances, f.snapshots, f.videos, f.blobs, f.notifier)
	return f
}

func (f *videoFixture) seedAttempt(t *testing.T, candidateID uint, testType model.TestType, status model.TestStatus, slots int) (*model.TestInstance, []model.QuestionSnapshot) {
	t.Helper()
	instance := model.TestInstance{CandidateID: candidateID, TestType: testType, Status: status}
	if err := f.instances.Create(&instance); err != nil {
		t.Fatalf("seeding instance: %v", err)
	}
	snapshots := make([]model.QuestionSnapshot, slots)
	for i := range snapshots {
		snapshots[i] = model.QuestionSnapshot{TestInstanceID: instance.ID, QuestionText: "q", OrderInTest: i + 1}
	}
	if err := f.snapshots.CreateInBatch(snapshots); err != nil {
		t.Fatalf("seeding snapshots: %v", err)
	}
	return &instance, snapshots
}

// videoFileHeader builds a real multipart part so FileHeader.Open works.
func videoFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("creating part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("writing part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}
	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("reading form: %v", err)
	}
	return form.File["file"][0]
}

func TestUploadVideoValidation(t *testing.T) {
	header := func(filename, contentType string, size int64) *multipart.FileHeader {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Type", contentType)
		return &multipart.FileHeader{Filename: filename, Header: h, Size: size}
	}

	tests := []struct {
		name string
		file *multipart.FileHeader
	}{
		{"nil file", nil},
		{"empty file", header("a.mp4", "video/mp4", 0)},
		{"over the size cap", header("a.mp4", "video/mp4", MaxVideoFileSizeBytes+1)},
		{"disallowed content type", header("a.mp4", "application/pdf", 100)},
		{"disallowed extension", header("a.exe", "video/mp4", 100)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newVideoFixture()
			instance, _ := f.seedAttempt(t, 1, model.TestTypeMath, model.StatusInProgress, 2)

			_, err := f.svc.UploadVideo(context.Background(), instance.ID, 1, nil, tc.file)
			if !errors.Is(err, apperr.ErrInvalidMedia) {
				t.Fatalf("got %v, want ErrInvalidMedia", err)
			}
			if len(f.blobs.uploads) != 0 {
				t.Errorf("rejected file still reached the blob store")
			}
		})
	}
}

func TestUploadVideoStoresBlobAndMetadata(t *testing.T) {
	f := newVideoFixture()
	instance, _ := f.seedAttempt(t, 1, model.TestTypeMath, model.StatusInProgress, 2)
	content := []byte("fake mp4 bytes")

	video, err := f.svc.UploadVideo(context.Background(), instance.ID, 1, nil,
		videoFileHeader(t, "answer.mp4", "video/mp4", content))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if video.QuestionNumber != 1 {
		t.Errorf("first upload got question number %d, want 1", video.QuestionNumber)
	}
	if video.ResponseType != string(model.VideoResponseQuestionAnswer) {
		t.Errorf("response type = %q, want question_answer", video.ResponseType)
	}
	if video.FileSizeBytes != int64(len(content)) {
		t.Errorf("size = %d, want %d", video.FileSizeBytes, len(content))
	}
	stored, ok := f.blobs.uploads[video.BlobReference]
	if !ok {
		t.Fatalf("blob %q not stored", video.BlobReference)
	}
	if !bytes.Equal(stored, content) {
		t.Errorf("stored bytes differ from the upload")
	}

	// The analysis hand-off fires asynchronously with the metadata id.
	select {
	case id := <-f.notifier.notified:
		if id != video.ID {
			t.Errorf("notified for video %d, want %d", id, video.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no analysis notification within 2s")
	}

	// A second anonymous upload takes the next sequential slot.
	second, err := f.svc.UploadVideo(context.Background(), instance.ID, 1, nil,
		videoFileHeader(t, "answer2.webm", "video/webm", content))
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if second.QuestionNumber != 2 {
		t.Errorf("second upload got question number %d, want 2", second.QuestionNumber)
	}
}

func TestUploadVideoQuestionNumberFromSnapshot(t *testing.T) {
	f := newVideoFixture()
	instance, snapshots := f.seedAttempt(t, 1, model.TestTypeInterview, model.StatusInProgress, 5)
	_, foreign := f.seedAttempt(t, 2, model.TestTypeInterview, model.StatusInProgress, 1)

	video, err := f.svc.UploadVideo(context.Background(), instance.ID, 1, &snapshots[2].ID,
		videoFileHeader(t, "q3.mov", "video/quicktime", []byte("v")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if video.QuestionNumber != 3 {
		t.Errorf("question number = %d, want the snapshot's order 3", video.QuestionNumber)
	}

	_, err = f.svc.UploadVideo(context.Background(), instance.ID, 1, &foreign[0].ID,
		videoFileHeader(t, "q.mp4", "video/mp4", []byte("v")))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("foreign snapshot: got %v, want ErrNotFound", err)
	}
}

func TestUploadVideoPortugueseReadingSlot(t *testing.T) {
	f := newVideoFixture()
	instance, snapshots := f.seedAttempt(t, 1, model.TestTypePortuguese, model.StatusInProgress, 4)

	reading, err := f.svc.UploadVideo(context.Background(), instance.ID, 1, &snapshots[0].ID,
		videoFileHeader(t, "reading.mp4", "video/mp4", []byte("v")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if reading.ResponseType != string(model.VideoResponseReading) {
		t.Errorf("slot 1 response type = %q, want reading", reading.ResponseType)
	}

	answer, err := f.svc.UploadVideo(context.Background(), instance.ID, 1, &snapshots[1].ID,
		videoFileHeader(t, "answer.mp4", "video/mp4", []byte("v")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if answer.ResponseType != string(model.VideoResponseQuestionAnswer) {
		t.Errorf("slot 2 response type = %q, want question_answer", answer.ResponseType)
	}
}

func TestUploadVideoGuards(t *testing.T) {
	f := newVideoFixture()
	open, _ := f.seedAttempt(t, 1, model.TestTypeMath, model.StatusInProgress, 2)
	closed, _ := f.seedAttempt(t, 1, model.TestTypeInterview, model.StatusSubmitted, 2)
	file := videoFileHeader(t, "a.mp4", "video/mp4", []byte("v"))

	if _, err := f.svc.UploadVideo(context.Background(), open.ID, 42, nil, file); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("foreign upload: got %v, want ErrUnauthorized", err)
	}
	if _, err := f.svc.UploadVideo(context.Background(), closed.ID, 1, nil, file); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("upload after submit: got %v, want ErrInvalidTransition", err)
	}
}

// Ownership and state answer before any file inspection: a non-owner with a
// bad file learns nothing about the media rules.
func TestUploadVideoGuardsPrecedeMediaValidation(t *testing.T) {
	f := newVideoFixture()
	open, _ := f.seedAttempt(t, 1, model.TestTypeMath, model.StatusInProgress, 2)
	closed, _ := f.seedAttempt(t, 1, model.TestTypeInterview, model.StatusSubmitted, 2)

	badHeader := make(textproto.MIMEHeader)
	badHeader.Set("Content-Type", "application/pdf")
	bad := &multipart.FileHeader{Filename: "a.exe", Header: badHeader, Size: MaxVideoFileSizeBytes + 1}

	if _, err := f.svc.UploadVideo(context.Background(), open.ID, 42, nil, bad); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("foreign upload with a bad file: got %v, want ErrUnauthorized", err)
	}
	if _, err := f.svc.UploadVideo(context.Background(), closed.ID, 1, nil, bad); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("post-submit upload with a bad file: got %v, want ErrInvalidTransition", err)
	}
	if _, err := f.svc.UploadVideo(context.Background(), open.ID, 1, nil, nil); !errors.Is(err, apperr.ErrInvalidMedia) {
		t.Fatalf("owner with a missing file: got %v, want ErrInvalidMedia", err)
	}
}

func TestUploadVideoSurvivesNotifierFailure(t *testing.T) {
	f := newVideoFixture()
	f.notifier.notified = nil
	f.notifier.err = errors.New("broker unreachable")
	instance, _ := f.seedAttempt(t, 1, model.TestTypeMath, model.StatusInProgress, 2)

	video, err := f.svc.UploadVideo(context.Background(), instance.ID, 1, nil,
		videoFileHeader(t, "a.mp4", "video/mp4", []byte("v")))
	if err != nil {
		t.Fatalf("upload must not fail on a notifier error: %v", err)
	}
	if _, err := f.videos.FindByID(video.ID); err != nil {
		t.Fatalf("metadata missing after notifier failure: %v", err)
	}
}

func TestDeleteVideoBestEffortBlob(t *testing.T) {
	f := newVideoFixture()
	instance, _ := f.seedAttempt(t, 1, model.TestTypeMath, model.StatusInProgress, 2)
	video, err := f.svc.UploadVideo(context.Background(), instance.ID, 1, nil,
		videoFileHeader(t, "a.mp4", "video/mp4", []byte("v")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	// A blob-store failure must not block the metadata deletion.
	f.blobs.deleteErr = errors.New("storage unreachable")
	if err := f.svc.DeleteVideo(context.Background(), instance.ID, 1, video.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.videos.FindByID(video.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("metadata still present after delete: %v", err)
	}
}

func TestDeleteVideoGuards(t *testing.T) {
	f := newVideoFixture()
	instance, _ := f.seedAttempt(t, 1, model.TestTypeMath, model.StatusInProgress, 2)
	other, _ := f.seedAttempt(t, 2, model.TestTypeMath, model.StatusInProgress, 2)
	video, err := f.svc.UploadVideo(context.Background(), instance.ID, 1, nil,
		videoFileHeader(t, "a.mp4", "video/mp4", []byte("v")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := f.svc.DeleteVideo(context.Background(), instance.ID, 42, video.ID); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("foreign delete: got %v, want ErrUnauthorized", err)
	}
	if err := f.svc.DeleteVideo(context.Background(), other.ID, 2, video.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("cross-test delete: got %v, want ErrNotFound", err)
	}
}

func TestPlaybackURL(t *testing.T) {
	f := newVideoFixture()
	instance, _ := f.seedAttempt(t, 1, model.TestTypeMath, model.StatusInProgress, 2)
	video, err := f.svc.UploadVideo(context.Background(), instance.ID, 1, nil,
		videoFileHeader(t, "a.mp4", "video/mp4", []byte("v")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	playback, err := f.svc.PlaybackURL(context.Background(), instance.ID, 1, video.ID)
	if err != nil {
		t.Fatalf("playback: %v", err)
	}
	if playback.URL != "https://signed.example/"+video.BlobReference {
		t.Errorf("url = %q", playback.URL)
	}
	if playback.ExpiresInSecs != int(playbackURLTTL.Seconds()) {
		t.Errorf("expiry = %d, want %d", playback.ExpiresInSecs, int(playbackURLTTL.Seconds()))
	}

	if _, err := f.svc.PlaybackURL(context.Background(), instance.ID, 42, video.ID); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("foreign playback: got %v, want ErrUnauthorized", err)
	}
}
