package candidate

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/talentgate/assessment-api/internal/dto"
	"github.com/talentgate/assessment-api/internal/service"
)

type VideoController struct {
	videoService service.VideoResponseService
}

func NewVideoController(videoService service.VideoResponseService) *VideoController {
	return &VideoController{videoService: videoService}
}

// UploadVideo godoc
// @Summary Upload a video answer
// @Description Validates size/type/extension, stores the bytes in the blob store and records the metadata. The analysis hand-off is asynchronous and best-effort.
// @Tags Videos
// @Accept mpfd
// @Produce json
// @Param test_id path int true "Test ID"
// @Param candidate_id formData int true "Candidate ID"
// @Param question_snapshot_id formData int false "Snapshot the video answers; question number is derived from its order"
// @Param file formData file true "Video file (max 200 MB)"
// @Success 201 {object} dto.VideoResponseDTO
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 409 {object} dto.ErrorResponse "Test already submitted"
// @Failure 422 {object} dto.ErrorResponse "File fails media validation"
// @Router /tests/{test_id}/videos [post]
func (c *VideoController) UploadVideo(ctx *gin.Context) {
	testID, ok := pathID(ctx, "test_id")
	if !ok {
		return
	}

	candidateID, err := strconv.ParseUint(ctx.PostForm("candidate_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid candidate_id format"})
		return
	}

	var snapshotID *uint
	if raw := ctx.PostForm("question_snapshot_id"); raw != "" {
		val, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid question_snapshot_id format"})
			return
		}
		id := uint(val)
		snapshotID = &id
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Missing video file", Details: []string{err.Error()}})
		return
	}

	video, err := c.videoService.UploadVideo(ctx.Request.Context(), testID, uint(candidateID), snapshotID, file)
	if err != nil {
		log.Warn().Err(err).Uint("testID", testID).Msg("UploadVideo failed")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, video)
}

// DeleteVideo godoc
// @Summary Delete a video answer before submission
// @Tags Videos
// @Produce json
// @Param test_id path int true "Test ID"
// @Param video_id path int true "Video response ID"
// @Param candidate_id query int true "Candidate ID"
// @Success 204 "Deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 409 {object} dto.ErrorResponse "Test already submitted"
// @Router /tests/{test_id}/videos/{video_id} [delete]
func (c *VideoController) DeleteVideo(ctx *gin.Context) {
	testID, candidateID, ok := testAndCandidateIDs(ctx)
	if !ok {
		return
	}
	videoID, ok := pathID(ctx, "video_id")
	if !ok {
		return
	}
	if err := c.videoService.DeleteVideo(ctx.Request.Context(), testID, candidateID, videoID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetPlaybackURL godoc
// @Summary Get a temporary playback URL for an uploaded video
// @Tags Videos
// @Produce json
// @Param test_id path int true "Test ID"
// @Param video_id path int true "Video response ID"
// @Param candidate_id query int true "Candidate ID"
// @Success 200 {object} dto.VideoPlaybackDTO
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Video not found"
// @Router /tests/{test_id}/videos/{video_id}/url [get]
func (c *VideoController) GetPlaybackURL(ctx *gin.Context) {
	testID, candidateID, ok := testAndCandidateIDs(ctx)
	if !ok {
		return
	}
	videoID, ok := pathID(ctx, "video_id")
	if !ok {
		return
	}
	playback, err := c.videoService.PlaybackURL(ctx.Request.Context(), testID, candidateID, videoID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, playback)
}
