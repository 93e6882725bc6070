package candidate

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/talentgate/assessment-api/internal/dto"
	"github.com/talentgate/assessment-api/internal/model"
	"github.com/talentgate/assessment-api/internal/service"
)

type TestController struct {
	creationService  service.TestCreationService
	lifecycleService service.TestLifecycleService
	queryService     service.TestQueryService
	answerService    service.AnswerSubmissionService
	timeGuard        service.TimeGuardService
}

func NewTestController(
	creationService service.TestCreationService,
	lifecycleService service.TestLifecycleService,
	queryService service.TestQueryService,
	answerService service.AnswerSubmissionService,
	timeGuard service.TimeGuardService,
) *TestController {
	return &TestController{
		creationService:  creationService,
		lifecycleService: lifecycleService,
		queryService:     queryService,
		answerService:    answerService,
		timeGuard:        timeGuard,
	}
}

// CreateTest godoc
// @Summary Create a new test attempt
// @Description Creates an attempt with frozen question snapshots. Fails with 409 when the candidate already has an open or submitted attempt of the type.
// @Tags Tests
// @Accept json
// @Produce json
// @Param request body dto.TestCreateDTO true "Candidate, test type and difficulty"
// @Success 201 {object} dto.TestInstanceDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 409 {object} dto.ErrorResponse "Attempt already exists"
// @Failure 422 {object} dto.ErrorResponse "Question bank cannot satisfy the test"
// @Router /tests [post]
func (c *TestController) CreateTest(ctx *gin.Context) {
	var req dto.TestCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	detail, err := c.creationService.CreateTest(req.CandidateID, model.TestType(req.TestType), model.DifficultyLevel(req.DifficultyLevel))
	if err != nil {
		log.Warn().Err(err).Uint("candidateID", req.CandidateID).Str("testType", req.TestType).Msg("CreateTest failed")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, detail)
}

// GetTest godoc
// @Summary Get a hydrated test attempt
// @Tags Tests
// @Produce json
// @Param test_id path int true "Test ID"
// @Param candidate_id query int true "Candidate ID"
// @Success 200 {object} dto.TestInstanceDetailDTO
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /tests/{test_id} [get]
func (c *TestController) GetTest(ctx *gin.Context) {
	testID, candidateID, ok := testAndCandidateIDs(ctx)
	if !ok {
		return
	}
	detail, err := c.queryService.GetTest(testID, candidateID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// GetCandidateTests godoc
// @Summary List a candidate's attempts
// @Tags Tests
// @Produce json
// @Param candidate_id path int true "Candidate ID"
// @Success 200 {array} dto.TestInstanceSummaryDTO
// @Router /candidates/{candidate_id}/tests [get]
func (c *TestController) GetCandidateTests(ctx *gin.Context) {
	candidateID, ok := pathID(ctx, "candidate_id")
	if !ok {
		return
	}
	summaries, err := c.queryService.GetCandidateTests(candidateID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, summaries)
}

// StartTest godoc
// @Summary Start a test attempt
// @Description Moves a not-started attempt to in-progress and starts the clock.
// @Tags Tests
// @Accept json
// @Produce json
// @Param test_id path int true "Test ID"
// @Param request body dto.TestStartDTO true "Candidate ID"
// @Success 200 {object} dto.TestInstanceDetailDTO
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 409 {object} dto.ErrorResponse "Test is not in the not-started state"
// @Router /tests/{test_id}/start [post]
func (c *TestController) StartTest(ctx *gin.Context) {
	testID, ok := pathID(ctx, "test_id")
	if !ok {
		return
	}
	var req dto.TestStartDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	detail, err := c.lifecycleService.StartTest(testID, req.CandidateID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// SubmitTest godoc
// @Summary Submit a test attempt
// @Description Merges any final answers, auto-grades multiple-choice responses and closes the attempt.
// @Tags Tests
// @Accept json
// @Produce json
// @Param test_id path int true "Test ID"
// @Param request body dto.TestSubmitDTO true "Candidate ID and optional final answers"
// @Success 200 {object} dto.TestInstanceDetailDTO
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 409 {object} dto.ErrorResponse "Test is not in progress"
// @Router /tests/{test_id}/submit [post]
func (c *TestController) SubmitTest(ctx *gin.Context) {
	testID, ok := pathID(ctx, "test_id")
	if !ok {
		return
	}
	var req dto.TestSubmitDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	detail, err := c.lifecycleService.SubmitTest(testID, req.CandidateID, req)
	if err != nil {
		log.Warn().Err(err).Uint("testID", testID).Msg("SubmitTest failed")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// SubmitAnswers godoc
// @Summary Submit or revise answers incrementally
// @Description Upserts each answer: a second submission for the same question updates the existing response. Items for questions outside this test are skipped.
// @Tags Tests
// @Accept json
// @Produce json
// @Param test_id path int true "Test ID"
// @Param request body dto.AnswerBatchDTO true "Candidate ID and answers"
// @Success 200 {array} dto.QuestionResponseDTO
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 409 {object} dto.ErrorResponse "Test already submitted"
// @Router /tests/{test_id}/answers [post]
func (c *TestController) SubmitAnswers(ctx *gin.Context) {
	testID, ok := pathID(ctx, "test_id")
	if !ok {
		return
	}
	var req dto.AnswerBatchDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	responses, err := c.answerService.SubmitAnswers(testID, req.CandidateID, req.Answers)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, responses)
}

// DeleteResponse godoc
// @Summary Delete an answer before submission
// @Tags Tests
// @Produce json
// @Param test_id path int true "Test ID"
// @Param response_id path int true "Response ID"
// @Param candidate_id query int true "Candidate ID"
// @Success 204 "Deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 409 {object} dto.ErrorResponse "Test already submitted"
// @Router /tests/{test_id}/responses/{response_id} [delete]
func (c *TestController) DeleteResponse(ctx *gin.Context) {
	testID, candidateID, ok := testAndCandidateIDs(ctx)
	if !ok {
		return
	}
	responseID, ok := pathID(ctx, "response_id")
	if !ok {
		return
	}
	if err := c.answerService.DeleteResponse(testID, candidateID, responseID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetRemainingTime godoc
// @Summary Get the advisory countdown for a time-boxed test
// @Tags Tests
// @Produce json
// @Param test_id path int true "Test ID"
// @Param candidate_id query int true "Candidate ID"
// @Success 200 {object} dto.RemainingTimeDTO
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /tests/{test_id}/remaining-time [get]
func (c *TestController) GetRemainingTime(ctx *gin.Context) {
	testID, candidateID, ok := testAndCandidateIDs(ctx)
	if !ok {
		return
	}
	remaining, err := c.timeGuard.RemainingTime(testID, candidateID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, remaining)
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(val), true
}

func testAndCandidateIDs(ctx *gin.Context) (uint, uint, bool) {
	testID, ok := pathID(ctx, "test_id")
	if !ok {
		return 0, 0, false
	}
	val, err := strconv.ParseUint(ctx.Query("candidate_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid candidate_id format"})
		return 0, 0, false
	}
	return testID, uint(val), true
}
