package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dossier/internal/models/request_models"
	"dossier/internal/services"
	"dossier/pkg/utils"
)

type FeedbackController struct {
	feedbackService services.FeedbackServiceInterface
}

func NewFeedbackController(feedbackService services.FeedbackServiceInterface) *FeedbackController {
	return &FeedbackController{feedbackService: feedbackService}
}

// AddFeedback godoc
// @Summary Rate a drafted section
// @Description Add a rating and optional comment on the text drafted for one module
// @Tags Feedback
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body request_models.AddFeedbackRequest true "Feedback payload"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/feedback [post]
func (f *FeedbackController) AddFeedback(c *gin.Context) {
	var req request_models.AddFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := f.feedbackService.AddFeedback(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondCreated(c, nil, "Thanks, your rating was recorded")
}

// ListFeedback godoc
// @Summary List feedback
// @Description Paginated feedback, optionally for one module, with the average rating per module
// @Tags Feedback
// @Produce json
// @Param module query string false "Module ID"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(10) minimum(1) maximum(100)
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Security BearerAuth
// @Router /feedback [get]
func (f *FeedbackController) ListFeedback(c *gin.Context) {
	var req request_models.ListFeedbackRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	report, err := f.feedbackService.GetFeedback(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, report, "Feedback fetched successfully")
}
