package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dossier/internal/models/request_models"
	"dossier/internal/models/response_models"
	"dossier/internal/services"
	"dossier/internal/wizard"
	"dossier/pkg/utils"
)

func init() {
	utils.RegisterErrorMatcher(wizard.IsValidationRejected, http.StatusUnprocessableEntity, "")
	for _, err := range []error{wizard.ErrEmptyContent, wizard.ErrNothingSelected, wizard.ErrUnknownChoice, wizard.ErrAssistUnsupported} {
		utils.RegisterErrorStatus(err, http.StatusUnprocessableEntity, "")
	}
	for _, err := range []error{
		wizard.ErrRequestInFlight,
		wizard.ErrGenerationInProgress,
		wizard.ErrStaleGeneration,
		wizard.ErrNoDraft,
		wizard.ErrNotEditing,
		wizard.ErrNoGenerationStep,
		wizard.ErrWizardComplete,
		wizard.ErrNoActiveChat,
		wizard.ErrNoGeneratedText,
	} {
		utils.RegisterErrorStatus(err, http.StatusConflict, "")
	}
	utils.RegisterErrorStatus(wizard.ErrChoiceGenerationFailed, http.StatusBadGateway, "")
	utils.RegisterErrorStatus(wizard.ErrUnknownModule, http.StatusBadRequest, "")
	utils.RegisterErrorStatus(wizard.ErrUnknownQuestion, http.StatusBadRequest, "")
}

type WizardController struct {
	wizardService services.WizardServiceInterface
}

func NewWizardController(wizardService services.WizardServiceInterface) *WizardController {
	return &WizardController{wizardService: wizardService}
}

// respondView answers with the view even when the action failed, so the
// client can keep rendering the screen it left.
func respondView(c *gin.Context, view *response_models.WizardView, err error, message string) {
	if err != nil {
		if view != nil {
			utils.RespondErrorWithData(c, err, view)
			return
		}
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, view, message)
}

// GetWizard godoc
// @Summary Current wizard screen
// @Description Opens the project's wizard session if needed and returns the current screen
// @Tags Wizard
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard [get]
func (w *WizardController) GetWizard(c *gin.Context) {
	view, err := w.wizardService.View(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	respondView(c, view, err, "Wizard loaded")
}

// Answer godoc
// @Summary Answer the current question
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body request_models.AnswerRequest true "Typed answer"
// @Success 200 {object} utils.APIResponse
// @Failure 422 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/answer [put]
func (w *WizardController) Answer(c *gin.Context) {
	var req request_models.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	view, err := w.wizardService.Answer(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req.Value)
	respondView(c, view, err, "Answer saved")
}

// Next godoc
// @Summary Move to the next question or module
// @Description On the last question of a generated module the draft is produced
// @Tags Wizard
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/next [post]
func (w *WizardController) Next(c *gin.Context) {
	view, err := w.wizardService.Next(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	respondView(c, view, err, "OK")
}

// Previous godoc
// @Summary Move to the previous question
// @Tags Wizard
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/previous [post]
func (w *WizardController) Previous(c *gin.Context) {
	view, err := w.wizardService.Previous(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	respondView(c, view, err, "OK")
}

// Jump godoc
// @Summary Jump to a module
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body request_models.JumpRequest true "Module index"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/jump [post]
func (w *WizardController) Jump(c *gin.Context) {
	var req request_models.JumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	view, err := w.wizardService.Jump(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req.ModuleIndex)
	respondView(c, view, err, "OK")
}

// SetAIPanel godoc
// @Summary Open or close the assistance panel
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body request_models.AIPanelRequest true "Panel state"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/ai-panel [put]
func (w *WizardController) SetAIPanel(c *gin.Context) {
	var req request_models.AIPanelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	view, err := w.wizardService.SetAIPanel(c.Request.Context(), c.GetString("user_id"), c.Param("id"), *req.Open)
	respondView(c, view, err, "OK")
}

// RequestChoices godoc
// @Summary Propose answer choices for the current question
// @Tags Wizard
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/choices [post]
func (w *WizardController) RequestChoices(c *gin.Context) {
	view, err := w.wizardService.RequestChoices(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	respondView(c, view, err, "Choices proposed")
}

// ToggleChoice godoc
// @Summary Select or unselect a proposed choice
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body request_models.ToggleChoiceRequest true "Choice"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/choices/toggle [post]
func (w *WizardController) ToggleChoice(c *gin.Context) {
	var req request_models.ToggleChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	view, err := w.wizardService.ToggleChoice(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req.Choice)
	respondView(c, view, err, "OK")
}

// AssembleChoices godoc
// @Summary Turn the selected choices into answer text
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body request_models.AssembleChoicesRequest false "Optional free text"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/choices/assemble [post]
func (w *WizardController) AssembleChoices(c *gin.Context) {
	var req request_models.AssembleChoicesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
			return
		}
	}
	view, err := w.wizardService.AssembleChoices(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req.FreeText)
	respondView(c, view, err, "Text assembled")
}

// ApplyChoices godoc
// @Summary Use the assembled text as the answer and advance
// @Tags Wizard
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/choices/apply [post]
func (w *WizardController) ApplyChoices(c *gin.Context) {
	view, err := w.wizardService.ApplyChoices(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	respondView(c, view, err, "Answer applied")
}

// StartChat godoc
// @Summary Start the assistant conversation on the current question
// @Tags Wizard
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/chat [post]
func (w *WizardController) StartChat(c *gin.Context) {
	view, err := w.wizardService.StartChat(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	respondView(c, view, err, "Conversation started")
}

// ReplyChat godoc
// @Summary Reply to the assistant
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body request_models.ChatReplyRequest true "Reply"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/chat/reply [post]
func (w *WizardController) ReplyChat(c *gin.Context) {
	var req request_models.ChatReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	view, err := w.wizardService.ReplyChat(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req.Text)
	respondView(c, view, err, "OK")
}

// AcceptChat godoc
// @Summary Use the conversation text as the answer and advance
// @Tags Wizard
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/chat/accept [post]
func (w *WizardController) AcceptChat(c *gin.Context) {
	view, err := w.wizardService.AcceptChat(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	respondView(c, view, err, "Answer applied")
}

// GenerateDraft godoc
// @Summary Generate the current module's draft
// @Tags Wizard
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/draft [post]
func (w *WizardController) GenerateDraft(c *gin.Context) {
	view, err := w.wizardService.GenerateDraft(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	respondView(c, view, err, "Draft ready")
}

// RegenerateDraft godoc
// @Summary Replace the current module's draft
// @Tags Wizard
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/draft/regenerate [post]
func (w *WizardController) RegenerateDraft(c *gin.Context) {
	view, err := w.wizardService.RegenerateDraft(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	respondView(c, view, err, "Draft regenerated")
}

// BeginEditDraft godoc
// @Summary Open the current module's draft for editing
// @Tags Wizard
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/draft/edit [post]
func (w *WizardController) BeginEditDraft(c *gin.Context) {
	view, err := w.wizardService.BeginEditDraft(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	respondView(c, view, err, "Draft opened for editing")
}

// EditDraft godoc
// @Summary Save a hand-edited draft
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body request_models.DraftContentRequest true "Draft text"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/draft [put]
func (w *WizardController) EditDraft(c *gin.Context) {
	var req request_models.DraftContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	view, err := w.wizardService.EditDraft(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req.Content)
	respondView(c, view, err, "Draft saved")
}

// DiscardDraft godoc
// @Summary Discard the current module's draft
// @Tags Wizard
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/draft [delete]
func (w *WizardController) DiscardDraft(c *gin.Context) {
	view, err := w.wizardService.DiscardDraft(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	respondView(c, view, err, "Draft discarded")
}

// ValidateDraft godoc
// @Summary Validate the draft as the module's section
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body request_models.DraftContentRequest true "Final text"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/draft/validate [post]
func (w *WizardController) ValidateDraft(c *gin.Context) {
	var req request_models.DraftContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	view, err := w.wizardService.ValidateDraft(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req.Content)
	respondView(c, view, err, "Section validated")
}

// Progress godoc
// @Summary Per-module and overall progress
// @Tags Wizard
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/progress [get]
func (w *WizardController) Progress(c *gin.Context) {
	report, err := w.wizardService.Progress(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, report, "Progress fetched")
}

// Exit godoc
// @Summary Save and leave the wizard
// @Tags Wizard
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/wizard/exit [post]
func (w *WizardController) Exit(c *gin.Context) {
	view, err := w.wizardService.ExitToDashboard(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	respondView(c, view, err, "Progress saved")
}

// RegisterWizardRoutes mounts the wizard under a project group.
func RegisterWizardRoutes(project *gin.RouterGroup, w *WizardController) {
	g := project.Group("/wizard")
	g.GET("", w.GetWizard)
	g.PUT("/answer", w.Answer)
	g.POST("/next", w.Next)
	g.POST("/previous", w.Previous)
	g.POST("/jump", w.Jump)
	g.PUT("/ai-panel", w.SetAIPanel)
	g.POST("/choices", w.RequestChoices)
	g.POST("/choices/toggle", w.ToggleChoice)
	g.POST("/choices/assemble", w.AssembleChoices)
	g.POST("/choices/apply", w.ApplyChoices)
	g.POST("/chat", w.StartChat)
	g.POST("/chat/reply", w.ReplyChat)
	g.POST("/chat/accept", w.AcceptChat)
	g.POST("/draft", w.GenerateDraft)
	g.PUT("/draft", w.EditDraft)
	g.POST("/draft/edit", w.BeginEditDraft)
	g.DELETE("/draft", w.DiscardDraft)
	g.POST("/draft/regenerate", w.RegenerateDraft)
	g.POST("/draft/validate", w.ValidateDraft)
	g.GET("/progress", w.Progress)
	g.POST("/exit", w.Exit)
}
