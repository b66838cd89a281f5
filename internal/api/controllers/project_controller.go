package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"dossier/internal/models/request_models"
	"dossier/internal/services"
	"dossier/pkg/utils"
)

type ProjectController struct {
	projectService services.ProjectServiceInterface
}

func NewProjectController(projectService services.ProjectServiceInterface) *ProjectController {
	return &ProjectController{projectService: projectService}
}

// CreateProject godoc
// @Summary Create a dossier
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body request_models.CreateProjectRequest true "Project payload"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects [post]
func (p *ProjectController) CreateProject(c *gin.Context) {
	var req request_models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	project, err := p.projectService.CreateProject(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondCreated(c, project, "Project created successfully")
}

// ListProjects godoc
// @Summary List my dossiers
// @Tags Projects
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(10)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects [get]
func (p *ProjectController) ListProjects(c *gin.Context) {
	var req request_models.ListProjectsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	projects, err := p.projectService.ListProjects(c.Request.Context(), c.GetString("user_id"), req.Page, req.PageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, projects, "Projects fetched successfully")
}

// GetProject godoc
// @Summary Get a dossier
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id} [get]
func (p *ProjectController) GetProject(c *gin.Context) {
	project, err := p.projectService.GetProjectResponse(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, project, "Project fetched successfully")
}

// ListSections godoc
// @Summary Validated sections of a dossier
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/sections [get]
func (p *ProjectController) ListSections(c *gin.Context) {
	sections, err := p.projectService.ListSections(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, sections, "Sections fetched successfully")
}

// Export godoc
// @Summary Export a complete dossier
// @Description Returns the dossier as Markdown. Add ?download=1 for a file download.
// @Tags Projects
// @Produce json
// @Produce text/markdown
// @Param id path string true "Project ID"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /projects/{id}/export [get]
func (p *ProjectController) Export(c *gin.Context) {
	export, err := p.projectService.Export(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	if c.Query("download") != "" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(export.Markdown))
		return
	}
	utils.RespondSuccess(c, export, "Dossier exported")
}
