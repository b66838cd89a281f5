package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dossier/internal/models/response_models"
	"dossier/internal/services"
	"dossier/pkg/utils"
)

type DashboardController struct {
	dashboardService services.DashboardService
}

func NewDashboardController(dashboardService services.DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
	}
}

// GetDashboard godoc
// @Summary Get my dossier dashboard
// @Description Status counts, new dossiers and validated sections over time, need type mix, top tags and recently touched dossiers
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param start    query string false "RFC3339 start (e.g. 2025-10-01T00:00:00Z)"
// @Param end      query string false "RFC3339 end   (e.g. 2025-10-19T23:59:59Z)"
// @Param last_days query int   false "Relative lookback in days (mutually exclusive with start/end). Default 30"
// @Param interval query string false "Bucket size: day | week | month (default: day)"
// @Param tz       query string false "IANA timezone for bucketing (default: UTC)"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /dashboard [get]
func (p *DashboardController) GetDashboard(c *gin.Context) {
	interval := c.DefaultQuery("interval", "day")
	tz := c.Query("tz")

	if !validInterval(interval) {
		utils.RespondError(c, http.StatusBadRequest, "interval must be one of: day, week, month")
		return
	}
	if tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			utils.RespondError(c, http.StatusBadRequest, "tz must be an IANA timezone")
			return
		}
	}

	start, end, msg := parseRange(c.Query("start"), c.Query("end"), c.Query("last_days"))
	if msg != "" {
		utils.RespondError(c, http.StatusBadRequest, msg)
		return
	}

	tr := response_models.TimeRange{
		Start:    start,
		End:      end,
		Interval: interval,
		Timezone: tz,
	}

	report, err := p.dashboardService.BuildDashboard(c.Request.Context(), c.GetString("user_id"), tr)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, report, "Dashboard data fetched successfully")
}

// ---- helpers ----

func validInterval(s string) bool {
	switch s {
	case "day", "week", "month":
		return true
	default:
		return false
	}
}

// parseRange resolves either last_days or start/end. It returns a client
// message when the query is invalid. Zero times are defaulted by the service.
func parseRange(startStr, endStr, lastDaysStr string) (start, end time.Time, msg string) {
	if lastDaysStr != "" && (startStr != "" || endStr != "") {
		return start, end, "provide either last_days or start/end (not both)"
	}
	if lastDaysStr != "" {
		d, err := strconv.Atoi(lastDaysStr)
		if err != nil || d <= 0 {
			return start, end, "last_days must be a positive integer"
		}
		end = time.Now().UTC()
		return end.AddDate(0, 0, -d), end, ""
	}

	var err error
	if startStr != "" {
		if start, err = time.Parse(time.RFC3339, startStr); err != nil {
			return start, end, "start must be RFC3339 (e.g. 2025-10-01T00:00:00Z)"
		}
	}
	if endStr != "" {
		if end, err = time.Parse(time.RFC3339, endStr); err != nil {
			return start, end, "end must be RFC3339 (e.g. 2025-10-19T23:59:59Z)"
		}
	}
	return start, end, ""
}
