package usagehandler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"promptforge/internal/domain/tokenusage"
	"promptforge/internal/interfaces/httpserver/handlers/authhandler"
	"promptforge/internal/interfaces/httpserver/responses"
	"promptforge/internal/utils/platformerrors"
)

const dateLayout = "2006-01-02"

// UsageHandler handles token usage API requests
type UsageHandler struct {
	usageService *tokenusage.Service
}

// NewUsageHandler creates a new UsageHandler
func NewUsageHandler(usageService *tokenusage.Service) *UsageHandler {
	return &UsageHandler{
		usageService: usageService,
	}
}

// GetMyUsage godoc
// @Summary Get current user's token usage
// @Description Returns token usage summary for the authenticated user within a date range
// @Tags Usage API
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "Start date (YYYY-MM-DD), defaults to 30 days ago"
// @Param end_date query string false "End date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} tokenusage.UsageResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 401 {object} responses.ErrorResponse
// @Router /v1/usage [get]
func (h *UsageHandler) GetMyUsage(c *gin.Context) {
	usr, ok := authhandler.GetUserFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "")
		return
	}
	startDate, endDate, err := parseDateRange(c, time.Now().UTC())
	if err != nil {
		responses.HandleError(c, err, "invalid date range")
		return
	}

	usage, err := h.usageService.GetMyUsage(c.Request.Context(), usr.ID, startDate, endDate)
	if err != nil {
		responses.HandleError(c, err, "failed to get usage")
		return
	}
	c.JSON(http.StatusOK, usage)
}

// GetMyDailyUsage godoc
// @Summary Get current user's daily token usage
// @Description Returns daily aggregated token usage for the authenticated user
// @Tags Usage API
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "Start date (YYYY-MM-DD), defaults to 30 days ago"
// @Param end_date query string false "End date (YYYY-MM-DD), defaults to today"
// @Success 200 {array} tokenusage.DailyAggregate
// @Failure 400 {object} responses.ErrorResponse
// @Failure 401 {object} responses.ErrorResponse
// @Router /v1/usage/daily [get]
func (h *UsageHandler) GetMyDailyUsage(c *gin.Context) {
	usr, ok := authhandler.GetUserFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "")
		return
	}
	startDate, endDate, err := parseDateRange(c, time.Now().UTC())
	if err != nil {
		responses.HandleError(c, err, "invalid date range")
		return
	}

	daily, err := h.usageService.GetMyDailyUsage(c.Request.Context(), usr.ID, startDate, endDate)
	if err != nil {
		responses.HandleError(c, err, "failed to get daily usage")
		return
	}
	c.JSON(http.StatusOK, daily)
}

// parseDateRange reads start_date and end_date, defaulting to the last 30
// days. end_date covers the whole day.
func parseDateRange(c *gin.Context, now time.Time) (time.Time, time.Time, error) {
	endDate := now
	startDate := now.AddDate(0, 0, -30)

	if startStr := c.Query("start_date"); startStr != "" {
		parsed, err := time.Parse(dateLayout, startStr)
		if err != nil {
			return time.Time{}, time.Time{}, platformerrors.NewError(c.Request.Context(), platformerrors.LayerHandler, platformerrors.ErrorTypeValidation, "start_date must be YYYY-MM-DD", err, "e2b6d0a4-8f3c-4e17-95a1-c7d9f3b5e482")
		}
		startDate = parsed
	}
	if endStr := c.Query("end_date"); endStr != "" {
		parsed, err := time.Parse(dateLayout, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, platformerrors.NewError(c.Request.Context(), platformerrors.LayerHandler, platformerrors.ErrorTypeValidation, "end_date must be YYYY-MM-DD", err, "6f0c4a8e-2d5b-4b93-a1e7-b3d5f9c1a764")
		}
		endDate = parsed.Add(24*time.Hour - time.Second)
	}
	return startDate, endDate, nil
}
