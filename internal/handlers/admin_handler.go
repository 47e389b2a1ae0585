package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/middleware"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/services"
)

// AdminHandler serves the admin dashboard, user management and reporting
// endpoints
type AdminHandler struct {
	users   *services.UserService
	reports *services.ReportService
	logger  *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(users *services.UserService, reports *services.ReportService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{users: users, reports: reports, logger: logger}
}

// Dashboard handles GET /api/admin/dashboard/stats
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.reports.DashboardStats(c.Request.Context())
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Dashboard stats retrieved", stats)
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var active *bool
	if raw := c.Query("active"); raw != "" {
		v := raw == "true"
		active = &v
	}

	users, total, err := h.users.ListUsers(c.Request.Context(),
		c.Query("role"), active, queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Users retrieved", gin.H{
		"users": users,
		"total": total,
	})
}

// GetUser handles GET /api/admin/users/:id
func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "User retrieved", user)
}

// UpdateRoleRequest carries a role assignment
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateUserRole handles PUT /api/admin/users/:id/role
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := h.users.UpdateRole(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req.Role)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "User role updated", user)
}

// SetActiveRequest carries an activation toggle
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetUserActive handles PUT /api/admin/users/:id/status
func (h *AdminHandler) SetUserActive(c *gin.Context) {
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := h.users.SetActive(c.Request.Context(), c.Param("id"), *req.Active)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "User updated", user)
}

// GenerateReportRequest carries the report period
type GenerateReportRequest struct {
	Type  string `json:"type" binding:"required"`
	Year  int    `json:"year" binding:"required"`
	Month int    `json:"month"`
}

// GenerateReport handles POST /api/admin/reports
func (h *AdminHandler) GenerateReport(c *gin.Context) {
	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	report, err := h.reports.GenerateReport(c.Request.Context(), middleware.GetUserID(c),
		models.ReportType(req.Type), req.Year, req.Month)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Report generated", report)
}

// ListReports handles GET /api/admin/reports
func (h *AdminHandler) ListReports(c *gin.Context) {
	reports, err := h.reports.ListReports(c.Request.Context())
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Reports retrieved", reports)
}

// GetReport handles GET /api/admin/reports/:id
func (h *AdminHandler) GetReport(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	report, err := h.reports.GetReport(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Report retrieved", report)
}

// DeleteReport handles DELETE /api/admin/reports/:id
func (h *AdminHandler) DeleteReport(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.reports.DeleteReport(c.Request.Context(), id); err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Report deleted", nil)
}
