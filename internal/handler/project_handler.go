package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"workorder-service/internal/model"
	"workorder-service/internal/service/project"
)

type ProjectHandler struct {
	service *project.Service
	logger  *zap.Logger
}

func NewProjectHandler(service *project.Service, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{service: service, logger: logger}
}

type createProjectRequest struct {
	Title               string `json:"title" binding:"required"`
	Description         string `json:"description"`
	RateCents           int64  `json:"rate_cents"`
	BudgetType          string `json:"budget_type" binding:"required"`
	RequestedCreativeID *int64 `json:"requested_creative_id"`
}

func (h *ProjectHandler) Create(c *gin.Context) {
	userID, _ := currentUser(c)

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p, err := h.service.Create(c.Request.Context(), userID, project.CreateInput{
		Title:               req.Title,
		Description:         req.Description,
		RateCents:           req.RateCents,
		BudgetType:          model.BudgetType(req.BudgetType),
		RequestedCreativeID: req.RequestedCreativeID,
	})
	if err != nil {
		writeError(c, h.logger, "createProject", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": p})
}

func (h *ProjectHandler) AcceptDirectRequest(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	wo, err := h.service.AcceptDirectRequest(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, h.logger, "acceptDirectRequest", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"work_order": wo, "status_display": wo.Status.Display()})
}

func (h *ProjectHandler) DeclineDirectRequest(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeclineDirectRequest(c.Request.Context(), userID, id); err != nil {
		writeError(c, h.logger, "declineDirectRequest", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type applyRequest struct {
	CoverLetter       string `json:"cover_letter"`
	ProposedRateCents int64  `json:"proposed_rate_cents"`
}

func (h *ProjectHandler) Apply(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	a, err := h.service.Apply(c.Request.Context(), userID, id, project.ApplyInput{
		CoverLetter:       req.CoverLetter,
		ProposedRateCents: req.ProposedRateCents,
	})
	if err != nil {
		writeError(c, h.logger, "applyToProject", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"application": a})
}

func (h *ProjectHandler) AcceptApplication(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	wo, err := h.service.AcceptApplication(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, h.logger, "acceptApplication", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"work_order": wo, "status_display": wo.Status.Display()})
}
