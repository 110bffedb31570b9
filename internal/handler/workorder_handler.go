package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"workorder-service/internal/service/workorder"
)

type WorkOrderHandler struct {
	service *workorder.Service
	logger  *zap.Logger
}

func NewWorkOrderHandler(service *workorder.Service, logger *zap.Logger) *WorkOrderHandler {
	return &WorkOrderHandler{service: service, logger: logger}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *WorkOrderHandler) List(c *gin.Context) {
	userID, _ := currentUser(c)

	orders, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, "listWorkOrders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"work_orders": orders})
}

func (h *WorkOrderHandler) Get(c *gin.Context) {
	userID, role := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.service.GetByID(c.Request.Context(), userID, role, id)
	if err != nil {
		writeError(c, h.logger, "getWorkOrder", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *WorkOrderHandler) Start(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	wo, err := h.service.Start(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, h.logger, "startWorkOrder", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"work_order": wo, "status_display": wo.Status.Display()})
}

func (h *WorkOrderHandler) Cancel(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	wo, err := h.service.Cancel(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, h.logger, "cancelWorkOrder", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"work_order": wo, "status_display": wo.Status.Display()})
}

func (h *WorkOrderHandler) FundEscrow(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	escrow, err := h.service.FundEscrow(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, h.logger, "fundEscrow", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"escrow": escrow})
}

type submitDeliveryRequest struct {
	Message     string   `json:"message" binding:"required"`
	Attachments []string `json:"attachments"`
	MilestoneID *int64   `json:"milestone_id"`
}

func (h *WorkOrderHandler) SubmitDelivery(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req submitDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	delivery, err := h.service.SubmitDelivery(c.Request.Context(), userID, id, workorder.SubmitDeliveryInput{
		Message:     req.Message,
		Attachments: req.Attachments,
		MilestoneID: req.MilestoneID,
	})
	if err != nil {
		writeError(c, h.logger, "submitDelivery", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"delivery": delivery})
}

func (h *WorkOrderHandler) ApproveDelivery(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	outcome, err := h.service.ApproveDelivery(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, h.logger, "approveDelivery", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"delivery":       outcome.Delivery,
		"milestone":      outcome.Milestone,
		"completed":      outcome.Completed,
		"released_cents": outcome.ReleasedCents,
	})
}

type revisionRequest struct {
	Note string `json:"note" binding:"required"`
}

func (h *WorkOrderHandler) RequestRevision(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req revisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	delivery, err := h.service.RequestRevision(c.Request.Context(), userID, id, req.Note)
	if err != nil {
		writeError(c, h.logger, "requestRevision", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"delivery": delivery})
}

type milestoneRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	AmountCents int64      `json:"amount_cents"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *WorkOrderHandler) AddMilestone(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req milestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	milestone, err := h.service.AddMilestone(c.Request.Context(), userID, id, workorder.AddMilestoneInput{
		Title:       req.Title,
		Description: req.Description,
		AmountCents: req.AmountCents,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeError(c, h.logger, "addMilestone", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"milestone": milestone})
}

func (h *WorkOrderHandler) UpdateMilestone(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	milestoneID, ok := pathID(c, "mid")
	if !ok {
		return
	}

	var req milestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	milestone, err := h.service.UpdateMilestone(c.Request.Context(), userID, id, milestoneID, workorder.AddMilestoneInput{
		Title:       req.Title,
		Description: req.Description,
		AmountCents: req.AmountCents,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeError(c, h.logger, "updateMilestone", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestone": milestone})
}

func (h *WorkOrderHandler) RemoveMilestone(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	milestoneID, ok := pathID(c, "mid")
	if !ok {
		return
	}

	if err := h.service.RemoveMilestone(c.Request.Context(), userID, id, milestoneID); err != nil {
		writeError(c, h.logger, "removeMilestone", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type reorderRequest struct {
	MilestoneIDs []int64 `json:"milestone_ids" binding:"required"`
}

func (h *WorkOrderHandler) ReorderMilestones(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	milestones, err := h.service.ReorderMilestones(c.Request.Context(), userID, id, req.MilestoneIDs)
	if err != nil {
		writeError(c, h.logger, "reorderMilestones", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestones": milestones})
}

type disputeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *WorkOrderHandler) OpenDispute(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req disputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	wo, err := h.service.OpenDispute(c.Request.Context(), userID, id, req.Reason)
	if err != nil {
		writeError(c, h.logger, "openDispute", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"work_order": wo, "status_display": wo.Status.Display()})
}

type resolveDisputeRequest struct {
	Resolution string `json:"resolution" binding:"required"`
}

func (h *WorkOrderHandler) ResolveDispute(c *gin.Context) {
	userID, role := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req resolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	wo, err := h.service.ResolveDispute(c.Request.Context(), userID, role, id, workorder.DisputeResolution(req.Resolution))
	if err != nil {
		writeError(c, h.logger, "resolveDispute", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"work_order": wo, "status_display": wo.Status.Display()})
}
