package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"opsplan-service/internal/domain/entity"
	"opsplan-service/internal/domain/repository"
	"opsplan-service/internal/usecase"
	"opsplan-service/pkg/logger"
)

// PlanHandler exposes the plan service over HTTP
type PlanHandler struct {
	service *usecase.PlanService
	logger  logger.Logger
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(service *usecase.PlanService, log logger.Logger) *PlanHandler {
	return &PlanHandler{
		service: service,
		logger:  log,
	}
}

type nodePayload struct {
	ID              string        `json:"id,omitempty"`
	Name            string        `json:"name"`
	Type            string        `json:"type"`
	AssigneeID      string        `json:"assigneeId"`
	OrderNo         int           `json:"orderNo"`
	ExpectedMinutes *int          `json:"expectedMinutes,omitempty"`
	ActionRef       string        `json:"actionRef,omitempty"`
	Description     string        `json:"description,omitempty"`
	Children        []nodePayload `json:"children,omitempty"`
}

type reminderPayload struct {
	Trigger       string `json:"trigger"`
	OffsetMinutes int    `json:"offsetMinutes"`
	NodeID        string `json:"nodeId,omitempty"`
	TemplateID    string `json:"templateId,omitempty"`
	Enabled       bool   `json:"enabled"`
}

type planRequest struct {
	Title          string            `json:"title" binding:"required"`
	Description    string            `json:"description"`
	CustomerID     string            `json:"customerId" binding:"required"`
	OwnerID        string            `json:"ownerId"`
	StartAt        time.Time         `json:"startAt" binding:"required"`
	EndAt          time.Time         `json:"endAt" binding:"required"`
	Timezone       string            `json:"timezone"`
	ParticipantIDs []string          `json:"participantIds"`
	Nodes          []nodePayload     `json:"nodes"`
	Reminders      []reminderPayload `json:"reminders"`
}

func (r *planRequest) toCommand(actor string) usecase.PlanCommand {
	cmd := usecase.PlanCommand{
		Title:          r.Title,
		Description:    r.Description,
		CustomerID:     r.CustomerID,
		OwnerID:        r.OwnerID,
		StartAt:        r.StartAt,
		EndAt:          r.EndAt,
		Timezone:       r.Timezone,
		ParticipantIDs: r.ParticipantIDs,
		Nodes:          toNodeCommands(r.Nodes),
		Actor:          actor,
	}
	for _, rem := range r.Reminders {
		cmd.Reminders = append(cmd.Reminders, usecase.ReminderCommand{
			Trigger:    entity.TriggerType(rem.Trigger),
			Offset:     time.Duration(rem.OffsetMinutes) * time.Minute,
			NodeID:     rem.NodeID,
			TemplateID: rem.TemplateID,
			Enabled:    rem.Enabled,
		})
	}
	return cmd
}

func toNodeCommands(payloads []nodePayload) []usecase.NodeCommand {
	cmds := make([]usecase.NodeCommand, 0, len(payloads))
	for _, p := range payloads {
		cmds = append(cmds, usecase.NodeCommand{
			ID:              p.ID,
			Name:            p.Name,
			Type:            p.Type,
			AssigneeID:      p.AssigneeID,
			OrderNo:         p.OrderNo,
			ExpectedMinutes: p.ExpectedMinutes,
			ActionRef:       p.ActionRef,
			Description:     p.Description,
			Children:        toNodeCommands(p.Children),
		})
	}
	return cmds
}

// CreatePlan POST /api/v1/plans
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	tenantID, ok := tenant(c)
	if !ok {
		return
	}
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	plan, err := h.service.CreatePlan(c.Request.Context(), tenantID, req.toCommand(actor(c)))
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": planToJSON(plan)})
}

// UpdatePlan PUT /api/v1/plans/:id
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	tenantID, ok := tenant(c)
	if !ok {
		return
	}
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	plan, err := h.service.UpdatePlan(c.Request.Context(), tenantID, c.Param("id"), req.toCommand(actor(c)))
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": planToJSON(plan)})
}

// GetPlan GET /api/v1/plans/:id
func (h *PlanHandler) GetPlan(c *gin.Context) {
	tenantID, ok := tenant(c)
	if !ok {
		return
	}
	details, err := h.service.GetPlan(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": detailsToJSON(details)})
}

// ListPlans GET /api/v1/plans
func (h *PlanHandler) ListPlans(c *gin.Context) {
	tenantID, ok := tenant(c)
	if !ok {
		return
	}
	filter := repository.PlanFilter{
		TenantID:   tenantID,
		CustomerID: c.Query("customerId"),
		OwnerID:    c.Query("ownerId"),
		Status:     entity.PlanStatus(c.Query("status")),
	}
	from, ok := queryTime(c, "from")
	if !ok {
		return
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return
	}
	filter.StartFrom = from
	filter.StartTo = to

	details, err := h.service.ListPlans(c.Request.Context(), filter)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	out := make([]gin.H, 0, len(details))
	for _, d := range details {
		out = append(out, detailsToJSON(d))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

// DeletePlan DELETE /api/v1/plans/:id
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	tenantID, ok := tenant(c)
	if !ok {
		return
	}
	if err := h.service.DeletePlan(c.Request.Context(), tenantID, c.Param("id"), actor(c)); err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Transition POST /api/v1/plans/:id/transition
func (h *PlanHandler) Transition(c *gin.Context) {
	tenantID, ok := tenant(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}

	plan, err := h.service.Transition(c.Request.Context(), tenantID, c.Param("id"), entity.PlanStatus(req.Status), actor(c))
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": planToJSON(plan)})
}

// SetNodeStatus PUT /api/v1/plans/:id/nodes/:nodeId/status
func (h *PlanHandler) SetNodeStatus(c *gin.Context) {
	tenantID, ok := tenant(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}

	plan, err := h.service.SetNodeStatus(c.Request.Context(), tenantID, c.Param("id"), c.Param("nodeId"), entity.NodeStatus(req.Status), actor(c))
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": planToJSON(plan)})
}

// Board GET /api/v1/board
func (h *PlanHandler) Board(c *gin.Context) {
	tenantID, ok := tenant(c)
	if !ok {
		return
	}
	query := usecase.BoardQuery{
		TenantID:    tenantID,
		CustomerID:  c.Query("customerId"),
		OwnerID:     c.Query("ownerId"),
		Status:      entity.PlanStatus(c.Query("status")),
		Granularity: entity.Granularity(c.DefaultQuery("granularity", string(entity.GranularityDay))),
		Timezone:    c.Query("timezone"),
	}
	from, ok := queryTime(c, "from")
	if !ok {
		return
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return
	}
	ref, ok := queryTime(c, "referenceTime")
	if !ok {
		return
	}
	query.StartFrom = from
	query.StartTo = to
	query.ReferenceTime = ref

	view, err := h.service.Board(c.Request.Context(), query)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": view})
}

// Calendar GET /api/v1/calendar.ics
func (h *PlanHandler) Calendar(c *gin.Context) {
	tenantID, ok := tenant(c)
	if !ok {
		return
	}
	feed, err := h.service.Calendar(c.Request.Context(), tenantID)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.Data(http.StatusOK, usecase.CalendarContentType, []byte(feed))
}

// errorResponse maps domain error kinds to HTTP statuses
func (h *PlanHandler) errorResponse(c *gin.Context, err error) {
	var validation *usecase.ValidationError
	var notFound *usecase.NotFoundError
	var transition *usecase.InvalidTransitionError
	var incomplete *usecase.IncompletePlanError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"kind": "validation", "message": err.Error()}})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": gin.H{"kind": "not_found", "message": err.Error()}})
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": gin.H{"kind": "invalid_transition", "message": err.Error()}})
	case errors.As(err, &incomplete):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": gin.H{
			"kind":          "incomplete_plan",
			"message":       err.Error(),
			"blockingNodes": incomplete.BlockingNodeIDs,
		}})
	default:
		h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": gin.H{"kind": "internal", "message": "internal error"}})
	}
}

func tenant(c *gin.Context) (string, bool) {
	tenantID := c.GetHeader("X-Tenant-ID")
	if tenantID == "" {
		tenantID = c.Query("tenantId")
	}
	if tenantID == "" {
		badRequest(c, "tenant id is required")
		return "", false
	}
	return tenantID, true
}

func actor(c *gin.Context) string {
	return c.GetHeader("X-Actor")
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"kind": "validation", "message": message}})
}

// queryTime parses an optional RFC3339 query parameter. Absent means no
// constraint; a malformed value is a validation error, not a filter to
// silently drop.
func queryTime(c *gin.Context, name string) (time.Time, bool) {
	value := c.Query(name)
	if value == "" {
		return time.Time{}, true
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		badRequest(c, "invalid "+name+": expected RFC3339 timestamp")
		return time.Time{}, false
	}
	return parsed, true
}

func planToJSON(plan *entity.Plan) gin.H {
	nodes := make([]gin.H, 0, len(plan.Nodes))
	for _, n := range plan.Nodes {
		node := gin.H{
			"id":          n.ID,
			"parentId":    n.ParentID,
			"name":        n.Name,
			"type":        n.Type,
			"assigneeId":  n.AssigneeID,
			"orderNo":     n.OrderNo,
			"actionRef":   n.ActionRef,
			"description": n.Description,
			"status":      n.Status,
		}
		if n.ExpectedMinutes != nil {
			node["expectedMinutes"] = *n.ExpectedMinutes
		}
		if n.ActualStartAt != nil {
			node["actualStartAt"] = n.ActualStartAt
		}
		if n.ActualEndAt != nil {
			node["actualEndAt"] = n.ActualEndAt
		}
		nodes = append(nodes, node)
	}

	reminders := make([]gin.H, 0, len(plan.Reminders))
	for _, r := range plan.Reminders {
		reminders = append(reminders, gin.H{
			"id":            r.ID,
			"trigger":       r.Trigger,
			"offsetMinutes": int(r.Offset.Minutes()),
			"nodeId":        r.NodeID,
			"templateId":    r.TemplateID,
			"enabled":       r.Enabled,
		})
	}

	return gin.H{
		"id":           plan.ID,
		"tenantId":     plan.TenantID,
		"title":        plan.Title,
		"description":  plan.Description,
		"customerId":   plan.CustomerID,
		"ownerId":      plan.OwnerID,
		"startAt":      plan.StartAt,
		"endAt":        plan.EndAt,
		"timezone":     plan.Timezone,
		"participants": plan.Participants,
		"status":       plan.Status,
		"nodes":        nodes,
		"reminders":    reminders,
		"createdAt":    plan.CreatedAt,
		"updatedAt":    plan.UpdatedAt,
	}
}

func detailsToJSON(details *usecase.PlanDetails) gin.H {
	out := planToJSON(details.Plan)
	out["tags"] = details.Tags
	out["risk"] = details.Risk
	return out
}
