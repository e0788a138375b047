package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"opsplan-service/internal/domain/entity"
	"opsplan-service/internal/domain/repository"
	"opsplan-service/pkg/logger"
	"opsplan-service/pkg/metrics"
)

// NodeCommand describes one node in a create/update command. Children are
// nested sub-steps; ID may be supplied by the client to preserve node
// identity across updates.
type NodeCommand struct {
	ID              string
	Name            string
	Type            string
	AssigneeID      string
	OrderNo         int
	ExpectedMinutes *int
	ActionRef       string
	Description     string
	Children        []NodeCommand
}

// ReminderCommand describes one reminder rule in a create/update command
type ReminderCommand struct {
	Trigger    entity.TriggerType
	Offset     time.Duration
	NodeID     string
	TemplateID string
	Enabled    bool
}

// PlanCommand carries the full plan payload for create and for
// replace-semantics update.
type PlanCommand struct {
	Title          string
	Description    string
	CustomerID     string
	OwnerID        string
	StartAt        time.Time
	EndAt          time.Time
	Timezone       string
	ParticipantIDs []string
	Nodes          []NodeCommand
	Reminders      []ReminderCommand
	Actor          string
}

// BoardQuery carries board request inputs. Zero-value filters are ignored;
// Granularity defaults to DAY, ReferenceTime to now, Timezone to UTC.
type BoardQuery struct {
	TenantID      string
	CustomerID    string
	OwnerID       string
	Status        entity.PlanStatus
	StartFrom     time.Time
	StartTo       time.Time
	Granularity   entity.Granularity
	ReferenceTime time.Time
	Timezone      string
}

// PlanDetails is a plan read decorated with tags and current risk
type PlanDetails struct {
	Plan *entity.Plan
	Tags []*entity.Tag
	Risk entity.RiskLevel
}

// PlanService orchestrates plan lifecycle, board, calendar, and reminder
// operations on top of the repositories and external collaborators.
type PlanService struct {
	planRepo  repository.PlanRepository
	customers repository.CustomerDirectory
	tags      repository.TagIndex
	audit     repository.AuditSink
	board     *BoardAggregator
	risk      RiskPolicy
	logger    logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewPlanService creates a new plan service
func NewPlanService(
	planRepo repository.PlanRepository,
	customers repository.CustomerDirectory,
	tags repository.TagIndex,
	audit repository.AuditSink,
	risk RiskPolicy,
	log logger.Logger,
	m *metrics.Metrics,
) *PlanService {
	return &PlanService{
		planRepo:  planRepo,
		customers: customers,
		tags:      tags,
		audit:     audit,
		board:     NewBoardAggregator(risk),
		risk:      risk,
		logger:    log,
		metrics:   m,
		now:       time.Now,
	}
}

// WithClock overrides the service clock, for tests
func (s *PlanService) WithClock(now func() time.Time) *PlanService {
	s.now = now
	return s
}

// CreatePlan validates and persists a new plan aggregate. The plan starts
// in DRAFT regardless of whether a node tree was supplied; moving to DESIGN
// is an explicit client transition.
func (s *PlanService) CreatePlan(ctx context.Context, tenantID string, cmd PlanCommand) (*entity.Plan, error) {
	if err := s.validateCommand(ctx, tenantID, cmd); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	plan := &entity.Plan{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		Title:        cmd.Title,
		Description:  cmd.Description,
		CustomerID:   cmd.CustomerID,
		OwnerID:      cmd.OwnerID,
		StartAt:      cmd.StartAt,
		EndAt:        cmd.EndAt,
		Timezone:     cmd.Timezone,
		Participants: append([]string{}, cmd.ParticipantIDs...),
		Status:       entity.PlanStatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	nodes, err := buildNodes(plan.ID, cmd.Nodes, "", nil)
	if err != nil {
		return nil, err
	}
	if _, err := BuildPlanTree(nodes); err != nil {
		return nil, err
	}
	plan.Nodes = nodes

	reminders, err := buildReminders(plan, cmd.Reminders)
	if err != nil {
		return nil, err
	}
	plan.Reminders = reminders

	if err := s.planRepo.Create(ctx, plan); err != nil {
		s.logger.Error("Failed to create plan", "tenantId", tenantID, "error", err)
		s.metrics.ErrorsCount.WithLabelValues("create_plan").Inc()
		return nil, &PersistenceError{Op: "create plan", Err: err}
	}

	s.metrics.PlansCreated.Inc()
	s.logger.Info("Plan created", "planId", plan.ID, "tenantId", tenantID, "nodes", len(plan.Nodes))
	s.recordAudit(ctx, tenantID, cmd.Actor, entity.AuditActionPlanCreated, plan.ID, map[string]interface{}{
		"title":     plan.Title,
		"customer":  plan.CustomerID,
		"nodeCount": len(plan.Nodes),
	})
	return plan, nil
}

// UpdatePlan replaces the plan's mutable fields (title, description,
// schedule, participants, node tree, reminders) while preserving identity,
// status, and node execution state for nodes whose id survives the update.
func (s *PlanService) UpdatePlan(ctx context.Context, tenantID, planID string, cmd PlanCommand) (*entity.Plan, error) {
	plan, err := s.loadPlan(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}
	if err := s.validateCommand(ctx, tenantID, cmd); err != nil {
		return nil, err
	}

	existing := make(map[string]*entity.PlanNode, len(plan.Nodes))
	for _, n := range plan.Nodes {
		existing[n.ID] = n
	}

	nodes, err := buildNodes(plan.ID, cmd.Nodes, "", existing)
	if err != nil {
		return nil, err
	}
	if _, err := BuildPlanTree(nodes); err != nil {
		return nil, err
	}

	plan.Title = cmd.Title
	plan.Description = cmd.Description
	plan.CustomerID = cmd.CustomerID
	plan.OwnerID = cmd.OwnerID
	plan.StartAt = cmd.StartAt
	plan.EndAt = cmd.EndAt
	plan.Timezone = cmd.Timezone
	plan.Participants = append([]string{}, cmd.ParticipantIDs...)
	plan.Nodes = nodes
	plan.UpdatedAt = s.now().UTC()

	reminders, err := buildReminders(plan, cmd.Reminders)
	if err != nil {
		return nil, err
	}
	plan.Reminders = reminders

	if err := s.planRepo.Update(ctx, plan); err != nil {
		s.logger.Error("Failed to update plan", "planId", planID, "error", err)
		s.metrics.ErrorsCount.WithLabelValues("update_plan").Inc()
		return nil, &PersistenceError{Op: "update plan", Err: err}
	}

	s.logger.Info("Plan updated", "planId", planID, "tenantId", tenantID)
	s.recordAudit(ctx, tenantID, cmd.Actor, entity.AuditActionPlanUpdated, plan.ID, map[string]interface{}{
		"title":     plan.Title,
		"nodeCount": len(plan.Nodes),
	})
	return plan, nil
}

// GetPlan returns one plan decorated with tags and its current risk level
func (s *PlanService) GetPlan(ctx context.Context, tenantID, planID string) (*PlanDetails, error) {
	plan, err := s.loadPlan(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, plan), nil
}

// ListPlans returns the tenant's plans matching the filter, decorated
func (s *PlanService) ListPlans(ctx context.Context, filter repository.PlanFilter) ([]*PlanDetails, error) {
	plans, err := s.planRepo.List(ctx, filter)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("list_plans").Inc()
		return nil, &PersistenceError{Op: "list plans", Err: err}
	}
	details := make([]*PlanDetails, 0, len(plans))
	for _, plan := range plans {
		details = append(details, s.decorate(ctx, plan))
	}
	return details, nil
}

// DeletePlan removes the plan and everything it owns
func (s *PlanService) DeletePlan(ctx context.Context, tenantID, planID, actor string) error {
	plan, err := s.loadPlan(ctx, tenantID, planID)
	if err != nil {
		return err
	}
	if err := s.planRepo.Delete(ctx, tenantID, planID); err != nil {
		s.metrics.ErrorsCount.WithLabelValues("delete_plan").Inc()
		return &PersistenceError{Op: "delete plan", Err: err}
	}
	s.logger.Info("Plan deleted", "planId", planID, "tenantId", tenantID)
	s.recordAudit(ctx, tenantID, actor, entity.AuditActionPlanDeleted, planID, map[string]interface{}{
		"title": plan.Title,
	})
	return nil
}

// Transition moves the plan to the target status after state-machine
// validation. Completion is gated on every node being done.
func (s *PlanService) Transition(ctx context.Context, tenantID, planID string, to entity.PlanStatus, actor string) (*entity.Plan, error) {
	plan, err := s.loadPlan(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(plan, to); err != nil {
		return nil, err
	}

	from := plan.Status
	plan.Status = to
	plan.UpdatedAt = s.now().UTC()

	if err := s.planRepo.Update(ctx, plan); err != nil {
		s.metrics.ErrorsCount.WithLabelValues("transition_plan").Inc()
		return nil, &PersistenceError{Op: "transition plan", Err: err}
	}

	s.metrics.PlanTransitions.WithLabelValues(string(to)).Inc()
	s.logger.Info("Plan transitioned", "planId", planID, "from", from, "to", to)
	s.recordAudit(ctx, tenantID, actor, entity.AuditActionPlanTransitioned, planID, map[string]interface{}{
		"from": string(from),
		"to":   string(to),
	})
	return plan, nil
}

// SetNodeStatus updates one node's execution status, stamping actual
// start/end times as the node moves through its lifecycle.
func (s *PlanService) SetNodeStatus(ctx context.Context, tenantID, planID, nodeID string, status entity.NodeStatus, actor string) (*entity.Plan, error) {
	if !status.IsValid() {
		return nil, &ValidationError{Reason: "unknown node status " + string(status)}
	}
	plan, err := s.loadPlan(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}
	node := plan.NodeByID(nodeID)
	if node == nil {
		return nil, &NotFoundError{Entity: "node", ID: nodeID}
	}

	now := s.now().UTC()
	node.Status = status
	switch status {
	case entity.NodeStatusInProgress:
		if node.ActualStartAt == nil {
			started := now
			node.ActualStartAt = &started
		}
		node.ActualEndAt = nil
	case entity.NodeStatusCompleted, entity.NodeStatusFailed, entity.NodeStatusSkipped:
		if node.ActualStartAt == nil && status == entity.NodeStatusCompleted {
			started := now
			node.ActualStartAt = &started
		}
		ended := now
		node.ActualEndAt = &ended
	default:
		node.ActualStartAt = nil
		node.ActualEndAt = nil
	}
	plan.UpdatedAt = now

	if err := s.planRepo.Update(ctx, plan); err != nil {
		s.metrics.ErrorsCount.WithLabelValues("set_node_status").Inc()
		return nil, &PersistenceError{Op: "set node status", Err: err}
	}

	s.logger.Info("Node status updated", "planId", planID, "nodeId", nodeID, "status", status)
	s.recordAudit(ctx, tenantID, actor, entity.AuditActionNodeStatusSet, planID, map[string]interface{}{
		"nodeId": nodeID,
		"status": string(status),
	})
	return plan, nil
}

// Board loads the matching plans and builds the board view
func (s *PlanService) Board(ctx context.Context, query BoardQuery) (*entity.PlanBoardView, error) {
	granularity := query.Granularity
	if granularity == "" {
		granularity = entity.GranularityDay
	}
	if !granularity.IsValid() {
		return nil, &ValidationError{Reason: "unknown granularity " + string(granularity)}
	}

	tz := query.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, &ValidationError{Reason: "unknown timezone " + tz}
	}

	refTime := query.ReferenceTime
	if refTime.IsZero() {
		refTime = s.now()
	}

	plans, err := s.planRepo.List(ctx, repository.PlanFilter{
		TenantID:   query.TenantID,
		CustomerID: query.CustomerID,
		OwnerID:    query.OwnerID,
		Status:     query.Status,
		StartFrom:  query.StartFrom,
		StartTo:    query.StartTo,
	})
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("board").Inc()
		return nil, &PersistenceError{Op: "load board plans", Err: err}
	}

	started := s.now()
	view := s.board.Build(query.TenantID, plans, granularity, refTime, loc)
	s.metrics.BoardBuildTime.Observe(s.now().Sub(started).Seconds())
	return view, nil
}

// Calendar renders the tenant's full plan schedule as an ICS feed
func (s *PlanService) Calendar(ctx context.Context, tenantID string) (string, error) {
	plans, err := s.planRepo.List(ctx, repository.PlanFilter{TenantID: tenantID})
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("calendar").Inc()
		return "", &PersistenceError{Op: "load calendar plans", Err: err}
	}
	return RenderCalendar(tenantID, plans, s.now()), nil
}

// DueReminders evaluates reminder rules across the tenant's active plans.
// window is the interval since the caller's previous evaluation.
func (s *PlanService) DueReminders(ctx context.Context, tenantID string, now time.Time, window time.Duration) ([]*entity.DueReminder, error) {
	plans, err := s.planRepo.ListActive(ctx, tenantID)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("due_reminders").Inc()
		return nil, &PersistenceError{Op: "load active plans", Err: err}
	}
	var due []*entity.DueReminder
	for _, plan := range plans {
		due = append(due, DueReminders(plan, now, window)...)
	}
	return due, nil
}

func (s *PlanService) loadPlan(ctx context.Context, tenantID, planID string) (*entity.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, tenantID, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "plan", ID: planID}
		}
		return nil, &PersistenceError{Op: "load plan", Err: err}
	}
	return plan, nil
}

func (s *PlanService) decorate(ctx context.Context, plan *entity.Plan) *PlanDetails {
	details := &PlanDetails{
		Plan: plan,
		Tags: []*entity.Tag{},
		Risk: s.risk.Assess(plan, s.now()),
	}
	tags, err := s.tags.TagsFor(ctx, "plan", plan.ID)
	if err != nil {
		s.logger.Warn("Failed to load tags", "planId", plan.ID, "error", err)
		return details
	}
	details.Tags = tags
	return details
}

func (s *PlanService) validateCommand(ctx context.Context, tenantID string, cmd PlanCommand) error {
	if cmd.Title == "" {
		return &ValidationError{Reason: "title is required"}
	}
	if cmd.CustomerID == "" {
		return &ValidationError{Reason: "customer id is required"}
	}
	if cmd.EndAt.Before(cmd.StartAt) {
		return &ValidationError{Reason: "end time precedes start time"}
	}
	if cmd.Timezone != "" {
		if _, err := time.LoadLocation(cmd.Timezone); err != nil {
			return &ValidationError{Reason: "unknown timezone " + cmd.Timezone}
		}
	}

	exists, err := s.customers.Exists(ctx, tenantID, cmd.CustomerID)
	if err != nil {
		return &PersistenceError{Op: "check customer", Err: err}
	}
	if !exists {
		return &NotFoundError{Entity: "customer", ID: cmd.CustomerID}
	}
	return nil
}

func (s *PlanService) recordAudit(ctx context.Context, tenantID, actor, action, entityID string, detail map[string]interface{}) {
	event := &entity.AuditEvent{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		Actor:      actor,
		Action:     action,
		EntityType: "plan",
		EntityID:   entityID,
		Detail:     detail,
		RecordedAt: s.now().UTC(),
	}
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.Warn("Failed to record audit event", "action", action, "entityId", entityID, "error", err)
	}
}

// buildNodes flattens the nested node commands into entity nodes, keeping
// the execution state of nodes whose client-supplied id matches an existing
// node and assigning fresh ids to the rest.
func buildNodes(planID string, cmds []NodeCommand, parentID string, existing map[string]*entity.PlanNode) ([]*entity.PlanNode, error) {
	var out []*entity.PlanNode
	for i := range cmds {
		cmd := &cmds[i]
		if cmd.Name == "" {
			return nil, &ValidationError{Reason: "node name is required"}
		}
		node := &entity.PlanNode{
			ID:              cmd.ID,
			PlanID:          planID,
			ParentID:        parentID,
			Name:            cmd.Name,
			Type:            cmd.Type,
			AssigneeID:      cmd.AssigneeID,
			OrderNo:         cmd.OrderNo,
			ExpectedMinutes: cmd.ExpectedMinutes,
			ActionRef:       cmd.ActionRef,
			Description:     cmd.Description,
			Status:          entity.NodeStatusPending,
		}
		if node.ID == "" {
			node.ID = uuid.NewString()
		} else if prev, ok := existing[node.ID]; ok {
			node.Status = prev.Status
			node.ActualStartAt = prev.ActualStartAt
			node.ActualEndAt = prev.ActualEndAt
		}
		out = append(out, node)

		children, err := buildNodes(planID, cmd.Children, node.ID, existing)
		if err != nil {
			return nil, err
		}
		out = append(out, children...)
	}
	return out, nil
}

func buildReminders(plan *entity.Plan, cmds []ReminderCommand) ([]*entity.ReminderRule, error) {
	var out []*entity.ReminderRule
	for _, cmd := range cmds {
		if !cmd.Trigger.IsValid() {
			return nil, &ValidationError{Reason: fmt.Sprintf("unknown reminder trigger %q", cmd.Trigger)}
		}
		if cmd.NodeID != "" && plan.NodeByID(cmd.NodeID) == nil {
			return nil, &ValidationError{Reason: fmt.Sprintf("reminder references unknown node %s", cmd.NodeID)}
		}
		out = append(out, &entity.ReminderRule{
			ID:         uuid.NewString(),
			PlanID:     plan.ID,
			Trigger:    cmd.Trigger,
			Offset:     cmd.Offset,
			NodeID:     cmd.NodeID,
			TemplateID: cmd.TemplateID,
			Enabled:    cmd.Enabled,
		})
	}
	return out, nil
}
