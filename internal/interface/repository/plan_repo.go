package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"opsplan-service/internal/domain/entity"
	"opsplan-service/internal/domain/repository"
)

// GormPlanRepository implements the PlanRepository interface
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new GORM plan repository
func NewGormPlanRepository(db *gorm.DB) repository.PlanRepository {
	return &GormPlanRepository{
		db: db,
	}
}

// PlanModel GORM model for database mapping
type PlanModel struct {
	ID          string `gorm:"primaryKey;column:id"`
	TenantID    string `gorm:"column:tenant_id;index:idx_plans_tenant"`
	Title       string `gorm:"column:title"`
	Description string `gorm:"column:description"`
	CustomerID  string `gorm:"column:customer_id;index"`
	OwnerID     string `gorm:"column:owner_id;index"`
	StartAt     time.Time
	EndAt       time.Time
	Timezone    string `gorm:"column:timezone"`
	Status      string `gorm:"column:status;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// TableName overrides the default table name
func (PlanModel) TableName() string {
	return "m_plans"
}

// PlanNodeModel GORM model for database mapping
type PlanNodeModel struct {
	ID              string `gorm:"primaryKey;column:id"`
	PlanID          string `gorm:"column:plan_id;index"`
	ParentID        string `gorm:"column:parent_id"`
	Name            string `gorm:"column:name"`
	Type            string `gorm:"column:type"`
	AssigneeID      string `gorm:"column:assignee_id"`
	OrderNo         int    `gorm:"column:order_no"`
	ExpectedMinutes *int   `gorm:"column:expected_minutes"`
	ActionRef       string `gorm:"column:action_ref"`
	Description     string `gorm:"column:description"`
	Status          string `gorm:"column:status"`
	ActualStartAt   *time.Time
	ActualEndAt     *time.Time
}

// TableName overrides the default table name
func (PlanNodeModel) TableName() string {
	return "m_plan_nodes"
}

// ReminderRuleModel GORM model for database mapping
type ReminderRuleModel struct {
	ID            string `gorm:"primaryKey;column:id"`
	PlanID        string `gorm:"column:plan_id;index"`
	Trigger       string `gorm:"column:trigger"`
	OffsetSeconds int64  `gorm:"column:offset_seconds"`
	NodeID        string `gorm:"column:node_id"`
	TemplateID    string `gorm:"column:template_id"`
	Enabled       bool   `gorm:"column:enabled"`
}

// TableName overrides the default table name
func (ReminderRuleModel) TableName() string {
	return "m_plan_reminder_rules"
}

// ParticipantModel GORM model for database mapping
type ParticipantModel struct {
	PlanID   string `gorm:"primaryKey;column:plan_id"`
	UserID   string `gorm:"primaryKey;column:user_id"`
	Position int    `gorm:"column:position"`
}

// TableName overrides the default table name
func (ParticipantModel) TableName() string {
	return "m_plan_participants"
}

// Create persists the whole aggregate in one transaction
func (r *GormPlanRepository) Create(ctx context.Context, plan *entity.Plan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(toPlanModel(plan)).Error; err != nil {
			return err
		}
		return r.insertOwned(tx, plan)
	})
}

// Update replaces the aggregate: the plan row is saved and the owned rows
// (nodes, rules, participants) are rewritten.
func (r *GormPlanRepository) Update(ctx context.Context, plan *entity.Plan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&PlanModel{}).
			Where("id = ? AND tenant_id = ?", plan.ID, plan.TenantID).
			Updates(planUpdateColumns(plan))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		if err := r.deleteOwned(tx, plan.ID); err != nil {
			return err
		}
		return r.insertOwned(tx, plan)
	})
}

// GetByID loads one plan aggregate scoped to the tenant
func (r *GormPlanRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.Plan, error) {
	var model PlanModel
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, result.Error
	}

	plans, err := r.attachOwned(ctx, []*entity.Plan{toPlanEntity(&model)})
	if err != nil {
		return nil, err
	}
	return plans[0], nil
}

// Delete removes the plan and cascades to its owned rows
func (r *GormPlanRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&PlanModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return r.deleteOwned(tx, id)
	})
}

// List returns plan aggregates matching the filter, newest start first
func (r *GormPlanRepository) List(ctx context.Context, filter repository.PlanFilter) ([]*entity.Plan, error) {
	query := r.db.WithContext(ctx).Model(&PlanModel{})
	if filter.TenantID != "" {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if !filter.StartFrom.IsZero() {
		query = query.Where("start_at >= ?", filter.StartFrom)
	}
	if !filter.StartTo.IsZero() {
		query = query.Where("start_at < ?", filter.StartTo)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var models []PlanModel
	if err := query.Order("start_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	plans := make([]*entity.Plan, 0, len(models))
	for i := range models {
		plans = append(plans, toPlanEntity(&models[i]))
	}
	return r.attachOwned(ctx, plans)
}

// ListActive returns plans in a non-terminal status; an empty tenant id
// spans all tenants (used by the reminder dispatcher).
func (r *GormPlanRepository) ListActive(ctx context.Context, tenantID string) ([]*entity.Plan, error) {
	query := r.db.WithContext(ctx).Model(&PlanModel{}).
		Where("status NOT IN ?", []string{string(entity.PlanStatusCompleted), string(entity.PlanStatusCancelled)})
	if tenantID != "" {
		query = query.Where("tenant_id = ?", tenantID)
	}

	var models []PlanModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	plans := make([]*entity.Plan, 0, len(models))
	for i := range models {
		plans = append(plans, toPlanEntity(&models[i]))
	}
	return r.attachOwned(ctx, plans)
}

func (r *GormPlanRepository) insertOwned(tx *gorm.DB, plan *entity.Plan) error {
	for _, node := range plan.Nodes {
		if err := tx.Create(toNodeModel(node)).Error; err != nil {
			return err
		}
	}
	for _, rule := range plan.Reminders {
		if err := tx.Create(toRuleModel(rule)).Error; err != nil {
			return err
		}
	}
	for i, userID := range plan.Participants {
		participant := &ParticipantModel{PlanID: plan.ID, UserID: userID, Position: i}
		if err := tx.Create(participant).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormPlanRepository) deleteOwned(tx *gorm.DB, planID string) error {
	if err := tx.Where("plan_id = ?", planID).Delete(&PlanNodeModel{}).Error; err != nil {
		return err
	}
	if err := tx.Where("plan_id = ?", planID).Delete(&ReminderRuleModel{}).Error; err != nil {
		return err
	}
	return tx.Where("plan_id = ?", planID).Delete(&ParticipantModel{}).Error
}

// attachOwned loads nodes, rules, and participants for the given plans in
// three queries and distributes them onto the entities.
func (r *GormPlanRepository) attachOwned(ctx context.Context, plans []*entity.Plan) ([]*entity.Plan, error) {
	if len(plans) == 0 {
		return plans, nil
	}
	ids := make([]string, 0, len(plans))
	byID := make(map[string]*entity.Plan, len(plans))
	for _, plan := range plans {
		ids = append(ids, plan.ID)
		byID[plan.ID] = plan
	}

	var nodes []PlanNodeModel
	if err := r.db.WithContext(ctx).
		Where("plan_id IN ?", ids).
		Order("order_no ASC").
		Find(&nodes).Error; err != nil {
		return nil, err
	}
	for i := range nodes {
		plan := byID[nodes[i].PlanID]
		plan.Nodes = append(plan.Nodes, toNodeEntity(&nodes[i]))
	}

	var rules []ReminderRuleModel
	if err := r.db.WithContext(ctx).
		Where("plan_id IN ?", ids).
		Find(&rules).Error; err != nil {
		return nil, err
	}
	for i := range rules {
		plan := byID[rules[i].PlanID]
		plan.Reminders = append(plan.Reminders, toRuleEntity(&rules[i]))
	}

	var participants []ParticipantModel
	if err := r.db.WithContext(ctx).
		Where("plan_id IN ?", ids).
		Order("position ASC").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	for i := range participants {
		plan := byID[participants[i].PlanID]
		plan.Participants = append(plan.Participants, participants[i].UserID)
	}

	return plans, nil
}

// planUpdateColumns builds the update set as an explicit column map. A
// struct argument to Updates would skip zero-value fields, so a field
// cleared to empty would silently keep its old stored value.
func planUpdateColumns(plan *entity.Plan) map[string]interface{} {
	return map[string]interface{}{
		"title":       plan.Title,
		"description": plan.Description,
		"customer_id": plan.CustomerID,
		"owner_id":    plan.OwnerID,
		"start_at":    plan.StartAt,
		"end_at":      plan.EndAt,
		"timezone":    plan.Timezone,
		"status":      string(plan.Status),
		"updated_at":  plan.UpdatedAt,
	}
}

func toPlanModel(plan *entity.Plan) *PlanModel {
	return &PlanModel{
		ID:          plan.ID,
		TenantID:    plan.TenantID,
		Title:       plan.Title,
		Description: plan.Description,
		CustomerID:  plan.CustomerID,
		OwnerID:     plan.OwnerID,
		StartAt:     plan.StartAt,
		EndAt:       plan.EndAt,
		Timezone:    plan.Timezone,
		Status:      string(plan.Status),
		CreatedAt:   plan.CreatedAt,
		UpdatedAt:   plan.UpdatedAt,
	}
}

func toPlanEntity(model *PlanModel) *entity.Plan {
	return &entity.Plan{
		ID:          model.ID,
		TenantID:    model.TenantID,
		Title:       model.Title,
		Description: model.Description,
		CustomerID:  model.CustomerID,
		OwnerID:     model.OwnerID,
		StartAt:     model.StartAt,
		EndAt:       model.EndAt,
		Timezone:    model.Timezone,
		Status:      entity.PlanStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toNodeModel(node *entity.PlanNode) *PlanNodeModel {
	return &PlanNodeModel{
		ID:              node.ID,
		PlanID:          node.PlanID,
		ParentID:        node.ParentID,
		Name:            node.Name,
		Type:            node.Type,
		AssigneeID:      node.AssigneeID,
		OrderNo:         node.OrderNo,
		ExpectedMinutes: node.ExpectedMinutes,
		ActionRef:       node.ActionRef,
		Description:     node.Description,
		Status:          string(node.Status),
		ActualStartAt:   node.ActualStartAt,
		ActualEndAt:     node.ActualEndAt,
	}
}

func toNodeEntity(model *PlanNodeModel) *entity.PlanNode {
	return &entity.PlanNode{
		ID:              model.ID,
		PlanID:          model.PlanID,
		ParentID:        model.ParentID,
		Name:            model.Name,
		Type:            model.Type,
		AssigneeID:      model.AssigneeID,
		OrderNo:         model.OrderNo,
		ExpectedMinutes: model.ExpectedMinutes,
		ActionRef:       model.ActionRef,
		Description:     model.Description,
		Status:          entity.NodeStatus(model.Status),
		ActualStartAt:   model.ActualStartAt,
		ActualEndAt:     model.ActualEndAt,
	}
}

func toRuleModel(rule *entity.ReminderRule) *ReminderRuleModel {
	return &ReminderRuleModel{
		ID:            rule.ID,
		PlanID:        rule.PlanID,
		Trigger:       string(rule.Trigger),
		OffsetSeconds: int64(rule.Offset / time.Second),
		NodeID:        rule.NodeID,
		TemplateID:    rule.TemplateID,
		Enabled:       rule.Enabled,
	}
}

func toRuleEntity(model *ReminderRuleModel) *entity.ReminderRule {
	return &entity.ReminderRule{
		ID:         model.ID,
		PlanID:     model.PlanID,
		Trigger:    entity.TriggerType(model.Trigger),
		Offset:     time.Duration(model.OffsetSeconds) * time.Second,
		NodeID:     model.NodeID,
		TemplateID: model.TemplateID,
		Enabled:    model.Enabled,
	}
}
