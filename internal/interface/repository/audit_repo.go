package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"opsplan-service/internal/domain/entity"
	"opsplan-service/internal/domain/repository"
	"opsplan-service/pkg/logger"
)

// MongoAuditSink implements the AuditSink interface
type MongoAuditSink struct {
	collection *mongo.Collection
	logger     logger.Logger
}

// auditDocument is the Mongo shape of an audit event
type auditDocument struct {
	ID         string                 `bson:"_id"`
	TenantID   string                 `bson:"tenantId"`
	Actor      string                 `bson:"actor"`
	Action     string                 `bson:"action"`
	EntityType string                 `bson:"entityType"`
	EntityID   string                 `bson:"entityId"`
	Detail     map[string]interface{} `bson:"detail,omitempty"`
	RecordedAt time.Time              `bson:"recordedAt"`
}

// NewMongoAuditSink creates a new MongoDB audit sink
func NewMongoAuditSink(db *mongo.Database, log logger.Logger) repository.AuditSink {
	collection := db.Collection("audit_events")

	// Create indexes for better performance
	ctx := context.Background()

	// Compound index for looking up an entity's history within a tenant
	entityIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "tenantId", Value: 1},
			{Key: "entityId", Value: 1},
			{Key: "recordedAt", Value: -1},
		},
	}

	// Index on action for filtered audit queries
	actionIndex := mongo.IndexModel{
		Keys: bson.M{"action": 1},
	}

	indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := collection.Indexes().CreateMany(indexCtx, []mongo.IndexModel{entityIndex, actionIndex}, options.CreateIndexes()); err != nil {
		// Writes still work without the indexes; queries are just slower.
		log.Warn("Failed to create audit indexes", "error", err)
	}

	return &MongoAuditSink{collection: collection, logger: log}
}

// Record appends one audit event; events are never updated or deleted
func (s *MongoAuditSink) Record(ctx context.Context, event *entity.AuditEvent) error {
	doc := auditDocument{
		ID:         event.ID,
		TenantID:   event.TenantID,
		Actor:      event.Actor,
		Action:     event.Action,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Detail:     event.Detail,
		RecordedAt: event.RecordedAt,
	}
	_, err := s.collection.InsertOne(ctx, doc)
	return err
}
