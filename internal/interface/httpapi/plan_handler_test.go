package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsplan-service/internal/domain/entity"
	"opsplan-service/internal/domain/repository"
	"opsplan-service/internal/usecase"
	"opsplan-service/pkg/logger"
	"opsplan-service/pkg/metrics"
)

type memPlanRepo struct {
	plans map[string]*entity.Plan
}

func (r *memPlanRepo) Create(ctx context.Context, plan *entity.Plan) error {
	r.plans[plan.ID] = plan
	return nil
}

func (r *memPlanRepo) Update(ctx context.Context, plan *entity.Plan) error {
	r.plans[plan.ID] = plan
	return nil
}

func (r *memPlanRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Plan, error) {
	plan, ok := r.plans[id]
	if !ok || plan.TenantID != tenantID {
		return nil, repository.ErrNotFound
	}
	return plan, nil
}

func (r *memPlanRepo) Delete(ctx context.Context, tenantID, id string) error {
	delete(r.plans, id)
	return nil
}

func (r *memPlanRepo) List(ctx context.Context, filter repository.PlanFilter) ([]*entity.Plan, error) {
	var out []*entity.Plan
	for _, plan := range r.plans {
		if filter.TenantID != "" && plan.TenantID != filter.TenantID {
			continue
		}
		out = append(out, plan)
	}
	return out, nil
}

func (r *memPlanRepo) ListActive(ctx context.Context, tenantID string) ([]*entity.Plan, error) {
	return r.List(ctx, repository.PlanFilter{TenantID: tenantID})
}

type memCustomers struct{}

func (memCustomers) Exists(ctx context.Context, tenantID, customerID string) (bool, error) {
	return customerID == "customer-1", nil
}

type memTags struct{}

func (memTags) TagsFor(ctx context.Context, entityType, entityID string) ([]*entity.Tag, error) {
	return nil, nil
}

type memAudit struct{}

func (memAudit) Record(ctx context.Context, event *entity.AuditEvent) error { return nil }

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	m := metrics.NewMetrics("http_test", prometheus.NewRegistry())
	service := usecase.NewPlanService(
		&memPlanRepo{plans: map[string]*entity.Plan{}},
		memCustomers{}, memTags{}, memAudit{},
		usecase.DefaultRiskPolicy(), logger.NewNop(), m,
	)
	handler := NewPlanHandler(service, logger.NewNop())
	return NewRouter(handler, logger.NewNop(), false)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", "tenant-1")
	req.Header.Set("X-Actor", "tester")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const createBody = `{
	"title": "June inspection",
	"customerId": "customer-1",
	"ownerId": "owner-1",
	"startAt": "2024-06-10T09:00:00Z",
	"endAt": "2024-06-10T17:00:00Z",
	"timezone": "Asia/Tokyo",
	"nodes": [
		{"name": "Prepare", "orderNo": 1},
		{"name": "Execute", "orderNo": 2}
	]
}`

func createPlan(t *testing.T, router *gin.Engine) map[string]interface{} {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/plans", createBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data
}

func TestCreatePlan_HTTP(t *testing.T) {
	router := testRouter(t)
	data := createPlan(t, router)

	assert.Equal(t, "DRAFT", data["status"])
	assert.NotEmpty(t, data["id"])
	assert.Len(t, data["nodes"], 2)
}

func TestMissingTenantHeader(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "tenant id is required")
}

func TestTenantFromQueryFallback(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans?tenantId=tenant-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	router := testRouter(t)
	data := createPlan(t, router)
	planID := data["id"].(string)

	t.Run("unknown plan is 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/plans/ghost", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"kind":"not_found"`)
	})

	t.Run("unknown customer is 404", func(t *testing.T) {
		body := strings.Replace(createBody, "customer-1", "customer-9", 1)
		rec := doJSON(t, router, http.MethodPost, "/api/v1/plans", body)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("skip-ahead transition is 409", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/plans/"+planID+"/transition",
			`{"status": "IN_PROGRESS"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), `"kind":"invalid_transition"`)
	})

	t.Run("completion with open nodes is 422", func(t *testing.T) {
		for _, status := range []string{"DESIGN", "SCHEDULED", "IN_PROGRESS"} {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/plans/"+planID+"/transition",
				`{"status": "`+status+`"}`)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		}

		rec := doJSON(t, router, http.MethodPost, "/api/v1/plans/"+planID+"/transition",
			`{"status": "COMPLETED"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "blockingNodes")
	})

	t.Run("bad payload is 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/plans", `{"title": ""}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMalformedTimeFiltersRejected(t *testing.T) {
	router := testRouter(t)
	createPlan(t, router)

	for _, path := range []string{
		"/api/v1/plans?from=yesterday",
		"/api/v1/plans?to=2024-13-99",
		"/api/v1/board?from=soon",
		"/api/v1/board?referenceTime=not-a-time",
	} {
		rec := doJSON(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "RFC3339", path)
	}

	// Well-formed values still pass through as filters.
	rec := doJSON(t, router, http.MethodGet, "/api/v1/plans?from=2024-06-01T00:00:00Z", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, router, http.MethodGet, "/api/v1/board?referenceTime=2024-06-01T00:00:00Z", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetNodeStatus_HTTP(t *testing.T) {
	router := testRouter(t)
	data := createPlan(t, router)
	planID := data["id"].(string)
	nodes := data["nodes"].([]interface{})
	nodeID := nodes[0].(map[string]interface{})["id"].(string)

	rec := doJSON(t, router, http.MethodPut,
		"/api/v1/plans/"+planID+"/nodes/"+nodeID+"/status",
		`{"status": "COMPLETED"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"actualEndAt"`)
}

func TestBoard_HTTP(t *testing.T) {
	router := testRouter(t)
	createPlan(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/board?granularity=WEEK", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/v1/board?granularity=FORTNIGHT", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalendar_HTTP(t *testing.T) {
	router := testRouter(t)
	createPlan(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/calendar.ics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usecase.CalendarContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, rec.Body.String(), "DTSTART:20240610T090000Z")
}

func TestHealth(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())
}
