package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	analyticsrepo "github.com/jkestates/estatedesk/internal/analytics/repository"
	analyticsservice "github.com/jkestates/estatedesk/internal/analytics/service"
	"github.com/jkestates/estatedesk/internal/clock"
	"github.com/jkestates/estatedesk/internal/config"
	invoicerepo "github.com/jkestates/estatedesk/internal/invoice/repository"
	invoiceservice "github.com/jkestates/estatedesk/internal/invoice/service"
	"github.com/jkestates/estatedesk/internal/observability"
	paymentrepo "github.com/jkestates/estatedesk/internal/payment/repository"
	paymentservice "github.com/jkestates/estatedesk/internal/payment/service"
	propertydomain "github.com/jkestates/estatedesk/internal/property/domain"
	propertyrepo "github.com/jkestates/estatedesk/internal/property/repository"
	propertyservice "github.com/jkestates/estatedesk/internal/property/service"
	"github.com/jkestates/estatedesk/internal/testutil"
	billrepo "github.com/jkestates/estatedesk/internal/utilitybill/repository"
	billservice "github.com/jkestates/estatedesk/internal/utilitybill/service"
	"github.com/jkestates/estatedesk/internal/utilitybill/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const staffToken = "s3cret-staff-token"

type harness struct {
	handler   http.Handler
	seed      *testutil.Seeder
	greenview propertydomain.Property
	a1, a2    propertydomain.Unit
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	log := zap.NewNop()
	renderer := testutil.NewRenderer()

	reg := observability.NewRegistry()
	metrics := observability.NewMetrics(reg)
	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	cfg := config.Config{
		Version: "test",
		Billing: config.BillingConfig{
			RequestTimeout:    5 * time.Second,
			Consistency:       config.ConsistencyPerLine,
			MaxParallelWrites: 2,
			SessionIdleTTL:    time.Hour,
		},
		Auth:      config.AuthConfig{StaffTokens: []string{staffToken}},
		Telemetry: config.TelemetryConfig{ServiceName: "estatedesk-test"},
	}
	clk := clock.Fixed(testutil.RenderedAt)

	bp := billservice.Params{
		DB:         db,
		Log:        log,
		Config:     cfg,
		Clock:      clk,
		Node:       node,
		Bills:      billrepo.Provide(),
		Properties: propertyrepo.Provide(),
		Metrics:    metrics,
	}
	registry := session.NewRegistry(session.RegistryParams{
		Config:    cfg,
		Clock:     clk,
		Log:       log,
		Metrics:   metrics,
		Store:     billservice.NewPeriodStore(bp, billservice.NewResolver(bp)),
		Persister: billservice.NewPersister(bp, billservice.NewSaveLock(bp)),
		Renderer:  renderer,
	})

	srv := NewServer(Params{
		Config:         cfg,
		Log:            log,
		DB:             db,
		Gatherer:       reg,
		TracerProvider: noop.NewTracerProvider(),
		Sessions:       registry,
		PropertySvc:    propertyservice.New(propertyservice.Params{DB: db, Log: log, Repo: propertyrepo.Provide()}),
		PaymentSvc:     paymentservice.New(paymentservice.Params{DB: db, Log: log, Repo: paymentrepo.Provide(), Renderer: renderer}),
		InvoiceSvc:     invoiceservice.New(invoiceservice.Params{DB: db, Log: log, Repo: invoicerepo.Provide(), Renderer: renderer}),
		AnalyticsSvc:   analyticsservice.New(analyticsservice.Params{DB: db, Log: log, Repo: analyticsrepo.Provide(), Renderer: renderer}),
	})

	seed := testutil.NewSeeder(t, db)
	h := &harness{handler: srv.Handler(), seed: seed}
	h.greenview = seed.Property("Greenview Court")
	h.a1 = seed.Unit(h.greenview.ID, "A1")
	h.a2 = seed.Unit(h.greenview.ID, "A2")
	seed.Tenant(h.a1.ID, "Mary Wanjiku")
	seed.Bill(h.a2.ID, "2025-02", 20, 50, 15)
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+staffToken)
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) session.View {
	t.Helper()
	var envelope struct {
		Data session.View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	return envelope.Data
}

type errorEnvelope struct {
	Error struct {
		Code        string   `json:"code"`
		Hint        string   `json:"hint"`
		UnitNumbers []string `json:"unit_numbers"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var out errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (h *harness) openMarch(t *testing.T) string {
	t.Helper()
	w := h.do(t, http.MethodPost, "/api/v1/billing/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decodeView(t, w).ID

	w = h.do(t, http.MethodPost, "/api/v1/billing/sessions/"+id+"/select", map[string]string{
		"property_id":    h.greenview.ID.String(),
		"billing_period": "2025-03",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return id
}

func TestStaffTokenRequired(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties", nil)
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/properties", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	w = h.do(t, http.MethodGet, "/api/v1/properties", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Greenview Court")
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestSwaggerDoc(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		BasePath string                    `json:"basePath"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.Contains(t, doc.Paths["/billing/sessions/{id}/save"], "post")
	assert.Contains(t, doc.Paths["/billing/sessions/{id}/lines/{unit_id}/current-reading"], "put")
	assert.Contains(t, doc.Paths["/reports/{type}"], "get")
}

func TestListUnits(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/v1/properties/"+h.greenview.ID.String()+"/units", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data []propertydomain.UnitView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 2)
	assert.Equal(t, "Mary Wanjiku", envelope.Data[0].TenantName)
	assert.Equal(t, propertydomain.VacantLabel, envelope.Data[1].TenantName)

	w = h.do(t, http.MethodGet, "/api/v1/properties/42/units", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "property_not_found", decodeError(t, w).Error.Code)
}

func TestBillingSessionFlow(t *testing.T) {
	h := newHarness(t)
	id := h.openMarch(t)
	base := "/api/v1/billing/sessions/" + id

	w := h.do(t, http.MethodPut, base+"/rate", map[string]any{"rate": "15"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// saving with a missing reading is rejected before any write
	w = h.do(t, http.MethodPost, base+"/save", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "current_reading_required", decodeError(t, w).Error.Code)

	w = h.do(t, http.MethodPut, base+"/lines/"+h.a1.ID.String()+"/current-reading", map[string]any{"reading": "30"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = h.do(t, http.MethodPut, base+"/lines/"+h.a2.ID.String()+"/current-reading", map[string]any{"reading": 80})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = h.do(t, http.MethodPut, base+"/lines/"+h.a2.ID.String()+"/arrears", map[string]any{"arrears": "100"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	view := decodeView(t, w)
	assert.Equal(t, "900", view.TotalAmount.String())
	assert.Equal(t, "1000", view.TotalDue.String())

	w = h.do(t, http.MethodPost, base+"/validate", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodPost, base+"/save", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var saved struct {
		Data struct {
			Session session.View `json:"session"`
			Result  struct {
				Succeeded []json.RawMessage `json:"succeeded"`
			} `json:"result"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Len(t, saved.Data.Result.Succeeded, 2)
	assert.Equal(t, session.StateSaved, saved.Data.Session.State)

	w = h.do(t, http.MethodGet, base+"/statement?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "utility-bills-greenview-court-2025-03.csv")

	w = h.do(t, http.MethodGet, base+"/lines/"+h.a1.ID.String()+"/statement", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
}

func TestCreateModeOverStoredBillsConflicts(t *testing.T) {
	h := newHarness(t)
	h.seed.Bill(h.a1.ID, "2025-03", 0, 30, 15)
	h.seed.Bill(h.a2.ID, "2025-03", 50, 80, 15)

	id := h.openMarch(t)
	base := "/api/v1/billing/sessions/" + id

	w := h.do(t, http.MethodPost, base+"/create-mode", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = h.do(t, http.MethodPut, base+"/lines/"+h.a1.ID.String()+"/current-reading", map[string]any{"reading": "40"})
	require.Equal(t, http.StatusOK, w.Code)
	w = h.do(t, http.MethodPut, base+"/lines/"+h.a2.ID.String()+"/current-reading", map[string]any{"reading": "90"})
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodPost, base+"/save", nil)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	body := decodeError(t, w)
	assert.Equal(t, hintReload, body.Error.Hint)
	assert.ElementsMatch(t, []string{"A1", "A2"}, body.Error.UnitNumbers)

	w = h.do(t, http.MethodPost, base+"/reload", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "edit", string(decodeView(t, w).Mode))
}

func TestBillingRequestErrors(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/v1/billing/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodPost, "/api/v1/billing/sessions", nil)
	id := decodeView(t, w).ID

	w = h.do(t, http.MethodPost, "/api/v1/billing/sessions/"+id+"/select", map[string]string{"billing_period": "March"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_billing_period", decodeError(t, w).Error.Code)

	w = h.do(t, http.MethodPost, "/api/v1/billing/sessions/"+id+"/select", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// edits need a loaded period
	w = h.do(t, http.MethodPut, "/api/v1/billing/sessions/"+id+"/rate", map[string]any{"rate": "15"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "session_not_ready", decodeError(t, w).Error.Code)

	w = h.do(t, http.MethodPut, "/api/v1/billing/sessions/"+id+"/lines/abc/current-reading", map[string]any{"reading": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentsAndReports(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/v1/payments/42/receipt", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "payment_not_found", decodeError(t, w).Error.Code)

	w = h.do(t, http.MethodGet, "/api/v1/invoices/42/document?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/reports/occupancy?format=pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Occupancy_Report_2025-03-31.pdf")

	w = h.do(t, http.MethodGet, "/api/v1/reports/occupancy?format=json&property_id="+h.greenview.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"Occupancy Report"`))

	w = h.do(t, http.MethodGet, "/api/v1/reports/revenue", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unknown_report_type", decodeError(t, w).Error.Code)

	w = h.do(t, http.MethodGet, "/api/v1/reports/financial?start=2025-03-31&end=2025-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
