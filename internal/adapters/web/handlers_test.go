package web_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	webAdapter "parts-inventory/internal/adapters/web"
	"parts-inventory/internal/app"
	"parts-inventory/internal/core"
	"parts-inventory/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func setupServer(t *testing.T, secret string) http.Handler {
	t.Helper()
	svc := app.New(storage.NewMemoryBackend(), core.DemoSeed(), 0)
	return webAdapter.NewHandler(svc, "http://localhost:3000", secret)
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := webAdapter.IssueToken(testSecret, "tester", role, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func do(t *testing.T, h http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
	Available *int   `json:"available"`
}

func TestHealth(t *testing.T) {
	h := setupServer(t, testSecret)
	rec := do(t, h, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["auth"])
}

func TestAuth(t *testing.T) {
	h := setupServer(t, testSecret)

	t.Run("missing token", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/parts", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "UNAUTHORIZED", decode[errorBody](t, rec).Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		forged, err := webAdapter.IssueToken("other-secret", "mallory", webAdapter.RoleAdmin, time.Hour)
		require.NoError(t, err)
		rec := do(t, h, http.MethodGet, "/api/parts", forged, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired", func(t *testing.T) {
		old, err := webAdapter.IssueToken(testSecret, "tester", webAdapter.RoleStaff, -time.Minute)
		require.NoError(t, err)
		rec := do(t, h, http.MethodGet, "/api/parts", old, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("me", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/auth/me", token(t, "technician"), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		me := decode[map[string]string](t, rec)
		assert.Equal(t, "tester", me["subject"])
		assert.Equal(t, webAdapter.RoleTechnician, me["role"])
	})

	t.Run("admin only routes", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/parts/OIL-10W40/adjust", token(t, webAdapter.RoleTechnician),
			map[string]any{"delta": -1, "reason": "count"})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = do(t, h, http.MethodPost, "/api/parts/OIL-10W40/adjust", token(t, webAdapter.RoleAdmin),
			map[string]any{"delta": -1, "reason": "count"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown role cannot be issued", func(t *testing.T) {
		_, err := webAdapter.IssueToken(testSecret, "x", "OWNER", time.Hour)
		assert.Error(t, err)
	})
}

func TestAuthDisabledWithoutSecret(t *testing.T) {
	h := setupServer(t, "")
	rec := do(t, h, http.MethodDelete, "/api/parts/AIR-FLT", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMovementRoutes(t *testing.T) {
	h := setupServer(t, testSecret)
	tok := token(t, webAdapter.RoleTechnician)

	rec := do(t, h, http.MethodPost, "/api/parts/OIL-10W40/reserve", tok, map[string]any{"jobRef": "JOB-1", "qty": 3})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[map[string]any](t, rec)
	assert.Equal(t, "RESERVED", res["status"])
	part := res["part"].(map[string]any)
	assert.EqualValues(t, 5, part["reserved"])
	assert.EqualValues(t, 7, part["available"])

	rec = do(t, h, http.MethodPost, "/api/parts/OIL-10W40/reserve", tok, map[string]any{"jobRef": "JOB-2", "qty": 8})
	assert.Equal(t, http.StatusConflict, rec.Code)
	e := decode[errorBody](t, rec)
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)
	require.NotNil(t, e.Available)
	assert.Equal(t, 7, *e.Available)

	rec = do(t, h, http.MethodPost, "/api/parts/OIL-10W40/consume", tok, map[string]any{"jobRef": "JOB-1", "qty": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 9, decode[map[string]any](t, rec)["onHand"])

	rec = do(t, h, http.MethodPost, "/api/parts/OIL-10W40/release", tok, map[string]any{"jobRef": "JOB-1", "qty": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/parts/NOPE/receive", tok, map[string]any{"qty": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/parts/AIR-FLT/receive", tok, map[string]any{"qty": 2, "unitCost": "230.00", "supplier": "C-Parts"})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]any](t, rec)
	assert.EqualValues(t, 5, got["onHand"])
	assert.Equal(t, "C-Parts", got["supplier"])
}

func TestPartRoutes(t *testing.T) {
	h := setupServer(t, testSecret)
	tok := token(t, webAdapter.RoleStaff)

	rec := do(t, h, http.MethodPost, "/api/parts", tok, map[string]any{
		"sku": "SPK-PLG", "name": "Spark plug", "unit": "piece", "onHand": 4, "minStock": 10, "lastCost": "95", "packSize": 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/parts", tok, map[string]any{"sku": "spk-plg", "name": "Again"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_STATE", decode[errorBody](t, rec).Code)

	rec = do(t, h, http.MethodPut, "/api/parts/SPK-PLG", tok, map[string]any{"minStock": 12})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 12, decode[map[string]any](t, rec)["minStock"])

	rec = do(t, h, http.MethodGet, "/api/parts", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 4)

	rec = do(t, h, http.MethodGet, "/api/stock", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]app.StockRow](t, rec)
	require.NotEmpty(t, rows)
	assert.Equal(t, "SPK-PLG", rows[0].SKU)
	assert.Equal(t, 8, rows[0].Needed)

	rec = do(t, h, http.MethodDelete, "/api/parts/SPK-PLG", tok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReorderAndPurchaseOrderRoutes(t *testing.T) {
	h := setupServer(t, testSecret)
	tok := token(t, webAdapter.RoleStaff)

	rec := do(t, h, http.MethodGet, "/api/reorder/suggestions?safety=-1", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/reorder/suggestions?safety=0", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sugg := decode[struct {
		SafetyStock int               `json:"safetyStock"`
		Suggestions []core.Suggestion `json:"suggestions"`
	}](t, rec)
	require.Len(t, sugg.Suggestions, 1)
	assert.Equal(t, "AIR-FLT", sugg.Suggestions[0].SKU)

	rec = do(t, h, http.MethodPost, "/api/reorder/drafts", tok, map[string]any{"safetyStock": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", decode[errorBody](t, rec).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/reorder/drafts", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	drafts := decode[[]core.PurchaseOrder](t, rec)
	require.Len(t, drafts, 1)
	id := drafts[0].OrderID

	rec = do(t, h, http.MethodPost, "/api/purchase-orders/"+id+"/lines", tok, map[string]any{"sku": "OIL-10W40", "qty": 6})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/purchase-orders/"+id+"/lines/1", tok, map[string]any{"qty": 8, "unitCost": "175"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/purchase-orders/"+id+"/lines/x", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/purchase-orders/"+id+"/status", tok, map[string]any{"status": "PLACED"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/purchase-orders/"+id+"/status", tok, map[string]any{"status": "RECEIVED"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "RECEIVED", decode[map[string]any](t, rec)["status"])

	rec = do(t, h, http.MethodPost, "/api/purchase-orders/"+id+"/status", tok, map[string]any{"status": "CANCELED"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/parts/OIL-10W40", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 20, decode[map[string]any](t, rec)["onHand"])

	rec = do(t, h, http.MethodGet, "/api/purchase-orders?status=received", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/api/purchase-orders/missing", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/purchase-orders", tok, map[string]any{"supplier": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStorageFailureIsServiceUnavailable(t *testing.T) {
	backend := storage.NewMemoryBackend()
	h := webAdapter.NewHandler(app.New(backend, core.DemoSeed(), 0), "", "")
	backend.FailLoads(assert.AnError)

	rec := do(t, h, http.MethodPost, "/api/parts/OIL-10W40/reserve", "", map[string]any{"jobRef": "J", "qty": 1})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "STORAGE_UNAVAILABLE", decode[errorBody](t, rec).Code)

	rec = do(t, h, http.MethodGet, "/api/parts", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "reads fail open")
}

func TestCORS(t *testing.T) {
	h := setupServer(t, testSecret)
	req := httptest.NewRequest(http.MethodOptions, "/api/parts", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
