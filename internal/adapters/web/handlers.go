package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"parts-inventory/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
// An empty jwtSecret disables authentication.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{
		svc:       svc,
		jwtSecret: jwtSecret,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		// ── Parts ─────────────────────────────────────────────────────────────
		r.Get("/api/parts", h.apiListParts)
		r.Post("/api/parts", h.apiCreatePart)
		r.Get("/api/parts/{sku}", h.apiGetPart)
		r.Put("/api/parts/{sku}", h.apiUpdatePart)
		r.With(h.RequireRole(RoleAdmin)).Delete("/api/parts/{sku}", h.apiDeletePart)

		// ── Stock movements ───────────────────────────────────────────────────
		r.Post("/api/parts/{sku}/reserve", h.apiReserve)
		r.Post("/api/parts/{sku}/consume", h.apiConsume)
		r.Post("/api/parts/{sku}/release", h.apiRelease)
		r.Post("/api/parts/{sku}/receive", h.apiReceive)
		r.With(h.RequireRole(RoleAdmin)).Post("/api/parts/{sku}/adjust", h.apiAdjust)
		r.Get("/api/stock", h.apiStock)

		// ── Reorder ───────────────────────────────────────────────────────────
		r.Get("/api/reorder/suggestions", h.apiSuggestions)
		r.Post("/api/reorder/drafts", h.apiCreateDrafts)

		// ── Purchase orders ───────────────────────────────────────────────────
		r.Get("/api/purchase-orders", h.apiListPurchaseOrders)
		r.Post("/api/purchase-orders", h.apiCreatePurchaseOrder)
		r.Get("/api/purchase-orders/{id}", h.apiGetPurchaseOrder)
		r.Post("/api/purchase-orders/{id}/lines", h.apiAddPOLine)
		r.Put("/api/purchase-orders/{id}/lines/{index}", h.apiUpdatePOLine)
		r.Delete("/api/purchase-orders/{id}/lines/{index}", h.apiRemovePOLine)
		r.Post("/api/purchase-orders/{id}/status", h.apiUpdatePOStatus)
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
		Auth   bool   `json:"auth"`
	}
	writeJSON(w, response{Status: "ok", Auth: h.jwtSecret != ""})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// intParam parses the {name} URL parameter. It writes a 400 and returns false on failure.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		writeError(w, r, name+" must be an integer", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}
