package web

import (
	"net/http"
	"strconv"

	"parts-inventory/internal/app"
	"parts-inventory/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type orderResponse struct {
	core.PurchaseOrder
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

func toOrderResponse(po core.PurchaseOrder) orderResponse {
	return orderResponse{PurchaseOrder: po, GrandTotal: po.GrandTotal()}
}

func toOrderResponses(orders []core.PurchaseOrder) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i, po := range orders {
		out[i] = toOrderResponse(po)
	}
	return out
}

type lineBody struct {
	SKU      string           `json:"sku"`
	Qty      int              `json:"qty"`
	UnitCost *decimal.Decimal `json:"unitCost"`
}

// ── Reorder ───────────────────────────────────────────────────────────────────

// apiSuggestions handles GET /api/reorder/suggestions?safety=N.
func (h *Handler) apiSuggestions(w http.ResponseWriter, r *http.Request) {
	var safety *int
	if raw := r.URL.Query().Get("safety"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, "safety must be a non-negative integer", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		safety = &n
	}

	result, err := h.svc.SuggestReorder(r.Context(), safety)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	type response struct {
		SafetyStock int               `json:"safetyStock"`
		Suggestions []core.Suggestion `json:"suggestions"`
		Total       decimal.Decimal   `json:"total"`
	}
	writeJSON(w, response{
		SafetyStock: result.SafetyStock,
		Suggestions: result.Suggestions,
		Total:       result.Total,
	})
}

// apiCreateDrafts handles POST /api/reorder/drafts.
// Body: { safetyStock?, createdDate? }
func (h *Handler) apiCreateDrafts(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SafetyStock *int   `json:"safetyStock"`
		CreatedDate string `json:"createdDate"`
	}
	if r.ContentLength != 0 && !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.CreateDraftsFromSuggestions(r.Context(), app.CreateDraftsRequest{
		SafetyStock: body.SafetyStock,
		CreatedDate: body.CreatedDate,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, toOrderResponses(result.Orders))
}

// ── Purchase orders ───────────────────────────────────────────────────────────

// apiListPurchaseOrders handles GET /api/purchase-orders?status=.
func (h *Handler) apiListPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListPurchaseOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, toOrderResponses(result.Orders))
}

// apiCreatePurchaseOrder handles POST /api/purchase-orders.
// Body: { supplier, createdDate?, lines?: [{sku, qty, unitCost?}] }
func (h *Handler) apiCreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Supplier    string     `json:"supplier"`
		CreatedDate string     `json:"createdDate"`
		Lines       []lineBody `json:"lines"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Supplier == "" {
		writeError(w, r, "supplier is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	req := app.CreatePurchaseOrderRequest{
		Supplier:    body.Supplier,
		CreatedDate: body.CreatedDate,
	}
	for _, l := range body.Lines {
		req.Lines = append(req.Lines, app.POLineInput{SKU: l.SKU, Qty: l.Qty, UnitCost: l.UnitCost})
	}

	result, err := h.svc.CreatePurchaseOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, toOrderResponse(*result.Order))
}

// apiGetPurchaseOrder handles GET /api/purchase-orders/{id}.
func (h *Handler) apiGetPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetPurchaseOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, toOrderResponse(*result.Order))
}

// apiAddPOLine handles POST /api/purchase-orders/{id}/lines. Body: { sku, qty, unitCost? }
func (h *Handler) apiAddPOLine(w http.ResponseWriter, r *http.Request) {
	var body lineBody
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.AddPurchaseOrderLine(r.Context(), chi.URLParam(r, "id"), app.POLineInput{
		SKU:      body.SKU,
		Qty:      body.Qty,
		UnitCost: body.UnitCost,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, toOrderResponse(*result.Order))
}

// apiUpdatePOLine handles PUT /api/purchase-orders/{id}/lines/{index}. Body: { qty, unitCost }
func (h *Handler) apiUpdatePOLine(w http.ResponseWriter, r *http.Request) {
	index, ok := intParam(w, r, "index")
	if !ok {
		return
	}
	var body struct {
		Qty      int             `json:"qty"`
		UnitCost decimal.Decimal `json:"unitCost"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.UpdatePurchaseOrderLine(r.Context(), app.UpdatePOLineRequest{
		OrderID:  chi.URLParam(r, "id"),
		Index:    index,
		Qty:      body.Qty,
		UnitCost: body.UnitCost,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, toOrderResponse(*result.Order))
}

// apiRemovePOLine handles DELETE /api/purchase-orders/{id}/lines/{index}.
func (h *Handler) apiRemovePOLine(w http.ResponseWriter, r *http.Request) {
	index, ok := intParam(w, r, "index")
	if !ok {
		return
	}
	result, err := h.svc.RemovePurchaseOrderLine(r.Context(), chi.URLParam(r, "id"), index)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, toOrderResponse(*result.Order))
}

// apiUpdatePOStatus handles POST /api/purchase-orders/{id}/status. Body: { status }
// Moving an order to RECEIVED books its lines into stock.
func (h *Handler) apiUpdatePOStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Status == "" {
		writeError(w, r, "status is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.UpdatePurchaseOrderStatus(r.Context(), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, toOrderResponse(*result.Order))
}
