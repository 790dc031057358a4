package web

import (
	"context"
	"net/http"
	"time"

	"parts-inventory/internal/app"
	"parts-inventory/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type partResponse struct {
	core.Part
	Available int `json:"available"`
}

func toPartResponse(p core.Part) partResponse {
	return partResponse{Part: p, Available: p.Available()}
}

// apiListParts handles GET /api/parts.
func (h *Handler) apiListParts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListParts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]partResponse, len(result.Parts))
	for i, p := range result.Parts {
		out[i] = toPartResponse(p)
	}
	writeJSON(w, out)
}

// apiCreatePart handles POST /api/parts.
// Body: { sku, name, unit?, onHand?, minStock?, lastCost?, supplier?, moq?, packSize? }
func (h *Handler) apiCreatePart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SKU      string          `json:"sku"`
		Name     string          `json:"name"`
		Unit     string          `json:"unit"`
		OnHand   int             `json:"onHand"`
		MinStock int             `json:"minStock"`
		LastCost decimal.Decimal `json:"lastCost"`
		Supplier string          `json:"supplier"`
		MOQ      *int            `json:"moq"`
		PackSize *int            `json:"packSize"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.SKU == "" {
		writeError(w, r, "sku is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.CreatePart(r.Context(), app.CreatePartRequest{
		SKU:      body.SKU,
		Name:     body.Name,
		Unit:     body.Unit,
		OnHand:   body.OnHand,
		MinStock: body.MinStock,
		LastCost: body.LastCost,
		Supplier: body.Supplier,
		MOQ:      body.MOQ,
		PackSize: body.PackSize,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, toPartResponse(result.Part))
}

// apiGetPart handles GET /api/parts/{sku}.
func (h *Handler) apiGetPart(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetPart(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, toPartResponse(result.Part))
}

// apiUpdatePart handles PUT /api/parts/{sku}. Absent fields are left unchanged.
func (h *Handler) apiUpdatePart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     *string          `json:"name"`
		Unit     *string          `json:"unit"`
		MinStock *int             `json:"minStock"`
		LastCost *decimal.Decimal `json:"lastCost"`
		Supplier *string          `json:"supplier"`
		MOQ      *int             `json:"moq"`
		PackSize *int             `json:"packSize"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.UpdatePart(r.Context(), app.UpdatePartRequest{
		SKU:      chi.URLParam(r, "sku"),
		Name:     body.Name,
		Unit:     body.Unit,
		MinStock: body.MinStock,
		LastCost: body.LastCost,
		Supplier: body.Supplier,
		MOQ:      body.MOQ,
		PackSize: body.PackSize,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, toPartResponse(result.Part))
}

// apiDeletePart handles DELETE /api/parts/{sku}.
func (h *Handler) apiDeletePart(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePart(r.Context(), chi.URLParam(r, "sku")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type movementBody struct {
	JobRef string `json:"jobRef"`
	Qty    int    `json:"qty"`
}

// apiReserve handles POST /api/parts/{sku}/reserve. Body: { jobRef, qty }
func (h *Handler) apiReserve(w http.ResponseWriter, r *http.Request) {
	var body movementBody
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.Reserve(r.Context(), app.MovementRequest{
		JobRef: body.JobRef,
		SKU:    chi.URLParam(r, "sku"),
		Qty:    body.Qty,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	type reservationResponse struct {
		ID        string       `json:"id"`
		JobRef    string       `json:"jobRef"`
		SKU       string       `json:"sku"`
		Qty       int          `json:"qty"`
		Status    string       `json:"status"`
		CreatedAt string       `json:"createdAt"`
		Part      partResponse `json:"part"`
	}
	res := result.Reservation
	writeJSONStatus(w, http.StatusCreated, reservationResponse{
		ID:        res.ID,
		JobRef:    res.JobRef,
		SKU:       res.SKU,
		Qty:       res.Qty,
		Status:    string(res.Status),
		CreatedAt: res.CreatedAt.UTC().Format(time.RFC3339),
		Part:      toPartResponse(result.Part),
	})
}

// apiConsume handles POST /api/parts/{sku}/consume. Body: { jobRef, qty }
func (h *Handler) apiConsume(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, h.svc.Consume)
}

// apiRelease handles POST /api/parts/{sku}/release. Body: { jobRef, qty }
func (h *Handler) apiRelease(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, h.svc.Release)
}

func (h *Handler) movement(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, req app.MovementRequest) (*app.PartResult, error)) {
	var body movementBody
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := op(r.Context(), app.MovementRequest{
		JobRef: body.JobRef,
		SKU:    chi.URLParam(r, "sku"),
		Qty:    body.Qty,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, toPartResponse(result.Part))
}

// apiReceive handles POST /api/parts/{sku}/receive. Body: { qty, unitCost?, supplier? }
func (h *Handler) apiReceive(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Qty      int              `json:"qty"`
		UnitCost *decimal.Decimal `json:"unitCost"`
		Supplier string           `json:"supplier"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.Receive(r.Context(), app.ReceiveRequest{
		SKU:      chi.URLParam(r, "sku"),
		Qty:      body.Qty,
		UnitCost: body.UnitCost,
		Supplier: body.Supplier,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, toPartResponse(result.Part))
}

// apiAdjust handles POST /api/parts/{sku}/adjust. Body: { delta, reason }
func (h *Handler) apiAdjust(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Delta  int    `json:"delta"`
		Reason string `json:"reason"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	reason := body.Reason
	if claims := authFromContext(r.Context()); claims != nil && claims.Subject != "" {
		reason = reason + " (by " + claims.Subject + ")"
	}
	result, err := h.svc.Adjust(r.Context(), app.AdjustRequest{
		SKU:    chi.URLParam(r, "sku"),
		Delta:  body.Delta,
		Reason: reason,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, toPartResponse(result.Part))
}

// apiStock handles GET /api/stock.
func (h *Handler) apiStock(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.StockOverview(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Rows)
}
