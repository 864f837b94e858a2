package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
	"github.com/BlockchainHB/launchfast-sub005/internal/recalc"
	"github.com/BlockchainHB/launchfast-sub005/pkg/logger"
)

// OverrideHandler handles override API endpoints
// SSOT: override API handling lives in this struct only
type OverrideHandler struct {
	orchestrator *recalc.Orchestrator
	overrides    contracts.OverrideStore
	logger       *logger.Logger
}

// NewOverrideHandler creates a new override handler
func NewOverrideHandler(orch *recalc.Orchestrator, overrides contracts.OverrideStore, log *logger.Logger) *OverrideHandler {
	return &OverrideHandler{
		orchestrator: orch,
		overrides:    overrides,
		logger:       log,
	}
}

// BatchUpsertRequest carries a batch of sparse overrides
type BatchUpsertRequest struct {
	Overrides []*contracts.ProductOverride `json:"overrides"`
}

// BatchUpsert saves a batch of overrides and recalculates the affected
// markets
// POST /api/overrides/batch
func (h *OverrideHandler) BatchUpsert(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		respondError(w, http.StatusUnauthorized, "Missing user")
		return
	}

	var req BatchUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.orchestrator.BatchUpsertOverrides(r.Context(), uid, req.Overrides)
	if err != nil {
		// Once the batch is durable a downstream failure is reported as a
		// recalculation warning on a successful save, never as a failed write
		if result != nil && result.OverridesPersisted() {
			h.logger.WithError(err).Warn("Recalculation failed after override save")
			result.RecalcWarning = err.Error()
			respondJSON(w, http.StatusMultiStatus, result)
			return
		}
		h.logger.WithError(err).Error("Override batch save failed")
		respondDomainError(w, err)
		return
	}

	// Overrides are saved even when some market recomputes failed; the
	// caller gets the per-market detail either way
	status := http.StatusOK
	if result.Failed() {
		status = http.StatusMultiStatus
	}
	respondJSON(w, status, result)
}

// GetEffective returns a product merged with the caller's override
// GET /api/products/{id}/effective
func (h *OverrideHandler) GetEffective(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		respondError(w, http.StatusUnauthorized, "Missing user")
		return
	}

	productID := mux.Vars(r)["id"]

	eff, err := h.orchestrator.EffectiveProduct(r.Context(), uid, productID)
	if err != nil {
		h.logger.WithError(err).WithField("product_id", productID).Error("Failed to compute effective product")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, eff)
}

// Delete removes the caller's override for one product
// DELETE /api/overrides/{productID}
func (h *OverrideHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		respondError(w, http.StatusUnauthorized, "Missing user")
		return
	}

	productID := mux.Vars(r)["productID"]

	if err := h.overrides.Delete(r.Context(), uid, productID); err != nil {
		respondDomainError(w, err)
		return
	}

	// The base record is authoritative again; refresh its markets. The
	// delete is already durable, so a recalculation failure only degrades
	// the response.
	result, err := h.orchestrator.BatchRecalculateForProducts(r.Context(), uid, []string{productID}, "override_deleted")
	if err != nil {
		h.logger.WithError(err).WithField("product_id", productID).Warn("Recalculation after delete failed")
		respondJSON(w, http.StatusMultiStatus, map[string]interface{}{
			"product_id":            productID,
			"deleted":               true,
			"recalculation_warning": err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}
