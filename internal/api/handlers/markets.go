package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
	"github.com/BlockchainHB/launchfast-sub005/internal/recalc"
	"github.com/BlockchainHB/launchfast-sub005/pkg/logger"
	"github.com/BlockchainHB/launchfast-sub005/pkg/redis"
)

// MarketHandler handles market API endpoints
// SSOT: market API handling lives in this struct only
type MarketHandler struct {
	orchestrator *recalc.Orchestrator
	markets      contracts.MarketStore
	cache        contracts.CacheService
	logger       *logger.Logger
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(
	orch *recalc.Orchestrator,
	markets contracts.MarketStore,
	cache contracts.CacheService,
	log *logger.Logger,
) *MarketHandler {
	return &MarketHandler{
		orchestrator: orch,
		markets:      markets,
		cache:        cache,
		logger:       log,
	}
}

// RecalculateRequest carries the optional reason for a manual recalculation
type RecalculateRequest struct {
	Reason string `json:"reason"`
}

// Recalculate recomputes one market and returns the fresh snapshot
// POST /api/markets/{id}/recalculate
func (h *MarketHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		respondError(w, http.StatusUnauthorized, "Missing user")
		return
	}

	marketID := mux.Vars(r)["id"]

	var req RecalculateRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Reason == "" {
		req.Reason = "manual"
	}

	snapshot, err := h.orchestrator.RecalculateMarket(r.Context(), uid, marketID, req.Reason)
	if err != nil {
		h.logger.WithError(err).WithField("market_id", marketID).Error("Market recalculation failed")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// RecalculateAffectedRequest names products whose markets need a refresh
type RecalculateAffectedRequest struct {
	ProductIDs []string `json:"product_ids"`
	Reason     string   `json:"reason"`
}

// RecalculateAffected recomputes every market containing one of the given
// products
// POST /api/markets/recalculate-affected
func (h *MarketHandler) RecalculateAffected(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		respondError(w, http.StatusUnauthorized, "Missing user")
		return
	}

	var req RecalculateAffectedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.ProductIDs) == 0 {
		respondError(w, http.StatusBadRequest, "product_ids is required")
		return
	}
	if req.Reason == "" {
		req.Reason = "data_refresh"
	}

	result, err := h.orchestrator.BatchRecalculateForProducts(r.Context(), uid, req.ProductIDs, req.Reason)
	if err != nil {
		h.logger.WithError(err).Error("Affected market recalculation failed")
		respondDomainError(w, err)
		return
	}

	status := http.StatusOK
	if result.Failed() {
		status = http.StatusMultiStatus
	}
	respondJSON(w, status, result)
}

// GetSnapshot returns a market's live snapshot, cache first
// GET /api/markets/{id}/snapshot
func (h *MarketHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	marketID := mux.Vars(r)["id"]
	key := redis.MarketKey(marketID)

	var cached contracts.MarketSnapshot
	found, err := h.cache.Get(r.Context(), key, &cached)
	if err != nil {
		h.logger.WithError(err).WithField("market_id", marketID).Warn("Snapshot cache read failed")
	}
	if found {
		respondJSON(w, http.StatusOK, &cached)
		return
	}

	snapshot, err := h.markets.GetSnapshot(r.Context(), marketID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if err := h.cache.Set(r.Context(), key, snapshot, redis.TTLMedium); err != nil {
		h.logger.WithError(err).WithField("market_id", marketID).Warn("Snapshot cache write failed")
	}

	respondJSON(w, http.StatusOK, snapshot)
}
