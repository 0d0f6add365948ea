package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/simaogato/portfoy-backend/internal/domain"
	"github.com/simaogato/portfoy-backend/internal/usecase/advisor"
	"github.com/simaogato/portfoy-backend/internal/usecase/dashboard"
	"github.com/simaogato/portfoy-backend/internal/usecase/holdings"
	"github.com/simaogato/portfoy-backend/internal/usecase/investment"
	"github.com/simaogato/portfoy-backend/internal/usecase/pricing"
	"github.com/simaogato/portfoy-backend/internal/usecase/rebalance"
	"github.com/simaogato/portfoy-backend/internal/usecase/snapshot"
	"github.com/simaogato/portfoy-backend/internal/usecase/targets"
)

// Services bundles the use cases exposed over HTTP
type Services struct {
	Holdings   *holdings.HoldingService
	Targets    *targets.TargetService
	Prices     *pricing.PriceService
	Rebalance  *rebalance.Service
	Dashboard  *dashboard.DashboardService
	Advisor    *advisor.AdvisorService
	Snapshots  *snapshot.SnapshotService
	Investment *investment.InvestmentService
}

// Handlers provides HTTP handlers for the portfolio API
type Handlers struct {
	svc Services
	log zerolog.Logger
}

// NewHandlers creates a new handlers instance
func NewHandlers(svc Services, log zerolog.Logger) *Handlers {
	return &Handlers{
		svc: svc,
		log: log.With().Str("module", "api_handlers").Logger(),
	}
}

// RegisterRoutes registers all API routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/assets", func(r chi.Router) {
		r.Get("/", h.ListAssets)
		r.Post("/", h.AddAsset)
		r.Delete("/{id}", h.RemoveAsset)
		r.Put("/{id}/amount", h.UpdateAmount)
		r.Put("/{id}/price", h.UpdateMarketPrice)
		r.Get("/{id}/profit", h.GetProfit)
	})

	r.Route("/targets", func(r chi.Router) {
		r.Get("/", h.GetTargets)
		r.Put("/{type}", h.SetTarget)
		r.Delete("/{type}", h.RemoveTarget)
		r.Post("/profile/{profile}", h.ApplyProfile)
	})

	r.Route("/prices", func(r chi.Router) {
		r.Post("/quotes", h.RecordQuotes)
		r.Put("/{key}", h.SetManualPrice)
		r.Delete("/{key}", h.ClearManualPrice)
	})

	r.Route("/rebalance", func(r chi.Router) {
		r.Get("/", h.Rebalance)
		r.Post("/preview", h.PreviewRebalance)
		r.Get("/profile/{profile}", h.PreviewProfile)
	})

	r.Get("/summary", h.GetSummary)
	r.Get("/alerts", h.GetAlerts)

	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", h.ListSnapshots)
		r.Post("/", h.RecordSnapshot)
		r.Get("/changes", h.SnapshotChanges)
	})
}

// Health reports liveness
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AddAssetRequest is the body of POST /api/assets
type AddAssetRequest struct {
	Name     string           `json:"name"`
	Type     domain.AssetType `json:"type"`
	Amount   decimal.Decimal  `json:"amount"`
	BuyPrice decimal.Decimal  `json:"buy_price"`
	Target   *decimal.Decimal `json:"target,omitempty"`
}

// ListAssets returns every stored holding
func (h *Handlers) ListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.svc.Holdings.ListAssets(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, assets)
}

// AddAsset records a new holding
func (h *Handlers) AddAsset(w http.ResponseWriter, r *http.Request) {
	var req AddAssetRequest
	if !h.decode(w, r, &req) {
		return
	}

	asset, err := h.svc.Holdings.AddAsset(r.Context(), holdings.AddAssetInput{
		Name:     req.Name,
		Type:     req.Type,
		Amount:   req.Amount,
		BuyPrice: req.BuyPrice,
		Target:   req.Target,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, asset)
}

// RemoveAsset deletes a holding
func (h *Handlers) RemoveAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Holdings.RemoveAsset(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateAmount changes the quantity of a holding
func (h *Handlers) UpdateAmount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	asset, err := h.svc.Holdings.UpdateAmount(r.Context(), id, req.Amount)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, asset)
}

// UpdateMarketPrice sets a manual price through a holding
func (h *Handlers) UpdateMarketPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}

	var req struct {
		Price decimal.Decimal `json:"price"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	quote, err := h.svc.Investment.UpdateMarketPrice(r.Context(), id, req.Price)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quote)
}

// GetProfit returns the unrealized profit of a holding
func (h *Handlers) GetProfit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}

	profit, err := h.svc.Investment.CalculateProfit(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profit)
}

// GetTargets returns the target allocation
func (h *Handlers) GetTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := h.svc.Targets.GetTargets(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, targets)
}

// SetTarget sets the target of one type
func (h *Handlers) SetTarget(w http.ResponseWriter, r *http.Request) {
	assetType, ok := h.pathParam(w, r, "type")
	if !ok {
		return
	}

	var req struct {
		Target decimal.Decimal `json:"target"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	targets, err := h.svc.Targets.SetTarget(r.Context(), domain.AssetType(assetType), req.Target)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, targets)
}

// RemoveTarget unregisters a type
func (h *Handlers) RemoveTarget(w http.ResponseWriter, r *http.Request) {
	assetType, ok := h.pathParam(w, r, "type")
	if !ok {
		return
	}

	targets, err := h.svc.Targets.RemoveTarget(r.Context(), domain.AssetType(assetType))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, targets)
}

// ApplyProfile replaces the targets with a risk profile
func (h *Handlers) ApplyProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profileParam(w, r)
	if !ok {
		return
	}

	targets, err := h.svc.Targets.ApplyRiskProfile(r.Context(), profile)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, targets)
}

// SetManualPrice stores a price override
func (h *Handlers) SetManualPrice(w http.ResponseWriter, r *http.Request) {
	key, ok := h.pathParam(w, r, "key")
	if !ok {
		return
	}

	var req struct {
		Price decimal.Decimal `json:"price"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	quote, err := h.svc.Prices.SetManualPrice(r.Context(), key, req.Price)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quote)
}

// ClearManualPrice removes a price override
func (h *Handlers) ClearManualPrice(w http.ResponseWriter, r *http.Request) {
	key, ok := h.pathParam(w, r, "key")
	if !ok {
		return
	}

	if err := h.svc.Prices.ClearManualPrice(r.Context(), key); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QuoteRequest is one externally fetched price
type QuoteRequest struct {
	Key   string          `json:"key"`
	Price decimal.Decimal `json:"price"`
}

// RecordQuotes stores a batch of feed prices. The batch stops at the first invalid quote.
func (h *Handlers) RecordQuotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quotes []QuoteRequest `json:"quotes"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	recorded := make([]*domain.PriceQuote, 0, len(req.Quotes))
	for _, q := range req.Quotes {
		quote, err := h.svc.Prices.RecordQuote(r.Context(), q.Key, q.Price)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		recorded = append(recorded, quote)
	}
	h.writeJSON(w, http.StatusOK, recorded)
}

// Rebalance compares the stored portfolio with the stored targets
func (h *Handlers) Rebalance(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Rebalance.Rebalance(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// PreviewRebalanceRequest is the body of POST /api/rebalance/preview
type PreviewRebalanceRequest struct {
	Assets  []domain.Asset          `json:"assets"`
	Targets domain.TargetAllocation `json:"targets"`
}

// PreviewRebalance runs the engine on the posted data only
func (h *Handlers) PreviewRebalance(w http.ResponseWriter, r *http.Request) {
	var req PreviewRebalanceRequest
	if !h.decode(w, r, &req) {
		return
	}

	report, err := h.svc.Rebalance.Preview(req.Assets, req.Targets)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// PreviewProfile rebalances against a risk profile without saving it
func (h *Handlers) PreviewProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profileParam(w, r)
	if !ok {
		return
	}

	report, err := h.svc.Rebalance.PreviewProfile(r.Context(), profile)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// GetSummary returns the dashboard overview
func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Dashboard.GetSummary(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// GetAlerts evaluates the portfolio, optionally for ?profile=
func (h *Handlers) GetAlerts(w http.ResponseWriter, r *http.Request) {
	var profile domain.RiskProfile
	if p := r.URL.Query().Get("profile"); p != "" {
		parsed, err := domain.ParseRiskProfile(p)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		profile = parsed
	}

	alerts, err := h.svc.Advisor.GetAlerts(r.Context(), profile)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, alerts)
}

// ListSnapshots returns the portfolio history
func (h *Handlers) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.Snapshots.History(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, history)
}

// SnapshotChanges returns the daily, weekly and extreme moves of the history
func (h *Handlers) SnapshotChanges(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.svc.Snapshots.Analyze(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, analysis)
}

// RecordSnapshot records today's snapshot, or the day given as ?date=YYYY-MM-DD
func (h *Handlers) RecordSnapshot(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse(domain.SnapshotDateLayout, d)
		if err != nil {
			h.writeError(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		day = parsed
	}

	snap, err := h.svc.Snapshots.Record(r.Context(), day)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handlers) assetID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, "invalid asset id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// pathParam returns a decoded path parameter; type names such as Altın arrive percent-encoded
func (h *Handlers) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value, err := url.PathUnescape(chi.URLParam(r, name))
	if err != nil || value == "" {
		h.writeError(w, "invalid "+name, http.StatusBadRequest)
		return "", false
	}
	return value, true
}

func (h *Handlers) profileParam(w http.ResponseWriter, r *http.Request) (domain.RiskProfile, bool) {
	raw, ok := h.pathParam(w, r, "profile")
	if !ok {
		return "", false
	}
	profile, err := domain.ParseRiskProfile(raw)
	if err != nil {
		h.writeServiceError(w, err)
		return "", false
	}
	return profile, true
}

// writeJSON writes a JSON response
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handlers) writeError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a use case error onto an HTTP status
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	var cfgErr *domain.ConfigurationError
	switch {
	case errors.As(err, &cfgErr), errors.Is(err, snapshot.ErrSnapshotSkipped):
		h.writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrUnknownAssetType):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, err.Error(), http.StatusNotFound)
	default:
		h.log.Error().Err(err).Msg("Request failed")
		h.writeError(w, "internal error", http.StatusInternalServerError)
	}
}
