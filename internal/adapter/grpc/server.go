package grpc

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/portfoy-backend/internal/domain"
	"github.com/simaogato/portfoy-backend/internal/usecase/advisor"
	"github.com/simaogato/portfoy-backend/internal/usecase/dashboard"
	"github.com/simaogato/portfoy-backend/internal/usecase/holdings"
	"github.com/simaogato/portfoy-backend/internal/usecase/pricing"
	"github.com/simaogato/portfoy-backend/internal/usecase/rebalance"
	"github.com/simaogato/portfoy-backend/internal/usecase/snapshot"
	"github.com/simaogato/portfoy-backend/internal/usecase/targets"
)

// Server implements the PortfolioService gRPC server
type Server struct {
	HoldingService   *holdings.HoldingService
	TargetService    *targets.TargetService
	PriceService     *pricing.PriceService
	RebalanceService *rebalance.Service
	DashboardService *dashboard.DashboardService
	AdvisorService   *advisor.AdvisorService
}

// NewServer creates a new gRPC server instance
func NewServer(
	holdingService *holdings.HoldingService,
	targetService *targets.TargetService,
	priceService *pricing.PriceService,
	rebalanceService *rebalance.Service,
	dashboardService *dashboard.DashboardService,
	advisorService *advisor.AdvisorService,
) *Server {
	return &Server{
		HoldingService:   holdingService,
		TargetService:    targetService,
		PriceService:     priceService,
		RebalanceService: rebalanceService,
		DashboardService: dashboardService,
		AdvisorService:   advisorService,
	}
}

// AddAssetRequest is the payload of AddAsset
type AddAssetRequest struct {
	Name     string           `json:"name"`
	Type     domain.AssetType `json:"type"`
	Amount   string           `json:"amount"`
	BuyPrice string           `json:"buy_price"`
	Target   string           `json:"target,omitempty"`
}

// PreviewRebalanceRequest is the payload of PreviewRebalance.
// Assets must carry their resolved price.
type PreviewRebalanceRequest struct {
	Assets  []domain.Asset          `json:"assets"`
	Targets domain.TargetAllocation `json:"targets"`
}

// ListAssets handles the ListAssets RPC
func (s *Server) ListAssets(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	assets, err := s.HoldingService.ListAssets(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return respond(map[string]interface{}{"assets": assets})
}

// AddAsset handles the AddAsset RPC
func (s *Server) AddAsset(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in AddAssetRequest
	if err := decodeStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	// Parse amount from string to decimal
	amount, err := decimal.NewFromString(in.Amount)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid amount format: %v", err)
	}

	// Parse buy price from string to decimal
	buyPrice, err := decimal.NewFromString(in.BuyPrice)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid buy_price format: %v", err)
	}

	// Parse optional target
	var target *decimal.Decimal
	if in.Target != "" {
		t, err := decimal.NewFromString(in.Target)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid target format: %v", err)
		}
		target = &t
	}

	asset, err := s.HoldingService.AddAsset(ctx, holdings.AddAssetInput{
		Name:     in.Name,
		Type:     in.Type,
		Amount:   amount,
		BuyPrice: buyPrice,
		Target:   target,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return respond(asset)
}

// RemoveAsset handles the RemoveAsset RPC
func (s *Server) RemoveAsset(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		ID string `json:"id"`
	}
	if err := decodeStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	id, err := uuid.Parse(in.ID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid id format: %v", err)
	}

	if err := s.HoldingService.RemoveAsset(ctx, id); err != nil {
		return nil, mapError(err)
	}
	return &structpb.Struct{}, nil
}

// GetTargets handles the GetTargets RPC
func (s *Server) GetTargets(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	targets, err := s.TargetService.GetTargets(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return respond(map[string]interface{}{"targets": targets})
}

// SetTarget handles the SetTarget RPC
func (s *Server) SetTarget(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		Type   domain.AssetType `json:"type"`
		Target string           `json:"target"`
	}
	if err := decodeStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	pct, err := decimal.NewFromString(in.Target)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid target format: %v", err)
	}

	targets, err := s.TargetService.SetTarget(ctx, in.Type, pct)
	if err != nil {
		return nil, mapError(err)
	}
	return respond(map[string]interface{}{"targets": targets})
}

// SetManualPrice handles the SetManualPrice RPC
func (s *Server) SetManualPrice(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		Key   string `json:"key"`
		Price string `json:"price"`
	}
	if err := decodeStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	price, err := decimal.NewFromString(in.Price)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid price format: %v", err)
	}

	quote, err := s.PriceService.SetManualPrice(ctx, in.Key, price)
	if err != nil {
		return nil, mapError(err)
	}
	return respond(quote)
}

// ComputeRebalance handles the ComputeRebalance RPC.
// An optional "profile" field previews a risk profile instead of the stored targets.
func (s *Server) ComputeRebalance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		Profile string `json:"profile"`
	}
	if err := decodeStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	var (
		report *domain.RebalanceReport
		err    error
	)
	if in.Profile != "" {
		profile, perr := domain.ParseRiskProfile(in.Profile)
		if perr != nil {
			return nil, mapError(perr)
		}
		report, err = s.RebalanceService.PreviewProfile(ctx, profile)
	} else {
		report, err = s.RebalanceService.Rebalance(ctx)
	}
	if err != nil {
		return nil, mapError(err)
	}
	return respond(report)
}

// PreviewRebalance handles the PreviewRebalance RPC.
// Nothing is read from or written to the store.
func (s *Server) PreviewRebalance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in PreviewRebalanceRequest
	if err := decodeStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	report, err := s.RebalanceService.Preview(in.Assets, in.Targets)
	if err != nil {
		return nil, mapError(err)
	}
	return respond(report)
}

// GetSummary handles the GetSummary RPC
func (s *Server) GetSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	summary, err := s.DashboardService.GetSummary(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return respond(summary)
}

// GetAlerts handles the GetAlerts RPC
func (s *Server) GetAlerts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		Profile string `json:"profile"`
	}
	if err := decodeStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	var profile domain.RiskProfile
	if in.Profile != "" {
		p, err := domain.ParseRiskProfile(in.Profile)
		if err != nil {
			return nil, mapError(err)
		}
		profile = p
	}

	alerts, err := s.AdvisorService.GetAlerts(ctx, profile)
	if err != nil {
		return nil, mapError(err)
	}
	return respond(map[string]interface{}{"alerts": alerts})
}

func respond(v interface{}) (*structpb.Struct, error) {
	out, err := encodeStruct(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "%v", err)
	}
	return out, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	errorMsg := err.Error()

	var cfgErr *domain.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		// Rebalance is blocked until the configuration is fixed
		return status.Errorf(codes.FailedPrecondition, "%s", errorMsg)
	case errors.Is(err, snapshot.ErrSnapshotSkipped):
		return status.Errorf(codes.FailedPrecondition, "%s", errorMsg)
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrUnknownAssetType):
		return status.Errorf(codes.InvalidArgument, "%s", errorMsg)
	case errors.Is(err, domain.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s", errorMsg)
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s", errorMsg)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s", errorMsg)
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", errorMsg)
}
