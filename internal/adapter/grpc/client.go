package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/portfoy-backend/internal/domain"
	"github.com/simaogato/portfoy-backend/internal/usecase/dashboard"
)

// Client is a typed wrapper over a PortfolioService connection
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient creates a new Client on an established connection
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) call(ctx context.Context, method string, req interface{}, resp interface{}) error {
	in, err := encodeStruct(req)
	if err != nil {
		return err
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return err
	}

	if resp == nil {
		return nil
	}
	return decodeStruct(out, resp)
}

// ListAssets fetches every stored holding
func (c *Client) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	var resp struct {
		Assets []domain.Asset `json:"assets"`
	}
	if err := c.call(ctx, "ListAssets", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Assets, nil
}

// GetTargets fetches the configured allocation
func (c *Client) GetTargets(ctx context.Context) (domain.TargetAllocation, error) {
	var resp struct {
		Targets domain.TargetAllocation `json:"targets"`
	}
	if err := c.call(ctx, "GetTargets", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Targets, nil
}

// ComputeRebalance runs the server-side rebalance. An empty profile uses the stored targets.
func (c *Client) ComputeRebalance(ctx context.Context, profile domain.RiskProfile) (*domain.RebalanceReport, error) {
	req := map[string]string{}
	if profile != "" {
		req["profile"] = string(profile)
	}

	var report domain.RebalanceReport
	if err := c.call(ctx, "ComputeRebalance", req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// PreviewRebalance runs the engine server-side on the given data
func (c *Client) PreviewRebalance(ctx context.Context, assets []domain.Asset, targets domain.TargetAllocation) (*domain.RebalanceReport, error) {
	req := PreviewRebalanceRequest{Assets: assets, Targets: targets}

	var report domain.RebalanceReport
	if err := c.call(ctx, "PreviewRebalance", req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// GetSummary fetches the dashboard summary
func (c *Client) GetSummary(ctx context.Context) (*dashboard.Summary, error) {
	var summary dashboard.Summary
	if err := c.call(ctx, "GetSummary", struct{}{}, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
