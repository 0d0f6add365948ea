package grpc

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/portfoy-backend/internal/adapter/repository/sqlstore"
	"github.com/simaogato/portfoy-backend/internal/domain"
	"github.com/simaogato/portfoy-backend/internal/usecase/advisor"
	"github.com/simaogato/portfoy-backend/internal/usecase/dashboard"
	"github.com/simaogato/portfoy-backend/internal/usecase/holdings"
	"github.com/simaogato/portfoy-backend/internal/usecase/pricing"
	"github.com/simaogato/portfoy-backend/internal/usecase/rebalance"
	"github.com/simaogato/portfoy-backend/internal/usecase/seeder"
	"github.com/simaogato/portfoy-backend/internal/usecase/targets"
)

// startServer wires the full stack over a temporary SQLite store and returns a connected client
func startServer(t *testing.T) (*Client, *grpclib.ClientConn) {
	t.Helper()
	ctx := context.Background()

	db, err := sqlstore.Open(sqlstore.DriverSQLite, filepath.Join(t.TempDir(), "grpc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))

	assetRepo := sqlstore.NewAssetRepository(db)
	targetRepo := sqlstore.NewTargetRepository(db)
	priceRepo := sqlstore.NewPriceRepository(db)

	_, err = seeder.NewTargetSeeder(targetRepo).Seed(ctx)
	require.NoError(t, err)

	priceService := pricing.NewPriceService(priceRepo)
	dashboardService := dashboard.NewDashboardService(assetRepo, targetRepo, priceService)
	server := NewServer(
		holdings.NewHoldingService(assetRepo, targetRepo),
		targets.NewTargetService(targetRepo, assetRepo),
		priceService,
		rebalance.NewRebalanceService(assetRepo, targetRepo, priceService, rebalance.DefaultPolicy(), zerolog.Nop()),
		dashboardService,
		advisor.NewAdvisorService(dashboardService, nil, advisor.DefaultPolicy(), domain.RiskProfileMedium),
	)

	lis := bufconn.Listen(1024 * 1024)
	grpcServer := grpclib.NewServer(grpclib.ChainUnaryInterceptor(
		RecoveryInterceptor(zerolog.Nop()),
		LoggingInterceptor(zerolog.Nop()),
	))
	RegisterPortfolioServiceServer(grpcServer, server)
	go func() { _ = grpcServer.Serve(lis) }()
	t.Cleanup(grpcServer.Stop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewClient(conn), conn
}

func invoke(t *testing.T, conn *grpclib.ClientConn, method string, fields map[string]interface{}) (*structpb.Struct, error) {
	t.Helper()
	in, err := structpb.NewStruct(fields)
	require.NoError(t, err)

	out := new(structpb.Struct)
	err = conn.Invoke(context.Background(), "/"+ServiceName+"/"+method, in, out)
	return out, err
}

func TestServer_AddAssetAndRebalance(t *testing.T) {
	client, conn := startServer(t)
	ctx := context.Background()

	_, err := invoke(t, conn, "AddAsset", map[string]interface{}{
		"name": "THYAO", "type": "Hisse", "amount": "10", "buy_price": "100",
	})
	require.NoError(t, err)
	_, err = invoke(t, conn, "AddAsset", map[string]interface{}{
		"name": "USD", "type": "USD", "amount": "1000", "buy_price": "1",
	})
	require.NoError(t, err)

	assets, err := client.ListAssets(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	require.NotNil(t, assets[0].Target)
	assert.True(t, assets[0].Target.Equal(decimal.NewFromInt(35)))

	report, err := client.ComputeRebalance(ctx, "")
	require.NoError(t, err)
	assert.True(t, report.TotalValue.Equal(decimal.NewFromInt(2000)))
	require.Len(t, report.PerType, len(domain.DefaultTargets()))

	// Hisse holds 50% against a 35% target
	equity := report.PerType[0]
	assert.Equal(t, domain.AssetTypeEquity, equity.Type)
	assert.True(t, equity.Difference.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, domain.ActionSell, equity.Action.Kind)
	assert.True(t, equity.TradeAmount.Equal(decimal.NewFromInt(300)))
}

func TestServer_ManualPriceChangesValuation(t *testing.T) {
	client, conn := startServer(t)
	ctx := context.Background()

	_, err := invoke(t, conn, "AddAsset", map[string]interface{}{
		"name": "BTC", "type": "Kripto", "amount": "2", "buy_price": "100",
	})
	require.NoError(t, err)

	_, err = invoke(t, conn, "SetManualPrice", map[string]interface{}{"key": "btc", "price": "250"})
	require.NoError(t, err)

	summary, err := client.GetSummary(ctx)
	require.NoError(t, err)
	assert.True(t, summary.TotalValue.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 9.0, summary.RiskScore)
}

func TestServer_PreviewRebalance_Stateless(t *testing.T) {
	client, _ := startServer(t)
	ctx := context.Background()

	report, err := client.PreviewRebalance(ctx,
		[]domain.Asset{
			{Name: "A", Type: domain.AssetTypeEquity, Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(300)},
			{Name: "B", Type: domain.AssetTypeFund, Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(700)},
		},
		domain.TargetAllocation{
			{Type: domain.AssetTypeEquity, Target: decimal.NewFromInt(30)},
			{Type: domain.AssetTypeFund, Target: decimal.NewFromInt(70)},
		},
	)
	require.NoError(t, err)
	for _, row := range report.PerType {
		assert.Equal(t, domain.ActionHold, row.Action.Kind)
	}

	// The preview did not touch the store
	assets, err := client.ListAssets(ctx)
	require.NoError(t, err)
	assert.Empty(t, assets)
}

func TestServer_ErrorCodes(t *testing.T) {
	_, conn := startServer(t)

	tests := []struct {
		name         string
		method       string
		fields       map[string]interface{}
		expectedCode codes.Code
	}{
		{
			name:         "Unknown Asset Type",
			method:       "AddAsset",
			fields:       map[string]interface{}{"name": "Arsa", "type": "Gayrimenkul", "amount": "1", "buy_price": "1"},
			expectedCode: codes.InvalidArgument,
		},
		{
			name:         "Malformed Amount",
			method:       "AddAsset",
			fields:       map[string]interface{}{"name": "THYAO", "type": "Hisse", "amount": "ten", "buy_price": "1"},
			expectedCode: codes.InvalidArgument,
		},
		{
			name:         "Missing Asset",
			method:       "RemoveAsset",
			fields:       map[string]interface{}{"id": "5b7c2b4e-9d7a-4c7e-8f43-0f0e7a1d2c3b"},
			expectedCode: codes.NotFound,
		},
		{
			name:   "Unconfigured Type In Preview",
			method: "PreviewRebalance",
			fields: map[string]interface{}{
				"assets": []interface{}{
					map[string]interface{}{"name": "X", "type": "Kripto", "amount": "1", "price": "1"},
				},
				"targets": []interface{}{
					map[string]interface{}{"type": "Hisse", "target": "100"},
				},
			},
			expectedCode: codes.FailedPrecondition,
		},
		{
			name:         "Unknown Risk Profile",
			method:       "GetAlerts",
			fields:       map[string]interface{}{"profile": "Agresif"},
			expectedCode: codes.InvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := invoke(t, conn, tt.method, tt.fields)

			require.Error(t, err)
			st, ok := status.FromError(err)
			assert.True(t, ok, "error should be a gRPC status")
			assert.Equal(t, tt.expectedCode, st.Code())
		})
	}
}

func TestServer_GetAlerts_EmptyPortfolio(t *testing.T) {
	_, conn := startServer(t)

	out, err := invoke(t, conn, "GetAlerts", map[string]interface{}{})
	require.NoError(t, err)

	alerts := out.GetFields()["alerts"].GetListValue().GetValues()
	require.Len(t, alerts, 1)
	assert.Equal(t, "EMPTY_PORTFOLIO", alerts[0].GetStructValue().GetFields()["code"].GetStringValue())
}
