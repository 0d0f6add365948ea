package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	grpcadapter "github.com/simaogato/portfoy-backend/internal/adapter/grpc"
	"github.com/simaogato/portfoy-backend/internal/domain"
	"github.com/simaogato/portfoy-backend/internal/usecase/pricing"
	"github.com/simaogato/portfoy-backend/internal/usecase/rebalance"
)

const requestTimeout = 10 * time.Second

// portfolioFile is the offline input of the rebalance command
type portfolioFile struct {
	Assets  []domain.Asset             `json:"assets"`
	Targets domain.TargetAllocation    `json:"targets"`
	Prices  map[string]decimal.Decimal `json:"prices,omitempty"` // Manual overrides keyed by asset name
}

func newRebalanceCmd() *cobra.Command {
	var (
		file     string
		server   string
		profile  string
		deadBand string
		currency string
	)

	cmd := &cobra.Command{
		Use:   "rebalance",
		Short: "Print the rebalance report of a portfolio",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (server == "") {
				return errors.New("exactly one of --file or --server is required")
			}

			var (
				report *domain.RebalanceReport
				err    error
			)
			if file != "" {
				band, perr := decimal.NewFromString(deadBand)
				if perr != nil {
					return fmt.Errorf("invalid --dead-band: %w", perr)
				}
				report, err = rebalanceFile(file, rebalance.Policy{DeadBand: band})
			} else {
				report, err = rebalanceRemote(contextOf(cmd), server, domain.RiskProfile(profile))
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderReport(report, currency))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON portfolio file with assets and targets")
	cmd.Flags().StringVarP(&server, "server", "s", "", "Address of a portfoy gRPC server (host:port)")
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Risk profile to preview against (server mode)")
	cmd.Flags().StringVar(&deadBand, "dead-band", "2", "Neutral zone in percentage points (file mode)")
	cmd.Flags().StringVar(&currency, "currency", "TRY", "Currency used to display values")

	return cmd
}

func newSummaryCmd() *cobra.Command {
	var (
		server   string
		currency string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard summary of a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeFn, err := dial(server)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx, cancel := context.WithTimeout(contextOf(cmd), requestTimeout)
			defer cancel()

			summary, err := client.GetSummary(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary, currency))
			return nil
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "localhost:8080", "Address of a portfoy gRPC server (host:port)")
	cmd.Flags().StringVar(&currency, "currency", "TRY", "Currency used to display values")

	return cmd
}

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the built-in risk profiles",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), renderProfiles(domain.RiskProfiles))
		},
	}
}

// rebalanceFile runs the engine offline over a portfolio file
func rebalanceFile(path string, policy rebalance.Policy) (*domain.RebalanceReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read portfolio file: %w", err)
	}

	var pf portfolioFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse portfolio file: %w", err)
	}
	if len(pf.Targets) == 0 {
		pf.Targets = domain.DefaultTargets()
	}

	return rebalance.CalculateRebalance(resolvePrices(pf), pf.Targets, policy)
}

// resolvePrices applies the file's overrides and falls back to the buy price for unpriced assets
func resolvePrices(pf portfolioFile) []domain.Asset {
	quotes := make([]*domain.PriceQuote, 0, len(pf.Prices))
	for key, price := range pf.Prices {
		keyed := domain.Asset{Name: key}
		quotes = append(quotes, &domain.PriceQuote{
			Key:    keyed.PriceKey(),
			Source: domain.PriceSourceManual,
			Price:  price,
		})
	}
	book := pricing.NewPriceBook(quotes)

	assets := make([]domain.Asset, len(pf.Assets))
	for i, a := range pf.Assets {
		if _, overridden := book.Manual[a.PriceKey()]; overridden || !a.Price.IsPositive() {
			a.Price = book.Resolve(&a)
		}
		assets[i] = a
	}
	return assets
}

func rebalanceRemote(ctx context.Context, server string, profile domain.RiskProfile) (*domain.RebalanceReport, error) {
	client, closeFn, err := dial(server)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	return client.ComputeRebalance(ctx, profile)
}

func dial(server string) (*grpcadapter.Client, func(), error) {
	conn, err := grpclib.NewClient(server, grpclib.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", server, err)
	}
	return grpcadapter.NewClient(conn), func() { conn.Close() }, nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
