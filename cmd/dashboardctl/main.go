package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"market-dashboard/internal/dashboard/config"
	"market-dashboard/internal/dashboard/repository"
	"market-dashboard/internal/dashboard/service"
	"market-dashboard/pkg/logger"
	"market-dashboard/pkg/utils"
)

var (
	configPath string
	serverURL  string
	coinsLimit int
)

var rootCmd = &cobra.Command{
	Use:   "dashboardctl",
	Short: "A CLI for inspecting the market dashboard",
	Long:  `dashboardctl probes a running dashboard service and runs the market feeds locally for inspection.`,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probes the health endpoint of a running service",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := resty.New().
			SetBaseURL(serverURL).
			SetTimeout(5 * time.Second).
			R().
			SetContext(cmd.Context()).
			Get("/api/health")
		if err != nil {
			return fmt.Errorf("failed to reach %s: %w", serverURL, err)
		}
		if resp.IsError() {
			return fmt.Errorf("unhealthy: %s", resp.Status())
		}
		fmt.Println(resp.String())
		return nil
	},
}

var coinsCmd = &cobra.Command{
	Use:   "coins",
	Short: "Lists the top coins",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		repo := repository.NewCoinGeckoRepository(cfg, log, &http.Client{}, utils.NewTimeSeededRandom())
		coins, err := repo.GetTopCoins(cmd.Context(), coinsLimit)
		if err != nil {
			return err
		}
		return printJSON(coins)
	},
}

var sentimentCmd = &cobra.Command{
	Use:   "sentiment <asset>",
	Short: "Generates a social sentiment summary for an asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, err := setup()
		if err != nil {
			return err
		}
		repo := repository.NewSocialMediaRepository(log, utils.NewTimeSeededRandom())
		sentiment, err := repo.GetSocialSentiment(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(sentiment)
	},
}

var valuationCmd = &cobra.Command{
	Use:   "valuation <asset-id> <target-year>",
	Short: "Projects the long-horizon valuation of a catalogued coin",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, err := setup()
		if err != nil {
			return err
		}
		year, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid target year %q: %w", args[1], err)
		}
		svc := service.NewValuationService(log, utils.NewTimeSeededRandom(), nil)
		projection, err := svc.Project(cmd.Context(), args[0], year)
		if err != nil {
			return err
		}
		return printJSON(projection)
	},
}

func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-dashboard.yaml", "Path to the configuration file")
	healthCmd.Flags().StringVar(&serverURL, "url", "http://localhost:3000", "Base URL of the dashboard service")
	coinsCmd.Flags().IntVarP(&coinsLimit, "limit", "n", 10, "Number of coins")

	rootCmd.AddCommand(healthCmd, coinsCmd, sentimentCmd, valuationCmd)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'\n", err)
		os.Exit(1)
	}
}
