package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/odq/triagem/internal/logger"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the screening api is reachable",
	Run: func(_ *cobra.Command, _ []string) {
		health()
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func health() {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	client, err := newAPIClient(config.API, logger)
	if err != nil {
		logger.Fatal("preparing the api client", zap.Error(err))
	}

	h, err := client.Probe(context.Background(), config.API.ProbeAttempts, config.API.ProbeBackoff)
	if err != nil {
		logger.Fatal("screening api is not reachable", zap.String("url", client.APIURL), zap.Error(err))
	}

	fmt.Printf("%s: %s (%s)\n", client.APIURL, h.Status, h.Message)
}
