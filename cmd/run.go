package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/odq/triagem/internal/logger"
	"github.com/odq/triagem/internal/orchestrator"
	"github.com/odq/triagem/internal/report"
	"github.com/odq/triagem/internal/screening"
	"github.com/odq/triagem/internal/secrets"
	"github.com/odq/triagem/internal/triagem"
)

const (
	PromptShowApproved = "Show approved résumés"
	PromptDumpToFile   = "Dump result to file"
	PromptExportCSV    = "Export approved to CSV"
	PromptSaveLog      = "Save log"
	PromptNewScreening = "Run a new screening"
	PromptExit         = "Exit"

	defaultCSVFile = "aprovados.csv"
	defaultLogFile = "triagem_log.txt"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowApproved, PromptDumpToFile, PromptExportCSV, PromptSaveLog, PromptNewScreening, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Screen résumés with the configured criteria",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask what to do with the result, just print it")
	runCmd.Flags().String("csv", "", "write approved résumés to this CSV file")
	runCmd.Flags().String("log-file", "", "write the screening log to this file")
}

// session is the state kept between screenings of one CLI invocation.
type session struct {
	orch     *orchestrator.Orchestrator
	criteria *screening.Criteria
	state    orchestrator.State
	last     *orchestrator.Outcome
	logger   *zap.Logger
	out      io.Writer
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the triagem", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	orch, err := newOrchestrator(config, logger)
	if err != nil {
		logger.Fatal("preparing the screening", zap.Error(err))
	}

	s := &session{
		orch:     orch,
		criteria: config.Criteria,
		logger:   logger,
		out:      os.Stdout,
	}

	s.state, err = orch.Probe(ctx, orchestrator.State{})
	if err != nil && orch.Mode() != orchestrator.ModeSimulate {
		logger.Warn("screening api is not reachable", zap.Error(err))
	}

	if err := s.screen(ctx); err != nil {
		logger.Fatal("screening failed", zap.Error(err))
	}

	if path := cmd.Flag("csv").Value.String(); path != "" {
		if err := s.exportCSV(path); err != nil {
			logger.Fatal("exporting approved résumés", zap.Error(err))
		}
	}

	if path := cmd.Flag("log-file").Value.String(); path != "" {
		if err := s.saveLog(path); err != nil {
			logger.Fatal("saving the log", zap.Error(err))
		}
	}

	if cmd.Flag("auto-approve").Value.String() == "true" {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := s.handleAction(ctx, action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func (s *session) handleAction(ctx context.Context, action string) error {
	switch action {
	case PromptShowApproved:
		s.printApproved()
		return nil
	case PromptDumpToFile:
		filename, err := report.DumpToTmpFile(s.last.Result)
		if err != nil {
			return fmt.Errorf("dump result to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExportCSV:
		return s.exportCSV(defaultCSVFile)
	case PromptSaveLog:
		return s.saveLog(defaultLogFile)
	case PromptNewScreening:
		return s.screen(ctx)
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *session) screen(ctx context.Context) error {
	outcome, err := s.orch.Screen(ctx, s.state, s.criteria)
	if err != nil {
		return err
	}

	s.state = outcome.State
	s.last = outcome

	fmt.Fprintf(s.out, "\n%s", report.Summary(outcome.Result))
	if outcome.Source == orchestrator.SourceSimulation {
		fmt.Fprintln(s.out, "(resultado simulado)")
	}

	if !outcome.Result.HasMatches() {
		s.logger.Info("no résumé approved", zap.String("run_id", outcome.RunID))
	}

	return nil
}

func (s *session) printApproved() {
	lines := report.ApprovedLines(s.last.Result)
	if len(lines) == 0 {
		fmt.Fprintln(s.out, "Nenhum currículo aprovado.")
		return
	}
	for _, line := range lines {
		fmt.Fprintln(s.out, line)
	}
}

func (s *session) exportCSV(path string) error {
	err := report.WriteFile(path, func(w io.Writer) error {
		return report.WriteCSV(w, s.last.Result.ApprovedRecords)
	})
	if err != nil {
		return fmt.Errorf("export csv: %w", err)
	}

	s.logger.Info("approved résumés exported", zap.String("filename", path), zap.Int("count", len(s.last.Result.ApprovedRecords)))
	return nil
}

func (s *session) saveLog(path string) error {
	err := report.WriteFile(path, func(w io.Writer) error {
		_, err := s.orch.Journal().WriteTo(w)
		return err
	})
	if err != nil {
		return fmt.Errorf("save log: %w", err)
	}

	s.logger.Info("log saved", zap.String("filename", path))
	return nil
}

func newOrchestrator(config *Config, logger *zap.Logger) (*orchestrator.Orchestrator, error) {
	mode, err := orchestrator.ParseMode(config.Mode)
	if err != nil {
		return nil, err
	}

	deps := orchestrator.Deps{
		Random:  screening.NewRandom(config.Seed),
		Logger:  logger,
		Journal: report.NewJournal(),
	}

	if mode != orchestrator.ModeSimulate {
		client, err := newAPIClient(config.API, logger)
		if err != nil {
			if mode == orchestrator.ModeOnline {
				return nil, err
			}
			logger.Warn("screening api disabled, results will be simulated", zap.Error(err))
		} else {
			deps.API = client
		}
	}

	return orchestrator.New(orchestrator.Config{
		Mode:          mode,
		ProbeAttempts: config.API.ProbeAttempts,
		ProbeBackoff:  config.API.ProbeBackoff,
	}, deps), nil
}

func newAPIClient(cfg *APIConfig, logger *zap.Logger) (*triagem.Client, error) {
	token, err := secrets.Load(secrets.Source{
		Name:     "screening api token",
		Value:    cfg.Token,
		File:     cfg.TokenFile,
		Env:      envPrefix + "_API_TOKEN",
		Optional: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set api.token-file or %s_TOKEN_FILE)", err, envPrefix)
	}

	client := triagem.New(logger.With(zap.String("api_url", cfg.URL)), cfg.URL, token)
	if cfg.UserAgent != "" {
		client.UserAgent = cfg.UserAgent
	}
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}

	return client, nil
}
