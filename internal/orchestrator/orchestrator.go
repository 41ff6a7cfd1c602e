// Package orchestrator decides whether a screening run goes to the API or to
// the local simulation.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/odq/triagem/internal/logger"
	"github.com/odq/triagem/internal/report"
	"github.com/odq/triagem/internal/screening"
	"github.com/odq/triagem/internal/triagem"
)

// ErrNoAPI is returned when the mode needs the API but none is configured.
var ErrNoAPI = errors.New("screening api is not configured")

// Screener is the remote screening API.
type Screener interface {
	Screen(ctx context.Context, criteria *screening.Criteria) (*screening.Result, error)
	Probe(ctx context.Context, attempts int, backoff time.Duration) (*triagem.Health, error)
}

type Config struct {
	Mode          Mode
	ProbeAttempts int
	ProbeBackoff  time.Duration
}

type Deps struct {
	API     Screener
	Random  screening.RandomSource
	Logger  *zap.Logger
	Journal *report.Journal
}

type Orchestrator struct {
	mode          Mode
	probeAttempts int
	probeBackoff  time.Duration

	api     Screener
	random  screening.RandomSource
	logger  *zap.Logger
	journal *report.Journal
}

// Outcome of a single run.
type Outcome struct {
	RunID  string
	Result *screening.Result
	Source Source
	State  State
	// APIError is the failure that caused a fallback to the simulation, if any.
	APIError error
}

func New(cfg Config, deps Deps) *Orchestrator {
	mode := cfg.Mode
	if mode == "" {
		mode = ModeFallback
	}

	random := deps.Random
	if random == nil {
		random = screening.NewRandom(0)
	}

	journal := deps.Journal
	if journal == nil {
		journal = report.NewJournal()
	}

	return &Orchestrator{
		mode:          mode,
		probeAttempts: cfg.ProbeAttempts,
		probeBackoff:  cfg.ProbeBackoff,
		api:           deps.API,
		random:        random,
		logger:        logger.WithFields(deps.Logger),
		journal:       journal,
	}
}

func (o *Orchestrator) Mode() Mode { return o.mode }

func (o *Orchestrator) Journal() *report.Journal { return o.journal }

// Probe checks the API and returns the state the next run should use.
func (o *Orchestrator) Probe(ctx context.Context, state State) (State, error) {
	if o.mode == ModeSimulate {
		return state, nil
	}
	if o.api == nil {
		o.journal.Warn("API de triagem não configurada")
		return State{Offline: true}, ErrNoAPI
	}

	h, err := o.api.Probe(ctx, o.probeAttempts, o.probeBackoff)
	if err != nil {
		o.journal.Error("Erro ao conectar com backend: %v", err)
		o.logger.Warn("api probe failed", zap.Error(err))
		return State{Offline: true}, err
	}

	o.journal.Info("Backend conectado: %s", h.Message)
	o.logger.Info("api probe succeeded", zap.String("status", h.Status))
	return State{Offline: false}, nil
}

// Screen validates the criteria and serves them according to the mode and state.
// The caller's criteria are left untouched; a normalized copy is screened.
// In fallback mode an offline state is re-checked with a single health probe,
// so a recovered API is used again.
func (o *Orchestrator) Screen(ctx context.Context, state State, criteria *screening.Criteria) (*Outcome, error) {
	if criteria != nil {
		normalized := *criteria
		normalized.Normalize()
		criteria = &normalized
	}
	if err := criteria.Validate(); err != nil {
		o.journal.Error("Critérios inválidos: %v", err)
		return nil, err
	}

	if o.mode == ModeOnline && o.api == nil {
		return nil, ErrNoAPI
	}

	runID := uuid.NewString()
	log := logger.WithRunFields(o.logger, runID, o.mode.String())

	o.journalCriteria(criteria)

	if o.mode == ModeFallback && state.Offline {
		state = o.recheck(ctx, log)
	}

	outcome := &Outcome{RunID: runID, State: state}

	if o.useAPI(state) {
		result, err := o.api.Screen(ctx, criteria)
		switch {
		case err == nil:
			outcome.Result = result
			outcome.Source = SourceAPI
			outcome.State = State{Offline: false}
		case o.mode == ModeOnline:
			o.journal.Error("Erro durante a triagem: %v", err)
			log.Error("screening api failed", zap.Error(err))
			return nil, fmt.Errorf("screening via api: %w", err)
		default:
			o.journal.Warn("API indisponível, usando simulação: %v", err)
			log.Warn("screening api failed, falling back to simulation", zap.Error(err))
			outcome.APIError = err
			outcome.State = State{Offline: true}
		}
	}

	if outcome.Result == nil {
		outcome.Result = screening.Run(criteria, o.random)
		outcome.Source = SourceSimulation
	}

	log.Info("screening finished",
		zap.String(logger.FieldSource, string(outcome.Source)),
		zap.Int("processed", outcome.Result.TotalProcessed),
		zap.Int("approved", outcome.Result.TotalApproved),
		zap.Float64("percentage", outcome.Result.ApprovalPercentage),
	)

	report.Record(o.journal, outcome.Result)
	o.journal.Info("Triagem concluída (%s)", outcome.Source)

	return outcome, nil
}

// recheck probes an API previously marked offline once, without backoff.
func (o *Orchestrator) recheck(ctx context.Context, log *zap.Logger) State {
	if o.api == nil {
		return State{Offline: true}
	}

	h, err := o.api.Probe(ctx, 1, 0)
	if err != nil {
		log.Debug("api still unreachable", zap.Error(err))
		return State{Offline: true}
	}

	o.journal.Info("Backend reconectado: %s", h.Message)
	log.Info("api is reachable again", zap.String("status", h.Status))
	return State{Offline: false}
}

func (o *Orchestrator) useAPI(state State) bool {
	switch o.mode {
	case ModeSimulate:
		return false
	case ModeOnline:
		return true
	default:
		return o.api != nil && !state.Offline
	}
}

func (o *Orchestrator) journalCriteria(c *screening.Criteria) {
	if c.Account != "" {
		o.journal.Info("Conta: %s", c.Account)
	}
	o.journal.Info("Vaga: %s", c.PositionDescription)
	o.journal.Info("Palavras-chave: %s", joinTerms(c.Keywords))
	o.journal.Info("Formações: %s", joinTerms(c.EducationTerms))
	o.journal.Info("Palavras negativas: %s", joinTerms(c.ExcludedTerms))
	o.journal.Info("Máximo de emails: %d", c.MaxEmails)
	if c.UseOCR {
		o.journal.Info("OCR para PDFs: Ativado")
	} else {
		o.journal.Info("OCR para PDFs: Desativado")
	}
}

func joinTerms(terms []string) string {
	if len(terms) == 0 {
		return "-"
	}
	return strings.Join(terms, ", ")
}
