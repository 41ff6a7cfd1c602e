package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/odq/triagem/internal/orchestrator"
	"github.com/odq/triagem/internal/screening"
	"github.com/odq/triagem/internal/triagem"
)

func testCriteria() *screening.Criteria {
	return &screening.Criteria{
		PositionDescription: "Desenvolvedor",
		Keywords:            []string{"Python", "Dev", "SQL"},
		EducationTerms:      []string{"Eng", "CS"},
		MaxEmails:           500,
	}
}

func simulateSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()

	cfg := &Config{Mode: "simulate", Seed: 1, API: &APIConfig{}, Criteria: testCriteria()}
	orch, err := newOrchestrator(cfg, zap.NewNop())
	require.NoError(t, err)

	var out bytes.Buffer
	return &session{orch: orch, criteria: cfg.Criteria, logger: zap.NewNop(), out: &out}, &out
}

func TestEstimate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, estimate(&buf, testCriteria()))

	want := "Taxa de aprovação estimada: 30%\n" +
		"Emails simulados: 10-34\n" +
		"Aprovados simulados: 3-10\n"
	assert.Equal(t, want, buf.String())

	bad := testCriteria()
	bad.Keywords = nil
	assert.ErrorIs(t, estimate(&buf, bad), screening.ErrInvalidCriteria)
}

func TestSessionActions(t *testing.T) {
	s, out := simulateSession(t)
	ctx := context.Background()

	require.NoError(t, s.screen(ctx))
	require.NotNil(t, s.last)
	assert.Equal(t, orchestrator.SourceSimulation, s.last.Source)
	assert.Contains(t, out.String(), "Emails processados:")
	assert.Contains(t, out.String(), "(resultado simulado)")

	out.Reset()
	require.NoError(t, s.handleAction(ctx, PromptShowApproved))
	assert.Contains(t, out.String(), "curriculum_joão_silva.pdf")

	first := s.last.RunID
	require.NoError(t, s.handleAction(ctx, PromptNewScreening))
	assert.NotEqual(t, first, s.last.RunID)

	assert.ErrorIs(t, s.handleAction(ctx, PromptExit), errExit)
	assert.Error(t, s.handleAction(ctx, "unknown"))
}

func TestSessionScreenDoesNotMutateCriteria(t *testing.T) {
	s, _ := simulateSession(t)
	s.criteria.Keywords = []string{" Python ", ""}

	require.NoError(t, s.screen(context.Background()))
	assert.Equal(t, []string{" Python ", ""}, s.criteria.Keywords)
}

// flakyAPI fails its first screenings and always reports healthy.
type flakyAPI struct {
	failures int
	calls    int
}

func (f *flakyAPI) Screen(_ context.Context, _ *screening.Criteria) (*screening.Result, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("connection refused")
	}
	return &screening.Result{TotalProcessed: 42, TotalApproved: 1, ApprovalPercentage: 2.4, ApprovedRecords: []screening.ApprovedRecord{}}, nil
}

func (f *flakyAPI) Probe(_ context.Context, _ int, _ time.Duration) (*triagem.Health, error) {
	return &triagem.Health{Status: "healthy", Message: "ok"}, nil
}

func TestSessionReturnsToAPIAfterFailure(t *testing.T) {
	api := &flakyAPI{failures: 1}
	orch := orchestrator.New(orchestrator.Config{Mode: orchestrator.ModeFallback}, orchestrator.Deps{
		API:    api,
		Random: screening.NewRandom(1),
		Logger: zap.NewNop(),
	})

	var out bytes.Buffer
	s := &session{orch: orch, criteria: testCriteria(), logger: zap.NewNop(), out: &out}
	ctx := context.Background()

	require.NoError(t, s.screen(ctx))
	assert.Equal(t, orchestrator.SourceSimulation, s.last.Source)
	assert.True(t, s.state.Offline)

	for run := 0; run < 2; run++ {
		require.NoError(t, s.handleAction(ctx, PromptNewScreening))
		assert.Equal(t, orchestrator.SourceAPI, s.last.Source)
		assert.Equal(t, 42, s.last.Result.TotalProcessed)
		assert.False(t, s.state.Offline)
	}

	assert.Equal(t, 3, api.calls)
}

func TestSessionExports(t *testing.T) {
	s, _ := simulateSession(t)
	require.NoError(t, s.screen(context.Background()))

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "aprovados.csv")
	logPath := filepath.Join(dir, "log.txt")

	require.NoError(t, s.exportCSV(csvPath))
	require.NoError(t, s.saveLog(logPath))

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, s.last.Result.TotalApproved+1)

	data, err = os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO: Vaga: Desenvolvedor")
}

func TestNewOrchestratorRejectsUnknownMode(t *testing.T) {
	_, err := newOrchestrator(&Config{Mode: "offline", API: &APIConfig{}}, zap.NewNop())
	assert.ErrorIs(t, err, orchestrator.ErrUnknownMode)
}

func TestNewOrchestratorOnlineNeedsToken(t *testing.T) {
	cfg := &Config{
		Mode:     "online",
		API:      &APIConfig{TokenFile: filepath.Join(t.TempDir(), "missing")},
		Criteria: testCriteria(),
	}

	_, err := newOrchestrator(cfg, zap.NewNop())
	assert.Error(t, err)

	cfg.Mode = "fallback"
	orch, err := newOrchestrator(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, orchestrator.ModeFallback, orch.Mode())
}

func TestNewAPIClient(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("odq-triagem\n"), 0o600))

	client, err := newAPIClient(&APIConfig{
		URL:       "https://triagem.example.com",
		TokenFile: tokenFile,
		UserAgent: "custom-agent",
	}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "https://triagem.example.com", client.APIURL)
	assert.Equal(t, "custom-agent", client.UserAgent)
}

func TestSplitTermStrings(t *testing.T) {
	v := viper.New()
	v.Set("criteria.keywords", " Python, Django ,,SQL ")
	v.Set("criteria.education", []string{"Ciência da Computação"})

	c := &screening.Criteria{
		Keywords:       []string{" Python, Django ,,SQL "},
		EducationTerms: []string{"Ciência da Computação"},
		ExcludedTerms:  []string{"estágio"},
	}
	splitTermStrings(v, c)

	assert.Equal(t, []string{"Python", "Django", "SQL"}, c.Keywords)
	assert.Equal(t, []string{"Ciência da Computação"}, c.EducationTerms)
	assert.Equal(t, []string{"estágio"}, c.ExcludedTerms, "unset keys are left alone")
}
