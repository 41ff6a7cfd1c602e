package triagem

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/odq/triagem/internal/screening"
)

func testCriteria() *screening.Criteria {
	return &screening.Criteria{
		PositionDescription: "Desenvolvedor Python",
		Keywords:            []string{"Python", "SQL"},
		EducationTerms:      []string{"Engenharia"},
		ExcludedTerms:       []string{},
		MaxEmails:           500,
		UseOCR:              true,
		Account:             "rh@odq.com.br",
	}
}

func TestScreen(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, screenPath, r.URL.Path)
		assert.Equal(t, "Bearer odq-token", r.Header.Get("Authorization"))
		assert.Equal(t, contentType, r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(`{
			"success": true,
			"message": "ok",
			"total_processados": 26500,
			"total_aprovados": "850",
			"percentual_aprovacao": 3.2,
			"arquivos_aprovados": [
				{"arquivo": "cv1.pdf", "email_origem": "c1@email.com", "formacoes_encontradas": ["Eng", "CS"], "fonte": "REAL"},
				{"arquivo": "cv2.docx", "email_origem": "c2@email.com", "formacoes_encontradas": null}
			],
			"nota": "ignored"
		}`))
	}))
	defer srv.Close()

	client := New(zap.NewNop(), srv.URL, "odq-token")
	result, err := client.Screen(context.Background(), testCriteria())
	require.NoError(t, err)

	assert.Equal(t, "Desenvolvedor Python", payload["vaga_descricao"])
	assert.Equal(t, []any{"Python", "SQL"}, payload["palavras_chave"])
	assert.Equal(t, []any{"Engenharia"}, payload["formacoes"])
	assert.Equal(t, []any{}, payload["palavras_negativas"])
	assert.Equal(t, true, payload["usar_ocr"])
	assert.EqualValues(t, 500, payload["max_emails"])
	assert.NotContains(t, payload, "Account")

	assert.Equal(t, 26500, result.TotalProcessed)
	assert.Equal(t, 850, result.TotalApproved)
	assert.Equal(t, 3.2, result.ApprovalPercentage)
	require.Len(t, result.ApprovedRecords, 2)
	assert.Equal(t, "cv1.pdf", result.ApprovedRecords[0].FileName)
	assert.Equal(t, "Eng, CS", result.ApprovedRecords[0].EducationMatch)
	assert.Equal(t, "REAL", result.ApprovedRecords[0].Source)
	assert.Equal(t, "", result.ApprovedRecords[1].EducationMatch)
}

func TestScreenWithoutToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"total_processados": 0, "total_aprovados": 0, "percentual_aprovacao": 0, "arquivos_aprovados": []}`))
	}))
	defer srv.Close()

	result, err := New(nil, srv.URL+"/", "").Screen(context.Background(), testCriteria())
	require.NoError(t, err)
	assert.False(t, result.HasMatches())
	assert.NotNil(t, result.ApprovedRecords)
}

func TestScreenRejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "message": "Erro ao executar triagem real", "error": "timeout", "total_processados": 0}`))
	}))
	defer srv.Close()

	_, err := New(zap.NewNop(), srv.URL, "").Screen(context.Background(), testCriteria())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRejected))
	assert.Contains(t, err.Error(), "Erro ao executar triagem real: timeout")
}

func TestScreenBadStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(strings.Repeat("x", 500)))
	}))
	defer srv.Close()

	_, err := New(zap.NewNop(), srv.URL, "wrong").Screen(context.Background(), testCriteria())
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
	assert.Equal(t, maxErrorBody+len("..."), len(statusErr.Body))
}

func TestScreenNilCriteria(t *testing.T) {
	t.Parallel()

	_, err := New(nil, "", "").Screen(context.Background(), nil)
	require.Error(t, err)
}

func TestHealthGzip(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, healthPath, r.URL.Path)
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))

		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		_, _ = gz.Write([]byte(`{"status": "healthy", "message": "Sistema funcionando"}`))
		_ = gz.Close()

		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	h, err := New(nil, srv.URL, "").Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "Sistema funcionando", h.Message)
}

func TestProbeRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	}))
	defer srv.Close()

	client := New(zap.NewNop(), srv.URL, "")

	_, err := client.Probe(context.Background(), 2, time.Millisecond)
	require.Error(t, err)

	h, err := client.Probe(context.Background(), 2, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.EqualValues(t, 3, calls.Load())
}

func TestProbeCancelled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(nil, srv.URL, "").Probe(ctx, 100, time.Second)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
