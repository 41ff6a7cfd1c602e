package triagem

import (
	"context"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/odq/triagem/internal/screening"
)

// screenResponse is the API answer. Some deployments send counters as
// strings, hence the weakly typed decoding.
type screenResponse struct {
	Success            *bool       `mapstructure:"success"`
	Message            string      `mapstructure:"message"`
	Error              string      `mapstructure:"error"`
	TotalProcessed     int         `mapstructure:"total_processados"`
	TotalApproved      int         `mapstructure:"total_aprovados"`
	ApprovalPercentage float64     `mapstructure:"percentual_aprovacao"`
	ApprovedFiles      []apiRecord `mapstructure:"arquivos_aprovados"`
}

type apiRecord struct {
	FileName    string   `mapstructure:"arquivo"`
	OriginEmail string   `mapstructure:"email_origem"`
	Education   []string `mapstructure:"formacoes_encontradas"`
	Source      string   `mapstructure:"fonte"`
}

// Screen submits the criteria to the API and returns its result.
func (c *Client) Screen(ctx context.Context, criteria *screening.Criteria) (*screening.Result, error) {
	if criteria == nil {
		return nil, fmt.Errorf("criteria are required")
	}

	var raw map[string]any
	if err := c.postJSON(ctx, screenPath, criteria, &raw); err != nil {
		return nil, fmt.Errorf("screening request: %w", err)
	}

	resp, err := decodeScreenResponse(raw)
	if err != nil {
		return nil, err
	}

	if resp.Success != nil && !*resp.Success {
		reason := strings.TrimSpace(resp.Message)
		if detail := strings.TrimSpace(resp.Error); detail != "" {
			reason = fmt.Sprintf("%s: %s", reason, detail)
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, reason)
	}

	result := resp.toResult()

	c.logger.Debug("got screening response",
		zap.Int("processed", result.TotalProcessed),
		zap.Int("approved", result.TotalApproved),
		zap.String("message", resp.Message),
	)

	return result, nil
}

func decodeScreenResponse(raw map[string]any) (*screenResponse, error) {
	var resp screenResponse
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &resp,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode screening response: %w", err)
	}

	return &resp, nil
}

func (r *screenResponse) toResult() *screening.Result {
	records := make([]screening.ApprovedRecord, 0, len(r.ApprovedFiles))
	for _, f := range r.ApprovedFiles {
		record := screening.ApprovedRecord{
			FileName:    f.FileName,
			OriginEmail: f.OriginEmail,
			Source:      f.Source,
		}
		if len(f.Education) > 0 {
			record.EducationMatch = strings.Join(f.Education, ", ")
		}
		records = append(records, record)
	}

	return &screening.Result{
		TotalProcessed:     r.TotalProcessed,
		TotalApproved:      r.TotalApproved,
		ApprovalPercentage: r.ApprovalPercentage,
		ApprovedRecords:    records,
	}
}
