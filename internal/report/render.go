package report

import (
	"fmt"
	"strings"

	"github.com/odq/triagem/internal/screening"
)

const notInformed = "Não informado"

// Summary renders the counters of a result the way the results panel shows them.
func Summary(r *screening.Result) string {
	if r == nil {
		r = &screening.Result{}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Emails processados: %d\n", r.TotalProcessed)
	fmt.Fprintf(&b, "Currículos aprovados: %d\n", r.TotalApproved)
	fmt.Fprintf(&b, "Taxa de aprovação: %s%%\n", formatPercentage(r.ApprovalPercentage))
	return b.String()
}

// ApprovedLines lists approved records, one line each, numbered from 1.
func ApprovedLines(r *screening.Result) []string {
	if r == nil {
		return nil
	}

	lines := make([]string, 0, len(r.ApprovedRecords))
	for i, rec := range r.ApprovedRecords {
		education := rec.EducationMatch
		if education == "" {
			education = notInformed
		}
		lines = append(lines, fmt.Sprintf("%d. %s <%s> - Formações: %s", i+1, rec.FileName, rec.OriginEmail, education))
	}
	return lines
}

// Record writes the outcome of a run into the journal.
func Record(j *Journal, r *screening.Result) {
	j.Info("Total de currículos processados: %d", r.TotalProcessed)
	j.Info("Currículos aprovados: %d", r.TotalApproved)
	j.Info("Taxa de aprovação: %s%%", formatPercentage(r.ApprovalPercentage))

	if !r.HasMatches() {
		j.Warn("Nenhum currículo foi aprovado com os critérios especificados")
		return
	}

	for _, line := range ApprovedLines(r) {
		j.Info("%s", line)
	}
}

func formatPercentage(p float64) string {
	return fmt.Sprintf("%.1f", p)
}
