package screening

import (
	"encoding/json"
	"fmt"
)

// Result is the outcome of a screening run. Its JSON form matches the
// screening API response, so both can be rendered the same way.
type Result struct {
	TotalProcessed     int              `json:"total_processados"`
	TotalApproved      int              `json:"total_aprovados"`
	ApprovalPercentage float64          `json:"percentual_aprovacao"`
	ApprovedRecords    []ApprovedRecord `json:"arquivos_aprovados"`
}

// ApprovedRecord is a single approved résumé.
type ApprovedRecord struct {
	FileName       string `json:"arquivo"`
	EducationMatch string `json:"-"`
	OriginEmail    string `json:"email_origem"`
	Source         string `json:"fonte,omitempty"`
}

type wireRecord struct {
	FileName    string   `json:"arquivo"`
	OriginEmail string   `json:"email_origem"`
	Education   []string `json:"formacoes_encontradas"`
	Source      string   `json:"fonte,omitempty"`
}

// HasMatches reports whether anything was approved.
func (r *Result) HasMatches() bool {
	return r != nil && r.TotalApproved > 0
}

// MarshalJSON encodes the education match as a list, as the API does.
func (a ApprovedRecord) MarshalJSON() ([]byte, error) {
	w := wireRecord{
		FileName:    a.FileName,
		OriginEmail: a.OriginEmail,
		Education:   []string{},
		Source:      a.Source,
	}
	if a.EducationMatch != "" {
		w.Education = []string{a.EducationMatch}
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts the API form, keeping the first education entry.
func (a *ApprovedRecord) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode approved record: %w", err)
	}
	*a = w.toRecord()
	return nil
}

func (w wireRecord) toRecord() ApprovedRecord {
	r := ApprovedRecord{
		FileName:    w.FileName,
		OriginEmail: w.OriginEmail,
		Source:      w.Source,
	}
	if len(w.Education) > 0 {
		r.EducationMatch = w.Education[0]
	}
	return r
}
