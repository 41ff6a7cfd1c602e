package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/odq/triagem/internal/screening"
)

var csvHeader = []string{"arquivo", "email_origem", "formacao", "fonte"}

// DumpToTmpFile writes the result as indented JSON to a new temp file and
// returns its name.
func DumpToTmpFile(r *screening.Result) (string, error) {
	file, err := os.CreateTemp("", "triagem_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return file.Name(), nil
}

// WriteCSV writes the approved records as CSV with a header row.
func WriteCSV(w io.Writer, records []screening.ApprovedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, rec := range records {
		if err := cw.Write([]string{rec.FileName, rec.OriginEmail, rec.EducationMatch, rec.Source}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile creates path and fills it with write.
func WriteFile(path string, write func(io.Writer) error) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if err := write(file); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}
