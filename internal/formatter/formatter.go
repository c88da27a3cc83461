// package formatter renders audit records for the CLI (CSV, JSON, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tokenrelay/internal/models"
)

// Supported output formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// RecordView is the exported, serializable shape of a [models.ExchangeRecord].
type RecordView struct {
	ID           string `json:"id"`
	RequestID    string `json:"request_id,omitempty"`
	Outcome      string `json:"outcome"`
	ErrorKind    string `json:"error_kind,omitempty"`
	ProviderCode int    `json:"provider_code,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	DurationMS   int64  `json:"duration_ms"`
	CreatedAt    string `json:"created_at"`
}

// NewRecordView flattens a record for output.
func NewRecordView(r *models.ExchangeRecord) RecordView {
	return RecordView{
		ID:           r.ID(),
		RequestID:    r.RequestID(),
		Outcome:      string(r.Outcome()),
		ErrorKind:    r.ErrorKind(),
		ProviderCode: r.ProviderCode(),
		ExpiresIn:    r.ExpiresIn(),
		DurationMS:   r.Duration().Milliseconds(),
		CreatedAt:    r.CreatedAt().UTC().Format(time.RFC3339),
	}
}

// RecordsToCSV converts records to CSV with columns: ID, Request ID, Outcome, Error Kind, Provider Code, Expires In, Duration (ms), Created At
func RecordsToCSV(records []*models.ExchangeRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Request ID", "Outcome", "Error Kind", "Provider Code", "Expires In", "Duration (ms)", "Created At"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range records {
		v := NewRecordView(r)
		row := []string{
			v.ID,
			v.RequestID,
			v.Outcome,
			v.ErrorKind,
			strconv.Itoa(v.ProviderCode),
			strconv.FormatInt(v.ExpiresIn, 10),
			strconv.FormatInt(v.DurationMS, 10),
			v.CreatedAt,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// RecordsToJSON converts records to an indented JSON array.
func RecordsToJSON(records []*models.ExchangeRecord) ([]byte, error) {
	views := make([]RecordView, 0, len(records))
	for _, r := range records {
		views = append(views, NewRecordView(r))
	}

	data, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal records: %w", err)
	}
	return append(data, '\n'), nil
}

// RecordsToText converts records to one line each.
func RecordsToText(records []*models.ExchangeRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Exchanges: %d\n\n", len(records)))

	for i, r := range records {
		v := NewRecordView(r)
		buf.WriteString(fmt.Sprintf("%d. %s %s %dms", i+1, v.CreatedAt, v.Outcome, v.DurationMS))
		if v.ErrorKind != "" {
			buf.WriteString(" " + v.ErrorKind)
			if v.ProviderCode != 0 {
				buf.WriteString(fmt.Sprintf(" (code %d)", v.ProviderCode))
			}
		}
		if v.ExpiresIn > 0 {
			buf.WriteString(" expires_in=" + FormatExpiry(v.ExpiresIn))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// RecordsToMarkdown converts records to a Markdown table.
func RecordsToMarkdown(records []*models.ExchangeRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Token Exchanges\n\n")
	buf.WriteString(fmt.Sprintf("**Records**: %d\n\n", len(records)))
	buf.WriteString("| Created At | Outcome | Error Kind | Provider Code | Duration (ms) |\n")
	buf.WriteString("|---|---|---|---|---|\n")

	for _, r := range records {
		v := NewRecordView(r)
		code := ""
		if v.ProviderCode != 0 {
			code = strconv.Itoa(v.ProviderCode)
		}
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d |\n", v.CreatedAt, v.Outcome, v.ErrorKind, code, v.DurationMS))
	}

	return buf.Bytes(), nil
}

// StatsToText summarizes [models.ExchangeStats], listing failure kinds alphabetically.
func StatsToText(stats *models.ExchangeStats) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Total: %d\n", stats.Total))
	buf.WriteString(fmt.Sprintf("Succeeded: %d\n", stats.Succeeded))
	buf.WriteString(fmt.Sprintf("Failed: %d\n", stats.Failed))

	kinds := make([]string, 0, len(stats.ByKind))
	for k := range stats.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		buf.WriteString(fmt.Sprintf("  %s: %d\n", k, stats.ByKind[k]))
	}

	return buf.Bytes()
}

// Format renders records in the named format.
func Format(records []*models.ExchangeRecord, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return RecordsToText(records)
	case FormatJSON:
		return RecordsToJSON(records)
	case FormatCSV:
		return RecordsToCSV(records)
	case FormatMarkdown, "md":
		return RecordsToMarkdown(records)
	default:
		return nil, fmt.Errorf("unsupported format %q (use text, json, csv or markdown)", format)
	}
}

// WriteExport renders records and writes them to path.
func WriteExport(records []*models.ExchangeRecord, format, path string) error {
	data, err := Format(records, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

// FormatExpiry renders a lifetime in seconds as days, hours or minutes.
func FormatExpiry(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd", int64(d/(24*time.Hour)))
	case d >= time.Hour:
		return fmt.Sprintf("%dh", int64(d/time.Hour))
	default:
		return fmt.Sprintf("%dm", int64(d/time.Minute))
	}
}
