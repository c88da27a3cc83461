package formatter

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tokenrelay/internal/models"
)

var created = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleRecords() []*models.ExchangeRecord {
	ok := models.NewExchangeRecord("req-1", models.OutcomeSuccess, created)
	ok.SetID("rec-1")
	ok.SetExpiresIn(5184000)
	ok.SetDuration(420 * time.Millisecond)

	failed := models.NewExchangeRecord("req-2", models.OutcomeFailure, created.Add(time.Minute))
	failed.SetID("rec-2")
	failed.SetFailure("upstream_rejected", 100)
	failed.SetDuration(15 * time.Millisecond)

	return []*models.ExchangeRecord{ok, failed}
}

func TestExporters(t *testing.T) {
	t.Run("RecordsToCSV", func(t *testing.T) {
		data, err := RecordsToCSV(sampleRecords())
		if err != nil {
			t.Fatalf("RecordsToCSV failed: %v", err)
		}

		rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected header and 2 rows, got %d", len(rows))
		}
		if strings.Join(rows[0], ",") != "ID,Request ID,Outcome,Error Kind,Provider Code,Expires In,Duration (ms),Created At" {
			t.Errorf("unexpected headers %v", rows[0])
		}
		if rows[1][0] != "rec-1" || rows[1][5] != "5184000" || rows[1][6] != "420" {
			t.Errorf("unexpected first row %v", rows[1])
		}
		if rows[2][3] != "upstream_rejected" || rows[2][4] != "100" {
			t.Errorf("unexpected second row %v", rows[2])
		}
		if rows[1][7] != "2025-03-01T12:00:00Z" {
			t.Errorf("unexpected timestamp %s", rows[1][7])
		}
	})

	t.Run("RecordsToCSV empty", func(t *testing.T) {
		data, err := RecordsToCSV(nil)
		if err != nil {
			t.Fatalf("RecordsToCSV failed: %v", err)
		}
		if lines := strings.Count(string(data), "\n"); lines != 1 {
			t.Errorf("expected only the header line, got %d lines", lines)
		}
	})

	t.Run("RecordsToJSON", func(t *testing.T) {
		data, err := RecordsToJSON(sampleRecords())
		if err != nil {
			t.Fatalf("RecordsToJSON failed: %v", err)
		}

		var views []RecordView
		if err := json.Unmarshal(data, &views); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(views) != 2 || views[0].ID != "rec-1" || views[1].ProviderCode != 100 {
			t.Errorf("unexpected views %+v", views)
		}
		if strings.Contains(string(data), `"error_kind": ""`) {
			t.Error("expected empty error kind to be omitted")
		}
	})

	t.Run("RecordsToJSON empty is an array", func(t *testing.T) {
		data, err := RecordsToJSON(nil)
		if err != nil {
			t.Fatalf("RecordsToJSON failed: %v", err)
		}
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("expected [], got %s", data)
		}
	})

	t.Run("RecordsToText", func(t *testing.T) {
		data, err := RecordsToText(sampleRecords())
		if err != nil {
			t.Fatalf("RecordsToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Exchanges: 2") {
			t.Errorf("missing count, got: %s", output)
		}
		if !strings.Contains(output, "1. 2025-03-01T12:00:00Z success 420ms expires_in=60d") {
			t.Errorf("missing success line, got: %s", output)
		}
		if !strings.Contains(output, "failure 15ms upstream_rejected (code 100)") {
			t.Errorf("missing failure line, got: %s", output)
		}
	})

	t.Run("RecordsToMarkdown", func(t *testing.T) {
		data, err := RecordsToMarkdown(sampleRecords())
		if err != nil {
			t.Fatalf("RecordsToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "# Token Exchanges") || !strings.Contains(output, "**Records**: 2") {
			t.Errorf("missing header, got: %s", output)
		}
		if !strings.Contains(output, "| 2025-03-01T12:01:00Z | failure | upstream_rejected | 100 | 15 |") {
			t.Errorf("missing failure row, got: %s", output)
		}
	})

	t.Run("StatsToText", func(t *testing.T) {
		output := string(StatsToText(&models.ExchangeStats{
			Total:     5,
			Succeeded: 2,
			Failed:    3,
			ByKind:    map[string]int{"upstream_rejected": 2, "invalid_request": 1},
		}))

		if !strings.Contains(output, "Total: 5") || !strings.Contains(output, "Failed: 3") {
			t.Errorf("missing totals, got: %s", output)
		}
		if strings.Index(output, "invalid_request") > strings.Index(output, "upstream_rejected") {
			t.Errorf("expected kinds sorted, got: %s", output)
		}
	})
}

func TestFormat(t *testing.T) {
	tc := []struct {
		format string
		want   string
	}{
		{format: "", want: "Exchanges: 2"},
		{format: "text", want: "Exchanges: 2"},
		{format: "JSON", want: `"id": "rec-1"`},
		{format: "csv", want: "ID,Request ID"},
		{format: "md", want: "# Token Exchanges"},
		{format: "markdown", want: "# Token Exchanges"},
	}

	for _, tt := range tc {
		t.Run(tt.format, func(t *testing.T) {
			data, err := Format(sampleRecords(), tt.format)
			if err != nil {
				t.Fatalf("Format failed: %v", err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("expected %q in output, got: %s", tt.want, data)
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		if _, err := Format(sampleRecords(), "xml"); err == nil {
			t.Error("expected error for unsupported format")
		}
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("writes file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.csv")

		if err := WriteExport(sampleRecords(), FormatCSV, path); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read export: %v", err)
		}
		if !strings.HasPrefix(string(data), "ID,Request ID") {
			t.Errorf("unexpected file contents: %s", data)
		}
	})

	t.Run("bad directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "history.csv")
		if err := WriteExport(sampleRecords(), FormatCSV, path); err == nil {
			t.Error("expected error for missing directory")
		}
	})

	t.Run("bad format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.xml")
		if err := WriteExport(sampleRecords(), "xml", path); err == nil {
			t.Error("expected error for unsupported format")
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected no file for unsupported format")
		}
	})
}

func TestFormatExpiry(t *testing.T) {
	tc := []struct {
		seconds int64
		want    string
	}{
		{seconds: 5184000, want: "60d"},
		{seconds: 7200, want: "2h"},
		{seconds: 600, want: "10m"},
		{seconds: 30, want: "0m"},
	}

	for _, tt := range tc {
		if got := FormatExpiry(tt.seconds); got != tt.want {
			t.Errorf("FormatExpiry(%d) = %s, want %s", tt.seconds, got, tt.want)
		}
	}
}
