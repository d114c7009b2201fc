package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/atrium-labs/contractsearch/internal/domain"
	"github.com/atrium-labs/contractsearch/internal/domain/search/result"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Service serializes result pages for download.
type Service struct{}

// New creates an exporter.
func New() *Service { return &Service{} }

// Export serializes results in the given format. Unknown formats,
// including "pdf", return ErrUnsupportedFormat.
func (s *Service) Export(format string, results []result.Result) ([]byte, error) {
	switch format {
	case FormatCSV:
		return exportCSV(results)
	case FormatJSON:
		return exportJSON(results)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
}

// ContentType returns the MIME type for a supported format.
func ContentType(format string) string {
	switch format {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	}
	return "application/octet-stream"
}

var csvHeader = []string{
	"id", "title", "party_a", "party_b", "category", "branch",
	"value", "signed_at", "score", "match_tier",
}

func exportCSV(results []result.Result) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range results {
		c := r.Contract()
		row := []string{
			c.ID,
			c.Title,
			c.PartyA,
			c.PartyB,
			c.Category,
			c.Branch,
			strconv.FormatFloat(c.Value, 'f', 2, 64),
			c.SignedAt.Format(time.RFC3339),
			strconv.Itoa(r.Score()),
			string(r.Tier()),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// exportRow is the JSON shape of one exported result.
type exportRow struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	PartyA    string    `json:"party_a"`
	PartyB    string    `json:"party_b"`
	Category  string    `json:"category"`
	Branch    string    `json:"branch"`
	Value     float64   `json:"value"`
	SignedAt  time.Time `json:"signed_at"`
	Score     int       `json:"score"`
	MatchTier string    `json:"match_tier"`
	Snippet   string    `json:"snippet,omitempty"`
}

func exportJSON(results []result.Result) ([]byte, error) {
	rows := make([]exportRow, 0, len(results))
	for _, r := range results {
		c := r.Contract()
		rows = append(rows, exportRow{
			ID:        c.ID,
			Title:     c.Title,
			PartyA:    c.PartyA,
			PartyB:    c.PartyB,
			Category:  c.Category,
			Branch:    c.Branch,
			Value:     c.Value,
			SignedAt:  c.SignedAt,
			Score:     r.Score(),
			MatchTier: string(r.Tier()),
			Snippet:   r.Snippet(),
		})
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return data, nil
}
