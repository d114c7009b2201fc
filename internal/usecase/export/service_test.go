package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/atrium-labs/contractsearch/internal/domain"
	"github.com/atrium-labs/contractsearch/internal/domain/search/match"
	"github.com/atrium-labs/contractsearch/internal/domain/search/result"
)

func fixtureResults(t *testing.T) []result.Result {
	t.Helper()
	r1 := result.New(domain.Contract{
		ID: "c1", Title: "Licença de Software", PartyA: "Empresa Alfa",
		PartyB: "Beta Tecnologia", Category: "Tecnologia", Branch: "Matriz",
		Value: 12000, SignedAt: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}, 16, match.Exact, []string{"software"})
	r1 = r1.WithEnrichment(nil, "Licenciamento anual de <mark>software</mark>", 90, 80)

	r2 := result.New(domain.Contract{
		ID: "c2", Title: "Contrato de Frete", PartyA: "Empresa Alfa",
		PartyB: "Trans Logística", Category: "Logística", Branch: "Filial Sul",
		Value: 8000, SignedAt: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}, 2, match.Fuzzy, []string{"frete"})

	return []result.Result{r1, r2}
}

func TestExportCSV(t *testing.T) {
	svc := New()
	data, err := svc.Export(FormatCSV, fixtureResults(t))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("parse produced csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "id" || rows[0][9] != "match_tier" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][0] != "c1" || rows[1][6] != "12000.00" || rows[1][9] != string(match.Exact) {
		t.Fatalf("first row = %v", rows[1])
	}
	if rows[2][7] != "2026-01-05T00:00:00Z" {
		t.Fatalf("signed_at = %q", rows[2][7])
	}
}

func TestExportJSON(t *testing.T) {
	svc := New()
	data, err := svc.Export(FormatJSON, fixtureResults(t))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("parse produced json: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0]["id"] != "c1" || rows[0]["score"] != float64(16) {
		t.Fatalf("first row = %v", rows[0])
	}
	if _, ok := rows[0]["snippet"]; !ok {
		t.Fatal("enriched snippet should be exported")
	}
	if _, ok := rows[1]["snippet"]; ok {
		t.Fatal("empty snippet should be omitted")
	}
}

func TestExportEmptyPage(t *testing.T) {
	svc := New()
	data, err := svc.Export(FormatCSV, nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if got := strings.TrimSpace(string(data)); !strings.HasPrefix(got, "id,") {
		t.Fatalf("empty export should still carry the header, got %q", got)
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc := New()
	for _, format := range []string{"pdf", "xlsx", ""} {
		if _, err := svc.Export(format, nil); !errors.Is(err, domain.ErrUnsupportedFormat) {
			t.Fatalf("format %q: err = %v, want ErrUnsupportedFormat", format, err)
		}
	}
}

func TestContentType(t *testing.T) {
	if got := ContentType(FormatCSV); !strings.HasPrefix(got, "text/csv") {
		t.Fatalf("csv content type = %q", got)
	}
	if got := ContentType(FormatJSON); got != "application/json" {
		t.Fatalf("json content type = %q", got)
	}
}
