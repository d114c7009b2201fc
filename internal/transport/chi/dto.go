package chi

import (
	"time"

	"github.com/atrium-labs/contractsearch/internal/domain/search/result"
	"github.com/atrium-labs/contractsearch/internal/domain/search/sortkey"
	"github.com/atrium-labs/contractsearch/internal/repository/saved"
	searchuc "github.com/atrium-labs/contractsearch/internal/usecase/search"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type contractDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	PartyA      string    `json:"party_a"`
	PartyB      string    `json:"party_b"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Branch      string    `json:"branch"`
	Notes       string    `json:"notes,omitempty"`
	Value       float64   `json:"value"`
	SignedAt    time.Time `json:"signed_at"`
}

type resultDTO struct {
	Contract   contractDTO       `json:"contract"`
	Score      int               `json:"score"`
	MatchTier  string            `json:"match_tier"`
	Tokens     []string          `json:"tokens,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
	Snippet    string            `json:"snippet,omitempty"`
	Recency    float64           `json:"recency"`
	Magnitude  float64           `json:"magnitude"`
}

type searchResponse struct {
	Results      []resultDTO `json:"results"`
	TotalResults int         `json:"total_results"`
	SearchTimeMs float64     `json:"search_time_ms"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type historyResponse struct {
	Entries []string `json:"entries"`
}

type analyticsResponse struct {
	TotalSearches     int64    `json:"total_searches"`
	AvgResponseTimeMs float64  `json:"avg_response_time_ms"`
	SuccessRate       float64  `json:"success_rate"`
	PopularQueries    []string `json:"popular_queries"`
}

type createSavedRequest struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

type savedDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
}

type savedListResponse struct {
	Items []savedDTO `json:"items"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func searchToDTO(resp searchuc.Response) searchResponse {
	items := make([]resultDTO, len(resp.Results))
	for i, r := range resp.Results {
		items[i] = resultToDTO(r)
	}
	return searchResponse{
		Results:      items,
		TotalResults: resp.TotalResults,
		SearchTimeMs: float64(resp.SearchTime) / float64(time.Millisecond),
	}
}

func resultToDTO(r result.Result) resultDTO {
	c := r.Contract()
	return resultDTO{
		Contract: contractDTO{
			ID:          c.ID,
			Title:       c.Title,
			PartyA:      c.PartyA,
			PartyB:      c.PartyB,
			Description: c.Description,
			Category:    c.Category,
			Branch:      c.Branch,
			Notes:       c.Notes,
			Value:       c.Value,
			SignedAt:    c.SignedAt,
		},
		Score:      r.Score(),
		MatchTier:  string(r.Tier()),
		Tokens:     r.Tokens(),
		Highlights: r.Highlights(),
		Snippet:    r.Snippet(),
		Recency:    r.Recency(),
		Magnitude:  r.Magnitude(),
	}
}

func savedToDTO(e saved.Search) savedDTO {
	return savedDTO{
		ID:        e.ID,
		Name:      e.Name,
		Query:     e.Query,
		CreatedAt: e.CreatedAt,
	}
}

func sortKeyFromQuery(v string) sortkey.Key {
	switch v {
	case "date":
		return sortkey.Date
	case "value":
		return sortkey.Value
	case "alphabetical":
		return sortkey.Alphabetical
	}
	return sortkey.Relevance
}

func directionFromQuery(v string) sortkey.Direction {
	// Empty and unknown values fall through to request.New's per-key default.
	return sortkey.Direction(v)
}
