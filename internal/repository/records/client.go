package records

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/atrium-labs/contractsearch/internal/domain"
)

// DefaultPageSize asks the source for effectively all records at once;
// the reply is the authoritative snapshot for index rebuilding.
const DefaultPageSize = 1000

// contractDTO is the wire shape of one contract record.
type contractDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	PartyA      string  `json:"party_a"`
	PartyB      string  `json:"party_b"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Branch      string  `json:"branch"`
	Notes       string  `json:"notes"`
	Value       float64 `json:"value"`
	SignedAt    string  `json:"signed_at"` // RFC 3339
	Active      bool    `json:"active"`
}

type pageResponse struct {
	Data []contractDTO `json:"data"`
}

// Client fetches contract snapshots from the remote paginated source.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *zap.Logger
}

// New creates a record source client.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// FetchAll requests one large page of records and returns it as the
// snapshot. The fetch is cancellable through ctx; retries, if any, are
// the source's responsibility, not ours.
func (c *Client) FetchAll(ctx context.Context, pageSize int) ([]domain.Contract, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}
	q := u.Query()
	q.Set("page_size", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch records: unexpected status %d", resp.StatusCode)
	}

	var page pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	contracts := make([]domain.Contract, 0, len(page.Data))
	for _, dto := range page.Data {
		contracts = append(contracts, toDomain(dto))
	}
	c.logger.Debug("fetched record snapshot",
		zap.Int("count", len(contracts)),
		zap.Int("page_size", pageSize),
	)
	return contracts, nil
}

// HealthCheck probes the source with a minimal one-record request.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.FetchAll(ctx, 1)
	return err
}

func toDomain(dto contractDTO) domain.Contract {
	signedAt, err := time.Parse(time.RFC3339, dto.SignedAt)
	if err != nil {
		// A malformed date degrades to the zero time; the record still
		// searches, it just scores zero recency.
		signedAt = time.Time{}
	}
	return domain.Contract{
		ID:          dto.ID,
		Title:       dto.Title,
		PartyA:      dto.PartyA,
		PartyB:      dto.PartyB,
		Description: dto.Description,
		Category:    dto.Category,
		Branch:      dto.Branch,
		Notes:       dto.Notes,
		Value:       dto.Value,
		SignedAt:    signedAt,
		Active:      dto.Active,
	}
}
