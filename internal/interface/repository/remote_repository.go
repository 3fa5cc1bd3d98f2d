package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/littleironwaltz/quotesync/config"
	"github.com/littleironwaltz/quotesync/internal/domain"
)

// ErrMalformedPayload is returned when the server response cannot be mapped to quotes
var ErrMalformedPayload = errors.New("malformed remote payload")

// RemoteRepository talks to the quote server
type RemoteRepository struct {
	fetchURL   string
	postURL    string
	category   string
	limit      int
	httpClient *HTTPClient
}

// NewRemoteRepository creates a new RemoteRepository instance
func NewRemoteRepository(cfg *config.Config, httpClient *HTTPClient) *RemoteRepository {
	return &RemoteRepository{
		fetchURL:   cfg.RemoteURL,
		postURL:    cfg.PostURL(),
		category:   cfg.RemoteCategory,
		limit:      cfg.RemoteLimit,
		httpClient: httpClient,
	}
}

// remoteItem accepts both the native quote shape and a generic post ({id, title, body}).
type remoteItem struct {
	ID          json.RawMessage `json:"id"`
	Text        *string         `json:"text"`
	Category    string          `json:"category"`
	LastUpdated int64           `json:"lastUpdated"`
	Title       string          `json:"title"`
}

// FetchQuotes downloads the server collection
func (r *RemoteRepository) FetchQuotes(ctx context.Context) (domain.Quotes, error) {
	headers := map[string]string{"Accept": "application/json"}

	resp, err := r.httpClient.DoRequest(ctx, http.MethodGet, r.fetchURL, nil, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}

	var items []json.RawMessage
	if err := r.httpClient.DecodeJSONResponse(resp, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if items == nil {
		return nil, fmt.Errorf("%w: response is not an array", ErrMalformedPayload)
	}

	if r.limit > 0 && len(items) > r.limit {
		items = items[:r.limit]
	}

	quotes := make(domain.Quotes, 0, len(items))
	for i, raw := range items {
		quote, err := r.mapItem(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %w", ErrMalformedPayload, i, err)
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

func (r *RemoteRepository) mapItem(raw json.RawMessage) (domain.QuoteRecord, error) {
	var item remoteItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return domain.QuoteRecord{}, err
	}

	id, err := parseID(item.ID)
	if err != nil {
		return domain.QuoteRecord{}, err
	}

	var quote domain.QuoteRecord
	if item.Text != nil {
		quote = domain.QuoteRecord{
			ID:          id,
			Text:        *item.Text,
			Category:    item.Category,
			LastUpdated: item.LastUpdated,
		}
		if quote.Category == "" {
			quote.Category = r.category
		}
	} else {
		quote = domain.QuoteRecord{
			Text:     item.Title,
			Category: r.category,
		}
		if id != "" {
			quote.ID = "post-" + id
		}
	}

	quote = quote.Normalize()
	if err := quote.Validate(); err != nil {
		return domain.QuoteRecord{}, err
	}
	return quote, nil
}

// parseID accepts a JSON string or number
func parseID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("unsupported id %s", raw)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return "", fmt.Errorf("unsupported id %s", raw)
	}
	return n.String(), nil
}

// PostQuote sends quote to the server. The response body is discarded.
func (r *RemoteRepository) PostQuote(ctx context.Context, quote domain.QuoteRecord) error {
	headers := map[string]string{
		"Content-Type": "application/json; charset=UTF-8",
	}

	resp, err := r.httpClient.DoRequest(ctx, http.MethodPost, r.postURL, quote, headers)
	if err != nil {
		return fmt.Errorf("failed to post quote: %w", err)
	}
	r.httpClient.DiscardResponse(resp)
	return nil
}
