package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/littleironwaltz/quotesync/config"
	"github.com/littleironwaltz/quotesync/internal/domain"
)

// QuoteRepository は名言データの永続化を担当します
type QuoteRepository struct {
	store       KeyValueStore
	quotesKey   string
	categoryKey string
}

// NewQuoteRepository は新しいQuoteRepositoryインスタンスを作成します
func NewQuoteRepository(cfg *config.Config, store KeyValueStore) *QuoteRepository {
	return &QuoteRepository{
		store:       store,
		quotesKey:   cfg.QuotesKey,
		categoryKey: cfg.CategoryKey,
	}
}

// LoadQuotes は名言データをストアから読み込みます
func (r *QuoteRepository) LoadQuotes(ctx context.Context) (domain.Quotes, error) {
	data, err := r.store.Get(ctx, r.quotesKey)
	if err != nil {
		return nil, err
	}

	var quotes domain.Quotes
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, fmt.Errorf("failed to decode quotes: %w", err)
	}
	if quotes == nil {
		quotes = domain.Quotes{}
	}
	return quotes, nil
}

// SaveQuotes は名言データをストアに書き込みます
func (r *QuoteRepository) SaveQuotes(ctx context.Context, quotes domain.Quotes) error {
	if quotes == nil {
		quotes = domain.Quotes{}
	}
	data, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("failed to encode quotes: %w", err)
	}
	return r.store.Set(ctx, r.quotesKey, data)
}

// LoadCategory reads the last selected category filter
func (r *QuoteRepository) LoadCategory(ctx context.Context) (string, error) {
	data, err := r.store.Get(ctx, r.categoryKey)
	if err != nil {
		return "", err
	}

	var category string
	if err := json.Unmarshal(data, &category); err != nil {
		return "", fmt.Errorf("failed to decode category: %w", err)
	}
	return category, nil
}

// SaveCategory stores the selected category filter
func (r *QuoteRepository) SaveCategory(ctx context.Context, category string) error {
	data, err := json.Marshal(category)
	if err != nil {
		return fmt.Errorf("failed to encode category: %w", err)
	}
	return r.store.Set(ctx, r.categoryKey, data)
}
