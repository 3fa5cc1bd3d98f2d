package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/littleironwaltz/quotesync/internal/domain"
)

// Notification messages shown after a successful sync
const (
	MessageSynced    = "Quotes synced with server."
	MessageConflicts = "Conflicts resolved: server data took precedence."
)

// ErrNoQuotes is returned when the selected category has no quotes
var ErrNoQuotes = errors.New("no quotes available in this category")

// QuoteRepository defines the persistence interface for domain models
type QuoteRepository interface {
	// LoadQuotes returns domain.ErrNotFound when nothing has been saved yet
	LoadQuotes(ctx context.Context) (domain.Quotes, error)
	SaveQuotes(ctx context.Context, quotes domain.Quotes) error
	// LoadCategory returns domain.ErrNotFound when no filter has been saved yet
	LoadCategory(ctx context.Context) (string, error)
	SaveCategory(ctx context.Context, category string) error
}

// SyncResult summarizes one reconciliation cycle
type SyncResult struct {
	Added      int
	Conflicted bool
	Total      int
}

// Option customizes a QuoteUseCase
type Option func(*QuoteUseCase)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(uc *QuoteUseCase) { uc.now = now }
}

// WithPicker replaces the random index source. pick(n) must return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(uc *QuoteUseCase) { uc.pick = pick }
}

// WithIDGenerator replaces the UUID generator used for new quotes
func WithIDGenerator(newID func() string) Option {
	return func(uc *QuoteUseCase) { uc.newID = newID }
}

// WithLogger sets the logger, logrus.StandardLogger() by default
func WithLogger(logger logrus.FieldLogger) Option {
	return func(uc *QuoteUseCase) { uc.logger = logger }
}

// QuoteUseCase owns the quote collection and the selected category
type QuoteUseCase struct {
	quoteRepo  QuoteRepository
	remoteRepo RemoteRepository
	notifier   Notifier
	logger     logrus.FieldLogger

	now   func() time.Time
	pick  func(n int) int
	newID func() string

	mu       sync.Mutex
	quotes   domain.Quotes
	category string
}

// NewQuoteUseCase creates a new QuoteUseCase instance
func NewQuoteUseCase(qr QuoteRepository, rr RemoteRepository, notifier Notifier, opts ...Option) *QuoteUseCase {
	uc := &QuoteUseCase{
		quoteRepo:  qr,
		remoteRepo: rr,
		notifier:   notifier,
		logger:     logrus.StandardLogger(),
		now:        time.Now,
		pick:       rand.Intn,
		newID:      uuid.NewString,
		quotes:     domain.Quotes{},
		category:   domain.AllCategories,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Initialize loads the quote list and the saved category filter.
// The default quotes are used when nothing has been stored yet.
func (uc *QuoteUseCase) Initialize(ctx context.Context) error {
	quotes, err := uc.quoteRepo.LoadQuotes(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		uc.logger.Info("no stored quotes, using defaults")
		quotes = domain.DefaultQuotes()
	case err != nil:
		return fmt.Errorf("failed to load quotes: %w", err)
	}
	if quotes == nil {
		quotes = domain.Quotes{}
	}

	category, err := uc.quoteRepo.LoadCategory(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound) || (err == nil && category == ""):
		category = domain.AllCategories
	case err != nil:
		return fmt.Errorf("failed to load category filter: %w", err)
	}

	uc.mu.Lock()
	uc.quotes = quotes
	uc.category = category
	uc.mu.Unlock()

	uc.logger.WithFields(logrus.Fields{
		"quotes":   len(quotes),
		"category": category,
	}).Debug("quotes initialized")
	return nil
}

// Quotes returns a copy of the current collection
func (uc *QuoteUseCase) Quotes() domain.Quotes {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.quotes.Clone()
}

// Categories returns the distinct categories of the current collection
func (uc *QuoteUseCase) Categories() []string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.quotes.Categories()
}

// SelectedCategory returns the current category filter
func (uc *QuoteUseCase) SelectedCategory() string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.category
}

// SetCategory changes and persists the category filter. An empty value selects all quotes.
func (uc *QuoteUseCase) SetCategory(ctx context.Context, category string) error {
	if category == "" {
		category = domain.AllCategories
	}
	if err := uc.quoteRepo.SaveCategory(ctx, category); err != nil {
		return fmt.Errorf("failed to save category filter: %w", err)
	}

	uc.mu.Lock()
	uc.category = category
	uc.mu.Unlock()
	return nil
}

// RandomQuote selects and returns a random quote from category.
// An empty category uses the saved filter.
func (uc *QuoteUseCase) RandomQuote(category string) (*domain.QuoteRecord, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if category == "" {
		category = uc.category
	}
	candidates := uc.quotes.Filter(category)
	if len(candidates) == 0 {
		return nil, ErrNoQuotes
	}

	quote := candidates[uc.pick(len(candidates))]
	return &quote, nil
}

// AddQuote validates, stores and reports a new quote.
// A failure to report it to the remote is logged, not returned.
func (uc *QuoteUseCase) AddQuote(ctx context.Context, text, category string) (*domain.QuoteRecord, error) {
	quote := domain.QuoteRecord{Text: text, Category: category}.Normalize()
	if err := quote.Validate(); err != nil {
		return nil, err
	}
	quote.ID = uc.newID()
	quote.Touch(uc.now())

	uc.mu.Lock()
	updated := append(uc.quotes.Clone(), quote)
	if err := uc.quoteRepo.SaveQuotes(ctx, updated); err != nil {
		uc.mu.Unlock()
		return nil, fmt.Errorf("failed to save quotes: %w", err)
	}
	uc.quotes = updated
	uc.mu.Unlock()

	if err := uc.remoteRepo.PostQuote(ctx, quote); err != nil {
		uc.logger.WithError(err).WithField("quote_id", quote.ID).Warn("failed to post quote to server")
	}

	return &quote, nil
}

// ImportQuotes appends the quotes in a JSON array read from r and returns how many were added.
// Nothing is imported when the content is not an array or any element is invalid.
func (uc *QuoteUseCase) ImportQuotes(ctx context.Context, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read import: %w", err)
	}

	var imported domain.Quotes
	if err := json.Unmarshal(data, &imported); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrMalformedImport, err)
	}
	if imported == nil {
		return 0, fmt.Errorf("%w: content is not an array", domain.ErrMalformedImport)
	}

	for i := range imported {
		imported[i] = imported[i].Normalize()
		if err := imported[i].Validate(); err != nil {
			return 0, fmt.Errorf("%w: element %d: %w", domain.ErrMalformedImport, i, err)
		}
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	updated := append(uc.quotes.Clone(), imported...)
	if err := uc.quoteRepo.SaveQuotes(ctx, updated); err != nil {
		return 0, fmt.Errorf("failed to save quotes: %w", err)
	}
	uc.quotes = updated

	uc.logger.WithField("count", len(imported)).Info("quotes imported")
	return len(imported), nil
}

// ExportQuotes writes the whole collection to w as an indented JSON array
func (uc *QuoteUseCase) ExportQuotes(ctx context.Context, w io.Writer) error {
	quotes := uc.Quotes()

	data, err := json.MarshalIndent(quotes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode quotes: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// Sync fetches the server quotes and merges them into the local collection.
// When the fetch fails the local collection is left as it was.
func (uc *QuoteUseCase) Sync(ctx context.Context) (SyncResult, error) {
	remote, err := uc.remoteRepo.FetchQuotes(ctx)
	if err != nil {
		uc.logger.WithError(err).Error("failed to fetch quotes from server")
		return SyncResult{}, fmt.Errorf("failed to fetch quotes: %w", err)
	}

	uc.mu.Lock()
	local := uc.quotes
	merged, conflicted := domain.Reconcile(local, remote)
	result := SyncResult{
		Added:      len(merged) - len(local),
		Conflicted: conflicted,
		Total:      len(merged),
	}

	if result.Added > 0 || result.Conflicted {
		if err := uc.quoteRepo.SaveQuotes(ctx, merged); err != nil {
			uc.mu.Unlock()
			return SyncResult{}, fmt.Errorf("failed to save synced quotes: %w", err)
		}
		uc.quotes = merged
	}
	uc.mu.Unlock()

	uc.logger.WithFields(logrus.Fields{
		"remote":     len(remote),
		"added":      result.Added,
		"conflicted": result.Conflicted,
	}).Info("quotes synced")

	if conflicted {
		uc.notifier.Notify(MessageConflicts)
	} else {
		uc.notifier.Notify(MessageSynced)
	}
	return result, nil
}
