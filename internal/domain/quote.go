package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// AllCategories selects every quote regardless of category
const AllCategories = "all"

var validate = validator.New()

// QuoteRecord は名言とそのカテゴリ、最終更新時刻を表します
type QuoteRecord struct {
	// ID is optional. Records without one are identified by their text.
	ID       string `json:"id,omitempty"`
	Text     string `json:"text" validate:"required"`
	Category string `json:"category" validate:"required"`
	// LastUpdated is milliseconds since the Unix epoch.
	LastUpdated int64 `json:"lastUpdated"`
}

// Key returns the identity used to match records across stores.
func (q QuoteRecord) Key() string {
	if q.ID != "" {
		return q.ID
	}
	return strings.TrimSpace(q.Text)
}

// Normalize trims surrounding whitespace from the text fields.
func (q QuoteRecord) Normalize() QuoteRecord {
	q.ID = strings.TrimSpace(q.ID)
	q.Text = strings.TrimSpace(q.Text)
	q.Category = strings.TrimSpace(q.Category)
	return q
}

// Validate reports ErrInvalidQuote when text or category is blank.
func (q QuoteRecord) Validate() error {
	if err := validate.Struct(q.Normalize()); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return fmt.Errorf("%w: %s is required", ErrInvalidQuote, strings.ToLower(verrs[0].Field()))
		}
		return fmt.Errorf("%w: %v", ErrInvalidQuote, err)
	}
	return nil
}

// Touch sets LastUpdated to t.
func (q *QuoteRecord) Touch(t time.Time) {
	q.LastUpdated = t.UnixMilli()
}

// Format は名言を表示用にフォーマットします
func (q *QuoteRecord) Format() string {
	return `"` + q.Text + `" — ` + q.Category
}

// Quotes is an ordered collection of quote records. Duplicates are allowed.
type Quotes []QuoteRecord

// Clone returns a copy that shares no backing array with q.
func (qs Quotes) Clone() Quotes {
	if qs == nil {
		return nil
	}
	out := make(Quotes, len(qs))
	copy(out, qs)
	return out
}

// Categories returns the distinct categories in first-seen order.
func (qs Quotes) Categories() []string {
	seen := make(map[string]struct{}, len(qs))
	var categories []string
	for _, q := range qs {
		if _, ok := seen[q.Category]; ok {
			continue
		}
		seen[q.Category] = struct{}{}
		categories = append(categories, q.Category)
	}
	return categories
}

// Filter returns the records in category. An empty category or
// AllCategories matches everything.
func (qs Quotes) Filter(category string) Quotes {
	if category == "" || category == AllCategories {
		return qs.Clone()
	}
	var out Quotes
	for _, q := range qs {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}

// DefaultQuotes returns the collection used when nothing has been stored yet.
func DefaultQuotes() Quotes {
	return Quotes{
		{Text: "The only limit to our realization of tomorrow is our doubts of today.", Category: "Motivation"},
		{Text: "Life is really simple, but we insist on making it complicated.", Category: "Philosophy"},
		{Text: "If you judge people, you have no time to love them.", Category: "Compassion"},
		{Text: "In the middle of difficulty lies opportunity.", Category: "Motivation"},
	}
}
