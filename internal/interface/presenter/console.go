// Package presenter renders quotes and notifications as plain text.
package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/littleironwaltz/quotesync/internal/domain"
)

// EmptyCategoryMessage is shown when the filter matches no quotes
const EmptyCategoryMessage = "No quotes available in this category."

// ConsolePresenter writes to an io.Writer, usually stdout
type ConsolePresenter struct {
	out io.Writer
}

func NewConsolePresenter(out io.Writer) *ConsolePresenter {
	return &ConsolePresenter{out: out}
}

// ShowQuote prints quote in display form
func (p *ConsolePresenter) ShowQuote(quote domain.QuoteRecord) {
	fmt.Fprintln(p.out, quote.Format())
}

// ShowEmpty prints the empty-category message
func (p *ConsolePresenter) ShowEmpty(category string) {
	if category == "" || category == domain.AllCategories {
		fmt.Fprintln(p.out, EmptyCategoryMessage)
		return
	}
	fmt.Fprintf(p.out, "%s (%s)\n", EmptyCategoryMessage, category)
}

// ShowCategories prints the filter choices, "all" first, marking the selected one
func (p *ConsolePresenter) ShowCategories(categories []string, selected string) {
	for _, c := range append([]string{domain.AllCategories}, categories...) {
		marker := " "
		if c == selected {
			marker = "*"
		}
		fmt.Fprintf(p.out, "%s %s\n", marker, c)
	}
}

// Notify prints a user-visible message
func (p *ConsolePresenter) Notify(message string) {
	fmt.Fprintln(p.out, strings.TrimSpace(message))
}
