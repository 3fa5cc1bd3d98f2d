package usecase

import (
	"context"

	"github.com/littleironwaltz/quotesync/internal/domain"
)

// RemoteRepository は同期先サーバーとのやり取りを担当するインターフェースです
type RemoteRepository interface {
	// FetchQuotes はサーバー上の名言一覧を取得します
	FetchQuotes(ctx context.Context) (domain.Quotes, error)
	// PostQuote は追加された名言をサーバーに送信します。レスポンスは使用しません
	PostQuote(ctx context.Context, quote domain.QuoteRecord) error
}

// Notifier は同期結果などのユーザー向けメッセージを受け取ります
type Notifier interface {
	Notify(message string)
}
