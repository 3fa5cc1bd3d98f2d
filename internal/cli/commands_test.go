package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/littleironwaltz/quotesync/config"
	"github.com/littleironwaltz/quotesync/internal/domain"
	"github.com/littleironwaltz/quotesync/internal/interface/presenter"
	"github.com/littleironwaltz/quotesync/internal/usecase"
)

// fakeServer serves a fixed quote list and records posted quotes
type fakeServer struct {
	*httptest.Server

	mu     sync.Mutex
	body   string
	posted []domain.QuoteRecord
}

func newFakeServer(t *testing.T, body string) *fakeServer {
	t.Helper()
	fs := &fakeServer{body: body}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		defer fs.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			fmt.Fprint(w, fs.body)
		case http.MethodPost:
			var q domain.QuoteRecord
			if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			fs.posted = append(fs.posted, q)
			w.WriteHeader(http.StatusCreated)
		}
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) postedQuotes() []domain.QuoteRecord {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]domain.QuoteRecord(nil), fs.posted...)
}

func testConfig(dir, remoteURL string) *config.Config {
	return &config.Config{
		StoreBackend:   config.BackendFile,
		StoreDir:       dir,
		QuotesKey:      "quotes",
		CategoryKey:    "selectedCategory",
		RemoteURL:      remoteURL,
		RemoteCategory: "Server",
		SyncInterval:   time.Hour,
		HTTPTimeout:    time.Second,
		RetryBackoff:   time.Millisecond,
		LogLevel:       "fatal",
	}
}

func runCommand(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	return runCommandContext(context.Background(), cfg, args...)
}

func runCommandContext(ctx context.Context, cfg *config.Config, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	err := Run(ctx, Options{
		Out:        &out,
		Err:        &errOut,
		In:         strings.NewReader(""),
		LoadConfig: func() (*config.Config, error) { return cfg, nil },
	}, args)
	return out.String(), err
}

func TestShowCommand(t *testing.T) {
	server := newFakeServer(t, `[]`)
	cfg := testConfig(t.TempDir(), server.URL)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "正常系: 初期データから表示",
			args: []string{"show"},
			want: formatted(domain.DefaultQuotes()),
		},
		{
			name: "正常系: カテゴリを指定",
			args: []string{"show", "--category", "Compassion"},
			want: formatted(domain.DefaultQuotes().Filter("Compassion")),
		},
		{
			name: "正常系: 該当なしのカテゴリ",
			args: []string{"show", "-c", "Unknown"},
			want: []string{presenter.EmptyCategoryMessage + " (Unknown)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, cfg, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, tt.want, strings.TrimSpace(out))
		})
	}
}

func formatted(quotes domain.Quotes) []string {
	lines := make([]string, 0, len(quotes))
	for _, q := range quotes {
		lines = append(lines, q.Format())
	}
	return lines
}

func TestFilterCommand(t *testing.T) {
	server := newFakeServer(t, `[]`)
	cfg := testConfig(t.TempDir(), server.URL)

	out, err := runCommand(t, cfg, "filter", "Philosophy")
	require.NoError(t, err)
	assert.Equal(t, "Filter set to Philosophy\n"+domain.DefaultQuotes()[1].Format()+"\n", out)

	// 保存されたフィルタが次回起動時に使われる
	out, err = runCommand(t, cfg, "filter")
	require.NoError(t, err)
	assert.Equal(t, "Current filter: Philosophy\n", out)

	out, err = runCommand(t, cfg, "categories")
	require.NoError(t, err)
	assert.Equal(t, "  all\n  Motivation\n* Philosophy\n  Compassion\n", out)
}

func TestAddCommand(t *testing.T) {
	server := newFakeServer(t, `[]`)
	cfg := testConfig(t.TempDir(), server.URL)

	out, err := runCommand(t, cfg, "add", "--text", "  Stay hungry. ", "--category", "Wisdom")
	require.NoError(t, err)
	assert.Equal(t, "Quote added successfully!\n", out)

	posted := server.postedQuotes()
	require.Len(t, posted, 1)
	assert.Equal(t, "Stay hungry.", posted[0].Text)
	assert.Equal(t, "Wisdom", posted[0].Category)
	assert.NotEmpty(t, posted[0].ID)
	assert.NotZero(t, posted[0].LastUpdated)

	out, err = runCommand(t, cfg, "show", "-c", "Wisdom")
	require.NoError(t, err)
	assert.Equal(t, posted[0].Format()+"\n", out)
}

func TestAddCommand_Invalid(t *testing.T) {
	server := newFakeServer(t, `[]`)
	cfg := testConfig(t.TempDir(), server.URL)

	_, err := runCommand(t, cfg, "add", "--text", "   ", "--category", "Wisdom")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidQuote)
	assert.Empty(t, server.postedQuotes())
}

func TestImportExportCommands(t *testing.T) {
	server := newFakeServer(t, `[]`)
	dir := t.TempDir()
	cfg := testConfig(filepath.Join(dir, "store"), server.URL)

	importFile := filepath.Join(dir, "import.json")
	require.NoError(t, os.WriteFile(importFile, []byte(`[{"text":"Imported","category":"Misc","lastUpdated":7}]`), 0o600))

	out, err := runCommand(t, cfg, "import", importFile)
	require.NoError(t, err)
	assert.Equal(t, "Quotes imported successfully! (1)\n", out)

	exportFile := filepath.Join(dir, "export.json")
	out, err = runCommand(t, cfg, "export", exportFile)
	require.NoError(t, err)
	assert.Equal(t, "Quotes exported to "+exportFile+"\n", out)

	data, err := os.ReadFile(exportFile)
	require.NoError(t, err)
	var exported domain.Quotes
	require.NoError(t, json.Unmarshal(data, &exported))
	require.Len(t, exported, len(domain.DefaultQuotes())+1)
	assert.Equal(t, domain.QuoteRecord{Text: "Imported", Category: "Misc", LastUpdated: 7}, exported[len(exported)-1])

	out, err = runCommand(t, cfg, "export", "-")
	require.NoError(t, err)
	assert.JSONEq(t, string(data), out)
}

func TestImportCommand_Malformed(t *testing.T) {
	server := newFakeServer(t, `[]`)
	dir := t.TempDir()
	cfg := testConfig(filepath.Join(dir, "store"), server.URL)

	importFile := filepath.Join(dir, "import.json")
	require.NoError(t, os.WriteFile(importFile, []byte(`{"text":"not an array"}`), 0o600))

	_, err := runCommand(t, cfg, "import", importFile)
	assert.ErrorIs(t, err, domain.ErrMalformedImport)

	_, err = runCommand(t, cfg, "import", filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestSyncCommand(t *testing.T) {
	server := newFakeServer(t, `[{"id":1,"title":"from server"}]`)
	cfg := testConfig(t.TempDir(), server.URL)

	out, err := runCommand(t, cfg, "sync")
	require.NoError(t, err)
	assert.Equal(t, usecase.MessageSynced+"\n", out)

	out, err = runCommand(t, cfg, "show", "-c", "Server")
	require.NoError(t, err)
	assert.Equal(t, `"from server" — Server`+"\n", out)
}

func TestSyncCommand_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()
	cfg := testConfig(t.TempDir(), server.URL)

	out, err := runCommand(t, cfg, "sync")
	require.Error(t, err)
	assert.Empty(t, out)
}

func TestRunCommand(t *testing.T) {
	server := newFakeServer(t, `[{"id":1,"title":"from server"}]`)
	cfg := testConfig(t.TempDir(), server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	out, err := runCommandContext(ctx, cfg, "run", "--interval", "50ms")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Contains(t, formatted(domain.DefaultQuotes()), lines[0])
	assert.Equal(t, usecase.MessageSynced, lines[1])
}

func TestRun_ConfigError(t *testing.T) {
	err := Run(context.Background(), Options{
		Out:        &bytes.Buffer{},
		Err:        &bytes.Buffer{},
		LoadConfig: func() (*config.Config, error) { return nil, fmt.Errorf("boom") },
	}, []string{"show"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
