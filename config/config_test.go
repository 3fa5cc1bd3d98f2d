package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	defaults := Config{
		StoreBackend:   BackendFile,
		StoreDir:       ".quotesync",
		QuotesKey:      "quotes",
		CategoryKey:    "selectedCategory",
		RedisAddr:      "localhost:6379",
		RemoteURL:      "https://jsonplaceholder.typicode.com/posts",
		RemoteCategory: "Server",
		RemoteLimit:    5,
		SyncInterval:   30 * time.Second,
		HTTPTimeout:    10 * time.Second,
		MaxRetries:     3,
		RetryBackoff:   time.Second,
		LogLevel:       "info",
	}

	tests := []struct {
		name       string
		envVars    map[string]string
		want       func() Config
		wantErr    bool
		wantErrMsg string
	}{
		{
			name:    "正常系: 環境変数なしでデフォルト値",
			envVars: map[string]string{},
			want:    func() Config { return defaults },
		},
		{
			name: "正常系: カスタム値指定",
			envVars: map[string]string{
				"STORE_BACKEND": "redis",
				"REDIS_ADDR":    "cache:6379",
				"REDIS_DB":      "2",
				"REMOTE_URL":    "https://quotes.example.com/api",
				"SYNC_INTERVAL": "1m",
				"HTTP_TIMEOUT":  "5s",
				"REMOTE_LIMIT":  "0",
				"LOG_JSON":      "true",
			},
			want: func() Config {
				c := defaults
				c.StoreBackend = BackendRedis
				c.RedisAddr = "cache:6379"
				c.RedisDB = 2
				c.RemoteURL = "https://quotes.example.com/api"
				c.SyncInterval = time.Minute
				c.HTTPTimeout = 5 * time.Second
				c.RemoteLimit = 0
				c.LogJSON = true
				return c
			},
		},
		{
			name:    "異常系: 無効な時間形式",
			envVars: map[string]string{"SYNC_INTERVAL": "invalid"},
			wantErr: true,
		},
		{
			name:       "異常系: 未知のバックエンド",
			envVars:    map[string]string{"STORE_BACKEND": "sqlite"},
			wantErr:    true,
			wantErrMsg: "StoreBackend must be one of: file redis",
		},
		{
			name:       "異常系: 同期間隔が短すぎる",
			envVars:    map[string]string{"SYNC_INTERVAL": "10ms"},
			wantErr:    true,
			wantErrMsg: "SyncInterval must be at least 1s",
		},
		{
			name:       "異常系: 同じキーを使用",
			envVars:    map[string]string{"CATEGORY_KEY": "quotes"},
			wantErr:    true,
			wantErrMsg: "CategoryKey failed validation: nefield",
		},
		{
			name:       "異常系: 無効なURL",
			envVars:    map[string]string{"REMOTE_URL": "not a url"},
			wantErr:    true,
			wantErrMsg: "RemoteURL failed validation: url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 環境変数をクリア
			os.Clearenv()

			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			got, err := New()
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				if tt.wantErrMsg != "" && !strings.Contains(err.Error(), tt.wantErrMsg) {
					t.Errorf("New() error = %q, want it to contain %q", err.Error(), tt.wantErrMsg)
				}
				return
			}

			if want := tt.want(); *got != want {
				t.Errorf("New() = %+v, want %+v", *got, want)
			}
		})
	}
}

func TestConfig_PostURL(t *testing.T) {
	cfg := &Config{RemoteURL: "https://a.example.com/posts"}
	if got := cfg.PostURL(); got != cfg.RemoteURL {
		t.Errorf("PostURL() = %v, want %v", got, cfg.RemoteURL)
	}

	cfg.RemotePostURL = "https://b.example.com/log"
	if got := cfg.PostURL(); got != cfg.RemotePostURL {
		t.Errorf("PostURL() = %v, want %v", got, cfg.RemotePostURL)
	}
}
