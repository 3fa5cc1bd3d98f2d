package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/littleironwaltz/quotesync/internal/cli"
)

func main() {
	// シグナル処理の設定
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
