package repository

import "time"

// Common constants for the repository package
const (
	// HTTP related constants
	MaxBackoffDuration  = 30 * time.Second
	DefaultBufferSize   = 1024
	MaxResponseSize     = 1 << 20
	DefaultIdleTimeout  = 180 * time.Second
	MaxIdleConnections  = 100
	MaxIdleConnsPerHost = 5

	// Store related constants
	FileStoreExtension = ".json"
	FileStorePerm      = 0o644
	FileStoreDirPerm   = 0o755
)
