// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/littleironwaltz/quotesync/config"
)

// Rolling log file settings
const (
	LogFileMaxSizeMB  = 50
	LogFileMaxBackups = 5
)

// SetupParams selects where and how logs are written.
type SetupParams struct {
	LogFileName   string
	LogToStdout   bool
	LogLevel      string
	LogFormatJSON bool
}

// ParamsFromConfig maps the logging fields of cfg.
func ParamsFromConfig(cfg *config.Config) SetupParams {
	return SetupParams{
		LogFileName:   cfg.LogFile,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogJSON,
	}
}

// Setup configures the standard logrus logger and returns it.
// Without a log file, output goes to stderr so command output on stdout stays clean.
func Setup(params SetupParams) *logrus.Logger {
	logger := logrus.StandardLogger()
	Configure(logger, params)
	return logger
}

// Configure applies params to logger.
func Configure(logger *logrus.Logger, params SetupParams) {
	if params.LogFormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logger.SetLevel(GetLevel(params.LogLevel))
	logger.SetOutput(output(params))
}

func output(params SetupParams) io.Writer {
	if params.LogFileName == "" {
		return os.Stderr
	}

	if !strings.HasSuffix(params.LogFileName, ".log") {
		params.LogFileName += ".log"
	}

	lumberJackLogger := &lumberjack.Logger{
		Filename:   params.LogFileName,
		MaxSize:    LogFileMaxSizeMB, // megabytes
		MaxBackups: LogFileMaxBackups,
		LocalTime:  false,
		Compress:   true,
	}

	if params.LogToStdout {
		return NewCombinedWriter(os.Stdout, lumberJackLogger)
	}
	return lumberJackLogger
}

// GetLevel parses level, falling back to info for unknown values.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}
