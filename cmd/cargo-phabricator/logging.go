package main

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newZapLogger builds the structured logger. Operators already see warnings
// through the terminal logger, so structured output is off unless verbose
// or logFile is set. A log file alone receives warnings and errors.
func newZapLogger(verbose bool, logFile string) (*zap.Logger, error) {
	if !verbose && logFile == "" {
		return zap.NewNop(), nil
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if logFile != "" {
		cfg.OutputPaths = []string{logFile}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.With(zap.String("invocation", uuid.NewString())), nil
}
