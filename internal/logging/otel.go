// internal/logging/otel.go
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"
)

// newDualCore creates the stdout zapcore.Core, wrapped with redaction and
// sampling. Named for its teacher's dual stdout/OTEL-bridge lineage; this
// engine only ever carries the stdout leg since OTEL log export is handled
// by the collector sidecar, not this process.
func newDualCore(cfg *Config) (zapcore.Core, error) {
	if !cfg.Output.Stdout {
		return nil, fmt.Errorf("at least one output must be enabled and available")
	}

	baseEncoder := newEncoder(cfg.Format)
	encoder, err := NewRedactingEncoder(baseEncoder, cfg.Redaction)
	if err != nil {
		return nil, fmt.Errorf("failed to create redacting encoder: %w", err)
	}
	writer := zapcore.AddSync(os.Stdout)
	core := zapcore.NewCore(encoder, writer, cfg.Level)

	return newSampledCore(core, cfg.Sampling), nil
}
