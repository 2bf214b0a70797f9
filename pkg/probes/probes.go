// Package probes maintains file-based readiness and liveness markers for workers without an HTTP surface.
package probes

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/abgdnv/inventory/pkg/config"
)

// MarkReady creates the readiness file.
func MarkReady(cfg config.ProbesConfig) error {
	return touch(cfg.ReadinessFileName)
}

// MarkNotReady removes the readiness file. A missing file is not an error.
func MarkNotReady(cfg config.ProbesConfig) error {
	if err := os.Remove(cfg.ReadinessFileName); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove readiness file: %w", err)
	}
	return nil
}

// RunLiveness touches the liveness file every LivenessInterval until ctx is done,
// then removes it.
func RunLiveness(ctx context.Context, cfg config.ProbesConfig, logger *slog.Logger) error {
	ticker := time.NewTicker(cfg.LivenessInterval)
	defer ticker.Stop()
	defer func() {
		if err := os.Remove(cfg.LivenessFileName); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove liveness file", "error", err)
		}
	}()

	if err := touch(cfg.LivenessFileName); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := touch(cfg.LivenessFileName); err != nil {
				logger.Warn("failed to update liveness file", "error", err)
			}
		}
	}
}

func touch(name string) error {
	now := time.Now()
	if err := os.Chtimes(name, now, now); err == nil {
		return nil
	}
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create probe file %s: %w", name, err)
	}
	return f.Close()
}
