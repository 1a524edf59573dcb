//go:build !debug

package pool

import "log/slog"

func defaultLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
