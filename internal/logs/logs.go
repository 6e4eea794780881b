// Package logs wires the CLI's slog handlers: a terminal handler always,
// plus the systemd journal when one is reachable.
package logs

import (
	"io"
	"log/slog"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

// New builds a logger fanning out to w and, when available, the journal.
func New(w io.Writer, level slog.Leveler) *slog.Logger {
	handlers := []slog.Handler{
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
	}
	if journal, err := slogjournal.NewHandler(&slogjournal.Options{}); err == nil {
		handlers = append(handlers, journal)
	}
	return slog.New(slogmulti.Fanout(handlers...))
}
