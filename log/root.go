// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

var (
	root atomic.Value

	// package level loggers created before SetDefault follow the root handler
	lazyMu      sync.Mutex
	lazyLoggers []*lazyLogger
)

func init() {
	root.Store(&logger{slog.New(DiscardHandler())})
}

// SetDefault sets the default global logger
func SetDefault(l Logger) {
	root.Store(l)
	if lg, ok := l.(*logger); ok {
		slog.SetDefault(lg.inner)
	}
	lazyMu.Lock()
	defer lazyMu.Unlock()
	for _, ll := range lazyLoggers {
		ll.reset()
	}
}

// Root returns the root logger
func Root() Logger {
	return root.Load().(Logger)
}

// WithContext returns a logger carrying ctx that always writes through the current root handler,
// so it can be declared as a package variable before the root is configured.
func WithContext(ctx ...any) Logger {
	ll := &lazyLogger{ctx: ctx}
	lazyMu.Lock()
	lazyLoggers = append(lazyLoggers, ll)
	lazyMu.Unlock()
	return ll
}

// The following functions bypass the exported logger methods (logger.Debug,
// etc.) to keep the call depth the same for all paths to logger.write so
// runtime.Caller(2) always refers to the call site in client code.

// Trace is a convenient alias for Root().Trace
func Trace(msg string, ctx ...any) {
	Root().(*logger).write(LevelTrace, msg, ctx...)
}

// Debug is a convenient alias for Root().Debug
func Debug(msg string, ctx ...any) {
	Root().(*logger).write(slog.LevelDebug, msg, ctx...)
}

// Info is a convenient alias for Root().Info
func Info(msg string, ctx ...any) {
	Root().(*logger).write(slog.LevelInfo, msg, ctx...)
}

// Warn is a convenient alias for Root().Warn
func Warn(msg string, ctx ...any) {
	Root().(*logger).write(slog.LevelWarn, msg, ctx...)
}

// Error is a convenient alias for Root().Error
func Error(msg string, ctx ...any) {
	Root().(*logger).write(slog.LevelError, msg, ctx...)
}

type lazyLogger struct {
	ctx []any
	cur atomic.Pointer[logger]
}

func (l *lazyLogger) reset() {
	l.cur.Store(nil)
}

func (l *lazyLogger) get() *logger {
	if cur := l.cur.Load(); cur != nil {
		return cur
	}
	base, ok := Root().(*logger)
	if !ok {
		base = &logger{slog.New(Root().Handler())}
	}
	cur := &logger{base.inner.With(l.ctx...)}
	l.cur.Store(cur)
	return cur
}

func (l *lazyLogger) With(ctx ...any) Logger { return l.get().With(ctx...) }
func (l *lazyLogger) New(ctx ...any) Logger  { return l.get().With(ctx...) }
func (l *lazyLogger) Handler() slog.Handler  { return l.get().Handler() }

func (l *lazyLogger) Log(level slog.Level, msg string, ctx ...any) {
	l.get().write(level, msg, ctx...)
}

func (l *lazyLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.get().Enabled(ctx, level)
}

func (l *lazyLogger) Trace(msg string, ctx ...any) { l.get().write(LevelTrace, msg, ctx...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { l.get().write(slog.LevelDebug, msg, ctx...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { l.get().write(slog.LevelInfo, msg, ctx...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { l.get().write(slog.LevelWarn, msg, ctx...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { l.get().write(slog.LevelError, msg, ctx...) }
func (l *lazyLogger) Crit(msg string, ctx ...any)  { l.get().Crit(msg, ctx...) }
