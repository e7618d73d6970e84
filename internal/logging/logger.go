// Package logging builds the service's logrus logger and carries request
// scoped entries through a context.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger at level. Dev mode logs human readable text, every
// other environment logs JSON.
func New(level string, dev bool) *logrus.Logger {
	return NewWithOutput(level, dev, os.Stdout)
}

func NewWithOutput(level string, dev bool, out io.Writer) *logrus.Logger {
	log := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	if dev {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	log.SetOutput(out)
	return log
}

// Discard is a logger for tests and tools that should stay quiet.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type ctxKey struct{}

// WithEntry stores a request scoped entry in ctx.
func WithEntry(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry)
}

// FromContext returns the entry stored by WithEntry, or one built on
// fallback when there is none.
func FromContext(ctx context.Context, fallback logrus.FieldLogger) *logrus.Entry {
	if e, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok {
		return e
	}
	if e, ok := fallback.(*logrus.Entry); ok {
		return e
	}
	if l, ok := fallback.(*logrus.Logger); ok {
		return logrus.NewEntry(l)
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// Scoped layers the fields of a component entry over the request entry in
// ctx. Without a request entry base is returned as is.
func Scoped(ctx context.Context, base *logrus.Entry) *logrus.Entry {
	req, ok := ctx.Value(ctxKey{}).(*logrus.Entry)
	if !ok {
		return base
	}
	return req.WithFields(base.Data)
}
