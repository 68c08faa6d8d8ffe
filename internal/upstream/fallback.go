package upstream

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"agrimarket-backend/internal/metrics"
)

// Source tells whether data came from the API or from a static fallback
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// Result is data tagged with where it came from
type Result[T any] struct {
	Source Source
	Data   T
}

// IsFallback reports whether the data is the static substitute
func (r Result[T]) IsFallback() bool {
	return r.Source == SourceFallback
}

// Loader substitutes static data for failed reads when fallback is enabled
type Loader struct {
	client  *Client
	enabled bool
	logger  *zap.Logger
}

// NewLoader creates a fetch-with-fallback loader
func NewLoader(client *Client, enabled bool, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{client: client, enabled: enabled, logger: logger}
}

// Client returns the underlying API client
func (l *Loader) Client() *Client {
	return l.client
}

// FallbackEnabled reports whether failed reads are substituted
func (l *Loader) FallbackEnabled() bool {
	return l.enabled
}

// FetchWithFallback GETs path into T. On failure it returns fallback() tagged as such,
// or the error when fallback is disabled.
func FetchWithFallback[T any](ctx context.Context, l *Loader, source, path, token string, fallback func() T) (Result[T], error) {
	return FetchWithFallbackFunc(ctx, l, source, func(ctx context.Context) (T, error) {
		var data T
		err := l.client.GetJSON(ctx, path, token, &data)
		return data, err
	}, fallback)
}

// FetchWithFallbackRaw GETs path and hands the raw body to decode, for endpoints
// that may answer in more than one shape.
func FetchWithFallbackRaw[T any](ctx context.Context, l *Loader, source, path, token string, decode func(json.RawMessage) (T, error), fallback func() T) (Result[T], error) {
	return FetchWithFallbackFunc(ctx, l, source, func(ctx context.Context) (T, error) {
		var zero T
		raw, err := l.client.GetRaw(ctx, path, token)
		if err != nil {
			return zero, err
		}
		data, err := decode(raw)
		if err != nil {
			return zero, errors.Wrapf(err, "decode %s", path)
		}
		return data, nil
	}, fallback)
}

// FetchWithFallbackFunc runs fetch and applies the fallback policy to its outcome
func FetchWithFallbackFunc[T any](ctx context.Context, l *Loader, source string, fetch func(context.Context) (T, error), fallback func() T) (Result[T], error) {
	data, err := fetch(ctx)
	if err == nil {
		return Result[T]{Source: SourceLive, Data: data}, nil
	}
	if !l.enabled || ctx.Err() == context.Canceled {
		return Result[T]{}, err
	}

	l.logger.Warn("serving fallback data",
		zap.String("source", source),
		zap.Error(err))
	metrics.FallbackSubstitutions.WithLabelValues(source).Inc()
	return Result[T]{Source: SourceFallback, Data: fallback()}, nil
}
