package lens

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zoobzio/capitan"
	"golang.org/x/sync/singleflight"

	"github.com/zoobzio/lens/cache"
)

// resolver turns parameters into a page: cache first, then the source.
// Misses for the same key share one upstream call, and only bodies that
// decode into a page are written back.
type resolver[T any] struct {
	source  Source
	store   cache.Cache[[]byte]
	codec   Codec
	logger  zerolog.Logger
	metrics MetricsProvider
	group   singleflight.Group
}

// fetched is the value shared between callers of one upstream call.
type fetched[T any] struct {
	page      Page[T]
	requestID string
}

// resolve fills in Page, RequestID, Cached and Err on res. It returns early
// with ctx.Err() once ctx is done, while a shared upstream call carries on
// for anyone else waiting on it.
func (r *resolver[T]) resolve(ctx context.Context, res *Result[T]) {
	key := res.Params.Key()

	if raw, err := r.store.Get(ctx, key); err == nil {
		page, decodeErr := decodePage[T](r.codec, raw)
		if decodeErr == nil {
			capitan.Emit(ctx, CacheHit, KeyParams.Field(res.Params.Redacted()))
			if r.metrics != nil {
				r.metrics.OnCacheHit()
			}
			res.Page = page
			res.Cached = true
			return
		}
		r.logger.Error().Err(decodeErr).Msg("Cached response no longer decodes, refetching.")
	} else if !errors.Is(err, cache.ErrMiss) {
		r.logger.Error().Err(err).Msg("Cache lookup failed, falling back to source.")
	}

	capitan.Emit(ctx, CacheMiss, KeyParams.Field(res.Params.Redacted()))
	if r.metrics != nil {
		r.metrics.OnCacheMiss()
	}
	ch := r.group.DoChan(key, func() (any, error) {
		return r.fetch(context.WithoutCancel(ctx), res.Params, key)
	})

	select {
	case <-ctx.Done():
		res.Err = ctx.Err()
	case out := <-ch:
		if out.Err != nil {
			res.Err = out.Err
			return
		}
		f := out.Val.(fetched[T])
		res.Page = f.page
		res.RequestID = f.requestID
	}
}

func (r *resolver[T]) fetch(ctx context.Context, params Params, key string) (fetched[T], error) {
	requestID := uuid.NewString()
	logger := r.logger.With().Str("request_id", requestID).Logger()

	capitan.Emit(ctx, FetchStarted,
		KeyRequestID.Field(requestID),
		KeyParams.Field(params.Redacted()),
	)

	raw, err := r.source.Fetch(WithRequestID(ctx, requestID), params)
	if err != nil {
		logger.Error().Err(err).Msg("Error fetching from source.")
		return fetched[T]{}, err
	}

	page, err := decodePage[T](r.codec, raw)
	if err != nil {
		logger.Error().Err(err).Msg("Source returned a malformed response.")
		return fetched[T]{}, err
	}

	if err := r.store.Set(ctx, key, raw); err != nil {
		logger.Error().Err(err).Msg("Failed to write response to cache.")
	}
	logger.Debug().Int("count", page.Count).Int("total", page.Total).Msg("Source hit, response cached.")

	return fetched[T]{page: page, requestID: requestID}, nil
}
