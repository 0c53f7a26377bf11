package lens

import "context"

// Source performs the upstream request for a set of parameters and returns
// the raw response body. Any error is reported as a failed result; a non-2xx
// answer should be returned as a *TransportError.
type Source interface {
	Fetch(ctx context.Context, params Params) ([]byte, error)
}

// SourceFunc adapts an ordinary function to Source.
type SourceFunc func(ctx context.Context, params Params) ([]byte, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, params Params) ([]byte, error) {
	return f(ctx, params)
}

// Envelope is the JSON document returned by the search API.
type Envelope[T any] struct {
	Code            int           `json:"code"`
	Status          string        `json:"status"`
	ETag            string        `json:"etag,omitempty"`
	AttributionText string        `json:"attributionText,omitempty"`
	Data            *Container[T] `json:"data"`
}

// Container is the paginated payload of an Envelope.
type Container[T any] struct {
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	Total   *int `json:"total"`
	Count   int  `json:"count"`
	Results []T  `json:"results"`
}

// Page is one decoded page of search results.
type Page[T any] struct {
	Items  []T
	Total  int
	Offset int
	Limit  int
	Count  int
}

// Result is what the coordinator publishes for each distinct set of
// parameters. Exactly one of Page or Err is meaningful.
type Result[T any] struct {
	Params     Params
	Page       Page[T]
	Generation uint64
	RequestID  string
	Cached     bool
	Err        error
}

// decodePage unmarshals raw with codec and checks the fields a page needs.
func decodePage[T any](codec Codec, raw []byte) (Page[T], error) {
	var env Envelope[T]
	if err := codec.Unmarshal(raw, &env); err != nil {
		return Page[T]{}, &MalformedResponseError{Reason: "undecodable body", Err: err}
	}
	switch {
	case env.Data == nil:
		return Page[T]{}, &MalformedResponseError{Reason: "missing data"}
	case env.Data.Total == nil:
		return Page[T]{}, &MalformedResponseError{Reason: "missing data.total"}
	case env.Data.Results == nil:
		return Page[T]{}, &MalformedResponseError{Reason: "missing data.results"}
	}
	return Page[T]{
		Items:  env.Data.Results,
		Total:  *env.Data.Total,
		Offset: env.Data.Offset,
		Limit:  env.Data.Limit,
		Count:  env.Data.Count,
	}, nil
}

type requestIDKey struct{}

// WithRequestID returns a context carrying the request ID for an upstream fetch.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request ID stored by WithRequestID.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}
