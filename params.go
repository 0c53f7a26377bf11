package lens

import (
	"net/url"
	"slices"
	"strconv"
	"time"
)

// Page sizes offered to callers.
const (
	LimitLow  = 10
	LimitMid  = 25
	LimitHigh = 100
)

// Query state defaults.
const (
	DefaultLimit    = LimitHigh
	DefaultSearch   = ""
	DefaultPage     = 0
	DefaultDebounce = 500 * time.Millisecond
)

// DefaultLimits is the allowed page-size set used when none is configured.
var DefaultLimits = []int{LimitLow, LimitMid, LimitHigh}

// Query parameter names understood by the upstream search API.
const (
	paramAPIKey         = "apikey"
	paramLimit          = "limit"
	paramOffset         = "offset"
	paramNameStartsWith = "nameStartsWith"
)

// Query is the user-controlled state a request is derived from.
type Query struct {
	Search string
	Limit  int
	Page   int
}

// Params builds the request parameters for q. NameStartsWith is only set for
// a non-empty search term.
func (q Query) Params(apiKey string) Params {
	return Params{
		APIKey:         apiKey,
		Limit:          q.Limit,
		Offset:         q.Page * q.Limit,
		NameStartsWith: q.Search,
	}
}

// Params is the immutable parameter record sent upstream.
type Params struct {
	APIKey         string
	Limit          int
	Offset         int
	NameStartsWith string
}

// Values renders p as query parameters.
func (p Params) Values() url.Values {
	v := url.Values{}
	v.Set(paramAPIKey, p.APIKey)
	v.Set(paramLimit, strconv.Itoa(p.Limit))
	v.Set(paramOffset, strconv.Itoa(p.Offset))
	if p.NameStartsWith != "" {
		v.Set(paramNameStartsWith, p.NameStartsWith)
	}
	return v
}

// Key returns the cache key for p. Parameters are encoded sorted by name, so
// two Params are equal exactly when their keys are byte-identical.
func (p Params) Key() string {
	return p.Values().Encode()
}

// Redacted returns the cache key with the API key masked, for logs and signals.
func (p Params) Redacted() string {
	v := p.Values()
	if p.APIKey != "" {
		v.Set(paramAPIKey, "redacted")
	}
	return v.Encode()
}

// totalPages is the number of pages of size limit needed for total results.
func totalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// validLimit reports whether limit is one of allowed.
func validLimit(allowed []int, limit int) bool {
	return slices.Contains(allowed, limit)
}
