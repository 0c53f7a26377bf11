package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/zoobzio/lens"
	"github.com/zoobzio/lens/hero"
)

// view prints coordinator output. Notifications arrive from the pipeline
// goroutine, so writes are serialized.
type view struct {
	mu    sync.Mutex
	out   io.Writer
	coord *lens.Coordinator[hero.Hero]
	stops []func()
}

func newView(out io.Writer, coord *lens.Coordinator[hero.Hero]) *view {
	v := &view{out: out, coord: coord}
	v.stops = append(v.stops,
		coord.Loading().Subscribe(v.loading),
		coord.Results().Subscribe(v.result),
	)
	return v
}

func (v *view) printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, format, args...)
}

func (v *view) loading(on bool) {
	if on {
		v.printf("... loading\n")
	}
}

func (v *view) result(r lens.Result[hero.Hero]) {
	if r.Err != nil {
		v.printf("! request failed: %v\n", r.Err)
		return
	}

	page := 1
	if r.Params.Limit > 0 {
		page += r.Params.Offset / r.Params.Limit
	}
	pages, _ := v.coord.TotalPages().Current()
	source := "network"
	if r.Cached {
		source = "cache"
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	search := r.Params.NameStartsWith
	if search == "" {
		search = "*"
	}
	fmt.Fprintf(v.out, "== %q page %d/%d, %d total (%s)\n", search, page, pages, r.Page.Total, source)
	for _, h := range r.Page.Items {
		fmt.Fprintf(v.out, "  %7d  %s\n", h.ID, h.Name)
	}
}

func (v *view) close() {
	for _, stop := range v.stops {
		stop()
	}
}
