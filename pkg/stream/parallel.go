package stream

import (
	"context"
	"io"

	"github.com/ssargent/marcstream/pkg/codec"
	"github.com/ssargent/marcstream/pkg/marc"
	"golang.org/x/sync/errgroup"
)

// Source is one independent byte stream for DecodeAll.
type Source struct {
	Name   string
	Reader io.Reader
}

// Result holds what DecodeAll produced for one source. Err is the fatal
// diagnostic that ended that source early, if any. Diagnostics holds every
// diagnostic reported while decoding this source, so results stay distinct
// even when two sources share a name.
type Result struct {
	Source      string
	Records     []*marc.Record
	Count       int
	Diagnostics []*codec.Diagnostic
	Err         error
}

// DecodeAll decodes each source on its own goroutine, at most limit at a
// time (limit <= 0 means no limit). Records within a source stay in order
// and results are returned in source order. A fatal format error only ends
// its own source; I/O errors and context cancellation abort everything.
//
// The configured ErrorHandler and Observer are shared between goroutines
// and must be safe for concurrent use.
func DecodeAll(ctx context.Context, sources []Source, config ReaderConfig, limit int) ([]Result, error) {
	return decodeAll(ctx, sources, config, limit, true)
}

// CountAll behaves like DecodeAll but keeps no records: each Result carries
// only its Count, diagnostics and fatal error.
func CountAll(ctx context.Context, sources []Source, config ReaderConfig, limit int) ([]Result, error) {
	return decodeAll(ctx, sources, config, limit, false)
}

func decodeAll(ctx context.Context, sources []Source, config ReaderConfig, limit int, keep bool) ([]Result, error) {
	results := make([]Result, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			collector := codec.NewCollector()
			cfg := config
			cfg.ErrorHandler = codec.MultiHandler(collector, config.ErrorHandler)
			if src.Name != "" {
				cfg.Source = src.Name
			}
			reader := NewReader(src.Reader, cfg)
			results[i].Source = cfg.Source
			defer func() { results[i].Diagnostics = collector.All() }()

			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				rec, err := reader.Next()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					if _, ok := codec.AsDiagnostic(err); ok {
						results[i].Err = err
						return nil
					}
					return err
				}
				results[i].Count++
				if keep {
					results[i].Records = append(results[i].Records, rec)
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
