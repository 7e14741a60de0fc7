package fields

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// ImportSource names a GeoJSON FeatureCollection to pull fields from.
// Crop is used for features without a "crop" property.
type ImportSource struct {
	URL  string
	Crop string
}

// ImportResult counts what an import did.
type ImportResult struct {
	Added    int
	Replaced int
	Skipped  int
}

// Import fetches a FeatureCollection from an http(s) URL or a local file and
// adds every polygon feature as a field. Names come from the "name" property.
// Existing fields are skipped unless force is set, in which case they are replaced.
func Import(ctx context.Context, client *http.Client, s *Store, src ImportSource, force bool) (ImportResult, error) {
	var res ImportResult

	data, err := fetch(ctx, client, src.URL)
	if err != nil {
		return res, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return res, fmt.Errorf("decode %s: %w", src.URL, err)
	}

	for i, f := range fc.Features {
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			log.Trace().Int("feature", i).Str("source", src.URL).Msg("Skipping non-polygon feature")
			res.Skipped++
			continue
		}

		name := strings.TrimSpace(f.Properties.MustString("name", ""))
		if name == "" {
			name = fmt.Sprintf("Field %d", i+1)
		}
		crop := f.Properties.MustString("crop", src.Crop)
		if crop == "" {
			crop = "Unknown"
		}

		raw, err := f.MarshalJSON()
		if err != nil {
			return res, fmt.Errorf("encode feature %q: %w", name, err)
		}

		replaced := false
		if _, err := s.Get(name); err == nil {
			if !force {
				log.Debug().Str("field", name).Msg("Field exists, skipping")
				res.Skipped++
				continue
			}
			s.Remove(name)
			replaced = true
		}

		if _, err := s.Add(NewField{Name: name, Crop: crop, GeoJSON: raw}); err != nil {
			log.Warn().Err(err).Str("field", name).Msg("Failed to import field")
			res.Skipped++
			continue
		}

		if replaced {
			res.Replaced++
		} else {
			res.Added++
		}
	}

	log.Info().
		Str("source", src.URL).
		Int("added", res.Added).
		Int("replaced", res.Replaced).
		Int("skipped", res.Skipped).
		Msg("Fields imported")

	return res, nil
}

func fetch(ctx context.Context, client *http.Client, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.ReadFile(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	// Explicitly ignore close error as it's a read-only operation
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", source, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

type importJob struct {
	Index  int
	Source ImportSource
}

type importResult struct {
	Index  int
	Result ImportResult
	Err    error
}

// ImportAll imports sources with a pool of concurrency workers. The returned
// results and errors are in source order; a failed source does not stop the others.
func ImportAll(ctx context.Context, client *http.Client, s *Store, sources []ImportSource, concurrency int, force bool) ([]ImportResult, []error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	jobs := make(chan importJob, len(sources))
	results := make(chan importResult, len(sources))

	go func() {
		for i, src := range sources {
			jobs <- importJob{Index: i, Source: src}
		}
		close(jobs)
	}()

	var wg sync.WaitGroup
	for range min(concurrency, len(sources)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- importResult{Index: j.Index, Err: err}
					continue
				}
				res, err := Import(ctx, client, s, j.Source, force)
				results <- importResult{Index: j.Index, Result: res, Err: err}
			}
		}()
	}
	wg.Wait()
	close(results)

	out := make([]ImportResult, len(sources))
	errs := make([]error, len(sources))
	for r := range results {
		out[r.Index] = r.Result
		errs[r.Index] = r.Err
	}

	return out, errs
}
