package fields

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const collection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "North", "crop": "Wheat"},
     "geometry": {"type": "Polygon", "coordinates": [[[11,42],[11.01,42],[11.01,42.01],[11,42]]]}},
    {"type": "Feature", "properties": {"name": "Well"},
     "geometry": {"type": "Point", "coordinates": [11, 42]}},
    {"type": "Feature", "properties": {},
     "geometry": {"type": "Polygon", "coordinates": [[[12,42],[12.01,42],[12.01,42.01],[12,42]]]}}
  ]
}`

func TestImportFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(collection))
	}))
	defer srv.Close()

	s := Open("")
	res, err := Import(context.Background(), srv.Client(), s, ImportSource{URL: srv.URL, Crop: "Barley"}, false)
	require.NoError(t, err)

	assert.Equal(t, ImportResult{Added: 2, Skipped: 1}, res)

	north, err := s.Get("North")
	require.NoError(t, err)
	assert.Equal(t, "Wheat", north.Crop)

	third, err := s.Get("Field 3")
	require.NoError(t, err)
	assert.Equal(t, "Barley", third.Crop)
}

func TestImportFromFileSkipsAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.geojson")
	require.NoError(t, os.WriteFile(path, []byte(collection), 0o644))

	s := Open("")
	_, err := Import(context.Background(), http.DefaultClient, s, ImportSource{URL: path}, false)
	require.NoError(t, err)

	again, err := Import(context.Background(), http.DefaultClient, s, ImportSource{URL: path}, false)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Skipped: 3}, again)

	forced, err := Import(context.Background(), http.DefaultClient, s, ImportSource{URL: path}, true)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Replaced: 2, Skipped: 1}, forced)
	assert.Len(t, s.List(), 2)

	third, err := s.Get("Field 3")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", third.Crop)
}

func TestImportErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	s := Open("")
	_, err := Import(context.Background(), srv.Client(), s, ImportSource{URL: srv.URL}, false)
	assert.Error(t, err)

	_, err = Import(context.Background(), http.DefaultClient, s, ImportSource{URL: filepath.Join(t.TempDir(), "missing")}, false)
	assert.Error(t, err)
}

func TestImportAll(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "fields.geojson")
	require.NoError(t, os.WriteFile(good, []byte(collection), 0o644))

	s := Open("")
	sources := []ImportSource{
		{URL: filepath.Join(dir, "missing.geojson")},
		{URL: good, Crop: "Barley"},
	}

	results, errs := ImportAll(context.Background(), nil, s, sources, 4, false)
	require.Len(t, results, 2)
	require.Len(t, errs, 2)

	assert.Error(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, ImportResult{Added: 2, Skipped: 1}, results[1])
	assert.Len(t, s.List(), 2)
}

func TestImportAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, errs := ImportAll(ctx, nil, Open(""), []ImportSource{{URL: "a"}, {URL: "b"}}, 1, false)
	for _, err := range errs {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
