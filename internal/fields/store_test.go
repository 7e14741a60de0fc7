package fields

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squareGeoJSON = `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[11,42],[11.01,42],[11.01,42.01],[11,42.01],[11,42]]]}}`

func newField(name string) NewField {
	return NewField{Name: name, Crop: "Corn", GeoJSON: json.RawMessage(squareGeoJSON)}
}

func fixedClock(s *Store) *time.Time {
	now := time.Date(2025, 3, 30, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return &now
}

func TestStoreAddAndList(t *testing.T) {
	s := Open("")
	fixedClock(s)

	f, err := s.Add(newField("  North  "))
	require.NoError(t, err)

	assert.Equal(t, "North", f.Name)
	assert.NotEmpty(t, f.ID)
	assert.False(t, f.Loading)
	assert.Nil(t, f.Data)
	assert.Equal(t, f.CreatedAt, f.LastUpdated)
	assert.InDelta(t, 92, f.AreaHa, 3)

	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, f.ID, list[0].ID)
}

func TestStoreAddValidation(t *testing.T) {
	s := Open("")

	tests := map[string]NewField{
		"no name":      {Crop: "Corn", GeoJSON: json.RawMessage(squareGeoJSON)},
		"no crop":      {Name: "a", GeoJSON: json.RawMessage(squareGeoJSON)},
		"no location":  {Name: "a", Crop: "Corn"},
		"bad location": {Name: "a", Crop: "Corn", GeoJSON: json.RawMessage(`{"type":"Point","coordinates":[1,2]}`)},
		"no rings":     {Name: "a", Crop: "Corn", GeoJSON: json.RawMessage(`{"type":"Polygon","coordinates":[]}`)},
		"empty ring":   {Name: "a", Crop: "Corn", GeoJSON: json.RawMessage(`{"type":"Polygon","coordinates":[[]]}`)},
		"frequency":    {Name: "a", Crop: "Corn", GeoJSON: json.RawMessage(squareGeoJSON), Automatic: true, Frequency: "hourly"},
	}

	for name, nf := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.Add(nf)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
	assert.Empty(t, s.List())
}

func TestStoreAcceptsStringEncodedLocation(t *testing.T) {
	s := Open("")

	quoted, err := json.Marshal(squareGeoJSON)
	require.NoError(t, err)

	f, err := s.Add(NewField{Name: "a", Crop: "Corn", GeoJSON: quoted, Automatic: true, Frequency: "Once a day"})
	require.NoError(t, err)
	assert.JSONEq(t, squareGeoJSON, string(f.GeoJSON))
	assert.Equal(t, "Once a day", f.Frequency)
}

func TestStoreRejectsDuplicate(t *testing.T) {
	s := Open("")
	_, err := s.Add(newField("a"))
	require.NoError(t, err)

	_, err = s.Add(newField("a"))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestStoreRemove(t *testing.T) {
	s := Open("")
	for _, n := range []string{"a", "b", "c"} {
		_, err := s.Add(newField(n))
		require.NoError(t, err)
	}

	assert.True(t, s.Remove("b"))
	assert.False(t, s.Remove("b"))
	assert.False(t, s.Remove("missing"))

	names := []string{}
	for _, f := range s.List() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"a", "c"}, names)
}

func TestStoreUpdate(t *testing.T) {
	s := Open("")
	now := fixedClock(s)

	_, err := s.Add(newField("a"))
	require.NoError(t, err)
	*now = now.Add(time.Hour)

	name, crop := "Renamed", "Wheat"
	f, err := s.Update("a", Patch{
		Name: &name,
		Crop: &crop,
		Data: &Health{InfectionChance: 0.4},
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", f.Name)
	assert.Equal(t, "Wheat", f.Crop)
	require.NotNil(t, f.Data)
	assert.Equal(t, 0.4, f.Data.InfectionChance)
	assert.True(t, f.LastUpdated.After(f.CreatedAt))

	_, err = s.Get("a")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Update("missing", Patch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreUpdateConflicts(t *testing.T) {
	s := Open("")
	_, err := s.Add(newField("a"))
	require.NoError(t, err)
	_, err = s.Add(newField("b"))
	require.NoError(t, err)

	taken := "b"
	_, err = s.Update("a", Patch{Name: &taken})
	assert.ErrorIs(t, err, ErrDuplicate)

	on := true
	_, err = s.Update("a", Patch{Automatic: &on})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.Update("a", Patch{GeoJSON: json.RawMessage(`{"type":"Point","coordinates":[0,0]}`)})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestStoreListReturnsCopies(t *testing.T) {
	s := Open("")
	_, err := s.Add(newField("a"))
	require.NoError(t, err)
	_, err = s.Update("a", Patch{Data: &Health{InfectionChance: 0.1}})
	require.NoError(t, err)

	list := s.List()
	list[0].Data.InfectionChance = 0.9
	list[0].Name = "mutated"

	f, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 0.1, f.Data.InfectionChance)
}

func TestStoreSetLoading(t *testing.T) {
	s := Open("")
	now := fixedClock(s)
	_, err := s.Add(newField("a"))
	require.NoError(t, err)
	*now = now.Add(time.Minute)

	s.SetLoading("a", true)
	s.SetLoading("missing", true)

	f, err := s.Get("a")
	require.NoError(t, err)
	assert.True(t, f.Loading)
	assert.Equal(t, f.CreatedAt, f.LastUpdated)
}

func TestStorePersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "fields.json")

	s := Open(path)
	_, err := s.Add(newField("a"))
	require.NoError(t, err)
	_, err = s.Add(newField("b"))
	require.NoError(t, err)
	s.Remove("a")

	reopened := Open(path)
	list := reopened.List()
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Name)
	assert.JSONEq(t, squareGeoJSON, string(list[0].GeoJSON))
}

func TestStoreMalformedFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	s := Open(path)
	assert.Empty(t, s.List())
}

func TestStoreFallsBackToMemoryOnWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	// parent of the store path is a regular file, so every save fails
	s := Open(filepath.Join(blocker, "fields.json"))
	_, err := s.Add(newField("a"))
	require.NoError(t, err)

	assert.Len(t, s.List(), 1)
}

func TestStoreGeometries(t *testing.T) {
	s := Open("")
	_, err := s.Add(newField("a"))
	require.NoError(t, err)

	g := s.Geometries()
	require.Len(t, g, 1)
	assert.Equal(t, "a", g[0].Name)
	require.Len(t, g[0].Polygons, 1)
	assert.Len(t, g[0].Polygons[0][0], 5)
}

func TestStoreByID(t *testing.T) {
	s := Open("")
	f, err := s.Add(newField("North"))
	require.NoError(t, err)

	renamed := "South"
	_, err = s.Update("North", Patch{Name: &renamed})
	require.NoError(t, err)

	s.SetLoadingByID(f.ID, true)
	got, err := s.Get("South")
	require.NoError(t, err)
	assert.True(t, got.Loading)

	loading := false
	got, err = s.UpdateByID(f.ID, Patch{Loading: &loading, Data: &Health{InfectionChance: 0.4}})
	require.NoError(t, err)
	assert.Equal(t, "South", got.Name)
	assert.False(t, got.Loading)

	_, err = s.UpdateByID("missing", Patch{})
	assert.ErrorIs(t, err, ErrNotFound)
}
