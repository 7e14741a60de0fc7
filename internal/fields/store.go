package fields

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/woozymasta/agroglobe/internal/geo"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Store keeps fields in memory and mirrors them to a JSON file.
// When the file cannot be written the store keeps working from memory.
type Store struct {
	now    func() time.Time
	path   string
	fields []Field
	mu     sync.RWMutex
}

// Open loads the store from path. An empty path keeps fields in memory only.
// Unreadable or malformed content is logged and treated as an empty store.
func Open(path string) *Store {
	s := &Store{path: path, now: time.Now}
	if path == "" {
		log.Debug().Msg("Field store running in memory")
		return s
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", path).Msg("Field store file not found, starting empty")
		return s
	}
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to read field store")
		return s
	}

	if err := json.Unmarshal(data, &s.fields); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to parse field store, starting empty")
		s.fields = nil
		return s
	}

	log.Info().
		Str("path", path).
		Int("fields", len(s.fields)).
		Msg("Field store loaded")

	return s
}

// List returns a copy of all fields in insertion order.
func (s *Store) List() []Field {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Field, 0, len(s.fields))
	for _, f := range s.fields {
		out = append(out, f.clone())
	}
	return out
}

// Get returns the field with the given name.
func (s *Store) Get(name string) (Field, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.index(name)
	if i < 0 {
		return Field{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return s.fields[i].clone(), nil
}

// Add validates and stores a new field.
func (s *Store) Add(nf NewField) (Field, error) {
	polygons, err := nf.validate()
	if err != nil {
		return Field{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index(nf.Name) >= 0 {
		return Field{}, fmt.Errorf("%w: %q", ErrDuplicate, nf.Name)
	}

	now := s.now()
	f := Field{
		ID:          uuid.NewString(),
		Name:        nf.Name,
		Crop:        nf.Crop,
		GeoJSON:     normalizeLocation(nf.GeoJSON),
		AreaHa:      geo.AreaHectares(polygons),
		Automatic:   nf.Automatic,
		Frequency:   nf.Frequency,
		CreatedAt:   now,
		LastUpdated: now,
	}
	if !f.Automatic {
		f.Frequency = ""
	}

	s.fields = append(s.fields, f)
	s.save()

	log.Info().
		Str("field", f.Name).
		Str("crop", f.Crop).
		Float64("area_ha", f.AreaHa).
		Msg("Field added")

	return f.clone(), nil
}

// Remove deletes the named field. Unknown names are ignored; the result
// reports whether anything was removed.
func (s *Store) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(name)
	if i < 0 {
		return false
	}

	s.fields = append(s.fields[:i], s.fields[i+1:]...)
	s.save()

	log.Info().Str("field", name).Msg("Field removed")
	return true
}

// Update applies the patch to the named field and bumps its update time.
func (s *Store) Update(name string, p Patch) (Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(name)
	if i < 0 {
		return Field{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return s.update(i, p)
}

// UpdateByID is Update for callers that must survive a rename, such as a
// running analysis.
func (s *Store) UpdateByID(id string, p Patch) (Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexID(id)
	if i < 0 {
		return Field{}, fmt.Errorf("%w: id %q", ErrNotFound, id)
	}
	return s.update(i, p)
}

// update patches the field at index i. Callers hold the write lock.
func (s *Store) update(i int, p Patch) (Field, error) {
	f := s.fields[i]

	if p.Name != nil {
		newName := strings.TrimSpace(*p.Name)
		if newName == "" {
			return Field{}, fmt.Errorf("%w: please enter your field's name", ErrInvalid)
		}
		if j := s.index(newName); j >= 0 && j != i {
			return Field{}, fmt.Errorf("%w: %q", ErrDuplicate, newName)
		}
		f.Name = newName
	}
	if p.Crop != nil {
		crop := strings.TrimSpace(*p.Crop)
		if crop == "" {
			return Field{}, fmt.Errorf("%w: please enter the crop type", ErrInvalid)
		}
		f.Crop = crop
	}
	if len(p.GeoJSON) > 0 {
		polygons, err := parseLocation(p.GeoJSON)
		if err != nil {
			return Field{}, err
		}
		f.GeoJSON = normalizeLocation(p.GeoJSON)
		f.AreaHa = geo.AreaHectares(polygons)
	}
	if p.Automatic != nil {
		f.Automatic = *p.Automatic
	}
	if p.Frequency != nil {
		f.Frequency = *p.Frequency
	}
	if f.Automatic && !slices.Contains(Frequencies, f.Frequency) {
		return Field{}, fmt.Errorf("%w: unknown analysis frequency %q", ErrInvalid, f.Frequency)
	}
	if !f.Automatic {
		f.Frequency = ""
	}
	if p.Loading != nil {
		f.Loading = *p.Loading
	}
	if p.Data != nil {
		d := *p.Data
		f.Data = &d
	}

	f.LastUpdated = s.now()
	s.fields[i] = f
	s.save()

	return f.clone(), nil
}

// SetLoading flips the loading flag without touching the update time.
// Unknown names are ignored.
func (s *Store) SetLoading(name string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(name)
	if i < 0 {
		return
	}

	s.fields[i].Loading = loading
	s.save()
}

// SetLoadingByID is SetLoading keyed by field ID. Unknown IDs are ignored.
func (s *Store) SetLoadingByID(id string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexID(id)
	if i < 0 {
		return
	}

	s.fields[i].Loading = loading
	s.save()
}

// Geometries parses the location of every field. Fields whose GeoJSON no
// longer parses are logged and skipped.
func (s *Store) Geometries() []Geometry {
	list := s.List()

	out := make([]Geometry, 0, len(list))
	for _, f := range list {
		polygons, err := f.Polygons()
		if err != nil {
			log.Warn().Err(err).Str("field", f.Name).Msg("Skipping field with invalid location")
			continue
		}
		out = append(out, Geometry{Name: f.Name, Crop: f.Crop, Polygons: polygons})
	}

	return out
}

// Path returns the backing file, empty for memory-only stores.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) index(name string) int {
	for i := range s.fields {
		if s.fields[i].Name == name {
			return i
		}
	}
	return -1
}

func (s *Store) indexID(id string) int {
	for i := range s.fields {
		if s.fields[i].ID == id {
			return i
		}
	}
	return -1
}

// save writes the store atomically. Callers hold the write lock.
func (s *Store) save() {
	if s.path == "" {
		return
	}

	if err := writeJSON(s.path, s.fields); err != nil {
		log.Error().Err(err).Str("path", s.path).Msg("Failed to save fields, keeping them in memory")
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
