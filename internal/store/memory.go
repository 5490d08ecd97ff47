package store

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	// ErrNotFound is returned when no location exists for a given id.
	ErrNotFound = errors.New("location not found")
)

// MemoryStore is a concurrency-safe in-memory implementation of a location store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location id
	data map[int64]weather.Location

	// nextID only ever grows, so ids are not reused after deletion.
	nextID int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:   make(map[int64]weather.Location),
		nextID: 1,
	}
}

// CreateLocation stores a new location and assigns its id.
func (s *MemoryStore) CreateLocation(_ context.Context, in weather.NewLocation) (weather.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc := weather.Location{
		ID:         s.nextID,
		Name:       in.Name,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		IsFavorite: in.IsFavorite,
		Country:    cloneString(in.Country),
		Admin1:     cloneString(in.Admin1),
	}
	s.data[loc.ID] = loc
	s.nextID++

	return loc, nil
}

// GetLocation returns the location with the given id.
func (s *MemoryStore) GetLocation(_ context.Context, id int64) (weather.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loc, ok := s.data[id]
	if !ok {
		return weather.Location{}, ErrNotFound
	}
	return loc, nil
}

// ListLocations returns all locations in insertion (id) order.
func (s *MemoryStore) ListLocations(_ context.Context) ([]weather.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]weather.Location, 0, len(s.data))
	for _, loc := range s.data {
		result = append(result, loc)
	}
	slices.SortFunc(result, func(a, b weather.Location) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

// DeleteLocation removes a location if present.
func (s *MemoryStore) DeleteLocation(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, id)
	return nil
}

// Close is a no-op; it lets MemoryStore satisfy Store.
func (s *MemoryStore) Close() error {
	return nil
}

// CountLocations returns the number of stored locations.
func (s *MemoryStore) CountLocations(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.data)), nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
