package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/AngelCh415/metaads-dashboard/internal/models"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrSampleReadOnly  = errors.New("sample dataset cannot be removed")
)

type entry struct {
	ds  *models.Dataset
	seq uint64
}

// MemoryStore keeps datasets by ID. Datasets are immutable so readers get the
// pointer without copying; the mutex only guards the map.
type MemoryStore struct {
	mu   sync.RWMutex
	sets map[string]entry
	seq  uint64
	max  int
}

// NewMemoryStore registers sample permanently and holds at most max datasets
// (sample included). max is raised so one evictable slot always remains.
func NewMemoryStore(max int, sample *models.Dataset) *MemoryStore {
	floor := 1
	if sample != nil {
		floor = 2
	}
	if max < floor {
		max = floor
	}
	s := &MemoryStore{sets: make(map[string]entry), max: max}
	if sample != nil {
		s.sets[sample.ID] = entry{ds: sample}
	}
	return s
}

// Put stores ds unless a dataset with the same ID exists, in which case the
// existing one is returned with existed=true.
func (s *MemoryStore) Put(ds *models.Dataset) (stored *models.Dataset, existed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sets[ds.ID]; ok {
		return e.ds, true
	}
	for len(s.sets) >= s.max {
		if !s.evictOldest() {
			break
		}
	}
	s.seq++
	s.sets[ds.ID] = entry{ds: ds, seq: s.seq}
	return ds, false
}

// evictOldest drops the oldest evictable dataset; the caller holds the lock.
func (s *MemoryStore) evictOldest() bool {
	oldest := ""
	var seq uint64
	for id, e := range s.sets {
		if id == models.SampleDatasetID {
			continue
		}
		if oldest == "" || e.seq < seq {
			oldest, seq = id, e.seq
		}
	}
	if oldest == "" {
		return false
	}
	delete(s.sets, oldest)
	return true
}

func (s *MemoryStore) Get(id string) (*models.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sets[id]
	if !ok {
		return nil, ErrDatasetNotFound
	}
	return e.ds, nil
}

func (s *MemoryStore) Delete(id string) error {
	if id == models.SampleDatasetID {
		return ErrSampleReadOnly
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sets[id]; !ok {
		return ErrDatasetNotFound
	}
	delete(s.sets, id)
	return nil
}

// List returns dataset metadata in insertion order, sample first.
func (s *MemoryStore) List() []models.DatasetMeta {
	s.mu.RLock()
	all := make([]entry, 0, len(s.sets))
	for _, e := range s.sets {
		all = append(all, e)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })
	out := make([]models.DatasetMeta, 0, len(all))
	for _, e := range all {
		out = append(out, e.ds.Meta())
	}
	return out
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sets)
}
