package badger

import "github.com/poiesic/logscope/storage"

// NewMemoryRepository creates an in-memory repository for testing.
// Closing the repository closes its backend.
func NewMemoryRepository() (storage.LogRepository, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	repo := newLogRepository(backend)
	repo.owned = true
	return repo, nil
}
