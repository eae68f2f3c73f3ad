package filesystem

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"

	"sentiment-service/internal/core/domain"
	output "sentiment-service/internal/core/ports/output"
)

// CachedArtifactStore keeps recently loaded bundles in memory. Each cached bundle's
// directory is watched and any change to it drops the entry, so the next Load
// reads the retrained files from disk.
type CachedArtifactStore struct {
	next    output.ArtifactStore
	cache   *lru.Cache[string, *output.LoadedBundle]
	watcher *fsnotify.Watcher

	mu          sync.Mutex
	watched     map[string]string
	generations map[string]uint64

	wg sync.WaitGroup
}

var _ output.ArtifactStore = (*CachedArtifactStore)(nil)

func NewCachedArtifactStore(next output.ArtifactStore, size int) (*CachedArtifactStore, error) {
	if size <= 0 {
		return nil, fmt.Errorf("artifact cache size must be positive, got %d", size)
	}
	cache, err := lru.New[string, *output.LoadedBundle](size)
	if err != nil {
		return nil, fmt.Errorf("create artifact cache: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create artifact watcher: %w", err)
	}

	s := &CachedArtifactStore{
		next:        next,
		cache:       cache,
		watcher:     watcher,
		watched:     make(map[string]string),
		generations: make(map[string]uint64),
	}
	s.wg.Add(1)
	go s.run()
	return s, nil
}

func (s *CachedArtifactStore) Resolve(modelName string) domain.ArtifactBundle {
	return s.next.Resolve(modelName)
}

func (s *CachedArtifactStore) List(ctx context.Context) ([]string, error) {
	return s.next.List(ctx)
}

func (s *CachedArtifactStore) Load(ctx context.Context, modelName string) (*output.LoadedBundle, error) {
	if bundle, ok := s.cache.Get(modelName); ok {
		return bundle, nil
	}

	// The watch is registered before reading so a write that lands during the
	// load bumps the generation and keeps the stale bundle out of the cache.
	watching := domain.IsSafeModelName(modelName) && s.watch(modelName)
	s.mu.Lock()
	gen := s.generations[modelName]
	s.mu.Unlock()

	bundle, err := s.next.Load(ctx, modelName)
	if err != nil {
		return nil, err
	}

	if watching {
		s.mu.Lock()
		if s.generations[modelName] == gen {
			s.cache.Add(modelName, bundle)
		}
		s.mu.Unlock()
	}
	return bundle, nil
}

// Len reports the number of cached bundles.
func (s *CachedArtifactStore) Len() int {
	return s.cache.Len()
}

// Close stops the watcher and empties the cache. Later loads read from disk.
func (s *CachedArtifactStore) Close() error {
	err := s.watcher.Close()
	s.wg.Wait()
	s.cache.Purge()
	return err
}

func (s *CachedArtifactStore) watch(modelName string) bool {
	dir := filepath.Dir(s.next.Resolve(modelName).ModelPath)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.watched[dir]; ok {
		return true
	}
	if err := s.watcher.Add(dir); err != nil {
		if !errors.Is(err, fsnotify.ErrClosed) {
			log.WithError(err).WithField("dir", dir).Debug("Bundle directory not watchable, caching disabled for it")
		}
		return false
	}
	s.watched[dir] = modelName
	return true
}

func (s *CachedArtifactStore) run() {
	defer s.wg.Done()
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handle(event)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("Artifact watcher error")
		}
	}
}

func (s *CachedArtifactStore) handle(event fsnotify.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := event.Name
	name, ok := s.watched[dir]
	if !ok {
		dir = filepath.Dir(event.Name)
		name, ok = s.watched[dir]
	}
	if !ok {
		return
	}

	// Removing the directory drops its watch; forget it so the next Load re-adds it.
	if dir == event.Name && (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
		delete(s.watched, dir)
	}

	s.generations[name]++
	if s.cache.Remove(name) {
		log.WithFields(log.Fields{
			"model": name,
			"event": event.Op.String(),
		}).Info("Artifact changed, cached bundle evicted")
	}
}
