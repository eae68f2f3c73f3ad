package filesystem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment-service/internal/core/domain"
)

func newCachedStore(t *testing.T, size int) (*ArtifactStore, *CachedArtifactStore) {
	t.Helper()
	disk := NewArtifactStore(t.TempDir())
	cached, err := NewCachedArtifactStore(disk, size)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cached.Close() })
	return disk, cached
}

func TestNewCachedArtifactStore_InvalidSize(t *testing.T) {
	_, err := NewCachedArtifactStore(NewArtifactStore(t.TempDir()), 0)
	assert.Error(t, err)
}

func TestCachedArtifactStore_ReusesLoadedBundle(t *testing.T) {
	disk, cached := newCachedStore(t, 4)
	saveBundle(t, disk, "naive-bayes", "positive")

	first, err := cached.Load(context.Background(), "naive-bayes")
	require.NoError(t, err)
	second, err := cached.Load(context.Background(), "naive-bayes")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, cached.Len())
}

func TestCachedArtifactStore_EvictsOnFileChange(t *testing.T) {
	disk, cached := newCachedStore(t, 4)
	saveBundle(t, disk, "svm", "positive")

	first, err := cached.Load(context.Background(), "svm")
	require.NoError(t, err)
	assert.Equal(t, "positive", predict(t, first, "great movie"))

	saveBundle(t, disk, "svm", "good")

	assert.Eventually(t, func() bool {
		return cached.Len() == 0
	}, 5*time.Second, 20*time.Millisecond)

	// Writes may still be settling; keep reloading until the retrained labels show up.
	assert.Eventually(t, func() bool {
		loaded, err := cached.Load(context.Background(), "svm")
		if err != nil {
			return false
		}
		X, err := loaded.Vectorizer.Transform([]string{"great movie"})
		if err != nil {
			return false
		}
		labels, err := loaded.Classifier.Predict(X)
		return err == nil && len(labels) == 1 && labels[0] == "good"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestCachedArtifactStore_DoesNotCacheErrors(t *testing.T) {
	disk, cached := newCachedStore(t, 4)

	_, err := cached.Load(context.Background(), "knn")
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	assert.Equal(t, 0, cached.Len())

	saveBundle(t, disk, "knn", "positive")

	loaded, err := cached.Load(context.Background(), "knn")
	require.NoError(t, err)
	assert.Equal(t, "positive", predict(t, loaded, "great story"))
}

func TestCachedArtifactStore_LRUBound(t *testing.T) {
	disk, cached := newCachedStore(t, 1)
	saveBundle(t, disk, "svm", "positive")
	saveBundle(t, disk, "knn", "positive")

	_, err := cached.Load(context.Background(), "svm")
	require.NoError(t, err)
	_, err = cached.Load(context.Background(), "knn")
	require.NoError(t, err)

	assert.Equal(t, 1, cached.Len())
}

func TestCachedArtifactStore_DelegatesResolveAndList(t *testing.T) {
	disk, cached := newCachedStore(t, 2)
	saveBundle(t, disk, "svm", "positive")

	assert.Equal(t, disk.Resolve("svm"), cached.Resolve("svm"))
	names, err := cached.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"svm"}, names)
}

func TestCachedArtifactStore_Close(t *testing.T) {
	disk := NewArtifactStore(t.TempDir())
	cached, err := NewCachedArtifactStore(disk, 2)
	require.NoError(t, err)
	saveBundle(t, disk, "svm", "positive")

	_, err = cached.Load(context.Background(), "svm")
	require.NoError(t, err)
	require.NoError(t, cached.Close())

	assert.Equal(t, 0, cached.Len())
	_, err = cached.Load(context.Background(), "svm")
	require.NoError(t, err)
	assert.Equal(t, 0, cached.Len())
}
