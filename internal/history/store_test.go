package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchpulse/winprob/pkg/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLatestOnEmptyStore(t *testing.T) {
	store := openTestStore(t)

	row, err := store.Latest("m-1")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestAppendAndLatest(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

	first := engine.WinProbRow{PHome: 44.2, PDraw: 27.5, PAway: 28.3, Quality: engine.QualityBasic, Confidence: 35}
	require.NoError(t, store.Append("m-1", base, 0, first))

	second := engine.WinProbRow{PHome: 58.0, PDraw: 24.0, PAway: 18.0, DeltaHome: 13.8, Quality: engine.QualityEvent, Confidence: 61}
	require.NoError(t, store.Append("m-1", base.Add(20*time.Minute), 25, second))

	latest, err := store.Latest("m-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.PHome, latest.PHome)
	assert.Equal(t, engine.QualityEvent, latest.Quality)
	assert.Equal(t, 61, latest.Confidence)

	// Rows for other matches never leak in.
	other, err := store.Latest("m-2")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestListOrderAndLimit(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		row := engine.WinProbRow{PHome: float64(40 + i), PDraw: 30, PAway: float64(30 - i), Quality: engine.QualityBasic}
		require.NoError(t, store.Append("m-1", base.Add(time.Duration(i)*time.Minute), i*10, row))
	}

	entries, err := store.List("m-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, 40.0, entries[0].Row.PHome)
	assert.Equal(t, 43.0, entries[3].Row.PHome)
	assert.Equal(t, 0, entries[0].Minute)
	assert.Equal(t, base, entries[0].ComputedAt.UTC())

	limited, err := store.List("m-1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
