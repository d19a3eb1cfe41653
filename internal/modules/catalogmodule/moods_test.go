package catalogmodule

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenresForMood(t *testing.T) {
	genres, ok := GenresForMood("cozy")
	require.True(t, ok)
	assert.NotEmpty(t, genres)

	_, ok = GenresForMood("melancholy-but-fast")
	assert.False(t, ok)
}

func TestMoodTableIsWellFormed(t *testing.T) {
	for mood, genres := range moodGenres {
		assert.NotEmpty(t, genres, "mood %q maps to no genres", mood)
		seen := map[int]bool{}
		for _, id := range genres {
			assert.Greater(t, id, 0, "mood %q has a non-positive genre ID", mood)
			assert.False(t, seen[id], "mood %q lists genre %d twice", mood, id)
			seen[id] = true
		}
	}
}

func TestKnownMoodsSortedAndComplete(t *testing.T) {
	moods := KnownMoods()
	require.Len(t, moods, len(moodGenres))
	assert.True(t, sort.StringsAreSorted(moods))

	for _, mood := range moods {
		_, ok := GenresForMood(mood)
		assert.True(t, ok, "mood %q listed but not resolvable", mood)
	}
}
