package catalogmodule

import (
	"sort"
)

// TMDB genre IDs
const (
	genreAction      = 28
	genreAdventure   = 12
	genreAnimation   = 16
	genreComedy      = 35
	genreCrime       = 80
	genreDocumentary = 99
	genreDrama       = 18
	genreFamily      = 10751
	genreFantasy     = 14
	genreHistory     = 36
	genreHorror      = 27
	genreMusic       = 10402
	genreMystery     = 9648
	genreRomance     = 10749
	genreSciFi       = 878
	genreThriller    = 53
	genreWar         = 10752
)

// moodGenres maps a browsing mood to the catalog genres used for discovery.
var moodGenres = map[string][]int{
	"cozy":          {genreComedy, genreFamily},
	"heartwarming":  {genreDrama, genreRomance},
	"thrilling":     {genreThriller, genreCrime},
	"adventurous":   {genreAdventure, genreAction},
	"scary":         {genreHorror},
	"mind-bending":  {genreSciFi, genreMystery},
	"whimsical":     {genreAnimation, genreFantasy},
	"romantic":      {genreRomance},
	"funny":         {genreComedy},
	"epic":          {genreWar, genreHistory},
	"thoughtful":    {genreDrama, genreDocumentary},
	"nostalgic":     {genreFamily, genreMusic},
}

// GenresForMood returns the catalog genre IDs for a mood, or false if the
// mood is unknown.
func GenresForMood(mood string) ([]int, bool) {
	genres, ok := moodGenres[mood]
	return genres, ok
}

// KnownMoods returns the supported moods in sorted order.
func KnownMoods() []string {
	moods := make([]string, 0, len(moodGenres))
	for mood := range moodGenres {
		moods = append(moods, mood)
	}
	sort.Strings(moods)
	return moods
}
