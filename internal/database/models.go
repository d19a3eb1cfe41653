package database

import (
	"encoding/json"
	"time"
)

// User represents a user in the system, created lazily from identity
// provider claims on first authenticated request.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AuthSubject string    `gorm:"uniqueIndex;not null" json:"-"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName string    `json:"display_name"`
	Username    string    `gorm:"uniqueIndex" json:"username"`
	Handle      string    `json:"handle"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Movie is a locally cached catalog record, keyed by the external catalog ID.
// Extended fields (director, cast, genres) stay empty until backfilled.
type Movie struct {
	ID          uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	PosterPath  string    `json:"poster_path"`
	ReleaseDate string    `json:"release_date"`
	Overview    string    `gorm:"type:text" json:"overview"`
	VoteAverage float64   `json:"vote_average"`
	Runtime     int       `json:"runtime"`
	Director    *string   `json:"director,omitempty"`
	CastList    string    `gorm:"type:text" json:"-"`
	GenreList   string    `gorm:"type:text" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasExtendedData reports whether the extended catalog fields were backfilled
func (m *Movie) HasExtendedData() bool {
	return m.Director != nil
}

// Cast returns the decoded cast names
func (m *Movie) Cast() []string {
	return decodeStringList(m.CastList)
}

// SetCast stores the cast names as JSON text
func (m *Movie) SetCast(names []string) {
	m.CastList = encodeStringList(names)
}

// Genres returns the decoded genre names
func (m *Movie) Genres() []string {
	return decodeStringList(m.GenreList)
}

// SetGenres stores the genre names as JSON text
func (m *Movie) SetGenres(names []string) {
	m.GenreList = encodeStringList(names)
}

// Favorite is a (user, movie) pair marking a favorited movie
type Favorite struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	UserID  uint      `gorm:"not null;uniqueIndex:idx_favorites_user_movie" json:"user_id"`
	MovieID uint      `gorm:"not null;uniqueIndex:idx_favorites_user_movie" json:"movie_id"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"added_at"`

	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	Movie Movie `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE;" json:"movie,omitempty"`
}

// WatchlistItem is a (user, movie) pair on the user's watchlist
type WatchlistItem struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	UserID  uint      `gorm:"not null;uniqueIndex:idx_watchlist_user_movie" json:"user_id"`
	MovieID uint      `gorm:"not null;uniqueIndex:idx_watchlist_user_movie" json:"movie_id"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"added_at"`

	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	Movie Movie `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE;" json:"movie,omitempty"`
}

// WatchedItem is a (user, movie) pair marking a watched movie
type WatchedItem struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	UserID  uint      `gorm:"not null;uniqueIndex:idx_watched_user_movie" json:"user_id"`
	MovieID uint      `gorm:"not null;uniqueIndex:idx_watched_user_movie" json:"movie_id"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"added_at"`

	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	Movie Movie `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE;" json:"movie,omitempty"`
}

// DiaryEntry is a dated viewing log. WatchedDate uses YYYY-MM-DD so the
// uniqueness triple is date-only and immune to timezone drift.
type DiaryEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_diary_user_movie_date" json:"user_id"`
	MovieID     uint      `gorm:"not null;uniqueIndex:idx_diary_user_movie_date" json:"movie_id"`
	WatchedDate string    `gorm:"not null;uniqueIndex:idx_diary_user_movie_date" json:"watched_date"`
	Rating      float64   `json:"rating"`
	Review      string    `gorm:"type:text" json:"review"`
	TagList     string    `gorm:"type:text" json:"-"`
	Rewatch     bool      `json:"rewatch"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	Movie Movie `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE;" json:"movie,omitempty"`
}

// Tags returns the decoded diary tags
func (d *DiaryEntry) Tags() []string {
	return decodeStringList(d.TagList)
}

// SetTags stores the diary tags as JSON text
func (d *DiaryEntry) SetTags(tags []string) {
	d.TagList = encodeStringList(tags)
}

// CustomList is a user-owned named collection of movies
type CustomList struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Name         string    `gorm:"not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	Public       bool      `json:"public"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
}

// CustomListMovie is the ordered list-to-movie join row. Positions are
// contiguous from 0 within a list after any reorder.
type CustomListMovie struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	ListID   string    `gorm:"not null;uniqueIndex:idx_list_movie" json:"list_id"`
	MovieID  uint      `gorm:"not null;uniqueIndex:idx_list_movie" json:"movie_id"`
	Position int       `gorm:"not null" json:"position"`
	AddedAt  time.Time `gorm:"autoCreateTime" json:"added_at"`

	List  CustomList `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE;" json:"-"`
	Movie Movie      `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE;" json:"movie,omitempty"`
}

// UserStats holds denormalized per-user counters, fully derived from the
// collection tables and recomputed after each mutating action.
type UserStats struct {
	UserID         uint      `gorm:"primaryKey" json:"user_id"`
	FavoriteCount  int       `json:"favorite_count"`
	WatchlistCount int       `json:"watchlist_count"`
	WatchedCount   int       `json:"watched_count"`
	DiaryCount     int       `json:"diary_count"`
	ListCount      int       `json:"list_count"`
	TotalRuntime   int       `json:"total_runtime"`
	AverageRating  float64   `json:"average_rating"`
	UpdatedAt      time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
}

func encodeStringList(values []string) string {
	if len(values) == 0 {
		return ""
	}
	data, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(data)
}

func decodeStringList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return []string{}
	}
	return values
}
