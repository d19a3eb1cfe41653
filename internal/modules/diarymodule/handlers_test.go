package diarymodule

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/modules/authmodule"
	"github.com/shaflix/shaflix/internal/modules/catalogmodule"
)

const testSecret = "diary-test-secret"

func setupDiaryTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&database.User{},
		&database.Movie{},
		&database.Favorite{},
		&database.WatchlistItem{},
		&database.WatchedItem{},
		&database.DiaryEntry{},
		&database.CustomList{},
		&database.UserStats{},
	))
	database.SetDB(db)

	verifier, err := authmodule.NewVerifier(testSecret)
	require.NoError(t, err)
	authmodule.SetVerifier(verifier)
	t.Cleanup(func() { authmodule.SetVerifier(nil) })

	m := &Module{db: db, cache: catalogmodule.NewMovieCache(db, nil, 1)}
	r := gin.New()
	m.RegisterRoutes(r)
	return db, r
}

func diaryToken(t *testing.T) string {
	t.Helper()
	claims := authmodule.Claims{
		Email: "logger@example.com",
		Name:  "Logger",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "auth0|diary",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doDiaryRequest(r *gin.Engine, token, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	return w
}

const createInceptionEntry = `{
	"movie": {"id": 27205, "title": "Inception", "runtime": 148},
	"watched_date": "2024-01-01",
	"rating": 4.5,
	"review": "dense but rewatchable",
	"tags": ["heist", "dreams"]
}`

func TestCreateAndListEntry(t *testing.T) {
	db, r := setupDiaryTest(t)
	token := diaryToken(t)

	w := doDiaryRequest(r, token, http.MethodPost, "/api/diary", createInceptionEntry)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doDiaryRequest(r, token, http.MethodGet, "/api/diary", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Entries []struct {
			ID      uint     `json:"id"`
			MovieID uint     `json:"movie_id"`
			Rating  float64  `json:"rating"`
			Tags    []string `json:"tags"`
		} `json:"entries"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, uint(27205), resp.Entries[0].MovieID)
	assert.Equal(t, 4.5, resp.Entries[0].Rating)
	assert.Equal(t, []string{"heist", "dreams"}, resp.Entries[0].Tags)

	// The movie must be cached by the create
	var movie database.Movie
	assert.NoError(t, db.First(&movie, 27205).Error)
}

func TestCreateDuplicateEntryConflicts(t *testing.T) {
	_, r := setupDiaryTest(t)
	token := diaryToken(t)

	w := doDiaryRequest(r, token, http.MethodPost, "/api/diary", createInceptionEntry)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doDiaryRequest(r, token, http.MethodPost, "/api/diary", createInceptionEntry)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateSameMovieDifferentDate(t *testing.T) {
	_, r := setupDiaryTest(t)
	token := diaryToken(t)

	w := doDiaryRequest(r, token, http.MethodPost, "/api/diary", createInceptionEntry)
	require.Equal(t, http.StatusCreated, w.Code)

	rewatch := strings.Replace(createInceptionEntry, "2024-01-01", "2024-02-10", 1)
	w = doDiaryRequest(r, token, http.MethodPost, "/api/diary", rewatch)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateRejectsBadDate(t *testing.T) {
	_, r := setupDiaryTest(t)
	token := diaryToken(t)

	body := strings.Replace(createInceptionEntry, "2024-01-01", "Jan 1 2024", 1)
	w := doDiaryRequest(r, token, http.MethodPost, "/api/diary", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRejectsOutOfRangeRating(t *testing.T) {
	_, r := setupDiaryTest(t)
	token := diaryToken(t)

	body := strings.Replace(createInceptionEntry, "4.5", "7.5", 1)
	w := doDiaryRequest(r, token, http.MethodPost, "/api/diary", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatchRating(t *testing.T) {
	db, r := setupDiaryTest(t)
	token := diaryToken(t)

	w := doDiaryRequest(r, token, http.MethodPost, "/api/diary", createInceptionEntry)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Entry struct {
			ID uint `json:"id"`
		} `json:"entry"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doDiaryRequest(r, token, http.MethodPatch,
		fmt.Sprintf("/api/diary/%d", created.Entry.ID), `{"rating": 5.0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var entry database.DiaryEntry
	require.NoError(t, db.First(&entry, created.Entry.ID).Error)
	assert.Equal(t, 5.0, entry.Rating)
	// Untouched fields survive the patch
	assert.Equal(t, "dense but rewatchable", entry.Review)
	assert.Equal(t, []string{"heist", "dreams"}, entry.Tags())
}

func TestPatchUnknownEntry(t *testing.T) {
	_, r := setupDiaryTest(t)
	token := diaryToken(t)

	w := doDiaryRequest(r, token, http.MethodPatch, "/api/diary/9999", `{"rating": 3}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatchOtherUsersEntry(t *testing.T) {
	db, r := setupDiaryTest(t)
	token := diaryToken(t)

	other := database.User{AuthSubject: "auth0|other", Email: "o@example.com", Username: "o"}
	require.NoError(t, db.Create(&other).Error)
	entry := database.DiaryEntry{UserID: other.ID, MovieID: 1, WatchedDate: "2024-03-03"}
	require.NoError(t, db.Create(&database.Movie{ID: 1, Title: "x"}).Error)
	require.NoError(t, db.Create(&entry).Error)

	w := doDiaryRequest(r, token, http.MethodPatch,
		fmt.Sprintf("/api/diary/%d", entry.ID), `{"rating": 1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteEntry(t *testing.T) {
	db, r := setupDiaryTest(t)
	token := diaryToken(t)

	w := doDiaryRequest(r, token, http.MethodPost, "/api/diary", createInceptionEntry)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Entry struct {
			ID uint `json:"id"`
		} `json:"entry"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doDiaryRequest(r, token, http.MethodDelete, fmt.Sprintf("/api/diary/%d", created.Entry.ID), "")
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&database.DiaryEntry{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	w = doDiaryRequest(r, token, http.MethodDelete, fmt.Sprintf("/api/diary/%d", created.Entry.ID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDiaryMutationsUpdateStats(t *testing.T) {
	db, r := setupDiaryTest(t)
	token := diaryToken(t)

	w := doDiaryRequest(r, token, http.MethodPost, "/api/diary", createInceptionEntry)
	require.Equal(t, http.StatusCreated, w.Code)

	var user database.User
	require.NoError(t, db.Where("auth_subject = ?", "auth0|diary").First(&user).Error)

	var stats database.UserStats
	require.NoError(t, db.First(&stats, "user_id = ?", user.ID).Error)
	assert.Equal(t, 1, stats.DiaryCount)
	assert.InDelta(t, 4.5, stats.AverageRating, 0.0001)
}
