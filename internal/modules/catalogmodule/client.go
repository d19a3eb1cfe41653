// Package catalogmodule wraps the external movie catalog (TMDB) and keeps a
// local metadata cache so other modules never call the catalog directly.
package catalogmodule

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const tmdbImageBase = "https://image.tmdb.org/t/p/w500"

// CatalogMovie contains the metadata fields returned by the catalog for a movie.
type CatalogMovie struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	Runtime     int     `json:"runtime"` // minutes, only on detail lookups
	Genres      []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// PosterURL returns the full URL for the movie poster at w500 size.
func (m *CatalogMovie) PosterURL() string {
	if m.PosterPath == "" {
		return ""
	}
	return tmdbImageBase + m.PosterPath
}

// GenreNames returns a slice of genre names.
func (m *CatalogMovie) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}

// CatalogCredits contains the credits fields the application uses: the
// director and the top-billed cast.
type CatalogCredits struct {
	Director string   `json:"director"`
	Cast     []string `json:"cast"`
}

// SearchPage is one page of search or discovery results.
type SearchPage struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Results      []CatalogMovie `json:"results"`
}

// Client is a minimal TMDB API client. Create with NewClient.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a catalog client with the given API key.
// Returns an error if the key is empty.
func NewClient(apiKey, baseURL string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("catalog: API key is not set")
	}
	if baseURL == "" {
		baseURL = "https://api.themoviedb.org/3"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// SearchMovies searches the catalog for movies by free-text query.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*SearchPage, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))

	var result SearchPage
	if err := c.get(ctx, "/search/movie?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DiscoverByGenres returns movies matching the given catalog genre IDs,
// sorted by popularity.
func (c *Client) DiscoverByGenres(ctx context.Context, genreIDs []int, page int) (*SearchPage, error) {
	ids := make([]string, 0, len(genreIDs))
	for _, id := range genreIDs {
		ids = append(ids, strconv.Itoa(id))
	}

	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("with_genres", strings.Join(ids, ","))
	q.Set("sort_by", "popularity.desc")
	q.Set("page", strconv.Itoa(page))

	var result SearchPage
	if err := c.get(ctx, "/discover/movie?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetMovieDetails fetches full movie details by catalog movie ID.
func (c *Client) GetMovieDetails(ctx context.Context, movieID uint) (*CatalogMovie, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)

	var movie CatalogMovie
	if err := c.get(ctx, fmt.Sprintf("/movie/%d?%s", movieID, q.Encode()), &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetMovieCredits fetches the director and top-billed cast for a movie.
func (c *Client) GetMovieCredits(ctx context.Context, movieID uint) (*CatalogCredits, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)

	var raw struct {
		Cast []struct {
			Name  string `json:"name"`
			Order int    `json:"order"`
		} `json:"cast"`
		Crew []struct {
			Name string `json:"name"`
			Job  string `json:"job"`
		} `json:"crew"`
	}
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/credits?%s", movieID, q.Encode()), &raw); err != nil {
		return nil, err
	}

	credits := &CatalogCredits{}
	for _, member := range raw.Crew {
		if member.Job == "Director" {
			credits.Director = member.Name
			break
		}
	}

	// Cast comes back billing-ordered; keep the top ten
	for i, member := range raw.Cast {
		if i >= 10 {
			break
		}
		credits.Cast = append(credits.Cast, member.Name)
	}

	return credits, nil
}

// get performs a GET request to the catalog API and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, dst interface{}) error {
	reqURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("catalog: invalid API key")
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("catalog: rate limited")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog: HTTP %d for %s", resp.StatusCode, strings.SplitN(path, "?", 2)[0])
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("catalog: decode response: %w", err)
	}
	return nil
}
