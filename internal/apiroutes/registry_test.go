package apiroutes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndGet(t *testing.T) {
	ClearForTesting()
	defer ClearForTesting()

	Register("/api/movies/search", "GET", "Search for movies by title")
	Register("/api/diary", "POST", "Create a diary entry")

	routes := Get()
	require.Len(t, routes, 2)
	assert.Equal(t, "/api/diary", routes[0].Path)
	assert.Equal(t, "POST", routes[0].Method)
	assert.Equal(t, "Create a diary entry", routes[0].Description)
	assert.Equal(t, "/api/movies/search", routes[1].Path)
}

func TestGetSortsByPathThenMethod(t *testing.T) {
	ClearForTesting()
	defer ClearForTesting()

	Register("/api/lists/:id", "PATCH", "Update a list")
	Register("/api/lists", "GET", "List custom lists")
	Register("/api/lists/:id", "DELETE", "Delete a list")

	routes := Get()
	require.Len(t, routes, 3)
	assert.Equal(t, "/api/lists", routes[0].Path)
	assert.Equal(t, "DELETE", routes[1].Method)
	assert.Equal(t, "PATCH", routes[2].Method)
}

func TestGetReturnsCopy(t *testing.T) {
	ClearForTesting()
	defer ClearForTesting()

	Register("/api/health", "GET", "Health check")

	routes := Get()
	routes[0].Path = "/mutated"

	fresh := Get()
	require.Len(t, fresh, 1)
	assert.Equal(t, "/api/health", fresh[0].Path)
}

func TestClearForTesting(t *testing.T) {
	ClearForTesting()
	Register("/api/lists", "GET", "List custom lists")
	require.NotEmpty(t, Get())

	ClearForTesting()
	assert.Empty(t, Get())
}
