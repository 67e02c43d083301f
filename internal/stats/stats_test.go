package stats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		switch r.URL.Path {
		case "/api/v1/users/alice smith/stats":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"user_id":"u1","username":"alice smith","games_played":5,"wins":2,"losses":1,"draws":1,"abandoned_by_user":1,"updated_at":"2024-01-01T00:00:00"}`))
		case "/api/v1/users/ghost/stats":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"User 'ghost' not found."}`))
		case "/api/v1/users/broken/stats":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"Failed to retrieve or initialize user statistics."}`))
		case "/api/v1/users/teapot/stats":
			w.WriteHeader(http.StatusTeapot)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL + "/api/v1/")
	ctx := context.Background()

	s, err := c.Fetch(ctx, " alice smith ")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/users/alice%20smith/stats", gotPath)
	assert.Equal(t, Stats{Username: "alice smith", GamesPlayed: 5, Wins: 2, Losses: 1, Draws: 1, AbandonedByUser: 1}, s)

	s, err = c.Fetch(ctx, "ghost")
	require.NoError(t, err, "unknown users have zero stats")
	assert.Equal(t, Stats{Username: "ghost"}, s)

	_, err = c.Fetch(ctx, "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to retrieve or initialize user statistics.")

	_, err = c.Fetch(ctx, "teapot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP error 418")

	_, err = c.Fetch(ctx, "   ")
	assert.ErrorIs(t, err, ErrInvalidUsername)
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Fetch(context.Background(), "alice")
	require.Error(t, err)
}
