package dataloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UkralStul/feed-engine/internal/domain"
	"github.com/UkralStul/feed-engine/internal/storage/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPosts(t *testing.T) {
	store := inmemory.New()
	ctx := context.Background()
	p1 := domain.Original{Header: domain.Header{ID: "p1", Author: domain.Author{Handle: "alice"}}, Body: domain.Body{Content: "hi"}}
	require.NoError(t, store.SavePosts(ctx, []domain.Post{p1}, nil))

	loaders := NewLoaders(store)
	posts, err := loaders.LoadPosts(ctx, []string{"p1", "missing"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "hi", posts["p1"].(domain.Original).Content)

	empty, err := loaders.LoadPosts(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMiddleware(t *testing.T) {
	var found bool
	handler := Middleware(inmemory.New())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = For(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, found)

	_, ok := For(context.Background())
	assert.False(t, ok)
}
