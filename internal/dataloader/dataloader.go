package dataloader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/UkralStul/feed-engine/internal/domain"
	"github.com/UkralStul/feed-engine/internal/storage"
	"github.com/graph-gophers/dataloader"
)

type contextKey string

const key = contextKey("dataloaders")

// Loaders содержит все дата-лоадеры запроса.
type Loaders struct {
	// PostByID догружает оригиналы обычных репостов, которых нет на странице ленты.
	PostByID *dataloader.Loader
}

// NewLoaders создает лоадеры поверх хранилища.
func NewLoaders(store storage.Storage) *Loaders {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := keys.Keys()

		// Вызываем метод хранилища, который делает ОДИН запрос к БД
		posts, err := store.GetPostsByIDs(ctx, ids)
		results := make([]*dataloader.Result, len(keys))
		if err != nil {
			// В случае ошибки, возвращаем ее для всех ключей
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Формируем результат в том же порядке, что и ключи
		for i, id := range ids {
			if p, ok := posts[id]; ok {
				results[i] = &dataloader.Result{Data: p}
			} else {
				results[i] = &dataloader.Result{Error: fmt.Errorf("post with id %s: %w", id, domain.ErrNotFound)}
			}
		}
		return results
	}

	return &Loaders{
		PostByID: dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(time.Millisecond*1)),
	}
}

// Middleware для внедрения лоадеров в контекст запроса.
func Middleware(store storage.Storage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(store))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, key, loaders)
}

// For извлекает лоадеры из контекста.
func For(ctx context.Context) (*Loaders, bool) {
	loaders, ok := ctx.Value(key).(*Loaders)
	return loaders, ok
}

// LoadPosts грузит посты по id через лоадер. Отсутствующие посты пропускаются.
func (l *Loaders) LoadPosts(ctx context.Context, ids []string) (map[string]domain.Post, error) {
	out := make(map[string]domain.Post, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	values, errs := l.PostByID.LoadMany(ctx, dataloader.NewKeysFromStrings(ids))()
	for i, v := range values {
		if i < len(errs) && errs[i] != nil {
			continue
		}
		if p, ok := v.(domain.Post); ok {
			out[p.Head().ID] = p
		}
	}
	for _, err := range errs {
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return out, nil
}
