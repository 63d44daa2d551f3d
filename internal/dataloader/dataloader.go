package dataloader

import (
	"context"
	"net/http"
	"time"

	"github.com/UkralStul/socialgraph/internal/domain"
	"github.com/UkralStul/socialgraph/internal/storage"
	"github.com/graph-gophers/dataloader"
)

type contextKey string

const key = contextKey("dataloaders")

// Loaders содержит все дата-лоадеры приложения.
type Loaders struct {
	AccountByID *dataloader.Loader
}

// NewLoaders создает лоадеры на один запрос: кэш не переживает запрос.
func NewLoaders(store storage.IdentityStore) *Loaders {
	// Создаем батч-функцию для лоадера
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := keys.Keys()

		// Вызываем метод хранилища, который делает ОДИН запрос к БД
		accounts, err := store.GetAccountsByIDs(ctx, ids)
		if err != nil {
			// В случае ошибки, возвращаем ее для всех ключей
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Формируем результат в том же порядке, что и ключи
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if acc, ok := accounts[id]; ok {
				results[i] = &dataloader.Result{Data: acc}
				continue
			}
			results[i] = &dataloader.Result{Error: domain.NotFound("account with id %s not found", id)}
		}
		return results
	}

	return &Loaders{
		AccountByID: dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(time.Millisecond*1)),
	}
}

// Middleware для внедрения лоадеров в контекст запроса.
func Middleware(store storage.IdentityStore, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), key, NewLoaders(store))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// For извлекает лоадеры из контекста. Возвращает nil, если Middleware не подключен.
func For(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(key).(*Loaders)
	return loaders
}

// Accounts загружает аккаунты пачкой. Отсутствующие аккаунты пропускаются.
func (l *Loaders) Accounts(ctx context.Context, ids []string) (map[string]*domain.Account, error) {
	keys := dataloader.NewKeysFromStrings(ids)
	values, errs := l.AccountByID.LoadMany(ctx, keys)()

	result := make(map[string]*domain.Account, len(ids))
	for i, v := range values {
		if i < len(errs) && errs[i] != nil {
			if domain.IsNotFound(errs[i]) {
				continue
			}
			return nil, errs[i]
		}
		if acc, ok := v.(*domain.Account); ok && acc != nil {
			result[acc.ID] = acc
		}
	}
	return result, nil
}
