package builtin

import (
	"context"

	"github.com/dynamaic/assistant-core/pkg/container"
	"github.com/dynamaic/assistant-core/pkg/wire"
)

const localStorageDescription = "When the user asks for something relating to memory/persistent data, this function returns the entire " +
	"stored data in a key-value dictionary"

// LocalStorage dumps the container store for the model.
type LocalStorage struct {
	store *container.Store
}

// NewLocalStorage builds the fetch-local-storage tool.
func NewLocalStorage(store *container.Store) *LocalStorage {
	return &LocalStorage{store: store}
}

func (t *LocalStorage) Name() string { return "fetch-local-storage" }

func (t *LocalStorage) Description() string { return localStorageDescription }

func (t *LocalStorage) Schema() wire.Schema { return wire.Schema{} }

func (t *LocalStorage) Strict() bool { return false }

func (t *LocalStorage) Execute(ctx context.Context, args map[string]string) (string, error) {
	return t.store.Dump(ctx)
}
