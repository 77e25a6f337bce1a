package usecase

import (
	"context"
	"fmt"

	"github.com/loopgate/loopgate/internal/domain"
)

// InitStore is the use case for initializing the data store.
type InitStore struct {
	store domain.StoreInitializer
}

// NewInitStore creates a new InitStore use case.
func NewInitStore(store domain.StoreInitializer) *InitStore {
	return &InitStore{store: store}
}

// Execute initializes the store. Idempotent.
func (uc *InitStore) Execute(_ context.Context) error {
	if err := uc.store.Initialize(); err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	return nil
}
