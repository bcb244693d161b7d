package services

import (
	"context"

	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/repository"
)

type AddressStore interface {
	TxRunner
	AddressReader
}

// Addresses is the user's address book. Saving an address flagged default
// leaves older defaults alone; MakeDefault is the only call that clears them.
type Addresses struct {
	store AddressStore
}

func NewAddresses(store AddressStore) *Addresses {
	return &Addresses{store: store}
}

func (a *Addresses) List(ctx context.Context, userID string) ([]models.Address, error) {
	return a.store.ListAddresses(ctx, userID)
}

func (a *Addresses) Create(ctx context.Context, userID string, in models.AddressInput) (models.Address, error) {
	addr, err := models.NewAddress(userID, in)
	if err != nil {
		return models.Address{}, err
	}
	err = a.store.InTx(ctx, func(tx repository.Tx) error {
		addr, err = tx.CreateAddress(ctx, addr)
		return err
	})
	return addr, err
}

func (a *Addresses) MakeDefault(ctx context.Context, userID string, addressID int64) (models.Address, error) {
	var addr models.Address
	err := a.store.InTx(ctx, func(tx repository.Tx) error {
		var err error
		addr, err = tx.SetDefaultAddress(ctx, userID, addressID)
		return err
	})
	return addr, err
}
