package entity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/askaway/backend/internal/core/domain"
	"github.com/askaway/backend/internal/core/ports"
)

const KindAccount = "account"

type accountRepository struct {
	store ports.Store
}

func NewAccountRepository(store ports.Store) ports.AccountRepository {
	return &accountRepository{store: store}
}

func (r *accountRepository) Save(ctx context.Context, account *domain.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to encode account: %w", err)
	}
	err = r.store.Put(ctx, &ports.Entity{
		Key:   account.Key(),
		Kind:  KindAccount,
		Group: account.Key(),
		Data:  data,
	})
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func (r *accountRepository) GetMulti(ctx context.Context, userIDs []string) ([]*domain.Account, error) {
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = domain.AccountKey(id)
	}

	ents, err := r.store.GetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	accounts := make([]*domain.Account, 0, len(ents))
	for _, ent := range ents {
		if ent == nil {
			continue
		}
		var account domain.Account
		if err := json.Unmarshal(ent.Data, &account); err != nil {
			return nil, fmt.Errorf("failed to decode account %s: %w", ent.Key, err)
		}
		accounts = append(accounts, &account)
	}
	return accounts, nil
}
