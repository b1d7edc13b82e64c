package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/srujanab94/acp-commerce/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCheckout(id string) *domain.Checkout {
	now := time.Now()
	return &domain.Checkout{
		ID:     id,
		Status: domain.StatusPendingInfo,
		LineItems: []domain.LineItem{
			{ProductID: "prod_1", Name: "Widget", Quantity: 2,
				UnitPrice: domain.Money{Amount: 100, Currency: "usd"},
				Total:     domain.Money{Amount: 200, Currency: "usd"}},
		},
		Total:     domain.Money{Amount: 200, Currency: "usd"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, newTestCheckout("co_1")))

	got, err := s.Get(ctx, "co_1")
	require.NoError(t, err)
	assert.Equal(t, "co_1", got.ID)
	assert.Equal(t, domain.StatusPendingInfo, got.Status)
}

func TestMemoryStore_GetNotFound(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()

	_, err := s.Get(context.Background(), "co_missing")
	assert.ErrorIs(t, err, ErrCheckoutNotFound)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, newTestCheckout("co_1")))

	got, err := s.Get(ctx, "co_1")
	require.NoError(t, err)
	got.Status = domain.StatusCancelled
	got.LineItems[0].Quantity = 99

	again, err := s.Get(ctx, "co_1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingInfo, again.Status)
	assert.Equal(t, 2, again.LineItems[0].Quantity)
}

func TestMemoryStore_Update(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, newTestCheckout("co_1")))

	updated, err := s.Update(ctx, "co_1", func(c *domain.Checkout) error {
		c.Status = domain.StatusPendingPayment
		c.CustomerEmail = "buyer@example.com"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingPayment, updated.Status)

	got, err := s.Get(ctx, "co_1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingPayment, got.Status)
	assert.Equal(t, "buyer@example.com", got.CustomerEmail)
}

func TestMemoryStore_UpdateErrorLeavesStateUnchanged(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, newTestCheckout("co_1")))

	boom := errors.New("boom")
	_, err := s.Update(ctx, "co_1", func(c *domain.Checkout) error {
		c.Status = domain.StatusCancelled
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Get(ctx, "co_1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingInfo, got.Status)
}

func TestMemoryStore_UpdateNotFound(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()

	_, err := s.Update(context.Background(), "co_missing", func(c *domain.Checkout) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrCheckoutNotFound)
}

func TestMemoryStore_ExpireCheckouts(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	defer s.Close()
	ctx := context.Background()

	old := newTestCheckout("co_old")
	old.UpdatedAt = time.Now().Add(-2 * time.Minute)
	require.NoError(t, s.Put(ctx, old))
	require.NoError(t, s.Put(ctx, newTestCheckout("co_fresh")))

	s.expireCheckouts()

	_, err := s.Get(ctx, "co_old")
	assert.ErrorIs(t, err, ErrCheckoutNotFound)

	_, err = s.Get(ctx, "co_fresh")
	assert.NoError(t, err)
}

func TestMemoryStore_ConcurrentUpdates(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()
	ctx := context.Background()

	c := newTestCheckout("co_1")
	c.Total = domain.Money{Amount: 0, Currency: "usd"}
	require.NoError(t, s.Put(ctx, c))

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, "co_1", func(c *domain.Checkout) error {
				c.Total.Amount++
				return nil
			})
			if err != nil {
				panic(fmt.Sprintf("update failed: %v", err))
			}
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "co_1")
	require.NoError(t, err)
	assert.Equal(t, int64(workers), got.Total.Amount)
}
