package profiles

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CompareAndSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id := uuid.New()

	p := &SkillProfile{UserID: id, UserEmail: "a@example.com", Skills: []string{"go"}, BestScore: 10}
	require.NoError(t, store.PutAtomic(ctx, p))
	assert.Equal(t, int64(1), p.Version)

	// create again must conflict
	dup := &SkillProfile{UserID: id, UserEmail: "a@example.com"}
	assert.ErrorIs(t, store.PutAtomic(ctx, dup), ErrConflict)

	// stale version must conflict
	stale := p.Clone()
	stale.Version = 7
	assert.ErrorIs(t, store.PutAtomic(ctx, stale), ErrConflict)

	// update of unknown profile must conflict
	ghost := &SkillProfile{UserID: uuid.New(), Version: 1}
	assert.ErrorIs(t, store.PutAtomic(ctx, ghost), ErrConflict)

	next := p.Clone()
	next.Skills = []string{"go", "sql"}
	require.NoError(t, store.PutAtomic(ctx, next))
	assert.Equal(t, int64(2), next.Version)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id := uuid.New()
	require.NoError(t, store.PutAtomic(ctx, &SkillProfile{UserID: id, Skills: []string{"go"}}))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	got.Skills[0] = "mutated"

	again, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, again.Skills)

	missing, err := store.Get(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStore_ListAllOrderAndStop(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.PutAtomic(ctx, &SkillProfile{UserID: uuid.New()}))
	}

	var ids []string
	require.NoError(t, store.ListAll(ctx, func(p SkillProfile) error {
		ids = append(ids, p.UserID.String())
		return nil
	}))
	require.Len(t, ids, 5)
	assert.IsIncreasing(t, ids)

	stop := errors.New("stop")
	calls := 0
	err := store.ListAll(ctx, func(SkillProfile) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}
