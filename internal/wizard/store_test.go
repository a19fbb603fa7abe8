package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	d := newDraft()
	require.NoError(t, s.Save(ctx, d))

	got, err := s.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)

	got.Config.BasicInfo.ChainName = "changed"
	again, err := s.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Config.BasicInfo.ChainName, "stored copy is independent")

	require.NoError(t, s.Delete(ctx, d.ID))
	_, err = s.Get(ctx, d.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10 * time.Millisecond)

	d := newDraft()
	require.NoError(t, s.Save(ctx, d))
	time.Sleep(30 * time.Millisecond)

	_, err := s.Get(ctx, d.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
	assert.Zero(t, s.Sweep())
}
