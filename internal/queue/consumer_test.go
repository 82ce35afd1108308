package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	invalidated []uint64
}

func (f *fakeCache) Get(context.Context, uint64, interface{}) (bool, error) { return false, nil }
func (f *fakeCache) Set(context.Context, uint64, interface{}) error         { return nil }
func (f *fakeCache) Invalidate(_ context.Context, eventID uint64) error {
	f.invalidated = append(f.invalidated, eventID)
	return nil
}

func TestHandleMessageInvalidatesDecodedEvent(t *testing.T) {
	cache := &fakeCache{}
	body := []byte(`{"event_id":12,"seat_ids":[1,2,3],"reason":"booked","changed_at":"2026-01-01T00:00:00Z"}`)

	err := handleMessage(context.Background(), body, cache)
	require.NoError(t, err)
	require.Equal(t, []uint64{12}, cache.invalidated)
}

func TestHandleMessageRejectsMalformedBody(t *testing.T) {
	cache := &fakeCache{}
	err := handleMessage(context.Background(), []byte("not json"), cache)
	require.Error(t, err)
	require.Empty(t, cache.invalidated)
}
