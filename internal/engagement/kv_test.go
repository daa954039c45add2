package engagement

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// exerciseKV runs the shared round-trip contract against a KV medium.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, KeyMessageCount)
	require.NoError(t, err)
	require.False(t, ok)

	store, err := NewKVStore(kv)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, State{MessageCount: 12, PaymentAcknowledged: true}))

	state, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, State{MessageCount: 12, PaymentAcknowledged: true}, state)

	_, ok, err = kv.Get(ctx, KeySurveyShown)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestFileKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile", "engagement.json")
	kv, err := NewFileKV(path)
	require.NoError(t, err)
	exerciseKV(t, kv)

	reopened, err := NewFileKV(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get(context.Background(), KeyMessageCount)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "12", v)
}

func TestFileKV_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engagement.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	kv, err := NewFileKV(path)
	require.NoError(t, err)

	_, _, err = kv.Get(context.Background(), KeyMessageCount)
	require.ErrorContains(t, err, "decode")
}

func TestNewFileKV_EmptyPath(t *testing.T) {
	_, err := NewFileKV(" ")
	require.Error(t, err)
}

func TestSQLiteKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engagement.db")
	kv, err := OpenSQLiteKV(path, "alice")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	exerciseKV(t, kv)

	other, err := NewSQLiteKV(kv.db, "bob")
	require.NoError(t, err)
	_, ok, err := other.Get(context.Background(), KeyMessageCount)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisKV(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	kv, err := NewRedisKV(client, "", "alice")
	require.NoError(t, err)
	exerciseKV(t, kv)

	v, err := mr.Get("engagement:alice:chatMessageCount")
	require.NoError(t, err)
	require.Equal(t, "12", v)
}

func TestRedisKV_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	kv, err := NewRedisKV(client, "app", "")
	require.NoError(t, err)
	mr.Close()

	_, _, err = kv.Get(context.Background(), KeyMessageCount)
	require.ErrorContains(t, err, "redis get")
}

func TestNewRedisKV_NilClient(t *testing.T) {
	_, err := NewRedisKV(nil, "", "")
	require.Error(t, err)
}
