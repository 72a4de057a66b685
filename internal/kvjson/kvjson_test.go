package kvjson

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/notesync/internal/testutil"
)

type item struct {
	ID   string `json:"id"`
	Rank int    `json:"rank"`
}

func TestLoadAbsentKeyIsEmpty(t *testing.T) {
	kv := testutil.NewMemKV()
	got, err := Load[item](context.Background(), kv, "missing")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLoadNullIsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewMemKV()
	require.NoError(t, kv.Set(ctx, "k", "null"))

	got, err := Load[item](ctx, kv, "k")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSaveThenLoad(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewMemKV()
	items := []item{{ID: "a", Rank: 1}, {ID: "b", Rank: 2}}

	require.NoError(t, Save(ctx, kv, "k", items))
	raw, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"a","rank":1},{"id":"b","rank":2}]`, raw)

	got, err := Load[item](ctx, kv, "k")
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestSaveNilWritesEmptyArray(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewMemKV()
	require.NoError(t, Save[item](ctx, kv, "k", nil))
	raw, _, _ := kv.Get(ctx, "k")
	assert.Equal(t, "[]", raw)
}

func TestLoadCorruptValue(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewMemKV()
	require.NoError(t, kv.Set(ctx, "k", "{not json"))
	_, err := Load[item](ctx, kv, "k")
	assert.Error(t, err)
}

func TestStorageFailuresPropagate(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewMemKV()
	boom := errors.New("disk gone")
	kv.FailGet(boom)
	kv.FailSet(boom)

	_, err := Load[item](ctx, kv, "k")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, Save(ctx, kv, "k", []item{{ID: "a"}}), boom)
}
