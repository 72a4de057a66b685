package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/notesync/internal/remote"
	"github.com/mesh-intelligence/notesync/internal/remoteserver"
	"github.com/mesh-intelligence/notesync/internal/testutil"
	"github.com/mesh-intelligence/notesync/pkg/types"
)

type harness struct {
	o      *Orchestrator
	kv     *testutil.MemKV
	remote *testutil.FakeRemote
	conn   *testutil.FakeConnectivity
}

func setup(t *testing.T, initial types.NetState, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		kv:     testutil.NewMemKV(),
		remote: testutil.NewFakeRemote(),
		conn:   testutil.NewFakeConnectivity(initial),
	}

	var mu sync.Mutex
	seq := 0
	tick := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	base := []Option{
		WithIDGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("n-%d", seq)
		}),
		WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			tick = tick.Add(time.Second)
			return tick
		}),
	}
	h.o = New(h.kv, h.remote, h.conn, append(base, opts...)...)
	t.Cleanup(func() {
		h.remote.Unblock()
		_ = h.o.Close()
	})
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	require.NoError(t, h.o.Start(context.Background()))
	h.o.Wait()
}

func (h *harness) pending(t *testing.T) []types.QueueEntry {
	t.Helper()
	entries, err := h.o.Pending(context.Background())
	require.NoError(t, err)
	return entries
}

func groceries() types.NoteInput {
	return types.NoteInput{Title: "Groceries", Description: "milk, eggs"}
}

func TestGroceriesCreatedOfflineSyncsWhenOnline(t *testing.T) {
	h := setup(t, testutil.Offline)
	h.start(t)
	ctx := context.Background()

	note, err := h.o.CreateNote(ctx, groceries())
	require.NoError(t, err)
	assert.Equal(t, "n-1", note.LocalID)
	assert.Empty(t, note.RemoteID)
	assert.False(t, note.IsSync)

	visible := h.o.Notes()
	require.Len(t, visible, 1)
	assert.Equal(t, "Groceries", visible[0].Title)
	assert.False(t, visible[0].IsSync)

	queued := h.pending(t)
	require.Len(t, queued, 1)
	assert.Equal(t, types.OpCreate, queued[0].Operation)
	assert.Empty(t, h.remote.Calls())

	h.conn.Set(testutil.Online)
	h.o.Wait()

	assert.Empty(t, h.pending(t))
	visible = h.o.Notes()
	require.Len(t, visible, 1)
	assert.Equal(t, "r-1", visible[0].RemoteID)
	assert.Equal(t, "n-1", visible[0].LocalID)
	assert.True(t, visible[0].IsSync)
	assert.NoError(t, h.o.LastError())
	assert.Len(t, h.remote.CallsFor(testutil.MethodCreate), 1)
}

func TestDeleteOnlineCallsRemoteAndTombstones(t *testing.T) {
	h := setup(t, testutil.Online)
	h.remote.Seed(
		types.RemoteNote{ID: "r-1", Title: "keep", Description: "d"},
		types.RemoteNote{ID: "r-2", Title: "drop", Description: "d"},
	)
	h.start(t)
	ctx := context.Background()

	visible := h.o.Notes()
	require.Len(t, visible, 2)
	target := visible[1]
	require.Equal(t, "r-2", target.RemoteID)

	require.NoError(t, h.o.DeleteNote(ctx, target.LocalID))

	deletes := h.remote.CallsFor(testutil.MethodDelete)
	require.Len(t, deletes, 1)
	assert.Equal(t, "r-2", deletes[0].ID)

	for _, n := range h.o.Notes() {
		assert.NotEqual(t, target.LocalID, n.LocalID)
	}
	all, err := h.o.AllNotes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[1].IsDeleted)
	assert.Empty(t, h.pending(t))
}

func TestCycleCreateFailureKeepsQueue(t *testing.T) {
	h := setup(t, testutil.Offline)
	h.start(t)
	ctx := context.Background()

	_, err := h.o.CreateNote(ctx, groceries())
	require.NoError(t, err)
	before := h.o.Notes()

	h.remote.FailNext(testutil.MethodCreate, errors.New("503 service unavailable"))
	h.conn.Set(testutil.Online)
	h.o.Wait()

	assert.ErrorIs(t, h.o.LastError(), types.ErrRemote)
	assert.Equal(t, before, h.o.Notes())
	queued := h.pending(t)
	require.NotEmpty(t, queued)
	assert.Equal(t, types.OpCreate, queued[0].Operation)
	assert.Empty(t, h.remote.CallsFor(testutil.MethodList), "merge must not run after a replay failure")

	require.NoError(t, h.o.Sync(ctx))
	assert.Empty(t, h.pending(t))
	assert.NoError(t, h.o.LastError())
	assert.Len(t, h.remote.Notes(), 1, "re-queued create must not be submitted twice")
}

func TestSyncOffline(t *testing.T) {
	h := setup(t, testutil.Offline)
	h.start(t)

	err := h.o.Sync(context.Background())
	assert.ErrorIs(t, err, types.ErrOffline)
	assert.ErrorIs(t, h.o.LastError(), types.ErrOffline)
	assert.Empty(t, h.remote.Calls())

	h.o.ClearError()
	assert.NoError(t, h.o.LastError())
}

func TestNotFound(t *testing.T) {
	h := setup(t, testutil.Offline)
	h.start(t)
	ctx := context.Background()

	title := "x"
	_, err := h.o.UpdateNote(ctx, "missing", types.NotePatch{Title: &title})
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, h.o.DeleteNote(ctx, "missing"), types.ErrNotFound)

	note, err := h.o.CreateNote(ctx, groceries())
	require.NoError(t, err)
	require.NoError(t, h.o.DeleteNote(ctx, note.LocalID))

	_, err = h.o.UpdateNote(ctx, note.LocalID, types.NotePatch{Title: &title})
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, h.o.DeleteNote(ctx, note.LocalID), types.ErrNotFound)
}

func TestOfflineCreateThenUpdateReplaysAgainstNewID(t *testing.T) {
	h := setup(t, testutil.Offline)
	h.start(t)
	ctx := context.Background()

	note, err := h.o.CreateNote(ctx, groceries())
	require.NoError(t, err)
	title := "Groceries for Sunday"
	updated, err := h.o.UpdateNote(ctx, note.LocalID, types.NotePatch{Title: &title})
	require.NoError(t, err)
	assert.False(t, updated.IsSync)
	assert.False(t, updated.UpdatedAt.Before(note.UpdatedAt))
	require.Len(t, h.pending(t), 2)

	h.conn.Set(testutil.Online)
	h.o.Wait()
	require.NoError(t, h.o.LastError())

	updates := h.remote.CallsFor(testutil.MethodUpdate)
	require.Len(t, updates, 1)
	assert.Equal(t, "r-1", updates[0].ID)
	assert.Equal(t, title, updates[0].Payload.Title)

	visible := h.o.Notes()
	require.Len(t, visible, 1)
	assert.Equal(t, "r-1", visible[0].RemoteID)
	assert.Equal(t, title, visible[0].Title)
	assert.True(t, visible[0].IsSync)
}

func TestOfflineCreateThenDeleteNeverReachesRemote(t *testing.T) {
	h := setup(t, testutil.Offline)
	h.start(t)
	ctx := context.Background()

	note, err := h.o.CreateNote(ctx, groceries())
	require.NoError(t, err)
	require.NoError(t, h.o.DeleteNote(ctx, note.LocalID))
	assert.Empty(t, h.o.Notes())

	h.conn.Set(testutil.Online)
	h.o.Wait()
	require.NoError(t, h.o.LastError())

	assert.Empty(t, h.remote.CallsFor(testutil.MethodCreate))
	assert.Empty(t, h.remote.CallsFor(testutil.MethodDelete))
	assert.Empty(t, h.o.Notes())
	all, err := h.o.AllNotes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsDeleted)
}

func TestDirectCreateFailureFallsBackToQueue(t *testing.T) {
	h := setup(t, testutil.Online)
	h.start(t)
	ctx := context.Background()

	h.remote.FailNext(testutil.MethodCreate, errors.New("connection reset"))
	note, err := h.o.CreateNote(ctx, groceries())
	assert.ErrorIs(t, err, types.ErrRemote)
	assert.Equal(t, "n-1", note.LocalID)
	assert.ErrorIs(t, h.o.LastError(), types.ErrRemote)

	require.Len(t, h.o.Notes(), 1)
	queued := h.pending(t)
	require.Len(t, queued, 1)
	assert.Equal(t, types.OpCreate, queued[0].Operation)
}

func TestDirectCreateOnline(t *testing.T) {
	h := setup(t, testutil.Online)
	h.start(t)

	note, err := h.o.CreateNote(context.Background(), groceries())
	require.NoError(t, err)
	assert.Equal(t, "r-1", note.RemoteID)
	assert.True(t, note.IsSync)
	assert.Empty(t, h.pending(t))
}

func TestDirectUpdateOnline(t *testing.T) {
	h := setup(t, testutil.Online)
	h.remote.Seed(types.RemoteNote{ID: "r-5", Title: "plan", Description: "d"})
	h.start(t)
	ctx := context.Background()

	local := h.o.Notes()[0]
	desc := "revised"
	note, err := h.o.UpdateNote(ctx, local.LocalID, types.NotePatch{Description: &desc})
	require.NoError(t, err)
	assert.True(t, note.IsSync)
	assert.Equal(t, "plan", note.Title)
	assert.Equal(t, "revised", h.remote.Notes()[0].Description)
	assert.Empty(t, h.pending(t))
}

func TestRemoteTimeout(t *testing.T) {
	h := setup(t, testutil.Online, WithRemoteTimeout(20*time.Millisecond))
	h.start(t)

	h.remote.Block(testutil.MethodCreate)
	_, err := h.o.CreateNote(context.Background(), groceries())
	assert.ErrorIs(t, err, types.ErrRemote)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, h.pending(t), 1)
}

func TestConcurrentTriggersCoalesce(t *testing.T) {
	h := setup(t, testutil.Online)
	h.remote.Block(testutil.MethodList)
	require.NoError(t, h.o.Start(context.Background()))

	require.Eventually(t, func() bool {
		return len(h.remote.CallsFor(testutil.MethodList)) == 1
	}, time.Second, 5*time.Millisecond)
	assert.True(t, h.o.IsLoading())

	require.NoError(t, h.o.Sync(context.Background()))

	h.remote.Unblock()
	h.o.Wait()
	assert.Len(t, h.remote.CallsFor(testutil.MethodList), 1)
	assert.False(t, h.o.IsLoading())
}

func TestOnlineToOfflineDoesNothing(t *testing.T) {
	h := setup(t, testutil.Online)
	h.start(t)
	calls := len(h.remote.Calls())

	h.conn.Set(testutil.Offline)
	h.o.Wait()
	assert.Len(t, h.remote.Calls(), calls)
	assert.False(t, h.o.IsOnline())

	h.conn.Set(testutil.Online)
	h.o.Wait()
	assert.Len(t, h.remote.CallsFor(testutil.MethodList), 2)
}

func TestConnectedButUnreachableIsOffline(t *testing.T) {
	h := setup(t, types.NetState{Connected: true, Kind: "wifi"})
	h.start(t)
	assert.False(t, h.o.IsOnline())
	assert.Empty(t, h.remote.Calls())
}

func TestRefreshNetState(t *testing.T) {
	h := setup(t, testutil.Offline)
	h.start(t)

	h.conn.SetSilently(testutil.Online)
	assert.False(t, h.o.IsOnline())

	state, err := h.o.RefreshNetState(context.Background())
	require.NoError(t, err)
	assert.True(t, state.Online())
	h.o.Wait()
	assert.True(t, h.o.IsOnline())
	assert.Len(t, h.remote.CallsFor(testutil.MethodList), 1)

	h.conn.FailCurrent(errors.New("no observer"))
	_, err = h.o.RefreshNetState(context.Background())
	assert.Error(t, err)
	assert.True(t, h.o.IsOnline())
}

func TestStartWithUnreadableNetworkAssumesOffline(t *testing.T) {
	h := setup(t, testutil.Online)
	h.conn.FailCurrent(errors.New("permission denied"))
	h.start(t)
	assert.False(t, h.o.IsOnline())
	assert.Empty(t, h.remote.Calls())
}

func TestCloseUnsubscribes(t *testing.T) {
	h := setup(t, testutil.Offline)
	h.start(t)
	assert.Equal(t, 1, h.conn.Handlers())

	require.NoError(t, h.o.Close())
	assert.Equal(t, 0, h.conn.Handlers())
	require.NoError(t, h.o.Close())
}

func TestPersistenceFailureSurfaces(t *testing.T) {
	h := setup(t, testutil.Offline)
	h.start(t)

	h.kv.FailSet(errors.New("disk full"))
	_, err := h.o.CreateNote(context.Background(), groceries())
	assert.ErrorIs(t, err, types.ErrPersistence)
	assert.ErrorIs(t, h.o.LastError(), types.ErrPersistence)
	assert.Empty(t, h.o.Notes())
}

func TestListFailureLeavesVisibleStateUnchanged(t *testing.T) {
	h := setup(t, testutil.Online)
	h.start(t)
	ctx := context.Background()

	_, err := h.o.CreateNote(ctx, groceries())
	require.NoError(t, err)
	before := h.o.Notes()

	h.remote.Seed(types.RemoteNote{ID: "r-9", Title: "elsewhere", Description: "d"})
	h.remote.FailNext(testutil.MethodList, errors.New("timeout"))
	err = h.o.Sync(ctx)
	assert.ErrorIs(t, err, types.ErrRemote)
	assert.Equal(t, before, h.o.Notes())
}

func TestStatus(t *testing.T) {
	h := setup(t, testutil.Offline)
	h.start(t)
	ctx := context.Background()

	a, err := h.o.CreateNote(ctx, groceries())
	require.NoError(t, err)
	_, err = h.o.CreateNote(ctx, types.NoteInput{Title: "Call mom", Description: "sunday"})
	require.NoError(t, err)
	require.NoError(t, h.o.DeleteNote(ctx, a.LocalID))
	_ = h.o.Sync(ctx)

	st, err := h.o.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, Status{
		Net:       testutil.Offline,
		Active:    1,
		Total:     2,
		Unsynced:  1,
		Pending:   3,
		LastError: types.ErrOffline.Error(),
	}, st)
}

func TestImportCollapsesDuplicates(t *testing.T) {
	h := setup(t, testutil.Offline)
	h.start(t)
	ctx := context.Background()

	require.NoError(t, h.o.Import(ctx, []types.Note{
		{LocalID: "a", Title: "first"},
		{LocalID: "b", Title: "other"},
		{LocalID: "a", Title: "second"},
	}))
	visible := h.o.Notes()
	require.Len(t, visible, 2)
	assert.Equal(t, "second", visible[0].Title)
	assert.Equal(t, "other", visible[1].Title)
}

// seededID stays clear of the "r-N" ids the fake remote assigns.
const seededID = "r-seed"

// onlineWithRemoteNote starts online with one remote note and returns its
// local copy.
func onlineWithRemoteNote(t *testing.T, opts ...Option) (*harness, types.Note) {
	t.Helper()
	h := setup(t, testutil.Online, opts...)
	h.remote.Seed(types.RemoteNote{ID: seededID, Title: "plan", Description: "d"})
	h.start(t)
	visible := h.o.Notes()
	require.Len(t, visible, 1)
	require.Equal(t, seededID, visible[0].RemoteID)
	return h, visible[0]
}

func TestQueuedDeleteOfNoteGoneRemotelyIsDropped(t *testing.T) {
	h, note := onlineWithRemoteNote(t)
	ctx := context.Background()

	h.conn.Set(testutil.Offline)
	require.NoError(t, h.o.DeleteNote(ctx, note.LocalID))
	require.Len(t, h.pending(t), 1)
	h.remote.Remove(seededID)

	h.conn.Set(testutil.Online)
	h.o.Wait()
	require.NoError(t, h.o.LastError())
	assert.Empty(t, h.pending(t))

	require.NoError(t, h.o.Sync(ctx))
	require.NoError(t, h.o.Sync(ctx))
	assert.Empty(t, h.pending(t))
	assert.Len(t, h.remote.CallsFor(testutil.MethodDelete), 1)
	assert.Empty(t, h.o.Notes())
}

func TestQueuedUpdateOfNoteGoneRemotelyIsDropped(t *testing.T) {
	h, note := onlineWithRemoteNote(t)
	ctx := context.Background()

	h.conn.Set(testutil.Offline)
	title := "plan b"
	_, err := h.o.UpdateNote(ctx, note.LocalID, types.NotePatch{Title: &title})
	require.NoError(t, err)
	h.remote.Remove(seededID)

	h.conn.Set(testutil.Online)
	h.o.Wait()
	require.NoError(t, h.o.LastError())
	assert.Empty(t, h.pending(t))

	visible := h.o.Notes()
	require.Len(t, visible, 1)
	assert.Equal(t, title, visible[0].Title)
	assert.False(t, visible[0].IsSync)
}

func TestQueuedDeleteAgainstReferenceServer(t *testing.T) {
	srv := httptest.NewServer(remoteserver.New(testutil.NewMemKV()).Handler())
	t.Cleanup(srv.Close)
	client, err := remote.New(srv.URL + remoteserver.DefaultPrefix)
	require.NoError(t, err)

	conn := testutil.NewFakeConnectivity(testutil.Online)
	o := New(testutil.NewMemKV(), client, conn)
	t.Cleanup(func() { _ = o.Close() })
	ctx := context.Background()
	require.NoError(t, o.Start(ctx))
	o.Wait()

	note, err := o.CreateNote(ctx, groceries())
	require.NoError(t, err)
	require.NotEmpty(t, note.RemoteID)

	conn.Set(testutil.Offline)
	require.NoError(t, o.DeleteNote(ctx, note.LocalID))
	require.NoError(t, client.Delete(ctx, note.RemoteID))

	conn.Set(testutil.Online)
	o.Wait()
	require.NoError(t, o.LastError())
	for range 3 {
		require.NoError(t, o.Sync(ctx))
	}
	pending, err := o.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDirectDeleteOfNoteGoneRemotelySucceeds(t *testing.T) {
	h, note := onlineWithRemoteNote(t)
	ctx := context.Background()
	h.remote.Remove(seededID)

	require.NoError(t, h.o.DeleteNote(ctx, note.LocalID))
	assert.NoError(t, h.o.LastError())
	assert.Empty(t, h.pending(t))
	assert.Empty(t, h.o.Notes())
}

func TestDirectUpdateOfNoteGoneRemotelyKeepsChangeLocally(t *testing.T) {
	h, note := onlineWithRemoteNote(t)
	ctx := context.Background()
	h.remote.Remove(seededID)

	title := "plan b"
	updated, err := h.o.UpdateNote(ctx, note.LocalID, types.NotePatch{Title: &title})
	assert.ErrorIs(t, err, types.ErrRemote)
	assert.ErrorIs(t, err, types.ErrRemoteNotFound)
	assert.NotErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, title, updated.Title)
	assert.False(t, updated.IsSync)
	assert.Empty(t, h.pending(t))
}

func TestDirectUpdateFailureFallsBackToQueue(t *testing.T) {
	h, note := onlineWithRemoteNote(t)
	ctx := context.Background()

	h.remote.FailNext(testutil.MethodUpdate, errors.New("503 service unavailable"))
	desc := "revised"
	updated, err := h.o.UpdateNote(ctx, note.LocalID, types.NotePatch{Description: &desc})
	assert.ErrorIs(t, err, types.ErrRemote)
	assert.NotContains(t, err.Error(), "update: update:")
	assert.False(t, updated.IsSync)
	assert.ErrorIs(t, h.o.LastError(), types.ErrRemote)

	queued := h.pending(t)
	require.Len(t, queued, 1)
	assert.Equal(t, types.OpUpdate, queued[0].Operation)

	require.NoError(t, h.o.Sync(ctx))
	assert.Empty(t, h.pending(t))
	assert.Equal(t, "revised", h.remote.Notes()[0].Description)
	visible := h.o.Notes()
	require.Len(t, visible, 1)
	assert.True(t, visible[0].IsSync)
}

func TestDirectDeleteFailureFallsBackToQueue(t *testing.T) {
	h, note := onlineWithRemoteNote(t)
	ctx := context.Background()

	h.remote.FailNext(testutil.MethodDelete, errors.New("connection reset"))
	err := h.o.DeleteNote(ctx, note.LocalID)
	assert.ErrorIs(t, err, types.ErrRemote)
	assert.NotContains(t, err.Error(), "delete: delete:")
	assert.Empty(t, h.o.Notes())

	queued := h.pending(t)
	require.Len(t, queued, 1)
	assert.Equal(t, types.OpDelete, queued[0].Operation)

	require.NoError(t, h.o.Sync(ctx))
	assert.Empty(t, h.pending(t))
	assert.Empty(t, h.remote.Notes())
	assert.Empty(t, h.o.Notes())
}

func TestReplayFailureMidQueueRetriesFromStart(t *testing.T) {
	h, note := onlineWithRemoteNote(t)
	ctx := context.Background()

	h.conn.Set(testutil.Offline)
	desc := "revised"
	_, err := h.o.UpdateNote(ctx, note.LocalID, types.NotePatch{Description: &desc})
	require.NoError(t, err)
	_, err = h.o.CreateNote(ctx, groceries())
	require.NoError(t, err)
	lists := len(h.remote.CallsFor(testutil.MethodList))

	h.remote.FailNext(testutil.MethodCreate, errors.New("503 service unavailable"))
	h.conn.Set(testutil.Online)
	h.o.Wait()

	assert.ErrorIs(t, h.o.LastError(), types.ErrRemote)
	assert.Len(t, h.remote.CallsFor(testutil.MethodList), lists)
	var ops []types.Operation
	for _, e := range h.pending(t) {
		ops = append(ops, e.Operation)
	}
	assert.Equal(t, []types.Operation{types.OpUpdate, types.OpCreate, types.OpCreate}, ops)

	require.NoError(t, h.o.Sync(ctx))
	assert.Empty(t, h.pending(t))
	assert.Len(t, h.remote.CallsFor(testutil.MethodUpdate), 2, "entries before the failure replay again")
	assert.Len(t, h.remote.CallsFor(testutil.MethodCreate), 2)
	assert.Len(t, h.remote.Notes(), 2)
	for _, n := range h.o.Notes() {
		assert.True(t, n.IsSync, n.Title)
	}
}

func TestStartKeepsStateNotifiedDuringStart(t *testing.T) {
	h := setup(t, testutil.Offline)
	h.conn.AfterCurrent(func() { h.conn.Set(testutil.Online) })
	h.start(t)

	assert.True(t, h.o.IsOnline())
	assert.Len(t, h.remote.CallsFor(testutil.MethodList), 1)
}

func TestStartWithoutStartupSync(t *testing.T) {
	h := setup(t, testutil.Offline)
	h.start(t)
	ctx := context.Background()
	_, err := h.o.CreateNote(ctx, groceries())
	require.NoError(t, err)
	require.NoError(t, h.o.Close())

	conn := testutil.NewFakeConnectivity(testutil.Online)
	o := New(h.kv, h.remote, conn, WithoutStartupSync())
	t.Cleanup(func() { _ = o.Close() })
	require.NoError(t, o.Start(ctx))
	o.Wait()

	assert.True(t, o.IsOnline())
	assert.Empty(t, h.remote.Calls())
	pending, err := o.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, o.Sync(ctx))
	assert.Len(t, h.remote.CallsFor(testutil.MethodCreate), 1)
	assert.Len(t, h.remote.CallsFor(testutil.MethodList), 1)
}
