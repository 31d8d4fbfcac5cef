package watch

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSyncer struct {
	mu        sync.Mutex
	dirtyCalls int
	syncCalls  []bool // each entry is the forceFullSync flag passed
}

func (f *fakeSyncer) MarkDirty(projectPath string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirtyCalls++
}

func (f *fakeSyncer) SyncProjectWithDiff(ctx context.Context, projectPath string, forceFullSync bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncCalls = append(f.syncCalls, forceFullSync)
	return nil
}

func TestManagerHandleBatchRegularEventMarksDirtyAndSyncs(t *testing.T) {
	syncer := &fakeSyncer{}
	var activityCount int
	mgr := NewManager(context.Background(), syncer, func() { activityCount++ }, DefaultOptions())

	mgr.handleBatch("/proj", []FileEvent{{Path: "a.go", Operation: OpModify}})

	require.Equal(t, 1, activityCount)
	require.Equal(t, 1, syncer.dirtyCalls)
	require.Equal(t, []bool{false}, syncer.syncCalls)
}

func TestManagerHandleBatchConfigChangeForcesFullSync(t *testing.T) {
	syncer := &fakeSyncer{}
	mgr := NewManager(context.Background(), syncer, nil, DefaultOptions())

	mgr.handleBatch("/proj", []FileEvent{
		{Path: "a.go", Operation: OpModify},
		{Path: ".gitignore", Operation: OpConfigChange},
	})

	require.Equal(t, 0, syncer.dirtyCalls)
	require.Equal(t, []bool{true}, syncer.syncCalls)
}

func TestManagerWatchIsIdempotent(t *testing.T) {
	syncer := &fakeSyncer{}
	mgr := NewManager(context.Background(), syncer, nil, DefaultOptions())
	dir := t.TempDir()

	require.NoError(t, mgr.Watch(dir))
	require.NoError(t, mgr.Watch(dir)) // second call is a no-op, not an error
	mgr.StopAll()
}
