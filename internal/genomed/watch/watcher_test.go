package watch_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"genomed/internal/genomed/watch"
)

func TestWatcher_SignalsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genome.fa")
	require.NoError(t, os.WriteFile(path, []byte(">chr1\n"), 0644))

	w, err := watch.New(path, 50*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	changes, err := w.Start()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(">chr1\nACGT\n"), 0644))

	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("no change signal after write")
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watched.vcf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	w, err := watch.New(path, 50*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	changes, err := w.Start()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.vcf"), []byte("y"), 0644))

	select {
	case <-changes:
		t.Fatal("signal for a file that is not being watched")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "burst.bed")
	require.NoError(t, os.WriteFile(path, []byte("0"), 0644))

	w, err := watch.New(path, 100*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	changes, err := w.Start()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('0' + i)}, 0644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("no signal after write burst")
	}

	// the burst collapses into a single signal
	select {
	case <-changes:
		t.Fatal("burst produced more than one signal")
	case <-time.After(300 * time.Millisecond):
	}
}
