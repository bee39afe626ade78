package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/shade/internal/adapters/watcher"
)

type batches struct {
	mu  sync.Mutex
	got [][]string
}

func (b *batches) add(paths []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.got = append(b.got, paths)
}

func (b *batches) snapshot() [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]string(nil), b.got...)
}

func TestDebouncer_CoalescesWithinWindow(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b := &batches{}
		d := watcher.NewDebouncer(100*time.Millisecond, b.add)

		d.Add("/scenes/b.scene.yaml")
		d.Add("/scenes/a.scene.yaml")
		d.Add("/scenes/b.scene.yaml")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Len(t, b.snapshot(), 1)
		assert.Equal(t, []string{"/scenes/a.scene.yaml", "/scenes/b.scene.yaml"}, b.snapshot()[0])
	})
}

func TestDebouncer_AddRestartsWindow(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b := &batches{}
		d := watcher.NewDebouncer(100*time.Millisecond, b.add)

		d.Add("/scenes/a.scene.yaml")
		time.Sleep(80 * time.Millisecond)
		d.Add("/scenes/b.scene.yaml")
		time.Sleep(80 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, b.snapshot())

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()
		require.Len(t, b.snapshot(), 1)
		assert.Len(t, b.snapshot()[0], 2)
	})
}

func TestDebouncer_SeparateBatches(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b := &batches{}
		d := watcher.NewDebouncer(100*time.Millisecond, b.add)

		d.Add("/scenes/a.scene.yaml")
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		d.Add("/scenes/b.scene.yaml")
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, [][]string{{"/scenes/a.scene.yaml"}, {"/scenes/b.scene.yaml"}}, b.snapshot())
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b := &batches{}
		d := watcher.NewDebouncer(time.Hour, b.add)

		d.Add("/scenes/a.scene.yaml")
		d.Flush()
		assert.Equal(t, [][]string{{"/scenes/a.scene.yaml"}}, b.snapshot())

		d.Flush()
		assert.Len(t, b.snapshot(), 1, "empty flush must not call back")
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := watcher.NewDebouncer(10*time.Millisecond, nil)
		d.Add("/scenes/a.scene.yaml")
		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
		d.Flush()
	})
}
