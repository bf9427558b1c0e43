package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tandem/internal/adapters/watcher"
)

type calls struct {
	mu    sync.Mutex
	count int
	paths []string
}

func (c *calls) record(paths []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	c.paths = paths
}

func (c *calls) snapshot() (int, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count, c.paths
}

func TestDebouncer_CoalescesAndSorts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c calls
		d := watcher.NewDebouncer(100*time.Millisecond, c.record)

		d.Add("/project/backend/b.py")
		d.Add("/project/backend/a.py")
		time.Sleep(50 * time.Millisecond)
		d.Add("/project/backend/a.py")

		time.Sleep(90 * time.Millisecond)
		synctest.Wait()
		count, _ := c.snapshot()
		assert.Zero(t, count, "the window restarts on every add")

		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
		count, paths := c.snapshot()
		require.Equal(t, 1, count)
		assert.Equal(t, []string{"/project/backend/a.py", "/project/backend/b.py"}, paths)
	})
}

func TestDebouncer_SeparateBatches(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c calls
		d := watcher.NewDebouncer(100*time.Millisecond, c.record)

		d.Add("/project/frontend/index.html")
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		d.Add("/project/backend/main.py")
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		count, paths := c.snapshot()
		assert.Equal(t, 2, count)
		assert.Equal(t, []string{"/project/backend/main.py"}, paths)
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c calls
		d := watcher.NewDebouncer(time.Hour, c.record)

		d.Add("/project/backend/main.py")
		d.Flush()

		count, paths := c.snapshot()
		require.Equal(t, 1, count)
		assert.Equal(t, []string{"/project/backend/main.py"}, paths)

		d.Flush()
		count, _ = c.snapshot()
		assert.Equal(t, 1, count, "nothing pending")
	})
}

func TestDebouncer_Stop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c calls
		d := watcher.NewDebouncer(100*time.Millisecond, c.record)

		d.Add("/project/backend/main.py")
		d.Stop()
		time.Sleep(200 * time.Millisecond)
		synctest.Wait()

		count, _ := c.snapshot()
		assert.Zero(t, count)
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := watcher.NewDebouncer(10*time.Millisecond, nil)
		d.Add("/project/backend/main.py")
		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
		d.Flush()
	})
}
