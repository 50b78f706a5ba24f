//go:build test

package detect

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

// keystrokes replays text the way an input box sees it, one rune at a time.
var keystrokes = [][]string{
	{"n", "ni", "nih", "niha", "nihao"},
	{"z", "zh", "zho", "zhon", "zhong", "zhongg", "zhonggu", "zhongguo"},
	{"x", "xi", "xi'", "xi'a", "xi'an"},
	{"h", "he", "hel", "hell", "hello"},
	{"n", "nǚ", "nǚ ", "nǚ r", "nǚ re", "nǚ ren"},
	{"你", "你好", "你好h", "你好he"},
}

func TestMemoryPerKeystroke(t *testing.T) {
	for _, iterations := range []int{100, 1000, 5000} {
		t.Run(fmt.Sprintf("iterations_%d", iterations), func(t *testing.T) {
			runMemoryTest(t, 1, iterations)
		})
	}
}

func TestMemoryConcurrentKeystrokes(t *testing.T) {
	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 2, iterationsPerWorker: 500},
		{workers: 8, iterationsPerWorker: 125},
	}
	for _, c := range configs {
		t.Run(fmt.Sprintf("workers_%d_iter_%d", c.workers, c.iterationsPerWorker), func(t *testing.T) {
			runMemoryTest(t, c.workers, c.iterationsPerWorker)
		})
	}
}

func runMemoryTest(t *testing.T, workers, iterations int) {
	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				for _, pattern := range keystrokes {
					for _, text := range pattern {
						_ = DetectInputType(text)
					}
				}
			}
		}()
	}
	wg.Wait()

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)

	ops := 0
	for _, p := range keystrokes {
		ops += len(p)
	}
	ops *= workers * iterations

	memDelta := int64(final.Alloc) - int64(baseline.Alloc)
	memPerOp := float64(memDelta) / float64(ops)
	goroutineDelta := runtime.NumGoroutine() - baselineGoroutines

	t.Logf("workers=%d ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d",
		workers, ops, memDelta, memPerOp, goroutineDelta)

	// classification keeps nothing between calls
	if memPerOp > 64 {
		t.Errorf("memory retained per keystroke: %.2f bytes", memPerOp)
	}
	if goroutineDelta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
}
