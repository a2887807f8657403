package metrics

import (
	"sync"
	"testing"

	"github.com/protoprobe/protoprobe/internal/probe"
)

func TestResultLogAppendOrder(t *testing.T) {
	log := NewResultLog()
	log.Append(probe.Outcome{Status: 200})
	log.Append(probe.Outcome{Status: 404})
	log.Append(probe.Outcome{Status: 500})

	snapshot := log.Snapshot()
	if len(snapshot) != 3 {
		t.Fatalf("snapshot length = %d, want 3", len(snapshot))
	}
	want := []int{200, 404, 500}
	for i, status := range want {
		if snapshot[i].Status != status {
			t.Errorf("snapshot[%d].Status = %d, want %d", i, snapshot[i].Status, status)
		}
	}
}

func TestResultLogConcurrentAppends(t *testing.T) {
	log := NewResultLog()

	const workers = 16
	const perWorker = 100

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				log.Append(probe.Outcome{Status: 200})
			}
		}()
	}
	wg.Wait()

	if got := log.Len(); got != workers*perWorker {
		t.Errorf("Len() = %d, want %d", got, workers*perWorker)
	}
}

func TestResultLogSnapshotIsCopy(t *testing.T) {
	log := NewResultLog()
	log.Append(probe.Outcome{Status: 200})

	snapshot := log.Snapshot()
	snapshot[0].Status = 500

	if log.Snapshot()[0].Status != 200 {
		t.Error("mutating a snapshot must not affect the log")
	}
}
