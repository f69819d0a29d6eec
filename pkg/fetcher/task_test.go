package fetcher

import (
	"sync"
	"testing"
)

func TestNewTaskSet_PreservesInputOrder(t *testing.T) {
	ids := []string{"https://a", "https://b", "https://c"}
	set := NewTaskSet(ids)

	if set.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", set.Len())
	}

	for i, want := range ids {
		if got := set.tasks[i].Identifier(); got != want {
			t.Errorf("task %d identifier = %q, want %q", i, got, want)
		}
	}
}

func TestClaimNext_InputOrder(t *testing.T) {
	set := NewTaskSet([]string{"a", "b", "c"})

	for _, want := range []string{"a", "b", "c"} {
		task, ok := set.ClaimNext()
		if !ok {
			t.Fatalf("ClaimNext() exhausted early, want %q", want)
		}
		if task.Identifier() != want {
			t.Errorf("claimed %q, want %q", task.Identifier(), want)
		}
	}

	if _, ok := set.ClaimNext(); ok {
		t.Error("ClaimNext() should report exhaustion after all tasks claimed")
	}
}

func TestClaimNext_Empty(t *testing.T) {
	set := NewTaskSet(nil)
	if _, ok := set.ClaimNext(); ok {
		t.Error("ClaimNext() on empty set should report exhaustion")
	}
}

// TestClaimNext_ExactlyOnce hammers the claim protocol from many
// goroutines and verifies every task is claimed exactly once.
func TestClaimNext_ExactlyOnce(t *testing.T) {
	const tasks = 200
	const claimers = 16

	ids := make([]string, tasks)
	for i := range ids {
		ids[i] = string(rune('a' + i%26))
	}
	set := NewTaskSet(ids)

	claims := make(chan *Task, tasks)
	var wg sync.WaitGroup
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				task, ok := set.ClaimNext()
				if !ok {
					return
				}
				claims <- task
			}
		}()
	}
	wg.Wait()
	close(claims)

	seen := make(map[*Task]int)
	for task := range claims {
		seen[task]++
	}

	if len(seen) != tasks {
		t.Errorf("claimed %d distinct tasks, want %d", len(seen), tasks)
	}
	for task, n := range seen {
		if n != 1 {
			t.Errorf("task %q claimed %d times", task.Identifier(), n)
		}
	}
}

func TestLoadedBytes_SumsAcrossTasks(t *testing.T) {
	set := NewTaskSet([]string{"a", "b", "c"})

	set.tasks[0].UpdateProgress(10, 10)
	set.tasks[1].UpdateProgress(5, 20)

	if got := set.LoadedBytes(); got != 15 {
		t.Errorf("LoadedBytes() = %d, want 15", got)
	}

	set.tasks[2].UpdateProgress(30, 30)
	if got := set.LoadedBytes(); got != 45 {
		t.Errorf("LoadedBytes() = %d, want 45", got)
	}
}

func TestFinalResults_InputOrder(t *testing.T) {
	set := NewTaskSet([]string{"a", "b", "c"})

	// Complete out of order.
	set.tasks[2].setResult([]byte("third"))
	set.tasks[0].setResult([]byte("first"))

	results := set.FinalResults()
	if len(results) != 3 {
		t.Fatalf("FinalResults() length = %d, want 3", len(results))
	}
	if string(results[0]) != "first" {
		t.Errorf("results[0] = %q, want %q", results[0], "first")
	}
	if results[1] != nil {
		t.Errorf("results[1] = %q, want nil for incomplete task", results[1])
	}
	if string(results[2]) != "third" {
		t.Errorf("results[2] = %q, want %q", results[2], "third")
	}
}
