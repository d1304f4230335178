package history

import (
	"fmt"
	"testing"

	"github.com/codecollab/swarm/pkg/models"
)

func makeResult(i int) *models.RunResult {
	return &models.RunResult{
		ID:              fmt.Sprintf("run-%d", i),
		TaskDescription: fmt.Sprintf("task %d", i),
		Success:         true,
	}
}

func TestRingAddAndList(t *testing.T) {
	r := NewRing(3)

	if r.Len() != 0 {
		t.Fatalf("new ring len = %d", r.Len())
	}

	r.Add(makeResult(1))
	r.Add(makeResult(2))

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("list len = %d, want 2", len(list))
	}
	if list[0].ID != "run-1" || list[1].ID != "run-2" {
		t.Errorf("list order = [%s %s]", list[0].ID, list[1].ID)
	}
}

func TestRingEvictsOldest(t *testing.T) {
	r := NewRing(3)
	for i := 1; i <= 5; i++ {
		r.Add(makeResult(i))
	}

	if r.Len() != 3 {
		t.Fatalf("len = %d, want 3", r.Len())
	}

	list := r.List()
	want := []string{"run-3", "run-4", "run-5"}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("list[%d] = %s, want %s", i, list[i].ID, id)
		}
	}
}

func TestRingRecent(t *testing.T) {
	r := NewRing(10)
	for i := 1; i <= 4; i++ {
		r.Add(makeResult(i))
	}

	recent := r.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("recent len = %d, want 2", len(recent))
	}
	if recent[0].ID != "run-4" || recent[1].ID != "run-3" {
		t.Errorf("recent order = [%s %s]", recent[0].ID, recent[1].ID)
	}

	// Asking for more than stored returns everything.
	all := r.Recent(100)
	if len(all) != 4 {
		t.Errorf("recent(100) len = %d, want 4", len(all))
	}
}

func TestRingReset(t *testing.T) {
	r := NewRing(3)
	r.Add(makeResult(1))
	r.Add(makeResult(2))

	r.Reset()

	if r.Len() != 0 {
		t.Errorf("len after reset = %d", r.Len())
	}
	if len(r.List()) != 0 {
		t.Errorf("list after reset = %v", r.List())
	}

	// Usable again after reset.
	r.Add(makeResult(3))
	if r.Len() != 1 {
		t.Errorf("len after re-add = %d", r.Len())
	}
}

func TestRingIgnoresNil(t *testing.T) {
	r := NewRing(3)
	r.Add(nil)
	if r.Len() != 0 {
		t.Errorf("len = %d after nil add", r.Len())
	}
}

func TestRingDefaultCapacity(t *testing.T) {
	r := NewRing(0)
	for i := 0; i < DefaultRingCapacity+10; i++ {
		r.Add(makeResult(i))
	}
	if r.Len() != DefaultRingCapacity {
		t.Errorf("len = %d, want %d", r.Len(), DefaultRingCapacity)
	}
}
