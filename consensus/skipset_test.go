package consensus

import "testing"

func TestSkipSet_SequentialAdd(t *testing.T) {
	s := NewSkipSet(4)
	for i := uint64(0); i < 5; i++ {
		if !s.Add(i) {
			t.Fatalf("Add(%d) should succeed with no gaps", i)
		}
	}
	if s.Size() != 5 {
		t.Fatalf("expected size 5, got %d", s.Size())
	}
	if s.ExceptionCount() != 0 {
		t.Fatalf("expected 0 exceptions, got %d", s.ExceptionCount())
	}
	for i := uint64(0); i < 5; i++ {
		if !s.Contains(i) {
			t.Fatalf("expected Contains(%d)", i)
		}
	}
	if s.Contains(5) {
		t.Fatalf("Contains(5) should be false before it is added")
	}
}

func TestSkipSet_GapWithinCapacity(t *testing.T) {
	s := NewSkipSet(4)
	if !s.Add(3) {
		t.Fatalf("Add(3) should succeed, opening a gap of 3 within capacity 4")
	}
	if s.ExceptionCount() != 3 {
		t.Fatalf("expected 3 exceptions (0,1,2 skipped), got %d", s.ExceptionCount())
	}
	if s.Contains(0) || s.Contains(1) || s.Contains(2) {
		t.Fatalf("skipped indices must not be members")
	}
	if !s.Contains(3) {
		t.Fatalf("expected Contains(3)")
	}
}

func TestSkipSet_GapExceedsCapacityRefused(t *testing.T) {
	s := NewSkipSet(2)
	if s.Add(3) {
		t.Fatalf("Add(3) should be refused: gap of 3 exceeds capacity 2")
	}
	if s.Size() != 0 {
		t.Fatalf("refused Add must not mutate the set")
	}
}

func TestSkipSet_FillingAGap(t *testing.T) {
	s := NewSkipSet(4)
	s.Add(3) // skips 0,1,2; currentMax=4
	if !s.Add(1) {
		t.Fatalf("Add(1) should succeed, filling a gap")
	}
	if !s.Contains(1) {
		t.Fatalf("expected Contains(1) after filling the gap")
	}
	if s.ExceptionCount() != 2 {
		t.Fatalf("expected 2 remaining exceptions, got %d", s.ExceptionCount())
	}
}

func TestSkipSet_ReAddingFilledIndexRefused(t *testing.T) {
	s := NewSkipSet(4)
	s.Add(0)
	if s.Add(0) {
		t.Fatalf("re-adding an already-present index must be refused")
	}
}

func TestSkipSet_CanBeAddedMatchesAddWithoutMutating(t *testing.T) {
	s := NewSkipSet(2)
	if !s.CanBeAdded(1) {
		t.Fatalf("CanBeAdded(1) should report true for a 1-gap within capacity 2")
	}
	if s.Size() != 0 || s.ExceptionCount() != 0 {
		t.Fatalf("CanBeAdded must not mutate the set")
	}
	if !s.Add(1) {
		t.Fatalf("Add(1) should then succeed as CanBeAdded predicted")
	}
}

func TestSkipSet_Clone(t *testing.T) {
	s := NewSkipSet(4)
	s.Add(3)
	clone := s.Clone()
	if clone.Size() != s.Size() || clone.ExceptionCount() != s.ExceptionCount() {
		t.Fatalf("clone must match source state")
	}
	clone.Add(1)
	if s.ExceptionCount() == clone.ExceptionCount() {
		t.Fatalf("mutating the clone must not affect the source")
	}
}
