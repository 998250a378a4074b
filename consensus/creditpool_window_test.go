package consensus

import "testing"

// chainOfFrames builds n blockFrames, oldest-first, where block i's locked
// value tracks COIN*uint64(i+1) and unlockEntries is whatever the caller
// supplies via entriesAt.
func chainOfFrames(n int, entriesAt map[int][]unlockEntry) []blockFrame {
	frames := make([]blockFrame, n)
	for i := 0; i < n; i++ {
		frames[i] = blockFrame{
			hash:          [32]byte{byte(i), byte(i >> 8)},
			locked:        COIN * uint64(i+1),
			unlockEntries: entriesAt[i],
		}
	}
	return frames
}

func TestApplyFrame_LatelyUnlockedExpiresExactlyAtWindowBoundary(t *testing.T) {
	entries := map[int][]unlockEntry{0: {{index: 0, total: 5 * COIN}}}
	frames := chainOfFrames(CreditPoolWindow, entries)

	var snapshot *CreditPoolSnapshot
	for _, frame := range frames {
		var err error
		snapshot, err = applyFrame(snapshot, frame)
		if err != nil {
			t.Fatalf("applyFrame: %v", err)
		}
	}
	if snapshot.LatelyUnlocked != 5*COIN {
		t.Fatalf("block 0's unlock should still be within the W-block window, got latelyUnlocked=%d", snapshot.LatelyUnlocked)
	}

	// One more block: block 0 is now the (W+1)-th ancestor and must expire.
	snapshot, err := applyFrame(snapshot, blockFrame{locked: snapshot.Locked + COIN})
	if err != nil {
		t.Fatalf("applyFrame: %v", err)
	}
	if snapshot.LatelyUnlocked != 0 {
		t.Fatalf("block 0's unlock left the window and must no longer count, got latelyUnlocked=%d", snapshot.LatelyUnlocked)
	}
}

func TestApplyFrame_IndexReusableExactlyAtWindowBoundary(t *testing.T) {
	entries := map[int][]unlockEntry{0: {{index: 42, total: COIN}}}
	frames := chainOfFrames(CreditPoolWindow, entries)

	var snapshot *CreditPoolSnapshot
	for _, frame := range frames {
		var err error
		snapshot, err = applyFrame(snapshot, frame)
		if err != nil {
			t.Fatalf("applyFrame: %v", err)
		}
	}
	if !snapshot.Indexes.Contains(42) {
		t.Fatalf("index 42 is still within the W-block window and must be COMMITTED")
	}

	snapshot, err := applyFrame(snapshot, blockFrame{locked: snapshot.Locked + COIN})
	if err != nil {
		t.Fatalf("applyFrame: %v", err)
	}
	if snapshot.Indexes.Contains(42) {
		t.Fatalf("index 42 left the window and must be EXPIRED-FROM-WINDOW, still reported as committed")
	}
	if !snapshot.Indexes.Add(42) {
		t.Fatalf("an expired index must be reusable")
	}
}

func TestAccumulate_MatchesSequentialApplyFrame(t *testing.T) {
	entries := map[int][]unlockEntry{
		0:   {{index: 0, total: 3 * COIN}},
		10:  {{index: 1, total: COIN}, {index: 2, total: 2 * COIN}},
		600: {{index: 3, total: 4 * COIN}},
	}
	frames := chainOfFrames(CreditPoolWindow+50, entries)

	// Path A: rebuild from scratch in one call, as BuildCreditPool does
	// when no ancestor snapshot is cached.
	viaAccumulate, err := accumulate(frames, nil)
	if err != nil {
		t.Fatalf("accumulate: %v", err)
	}

	// Path B: sequential one-block-at-a-time promotion, as
	// CreditPoolDiff.Finalize does for live validation.
	var viaSequential *CreditPoolSnapshot
	for _, frame := range frames {
		viaSequential, err = applyFrame(viaSequential, frame)
		if err != nil {
			t.Fatalf("applyFrame: %v", err)
		}
	}

	if viaAccumulate.Locked != viaSequential.Locked {
		t.Fatalf("Locked diverged: accumulate=%d sequential=%d", viaAccumulate.Locked, viaSequential.Locked)
	}
	if viaAccumulate.LatelyUnlocked != viaSequential.LatelyUnlocked {
		t.Fatalf("LatelyUnlocked diverged: accumulate=%d sequential=%d", viaAccumulate.LatelyUnlocked, viaSequential.LatelyUnlocked)
	}
	if viaAccumulate.CurrentLimit != viaSequential.CurrentLimit {
		t.Fatalf("CurrentLimit diverged: accumulate=%d sequential=%d", viaAccumulate.CurrentLimit, viaSequential.CurrentLimit)
	}
	if viaAccumulate.Indexes.Size() != viaSequential.Indexes.Size() {
		t.Fatalf("Indexes.Size diverged: accumulate=%d sequential=%d", viaAccumulate.Indexes.Size(), viaSequential.Indexes.Size())
	}
	for _, idx := range []uint64{0, 1, 2, 3} {
		if viaAccumulate.Indexes.Contains(idx) != viaSequential.Indexes.Contains(idx) {
			t.Fatalf("Contains(%d) diverged: accumulate=%v sequential=%v", idx, viaAccumulate.Indexes.Contains(idx), viaSequential.Indexes.Contains(idx))
		}
	}

	// Index 0 (committed CreditPoolWindow+49 blocks ago) must have expired
	// from both paths identically.
	if viaAccumulate.Indexes.Contains(0) || viaSequential.Indexes.Contains(0) {
		t.Fatalf("index 0 is more than W blocks old and must be expired in both paths")
	}
}

func TestAccumulate_ResumingFromCachedBaseMatchesFromScratch(t *testing.T) {
	entries := map[int][]unlockEntry{
		0:  {{index: 0, total: 3 * COIN}},
		50: {{index: 1, total: COIN}},
	}
	frames := chainOfFrames(CreditPoolWindow, entries)

	fromScratch, err := accumulate(frames, nil)
	if err != nil {
		t.Fatalf("accumulate: %v", err)
	}

	// Simulate BuildCreditPool finding a cached ancestor partway through,
	// then gathering only the remaining tail of frames.
	split := CreditPoolWindow - 100
	base, err := accumulate(frames[:split], nil)
	if err != nil {
		t.Fatalf("accumulate (base): %v", err)
	}
	resumed, err := accumulate(frames[split:], base)
	if err != nil {
		t.Fatalf("accumulate (resumed): %v", err)
	}

	if fromScratch.LatelyUnlocked != resumed.LatelyUnlocked {
		t.Fatalf("LatelyUnlocked diverged with a cached ancestor: fromScratch=%d resumed=%d", fromScratch.LatelyUnlocked, resumed.LatelyUnlocked)
	}
	if fromScratch.Indexes.Contains(0) != resumed.Indexes.Contains(0) || fromScratch.Indexes.Contains(1) != resumed.Indexes.Contains(1) {
		t.Fatalf("index membership diverged with a cached ancestor")
	}
}
