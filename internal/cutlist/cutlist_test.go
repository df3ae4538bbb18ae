package cutlist

import "testing"

func TestSelectBestPicksHighestRating(t *testing.T) {
	candidates := []Candidate{
		{ID: 1, Rating: 3},
		{ID: 2, Rating: 7},
		{ID: 3, Rating: 7},
		{ID: 4, Rating: 5},
	}
	for i := 0; i < 10; i++ {
		best, ok := SelectBest(candidates, 5)
		if !ok {
			t.Fatal("expected a selection")
		}
		if best.ID != 2 {
			t.Fatalf("selected id %d, want 2 (highest rating, lowest id)", best.ID)
		}
	}
}

func TestSelectBestThresholdIsInclusive(t *testing.T) {
	best, ok := SelectBest([]Candidate{{ID: 9, Rating: 5}}, 5)
	if !ok || best.ID != 9 {
		t.Fatalf("rating equal to the threshold must pass, got ok=%v best=%+v", ok, best)
	}
}

func TestSelectBestNothingEligible(t *testing.T) {
	if _, ok := SelectBest([]Candidate{{ID: 1, Rating: 2}, {ID: 2, Rating: 4.9}}, 5); ok {
		t.Fatal("no candidate reaches the threshold, ok must be false")
	}
	if _, ok := SelectBest(nil, 0); ok {
		t.Fatal("empty candidate set must not select")
	}
}

func TestSelectBestZeroThresholdAcceptsAll(t *testing.T) {
	best, ok := SelectBest([]Candidate{{ID: 5, Rating: 0}, {ID: 3, Rating: 0}}, 0)
	if !ok || best.ID != 3 {
		t.Fatalf("got ok=%v best=%+v, want id 3", ok, best)
	}
}
