package leaderboard

import "testing"

func TestTierForRank(t *testing.T) {
	tests := []struct {
		rank int
		want string
	}{
		{-1, "King of Space"},
		{0, "King of Space"},
		{1, "Diamond"},
		{2, "Diamond"},
		{3, "Gold"},
		{5, "Gold"},
		{6, "Silver"},
		{8, "Silver"},
		{9, "Bronze"},
		{250, "Bronze"},
	}
	for _, tt := range tests {
		if got := TierForRank(tt.rank).Name; got != tt.want {
			t.Errorf("TierForRank(%d) = %q, expected %q", tt.rank, got, tt.want)
		}
	}
}

func TestBucket(t *testing.T) {
	entries := make([]Entry, 11)
	for i := range entries {
		entries[i] = Entry{Name: "p", Score: 1100 - i*100}
	}

	groups := Bucket(entries)
	wantSizes := map[string]int{
		"King of Space": 1,
		"Diamond":       2,
		"Gold":          3,
		"Silver":        3,
		"Bronze":        2,
	}
	if len(groups) != len(wantSizes) {
		t.Fatalf("got %d groups, expected %d", len(groups), len(wantSizes))
	}
	for _, g := range groups {
		if got := len(g.Entries); got != wantSizes[g.Tier.Name] {
			t.Errorf("tier %q has %d entries, expected %d", g.Tier.Name, got, wantSizes[g.Tier.Name])
		}
	}
	if groups[1].Entries[1].Rank != 2 {
		t.Errorf("rank = %d, expected 2", groups[1].Entries[1].Rank)
	}
}

func TestBucketShortList(t *testing.T) {
	groups := Bucket([]Entry{{Name: "a", Score: 10}, {Name: "b", Score: 5}})
	if len(groups) != 2 {
		t.Fatalf("got %d groups, expected 2", len(groups))
	}
	if groups[0].Tier.Name != "King of Space" || groups[1].Tier.Name != "Diamond" {
		t.Errorf("unexpected tiers: %q, %q", groups[0].Tier.Name, groups[1].Tier.Name)
	}
	if Bucket(nil) != nil {
		t.Error("Bucket(nil) should be nil")
	}
}
