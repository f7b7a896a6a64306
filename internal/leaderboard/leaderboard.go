// Package leaderboard groups ranked scores into named tiers.
package leaderboard

// Tier is a named band of leaderboard ranks.
type Tier struct {
	Name  string
	First int // First zero-based rank in the tier
	Last  int // Last rank in the tier; -1 for open-ended
}

// Tiers lists every tier from best to worst.
var Tiers = []Tier{
	{Name: "King of Space", First: 0, Last: 0},
	{Name: "Diamond", First: 1, Last: 2},
	{Name: "Gold", First: 3, Last: 5},
	{Name: "Silver", First: 6, Last: 8},
	{Name: "Bronze", First: 9, Last: -1},
}

// Contains reports whether a zero-based rank falls into the tier.
func (t Tier) Contains(rank int) bool {
	return rank >= t.First && (t.Last < 0 || rank <= t.Last)
}

// TierForRank returns the tier of a zero-based rank.
// Negative ranks are treated as the top rank.
func TierForRank(rank int) Tier {
	if rank < 0 {
		rank = 0
	}
	for _, t := range Tiers {
		if t.Contains(rank) {
			return t
		}
	}
	return Tiers[len(Tiers)-1]
}

// Entry is one ranked score.
type Entry struct {
	Rank  int
	Name  string
	Score int
	Hood  string
}

// Group is a tier together with the entries that fall into it.
type Group struct {
	Tier    Tier
	Entries []Entry
}

// Bucket splits entries, already sorted best first, into tiers.
// Ranks are assigned from the position in the slice. Empty tiers are omitted.
func Bucket(entries []Entry) []Group {
	var groups []Group
	for i, e := range entries {
		e.Rank = i
		tier := TierForRank(i)
		if len(groups) == 0 || groups[len(groups)-1].Tier.Name != tier.Name {
			groups = append(groups, Group{Tier: tier})
		}
		g := &groups[len(groups)-1]
		g.Entries = append(g.Entries, e)
	}
	return groups
}
