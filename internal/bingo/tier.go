package bingo

// Tier is the advisory display classification of a person. Both flags
// require a living person with a known age; the numeric ranges are
// disjoint so at most one flag is ever set. Tiers are recomputed from
// the Person each time and never persisted.
type Tier struct {
	Under60 bool `json:"under60"`
	Over85  bool `json:"over85"`
}

// Classify derives the risk tier for p. Deceased persons and persons
// with an unknown age always classify as neutral.
func Classify(p Person) Tier {
	if p.IsDead || p.Age == nil {
		return Tier{}
	}
	return Tier{
		Under60: *p.Age < 60,
		Over85:  *p.Age > 85,
	}
}
