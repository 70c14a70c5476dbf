package celebrity

import (
	"regexp"
	"strconv"
	"time"
)

// Wikidata time values carry a leading sign and zero-padded fields, e.g.
// "+1970-06-15T00:00:00Z". Only the date part matters for age.
var wikidataTimeRE = regexp.MustCompile(`^\+(\d{4})-(\d{2})-(\d{2})T`)

// ageAt computes whole years elapsed between a Wikidata birth time and
// today. The second return is false when the value is missing or does
// not parse — an unknown age, not an error.
func ageAt(birthTime string, today time.Time) (int, bool) {
	m := wikidataTimeRE.FindStringSubmatch(birthTime)
	if m == nil {
		return 0, false
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	age := today.Year() - year
	hadBirthday := int(today.Month()) > month ||
		(int(today.Month()) == month && today.Day() >= day)
	if !hadBirthday {
		age--
	}
	return age, true
}
