package models

import "fmt"

// Criterion selects the axis a record set is partitioned along. The set is
// closed; anything else falls through to the engine's catch-all group.
type Criterion string

const (
	ByFirstName   Criterion = "alphabetical"
	ByNationality Criterion = "nationality"
	ByAgeBucket   Criterion = "age"
	ByGender      Criterion = "gender"
)

// ParseCriterion validates a criterion received over the wire.
func ParseCriterion(s string) (Criterion, error) {
	switch c := Criterion(s); c {
	case ByFirstName, ByNationality, ByAgeBucket, ByGender:
		return c, nil
	}
	return "", fmt.Errorf("unknown grouping criterion %q", s)
}
