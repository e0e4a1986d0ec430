package grouping

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/kiril6/users-directory/internal/directory/models"
)

// Engine partitions record sets. Partition is a pure function of its inputs;
// the engine itself only carries the collation language, fixed at
// construction.
type Engine struct {
	tag language.Tag
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLanguage sets the collation language used to order group members.
func WithLanguage(tag language.Tag) EngineOption {
	return func(e *Engine) {
		e.tag = tag
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{tag: language.English}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Partition splits records into ordered, labeled groups by criterion.
//
// Every input record lands in exactly one group, members are ordered by
// first name under locale-aware collation, and groups are ordered by key
// with the "Unknown" group always last. An empty input yields an empty
// slice; an unrecognized criterion yields a single catch-all group keyed
// "All".
func (e *Engine) Partition(records []models.Record, criterion models.Criterion) []models.Group {
	if len(records) == 0 {
		return []models.Group{}
	}

	byKey := make(map[string][]models.Record)
	var keys []string
	for _, rec := range records {
		key := partitionKey(rec, criterion)
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], rec)
	}

	// Collators are not safe for concurrent use, so each call builds its
	// own.
	col := collate.New(e.tag)
	groups := make([]models.Group, 0, len(keys))
	for _, key := range keys {
		members := byKey[key]
		sort.SliceStable(members, func(i, j int) bool {
			return col.CompareString(members[i].FirstName, members[j].FirstName) < 0
		})
		groups = append(groups, models.Group{
			Key:     key,
			Label:   groupLabel(key, criterion),
			Members: members,
			Count:   len(members),
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i].Key, groups[j].Key
		if a == models.UnknownKey {
			return false
		}
		if b == models.UnknownKey {
			return true
		}
		return a < b
	})
	return groups
}

func partitionKey(rec models.Record, criterion models.Criterion) string {
	switch criterion {
	case models.ByFirstName:
		first := strings.TrimSpace(rec.FirstName)
		if first == "" {
			return models.UnknownKey
		}
		r, _ := utf8.DecodeRuneInString(first)
		return string(unicode.ToUpper(r))
	case models.ByNationality:
		if rec.Nationality == "" {
			return models.UnknownKey
		}
		return rec.Nationality
	case models.ByAgeBucket:
		// A record with no age carries age zero and lands in "0-17";
		// missing age is deliberately not an "Unknown" bucket.
		return models.AgeBucketKey(rec.Age)
	case models.ByGender:
		if rec.Gender == "" {
			return models.UnknownKey
		}
		return rec.Gender
	}
	return models.AllKey
}

func groupLabel(key string, criterion models.Criterion) string {
	if key == models.UnknownKey {
		return models.UnknownKey
	}
	switch criterion {
	case models.ByNationality:
		return models.NationalityName(key)
	case models.ByAgeBucket:
		return models.AgeBucketLabel(key)
	case models.ByGender:
		return capitalize(key)
	}
	return key
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
