package models

// Static lookup tables. Pure data shared by the grouping engine and the
// transport layer; nothing here carries state.

// nationalityNames maps the upstream nationality codes to display names.
// Codes outside the table are shown verbatim.
var nationalityNames = map[string]string{
	"AU": "Australia",
	"BR": "Brazil",
	"CA": "Canada",
	"CH": "Switzerland",
	"DE": "Germany",
	"DK": "Denmark",
	"ES": "Spain",
	"FI": "Finland",
	"FR": "France",
	"GB": "United Kingdom",
	"IE": "Ireland",
	"IN": "India",
	"IR": "Iran",
	"MX": "Mexico",
	"NL": "Netherlands",
	"NO": "Norway",
	"NZ": "New Zealand",
	"RS": "Serbia",
	"TR": "Turkey",
	"UA": "Ukraine",
	"US": "United States",
}

// NationalityName resolves a nationality code to its display name, falling
// back to the raw code when unmapped.
func NationalityName(code string) string {
	if name, ok := nationalityNames[code]; ok {
		return name
	}
	return code
}

// AgeBucket is one of the seven fixed, half-open age ranges. Max is
// exclusive; the last bucket is open-ended.
type AgeBucket struct {
	Key   string
	Label string
	Min   int
	Max   int // exclusive; 0 means unbounded
}

// AgeBuckets in ascending order. Boundaries are half-open: age 18 belongs to
// "18-24", not "0-17".
var AgeBuckets = []AgeBucket{
	{Key: "0-17", Label: "0-17 years", Min: 0, Max: 18},
	{Key: "18-24", Label: "18-24 years", Min: 18, Max: 25},
	{Key: "25-34", Label: "25-34 years", Min: 25, Max: 35},
	{Key: "35-44", Label: "35-44 years", Min: 35, Max: 45},
	{Key: "45-54", Label: "45-54 years", Min: 45, Max: 55},
	{Key: "55-64", Label: "55-64 years", Min: 55, Max: 65},
	{Key: "65+", Label: "65+ years", Min: 65},
}

// AgeBucketKey maps an age to its bucket key. A record with no age carries
// the zero value and therefore lands in "0-17"; that quirk is inherited
// behavior, not an accident.
func AgeBucketKey(age int) string {
	for _, b := range AgeBuckets {
		if age >= b.Min && (b.Max == 0 || age < b.Max) {
			return b.Key
		}
	}
	return AgeBuckets[0].Key
}

// AgeBucketLabel resolves a bucket key to its display label, falling back to
// the key itself.
func AgeBucketLabel(key string) string {
	for _, b := range AgeBuckets {
		if b.Key == key {
			return b.Label
		}
	}
	return key
}
