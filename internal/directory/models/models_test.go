package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgeBucketKey_HalfOpenBoundaries(t *testing.T) {
	cases := map[int]string{
		0:   "0-17",
		17:  "0-17",
		18:  "18-24",
		24:  "18-24",
		25:  "25-34",
		34:  "25-34",
		35:  "35-44",
		44:  "35-44",
		45:  "45-54",
		54:  "45-54",
		55:  "55-64",
		64:  "55-64",
		65:  "65+",
		100: "65+",
	}
	for age, want := range cases {
		assert.Equal(t, want, AgeBucketKey(age), "age %d", age)
	}
}

func TestAgeBucketLabel(t *testing.T) {
	assert.Equal(t, "65+ years", AgeBucketLabel("65+"))
	assert.Equal(t, "18-24 years", AgeBucketLabel("18-24"))
	assert.Equal(t, "bogus", AgeBucketLabel("bogus"))
}

func TestNationalityName(t *testing.T) {
	assert.Equal(t, "United States", NationalityName("US"))
	assert.Equal(t, "Serbia", NationalityName("RS"))
	assert.Equal(t, "XX", NationalityName("XX"), "unmapped codes pass through")
}

func TestParseCriterion(t *testing.T) {
	for _, s := range []string{"alphabetical", "nationality", "age", "gender"} {
		c, err := ParseCriterion(s)
		assert.NoError(t, err)
		assert.Equal(t, Criterion(s), c)
	}
	_, err := ParseCriterion("shoe-size")
	assert.Error(t, err)
}

func TestFromRaw_MapsFieldsAndGeneratesMissingID(t *testing.T) {
	var raw RawRecord
	raw.Name.First = "Jennie"
	raw.Name.Last = "Nichols"
	raw.Login.UUID = "abc-123"
	raw.Email = "jennie@example.com"
	raw.Phone = "(272) 790-0888"
	raw.Nat = "US"
	raw.Gender = "female"
	raw.DOB.Date = "1992-03-08T15:13:16.688Z"
	raw.DOB.Age = 30
	raw.Location.City = "Billings"
	raw.Location.Country = "United States"

	rec := FromRaw(raw)
	assert.Equal(t, "abc-123", rec.ID)
	assert.Equal(t, "Jennie Nichols", rec.FullName())
	assert.Equal(t, "US", rec.Nationality)
	assert.Equal(t, 30, rec.Age)
	assert.Equal(t, 1992, rec.DateOfBirth.Year())
	assert.Equal(t, "Billings", rec.City)

	raw.Login.UUID = ""
	rec2 := FromRaw(raw)
	assert.NotEmpty(t, rec2.ID, "missing upstream uuid must be backfilled")
	assert.NotEqual(t, rec.ID, rec2.ID)
}

func TestFullName_PartialNames(t *testing.T) {
	assert.Equal(t, "", Record{}.FullName())
	assert.Equal(t, "Ada", Record{FirstName: "Ada"}.FullName())
	assert.Equal(t, "Lovelace", Record{LastName: "Lovelace"}.FullName())
}
