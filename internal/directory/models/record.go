package models

import (
	"time"

	"github.com/google/uuid"
)

// Record is the canonical person entity used throughout the directory. It is
// immutable after construction: pages, searches and groupings replace records
// wholesale, they never patch one in place.
type Record struct {
	ID          string
	Title       string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Cell        string
	Nationality string
	Gender      string
	DateOfBirth time.Time
	Age         int
	Country     string
	City        string
	State       string
	PictureURL  string
}

// FullName joins the name parts, skipping absent ones.
func (r Record) FullName() string {
	switch {
	case r.FirstName == "" && r.LastName == "":
		return ""
	case r.FirstName == "":
		return r.LastName
	case r.LastName == "":
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}

// RawRecord mirrors the upstream source's JSON shape. It exists only at the
// edges: the source client decodes into it and the grouping worker exchanges
// it over its channel; everything else works with Record.
type RawRecord struct {
	Gender string `json:"gender"`
	Name   struct {
		Title string `json:"title"`
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"name"`
	Location struct {
		City    string `json:"city"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"location"`
	Email string `json:"email"`
	Login struct {
		UUID string `json:"uuid"`
	} `json:"login"`
	DOB struct {
		Date string `json:"date"`
		Age  int    `json:"age"`
	} `json:"dob"`
	Phone   string `json:"phone"`
	Cell    string `json:"cell"`
	Picture struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"picture"`
	Nat string `json:"nat"`
}

// FromRaw constructs a Record from the upstream shape. Records missing a
// login UUID get a generated one so the identifier invariant holds for the
// whole working set.
func FromRaw(raw RawRecord) Record {
	id := raw.Login.UUID
	if id == "" {
		id = uuid.NewString()
	}
	dob, _ := time.Parse(time.RFC3339, raw.DOB.Date)
	return Record{
		ID:          id,
		Title:       raw.Name.Title,
		FirstName:   raw.Name.First,
		LastName:    raw.Name.Last,
		Email:       raw.Email,
		Phone:       raw.Phone,
		Cell:        raw.Cell,
		Nationality: raw.Nat,
		Gender:      raw.Gender,
		DateOfBirth: dob,
		Age:         raw.DOB.Age,
		Country:     raw.Location.Country,
		City:        raw.Location.City,
		State:       raw.Location.State,
		PictureURL:  raw.Picture.Thumbnail,
	}
}

// FromRawPage maps a whole upstream page.
func FromRawPage(raws []RawRecord) []Record {
	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		records = append(records, FromRaw(raw))
	}
	return records
}
