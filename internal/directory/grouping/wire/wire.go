// Package wire defines the plain structural messages exchanged with the
// grouping worker. The worker never sees models.Record: requests carry
// flattened users, responses carry flattened groups, and the coordinator
// reconstructs full records on the way back. Keeping that bridge explicit is
// the point of this package.
package wire

import (
	"time"

	"github.com/kiril6/users-directory/internal/directory/models"
)

// User is the flattened, method-free projection of a Record.
type User struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Cell        string `json:"cell,omitempty"`
	Nationality string `json:"nationality"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Age         int    `json:"age"`
	Country     string `json:"country"`
	City        string `json:"city"`
	State       string `json:"state,omitempty"`
	PictureURL  string `json:"pictureUrl,omitempty"`
}

// Group mirrors models.Group with flattened members.
type Group struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Users []User `json:"users"`
	Count int    `json:"count"`
}

// Request asks the worker for one partition computation. Each request is
// self-contained; the worker holds no state between requests.
type Request struct {
	ID        string `json:"id"`
	Users     []User `json:"users"`
	Criterion string `json:"criterion"`
}

// Response answers exactly one Request. Err is set instead of Groups when the
// computation failed.
type Response struct {
	ID     string  `json:"id"`
	Groups []Group `json:"groups"`
	Err    string  `json:"err,omitempty"`
}

// FromRecord flattens a Record for transport.
func FromRecord(rec models.Record) User {
	u := User{
		ID:          rec.ID,
		Title:       rec.Title,
		FirstName:   rec.FirstName,
		LastName:    rec.LastName,
		Email:       rec.Email,
		Phone:       rec.Phone,
		Cell:        rec.Cell,
		Nationality: rec.Nationality,
		Gender:      rec.Gender,
		Age:         rec.Age,
		Country:     rec.Country,
		City:        rec.City,
		State:       rec.State,
		PictureURL:  rec.PictureURL,
	}
	if !rec.DateOfBirth.IsZero() {
		u.DateOfBirth = rec.DateOfBirth.Format(time.RFC3339)
	}
	return u
}

// FromRecords flattens a whole record set.
func FromRecords(records []models.Record) []User {
	users := make([]User, 0, len(records))
	for _, rec := range records {
		users = append(users, FromRecord(rec))
	}
	return users
}

// ToRecord reconstructs a full Record from its flattened form.
func (u User) ToRecord() models.Record {
	rec := models.Record{
		ID:          u.ID,
		Title:       u.Title,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Phone:       u.Phone,
		Cell:        u.Cell,
		Nationality: u.Nationality,
		Gender:      u.Gender,
		Age:         u.Age,
		Country:     u.Country,
		City:        u.City,
		State:       u.State,
		PictureURL:  u.PictureURL,
	}
	if u.DateOfBirth != "" {
		if t, err := time.Parse(time.RFC3339, u.DateOfBirth); err == nil {
			rec.DateOfBirth = t
		}
	}
	return rec
}

// ToRecords reconstructs a flattened user list.
func ToRecords(users []User) []models.Record {
	records := make([]models.Record, 0, len(users))
	for _, u := range users {
		records = append(records, u.ToRecord())
	}
	return records
}

// FromGroups flattens engine output for transport.
func FromGroups(groups []models.Group) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, Group{
			Key:   g.Key,
			Label: g.Label,
			Users: FromRecords(g.Members),
			Count: g.Count,
		})
	}
	return out
}

// ToGroups reconstructs full groups from a worker response.
func ToGroups(groups []Group) []models.Group {
	out := make([]models.Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.Group{
			Key:     g.Key,
			Label:   g.Label,
			Members: ToRecords(g.Users),
			Count:   g.Count,
		})
	}
	return out
}
