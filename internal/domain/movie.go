package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format of release_date
const DateLayout = "2006-01-02"

// Date is a calendar date rendered as "yyyy-mm-dd"
type Date struct {
	time.Time
}

// ParseDate parses a "yyyy-mm-dd" string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: release_date %q", ErrInvalidFields, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Movie maps to the movies table
type Movie struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate Date   `json:"release_date"`
}

// DateInput keeps release_date as sent. A value that is not a
// "yyyy-mm-dd" string, numbers included, is an invalid field rather than
// a malformed body.
type DateInput struct {
	raw json.RawMessage
}

func (d *DateInput) UnmarshalJSON(b []byte) error {
	d.raw = append(json.RawMessage(nil), b...)
	return nil
}

// Date parses the value
func (d *DateInput) Date() (Date, error) {
	var s string
	if err := json.Unmarshal(d.raw, &s); err != nil {
		return Date{}, fmt.Errorf("%w: release_date %s", ErrInvalidFields, d.raw)
	}
	return ParseDate(s)
}

// CreateMovieRequest is the body of POST /movies
type CreateMovieRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	ReleaseDate *DateInput `json:"release_date"`
}

// Validate requires title and release_date
func (r *CreateMovieRequest) Validate() error {
	if r.Title == nil || r.ReleaseDate == nil {
		return ErrMissingFields
	}
	if err := validateStruct(r); err != nil {
		return err
	}
	_, err := r.ReleaseDate.Date()
	return err
}

// Movie builds the row to insert. Call Validate first.
func (r *CreateMovieRequest) Movie() (Movie, error) {
	date, err := r.ReleaseDate.Date()
	if err != nil {
		return Movie{}, err
	}
	return Movie{Title: *r.Title, ReleaseDate: date}, nil
}

// UpdateMovieRequest is the body of PATCH /movies/{id}
type UpdateMovieRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	ReleaseDate *DateInput `json:"release_date"`
}

// Validate requires at least one member
func (r *UpdateMovieRequest) Validate() error {
	if r.Title == nil && r.ReleaseDate == nil {
		return ErrNoFields
	}
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.ReleaseDate != nil {
		if _, err := r.ReleaseDate.Date(); err != nil {
			return err
		}
	}
	return nil
}

// Patch returns the columns to change. Call Validate first.
func (r *UpdateMovieRequest) Patch() (MoviePatch, error) {
	p := MoviePatch{Title: r.Title}
	if r.ReleaseDate != nil {
		date, err := r.ReleaseDate.Date()
		if err != nil {
			return MoviePatch{}, err
		}
		p.ReleaseDate = &date
	}
	return p, nil
}

// MoviePatch holds the columns of a partial update, nil keeps the column
type MoviePatch struct {
	Title       *string
	ReleaseDate *Date
}

// Fields lists the changed columns, for audit metadata
func (p MoviePatch) Fields() []string {
	fields := []string{}
	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.ReleaseDate != nil {
		fields = append(fields, "release_date")
	}
	return fields
}
