package document

import (
	"math"
	"strconv"
	"strings"
)

// Document is a fetched index document: its id and flat hash fields (immutable value object).
type Document struct {
	id     string
	fields map[string]string
}

// Reconstruct creates a Document from storage without validation.
func Reconstruct(id string, fields map[string]string) Document {
	return Document{id: id, fields: fields}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Fields returns the raw hash fields.
func (d *Document) Fields() map[string]string { return d.fields }

// Field returns a raw field value.
func (d *Document) Field(name string) (string, bool) {
	v, ok := d.fields[name]
	return v, ok
}

// Numeric parses a field as a float. Absent, empty and non-numeric values report false.
func (d *Document) Numeric(name string) (float64, bool) {
	v, ok := d.fields[name]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Fetched is the outcome of a single document point-get.
// Found is false when the document does not exist or the fetch failed.
type Fetched struct {
	ID    string
	Doc   Document
	Found bool
	Err   error
}
