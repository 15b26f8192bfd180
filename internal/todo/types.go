// Package todo defines the task record, the task list, and its persisted snapshot.
package todo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
)

// Number is the user-facing task number. It keeps the JSON kind it was read
// with so a snapshot written by another client re-encodes unchanged.
type Number struct {
	raw  string
	text bool
}

// NumberOf returns a numeric Number.
func NumberOf(n int) Number {
	return Number{raw: strconv.Itoa(n)}
}

// ParseNumber returns a Number holding s as text, the way form input arrives.
func ParseNumber(s string) Number {
	return Number{raw: s, text: true}
}

// String returns the number as it is displayed and searched.
func (n Number) String() string {
	return n.raw
}

// IsZero reports whether the number is empty.
func (n Number) IsZero() bool {
	return n.raw == ""
}

// MarshalJSON writes a JSON string or a JSON number, matching how it was read.
func (n Number) MarshalJSON() ([]byte, error) {
	if n.text || n.raw == "" {
		return json.Marshal(n.raw)
	}
	return []byte(n.raw), nil
}

// UnmarshalJSON accepts a JSON string or a JSON number.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("number: %w", err)
		}
		*n = Number{raw: s, text: true}
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("number: %w", err)
	}
	*n = Number{raw: canonicalNumber(num)}
	return nil
}

// canonicalNumber renders integral values in plain decimal, so 1e2 and 2.0
// display and search as "100" and "2". Other values keep their JSON text.
func canonicalNumber(num json.Number) string {
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) >= 1e21 {
		return num.String()
	}
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Task is a single to-do item.
type Task struct {
	// ID is assigned in memory and never persisted.
	ID        uuid.UUID `json:"-"`
	Number    Number    `json:"number"`
	Title     string    `json:"title"`
	IsChecked bool      `json:"isChecked"`
	DueDate   string    `json:"dueDate"`
}

// NewTask returns an unchecked task with a fresh in-memory ID.
func NewTask(number Number, title, dueDate string) Task {
	return Task{
		ID:      uuid.New(),
		Number:  number,
		Title:   title,
		DueDate: dueDate,
	}
}

// Equal compares the persisted fields of two tasks. The in-memory ID is ignored.
func (t Task) Equal(other Task) bool {
	return t.Number.String() == other.Number.String() &&
		t.Title == other.Title &&
		t.IsChecked == other.IsChecked &&
		t.DueDate == other.DueDate
}

// List is an ordered sequence of tasks. Order is display and reorder order.
type List []Task

// Clone returns a copy of the list that shares no backing array with l.
func (l List) Clone() List {
	if l == nil {
		return List{}
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Equal reports whether both lists hold field-wise equal tasks in the same order.
func (l List) Equal(other List) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if !l[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// SeedDueDate is the due date carried by every seed task.
const SeedDueDate = "2023-04-01"

// Seed returns the built-in list used when no usable snapshot exists.
func Seed() List {
	seed := []struct {
		title   string
		checked bool
	}{
		{"Idée", true},
		{"Marché", true},
		{"Wireframe", true},
		{"Design", true},
		{"Landingpage", true},
		{"Développement", false},
		{"Publish", false},
		{"Pub", false},
		{"Feedback", false},
	}

	list := make(List, 0, len(seed))
	for i, s := range seed {
		task := NewTask(NumberOf(i+1), s.title, SeedDueDate)
		task.IsChecked = s.checked
		list = append(list, task)
	}
	return list
}
