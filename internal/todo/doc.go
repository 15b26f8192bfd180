// Package todo defines the task record, the task list, and its persisted snapshot.
//
// A snapshot is the whole list serialized as one JSON array, written compactly
// into a single key-value slot:
//
//	[
//	  {"number": 1, "title": "Idée", "isChecked": true, "dueDate": "2023-04-01"},
//	  {"number": "10", "title": "Launch", "isChecked": false, "dueDate": ""}
//	]
//
// Field names are kept verbatim so snapshots stay interchangeable with other
// readers of the same slot.
//
// # Number
//
// The number is user supplied and may be stored as a JSON number or a JSON
// string. The original kind is preserved when a snapshot is re-encoded. Numbers
// are not unique and are never used as a lookup key; a task's position in the
// list is its identity.
//
// # Validation
//
// Decoded snapshots are checked against an embedded JSON Schema
// (draft 2020-12):
//   - the document is an array
//   - each item has number (integer or string), title (string), isChecked (boolean)
//   - dueDate, when present, is a string
//
// Schema failures are reported as *ValidationError values carrying a
// dot/bracket path such as "[3].title".
//
// # Seed
//
// Seed returns the built-in nine-task list used when no usable snapshot exists.
package todo
