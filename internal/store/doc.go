// Package store owns the ordered task list and keeps it in sync with a
// persisted snapshot.
//
// A Store is driven one action at a time: each mutation (Add, Delete,
// ToggleCheck, Move, CompleteDrag) runs to completion and then rewrites the
// whole snapshot through its Port. Search only changes the active term;
// FilteredView derives the visible rows from the list and the term.
//
// Tasks are addressed by position. Invalid positions leave the list untouched
// and return ErrIndexOutOfRange.
//
// A Store is not safe for concurrent use.
package store
