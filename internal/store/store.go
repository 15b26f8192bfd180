package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/nibzard/tasklist/internal/logging"
	"github.com/nibzard/tasklist/internal/todo"
)

// ErrIndexOutOfRange is returned when a position does not address a task.
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrNoDrag is returned by CompleteDrag when no drag is in progress or the
// grabbed task no longer exists.
var ErrNoDrag = errors.New("no drag in progress")

// Entry is one row of the filtered view.
type Entry struct {
	// Index is the task's position in the full list.
	Index int
	Task  todo.Task
}

// addRequest carries the presence checks applied to new tasks.
type addRequest struct {
	Number string `validate:"required"`
	Title  string `validate:"required"`
}

// Store owns the task list, the active search term and a pending drag.
type Store struct {
	port     Port
	logger   *log.Logger
	validate *validator.Validate

	tasks    todo.List
	search   string
	dragID   uuid.UUID
	dragging bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and persist diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns an empty Store bound to port. Call Load before use.
func New(port Port, opts ...Option) *Store {
	s := &Store{
		port:     port,
		logger:   logging.Discard(),
		validate: validator.New(),
		tasks:    todo.List{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted snapshot. A missing or malformed snapshot is
// replaced by the seed list, which is then persisted. Any other port error is
// returned and leaves the store empty.
func (s *Store) Load() error {
	list, err := s.port.Load()
	switch {
	case err == nil:
		s.tasks = list
		s.logger.Debug("tasks loaded", "count", len(list))
		return nil
	case errors.Is(err, todo.ErrNoSnapshot):
		s.logger.Debug("no snapshot, using seed tasks")
	case errors.Is(err, ErrMalformedSnapshot):
		s.logger.Warn("snapshot unreadable, using seed tasks", "err", err)
	default:
		s.tasks = todo.List{}
		return fmt.Errorf("load tasks: %w", err)
	}

	s.tasks = todo.Seed()
	s.persist()
	return nil
}

// persist writes the whole list. Failures are logged and otherwise ignored.
func (s *Store) persist() {
	if err := s.port.Save(s.tasks); err != nil {
		s.logger.Warn("persist tasks failed", "err", err, "count", len(s.tasks))
		return
	}
	s.logger.Debug("tasks persisted", "count", len(s.tasks))
}

// Tasks returns a copy of the full list in order.
func (s *Store) Tasks() todo.List {
	return s.tasks.Clone()
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// IndexOf returns the position of the task with id, or -1.
func (s *Store) IndexOf(id uuid.UUID) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Add appends an unchecked task. It reports false, and changes nothing, when
// number or title is empty.
func (s *Store) Add(number, title, dueDate string) bool {
	req := addRequest{Number: number, Title: title}
	if err := s.validate.Struct(req); err != nil {
		s.logger.Debug("add rejected", "err", err)
		return false
	}

	task := todo.NewTask(todo.ParseNumber(number), title, dueDate)
	s.tasks = append(s.tasks, task)
	s.logger.Debug("task added", "number", number, "title", title)
	s.persist()
	return true
}

// Delete removes the task at index.
func (s *Store) Delete(index int) error {
	if !s.valid(index) {
		return fmt.Errorf("delete %d: %w", index, ErrIndexOutOfRange)
	}
	if s.dragging && s.tasks[index].ID == s.dragID {
		s.clearDrag()
	}
	s.tasks = append(s.tasks[:index], s.tasks[index+1:]...)
	s.persist()
	return nil
}

// ToggleCheck flips the completion flag of the task at index.
func (s *Store) ToggleCheck(index int) error {
	if !s.valid(index) {
		return fmt.Errorf("toggle %d: %w", index, ErrIndexOutOfRange)
	}
	s.tasks[index].IsChecked = !s.tasks[index].IsChecked
	s.persist()
	return nil
}

// Move removes the task at from and reinserts it at to. The destination is a
// position in the list after removal, so for [A B C D] Move(0, 2) yields
// [B C A D].
func (s *Store) Move(from, to int) error {
	if !s.valid(from) || to < 0 || to > len(s.tasks)-1 {
		return fmt.Errorf("move %d to %d: %w", from, to, ErrIndexOutOfRange)
	}

	moved := s.tasks[from]
	rest := append(s.tasks[:from:from], s.tasks[from+1:]...)

	out := make(todo.List, 0, len(s.tasks))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	s.tasks = out

	s.persist()
	return nil
}

// Search sets the active search term. It never changes the list.
func (s *Store) Search(term string) {
	s.search = term
}

// SearchTerm returns the active search term.
func (s *Store) SearchTerm() string {
	return s.search
}

// FilteredView returns the tasks matching the active term, in list order.
func (s *Store) FilteredView() []Entry {
	out := make([]Entry, 0, len(s.tasks))
	for i, task := range s.tasks {
		if Matches(task, s.search) {
			out = append(out, Entry{Index: i, Task: task})
		}
	}
	return out
}

// Matches reports whether term appears in the task's title (ignoring case),
// its number, or its due date.
func Matches(task todo.Task, term string) bool {
	if strings.Contains(strings.ToLower(task.Title), strings.ToLower(term)) {
		return true
	}
	if strings.Contains(task.Number.String(), term) {
		return true
	}
	return task.DueDate != "" && strings.Contains(task.DueDate, term)
}

// BeginDrag grabs the task at index. The grab follows the task, not the
// position, so moves made before the drop do not retarget it.
func (s *Store) BeginDrag(index int) error {
	if !s.valid(index) {
		return fmt.Errorf("drag %d: %w", index, ErrIndexOutOfRange)
	}
	s.dragID = s.tasks[index].ID
	s.dragging = true
	return nil
}

// CompleteDrag moves the grabbed task to index and clears the drag.
func (s *Store) CompleteDrag(index int) error {
	from, ok := s.Dragging()
	if !ok {
		s.clearDrag()
		return ErrNoDrag
	}
	s.clearDrag()
	return s.Move(from, index)
}

// CancelDrag drops a pending drag.
func (s *Store) CancelDrag() {
	s.clearDrag()
}

// Dragging returns the current position of the grabbed task, if any.
func (s *Store) Dragging() (int, bool) {
	if !s.dragging {
		return 0, false
	}
	from := s.IndexOf(s.dragID)
	if from < 0 {
		return 0, false
	}
	return from, true
}

func (s *Store) clearDrag() {
	s.dragID = uuid.Nil
	s.dragging = false
}

func (s *Store) valid(index int) bool {
	return index >= 0 && index < len(s.tasks)
}
