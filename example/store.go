package main

import (
	"fmt"
	"sync"

	"github.com/pthm/inflate/example/components"
)

// Store is an in-memory todo store.
type Store struct {
	mu     sync.RWMutex
	todos  []*components.Todo
	nextID int
}

// NewStore creates a new store with sample data.
func NewStore() *Store {
	s := &Store{nextID: 1}

	s.Add("Buy groceries")
	s.Add("Review PR #123")
	s.Add("Write documentation")
	s.Toggle("todo-2")

	return s
}

// Add creates a new todo and returns its ID.
func (s *Store) Add(title string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("todo-%d", s.nextID)
	s.nextID++
	s.todos = append(s.todos, &components.Todo{ID: id, Title: title})
	return id
}

// Toggle flips the done state of a todo.
func (s *Store) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.todos {
		if t.ID == id {
			t.Done = !t.Done
			return true
		}
	}
	return false
}

// List returns a snapshot of all todos in insertion order.
func (s *Store) List() []components.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]components.Todo, 0, len(s.todos))
	for _, t := range s.todos {
		out = append(out, *t)
	}
	return out
}
