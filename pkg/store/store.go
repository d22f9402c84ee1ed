// Package store provides in-memory storage for named formulas.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lemonberrylabs/record-formula/pkg/formula"
)

var (
	// ErrNotFound is returned when a formula name is not in the store.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when creating a formula under a taken name.
	ErrAlreadyExists = errors.New("already exists")
)

// Formula is a stored formula together with its parsed tree.
type Formula struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Source      string       `json:"source"`
	RevisionID  string       `json:"revisionId"`
	CreateTime  time.Time    `json:"createTime"`
	UpdateTime  time.Time    `json:"updateTime"`
	Expr        formula.Expr `json:"-"`
}

// Store is a thread-safe in-memory registry of formulas. Every stored
// formula has parsed successfully.
type Store struct {
	mu       sync.RWMutex
	formulas map[string]*Formula

	revCounter int64
}

// New creates a new empty store.
func New() *Store {
	return &Store{
		formulas: make(map[string]*Formula),
	}
}

// CreateFormula parses source and stores it under name. A source that does
// not parse is rejected with an error wrapping *formula.SyntaxError.
func (s *Store) CreateFormula(name, source, description string) (*Formula, error) {
	if name == "" {
		return nil, fmt.Errorf("formula name is required")
	}
	expr, err := formula.ParseExpr(source)
	if err != nil {
		return nil, fmt.Errorf("formula '%s': %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.formulas[name]; exists {
		return nil, fmt.Errorf("formula '%s' %w", name, ErrAlreadyExists)
	}

	s.revCounter++
	now := time.Now()
	f := &Formula{
		Name:        name,
		Description: description,
		Source:      source,
		RevisionID:  fmt.Sprintf("%06d-000", s.revCounter),
		CreateTime:  now,
		UpdateTime:  now,
		Expr:        expr,
	}
	s.formulas[name] = f
	return f.clone(), nil
}

// GetFormula retrieves a formula by name.
func (s *Store) GetFormula(name string) (*Formula, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.formulas[name]
	if !ok {
		return nil, fmt.Errorf("formula '%s' %w", name, ErrNotFound)
	}
	return f.clone(), nil
}

// ListFormulas returns all formulas sorted by name.
func (s *Store) ListFormulas() []*Formula {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Formula, 0, len(s.formulas))
	for _, f := range s.formulas {
		result = append(result, f.clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// UpdateFormula replaces a formula's source and bumps its revision. An
// empty description keeps the current one.
func (s *Store) UpdateFormula(name, source, description string) (*Formula, error) {
	expr, err := formula.ParseExpr(source)
	if err != nil {
		return nil, fmt.Errorf("formula '%s': %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.formulas[name]
	if !ok {
		return nil, fmt.Errorf("formula '%s' %w", name, ErrNotFound)
	}

	s.revCounter++
	f.Source = source
	f.Expr = expr
	if description != "" {
		f.Description = description
	}
	f.RevisionID = fmt.Sprintf("%06d-000", s.revCounter)
	f.UpdateTime = time.Now()

	return f.clone(), nil
}

// DeleteFormula removes a formula.
func (s *Store) DeleteFormula(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.formulas[name]; !ok {
		return fmt.Errorf("formula '%s' %w", name, ErrNotFound)
	}
	delete(s.formulas, name)
	return nil
}

// Len returns the number of stored formulas.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.formulas)
}

// clone returns a copy safe to hand out; the tree is immutable and shared.
func (f *Formula) clone() *Formula {
	c := *f
	return &c
}
