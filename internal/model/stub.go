package model

import (
	"context"
	"errors"
)

// StubStorage records calls and delegates to the optional funcs.
type StubStorage struct {
	RegisterFunc func(m *Model)
	PersistFunc  func(ctx context.Context) error

	Registered   map[string]*Model
	PersistCalls int
}

var _ Storage = &StubStorage{}

func (s *StubStorage) Register(m *Model) {
	if s.Registered == nil {
		s.Registered = make(map[string]*Model)
	}
	s.Registered[m.Key()] = m
	if s.RegisterFunc != nil {
		s.RegisterFunc(m)
	}
}

func (s *StubStorage) Persist(ctx context.Context) error {
	s.PersistCalls++
	if s.PersistFunc == nil {
		return nil
	}
	return s.PersistFunc(ctx)
}

// ErrStubPersist is a canned failure for tests.
var ErrStubPersist = errors.New("stub storage: persist failed")
