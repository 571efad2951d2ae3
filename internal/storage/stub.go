package storage

import (
	"context"
	"errors"
)

type StubBackend struct {
	WriteFunc func(ctx context.Context, objects Objects) error
	ReadFunc  func(ctx context.Context) (Objects, error)
}

var _ Backend = &StubBackend{}

func (s *StubBackend) Write(ctx context.Context, objects Objects) error {
	if s.WriteFunc == nil {
		return errors.New("Write() not implemented by stub")
	}
	return s.WriteFunc(ctx, objects)
}

func (s *StubBackend) Read(ctx context.Context) (Objects, error) {
	if s.ReadFunc == nil {
		return nil, errors.New("Read() not implemented by stub")
	}
	return s.ReadFunc(ctx)
}
