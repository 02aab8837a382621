package phonemizer

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeBackend records its identity so tests can compare handles.
type fakeBackend struct {
	language string
	serial   int
	closed   bool
}

func (f *fakeBackend) Phonemize(_ context.Context, text string) (string, error) {
	return text, nil
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func newCountingFactory() (Factory, *int) {
	built := 0
	factory := func(language string) (Backend, error) {
		built++
		return &fakeBackend{language: language, serial: built}, nil
	}
	return factory, &built
}

func TestPoolCachesPerKey(t *testing.T) {
	factory, built := newCountingFactory()
	pool := NewPool(factory, Languages()...)

	first, err := pool.Get(LangEnglishUS, "worker-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	second, err := pool.Get(LangEnglishUS, "worker-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if first != second {
		t.Error("same (language, worker) key returned distinct handles")
	}

	if *built != 1 {
		t.Errorf("factory called %d times; want 1", *built)
	}
}

func TestPoolIsolatesWorkers(t *testing.T) {
	factory, _ := newCountingFactory()
	pool := NewPool(factory, Languages()...)

	a, err := pool.Get(LangEnglishUS, "worker-a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	b, err := pool.Get(LangEnglishUS, "worker-b")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if a == b {
		t.Error("distinct worker keys shared a backend handle")
	}
}

func TestPoolIsolatesLanguages(t *testing.T) {
	factory, _ := newCountingFactory()
	pool := NewPool(factory, Languages()...)

	en, err := pool.Get(LangEnglishUS, "worker-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	pl, err := pool.Get(LangPolish, "worker-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if en == pl {
		t.Error("distinct languages shared a backend handle")
	}

	if pool.Size() != 2 {
		t.Errorf("pool size = %d; want 2", pool.Size())
	}
}

func TestPoolUnknownLanguage(t *testing.T) {
	factory, built := newCountingFactory()
	pool := NewPool(factory, Languages()...)

	_, err := pool.Get("xx", "worker-1")
	if !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("Get(xx) error = %v; want ErrUnknownLanguage", err)
	}

	if *built != 0 {
		t.Errorf("factory called for unknown language")
	}
}

func TestPoolFactoryErrorNotCached(t *testing.T) {
	calls := 0
	factory := func(string) (Backend, error) {
		calls++
		return nil, fmt.Errorf("boom")
	}
	pool := NewPool(factory, LangEnglishUS)

	for i := 0; i < 2; i++ {
		if _, err := pool.Get(LangEnglishUS, "w"); err == nil {
			t.Fatal("Get succeeded despite factory error")
		}
	}

	if calls != 2 {
		t.Errorf("factory called %d times; want 2 (failures must not be cached)", calls)
	}
}

func TestPoolClose(t *testing.T) {
	factory, _ := newCountingFactory()
	pool := NewPool(factory, Languages()...)

	b, err := pool.Get(LangPolish, "w")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if err := pool.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if !b.(*fakeBackend).closed {
		t.Error("backend not closed by pool teardown")
	}

	if pool.Size() != 0 {
		t.Errorf("pool size after Close = %d; want 0", pool.Size())
	}
}
