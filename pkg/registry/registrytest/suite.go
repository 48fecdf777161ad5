// Package registrytest is a conformance suite every registry.Store backend
// must pass.
package registrytest

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/marmos91/binlayout/pkg/registry"
)

// StoreFactory creates a fresh, empty Store for each test. It may use
// t.TempDir() and t.Cleanup().
type StoreFactory func(t *testing.T) registry.Store

// RunConformanceSuite runs every conformance test against factory.
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Helper()

	t.Run("PutGet", func(t *testing.T) { testPutGet(t, factory(t)) })
	t.Run("ReplaceKeepsIdentity", func(t *testing.T) { testReplace(t, factory(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, factory(t)) })
	t.Run("ListSorted", func(t *testing.T) { testListSorted(t, factory(t)) })
	t.Run("ListEmpty", func(t *testing.T) { testListEmpty(t, factory(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, factory(t)) })
	t.Run("RejectsInvalid", func(t *testing.T) { testRejectsInvalid(t, factory(t)) })
	t.Run("ReturnsCopies", func(t *testing.T) { testReturnsCopies(t, factory(t)) })
	t.Run("Concurrent", func(t *testing.T) { testConcurrent(t, factory(t)) })
}

// Point is the sample descriptor stored by the suite.
func Point() layout.Descriptor {
	return layout.NewStruct("point",
		layout.NewScalar("x", layout.KindFloat, layout.Bytes(4)),
		layout.NewScalar("y", layout.KindFloat, layout.Bytes(4)),
		layout.NewScalar("flags", layout.KindByte, layout.Bits(3)).WithOrder(layout.Big),
		layout.NewFixedText("tag", 4),
		layout.NewArray("pad", layout.NewText("s"), 2),
	)
}

func mustPut(t *testing.T, s registry.Store, l *registry.Layout) {
	t.Helper()
	if err := s.Put(t.Context(), l); err != nil {
		t.Fatalf("Put(%q) failed: %v", l.Name, err)
	}
}

func testPutGet(t *testing.T, s registry.Store) {
	l := &registry.Layout{Name: "point", Description: "a 2D point", Descriptor: Point()}
	mustPut(t, s, l)

	if l.ID == uuid.Nil {
		t.Fatal("Put did not assign an ID")
	}
	if l.CreatedAt.IsZero() || !l.CreatedAt.Equal(l.UpdatedAt) {
		t.Fatalf("unexpected timestamps: created=%v updated=%v", l.CreatedAt, l.UpdatedAt)
	}

	got, err := s.Get(t.Context(), "point")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != l.ID {
		t.Errorf("ID = %v, want %v", got.ID, l.ID)
	}
	if got.Description != "a 2D point" {
		t.Errorf("Description = %q", got.Description)
	}
	if !got.CreatedAt.Equal(l.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, l.CreatedAt)
	}
	if !reflect.DeepEqual(got.Descriptor, Point()) {
		t.Errorf("Descriptor mismatch:\n got %#v\nwant %#v", got.Descriptor, Point())
	}
}

func testReplace(t *testing.T, s registry.Store) {
	first := &registry.Layout{Name: "p", Descriptor: Point()}
	mustPut(t, s, first)

	second := &registry.Layout{Name: "p", Description: "v2", Descriptor: layout.NewText("s")}
	mustPut(t, s, second)

	got, err := s.Get(t.Context(), "p")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("ID changed on replace: %v -> %v", first.ID, got.ID)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed on replace")
	}
	if got.UpdatedAt.Before(first.UpdatedAt) {
		t.Errorf("UpdatedAt went backwards")
	}
	if got.Description != "v2" {
		t.Errorf("Description = %q, want v2", got.Description)
	}
	if _, ok := got.Descriptor.(*layout.Text); !ok {
		t.Errorf("Descriptor = %T, want *layout.Text", got.Descriptor)
	}
}

func testGetMissing(t *testing.T, s registry.Store) {
	_, err := s.Get(t.Context(), "nope")
	if !errors.Is(err, registry.ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func testListSorted(t *testing.T, s registry.Store) {
	for _, name := range []string{"charlie", "alpha", "bravo"} {
		mustPut(t, s, &registry.Layout{Name: name, Descriptor: Point()})
	}

	ls, err := s.List(t.Context())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	var names []string
	for _, l := range ls {
		names = append(names, l.Name)
	}
	want := []string{"alpha", "bravo", "charlie"}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Errorf("List names = %v, want %v", names, want)
	}
}

func testListEmpty(t *testing.T, s registry.Store) {
	ls, err := s.List(t.Context())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ls) != 0 {
		t.Errorf("List on empty store returned %d layouts", len(ls))
	}
}

func testDelete(t *testing.T, s registry.Store) {
	mustPut(t, s, &registry.Layout{Name: "gone", Descriptor: Point()})

	if err := s.Delete(t.Context(), "gone"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(t.Context(), "gone"); !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("Get after Delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(t.Context(), "gone"); !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func testRejectsInvalid(t *testing.T, s registry.Store) {
	for _, name := range []string{"", "has space", "../up", "-lead"} {
		err := s.Put(t.Context(), &registry.Layout{Name: name, Descriptor: Point()})
		if !errors.Is(err, registry.ErrInvalidName) {
			t.Errorf("Put(%q) error = %v, want ErrInvalidName", name, err)
		}
	}

	err := s.Put(t.Context(), &registry.Layout{Name: "empty"})
	if !errors.Is(err, registry.ErrInvalidLayout) {
		t.Errorf("Put without descriptor error = %v, want ErrInvalidLayout", err)
	}

	bad := layout.NewScalar("x", layout.KindInt, layout.Bytes(0))
	err = s.Put(t.Context(), &registry.Layout{Name: "bad", Descriptor: bad})
	if !errors.Is(err, registry.ErrInvalidLayout) {
		t.Errorf("Put with invalid descriptor error = %v, want ErrInvalidLayout", err)
	}

	if err := s.Put(t.Context(), nil); !errors.Is(err, registry.ErrInvalidLayout) {
		t.Errorf("Put(nil) error = %v, want ErrInvalidLayout", err)
	}
}

func testReturnsCopies(t *testing.T, s registry.Store) {
	mustPut(t, s, &registry.Layout{Name: "p", Description: "orig", Descriptor: Point()})

	got, err := s.Get(t.Context(), "p")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	got.Description = "mutated"

	again, err := s.Get(t.Context(), "p")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if again.Description != "orig" {
		t.Errorf("stored layout was mutated through a returned copy")
	}
}

func testConcurrent(t *testing.T, s registry.Store) {
	var wg sync.WaitGroup
	errs := make(chan error, 64)

	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("l%d", i)
			for range 4 {
				if err := s.Put(t.Context(), &registry.Layout{Name: name, Descriptor: Point()}); err != nil {
					errs <- err
					return
				}
				if _, err := s.Get(t.Context(), name); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent operation failed: %v", err)
	}

	ls, err := s.List(t.Context())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ls) != 8 {
		t.Errorf("List returned %d layouts, want 8", len(ls))
	}
}
