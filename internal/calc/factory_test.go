package calc

import (
	"slices"
	"strings"
	"testing"
)

func TestDefaultFactory(t *testing.T) {
	t.Parallel()
	f := NewDefaultFactory()
	names := f.List()
	for _, want := range []string{"big", "mpi"} {
		if !slices.Contains(names, want) {
			t.Errorf("List() = %v, missing %q", names, want)
		}
	}
	if !slices.IsSorted(names) {
		t.Errorf("List() = %v, want sorted", names)
	}

	b1, err := f.Get("mpi")
	if err != nil {
		t.Fatal(err)
	}
	b2, _ := f.Get("mpi")
	if b1 != b2 {
		t.Error("Get should cache backends")
	}
	if b1.Name() != "mpi" || b1.Description() == "" {
		t.Errorf("unexpected backend %q %q", b1.Name(), b1.Description())
	}

	if _, err := f.Get("nope"); err == nil || !strings.Contains(err.Error(), "available") {
		t.Errorf("Get(unknown) error = %v", err)
	}
	if got := len(f.GetAll()); got != len(names) {
		t.Errorf("GetAll() returned %d backends, want %d", got, len(names))
	}
}

func TestFactoryRegister(t *testing.T) {
	t.Parallel()
	f := NewFactory()
	for _, name := range []string{"", "all"} {
		if err := f.Register(name, NewBigBackend); err == nil {
			t.Errorf("Register(%q) should fail", name)
		}
	}
	if err := f.Register("x", nil); err == nil {
		t.Error("Register with nil constructor should fail")
	}
	if err := f.Register("ref", NewBigBackend); err != nil {
		t.Fatal(err)
	}
	if got := f.List(); len(got) != 1 || got[0] != "ref" {
		t.Errorf("List() = %v, want [ref]", got)
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()
	f := NewDefaultFactory()
	all, err := Select(f, "all")
	if err != nil || len(all) < 2 {
		t.Fatalf("Select(all) = %d backends, %v", len(all), err)
	}
	one, err := Select(f, "big")
	if err != nil || len(one) != 1 || one[0].Name() != "big" {
		t.Errorf("Select(big) = %v, %v", one, err)
	}
	if _, err := Select(f, "missing"); err == nil {
		t.Error("Select(missing) should fail")
	}
}
