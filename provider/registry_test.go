package provider

import (
	"context"
	"testing"
)

type fakeProvider struct {
	name      string
	available bool
}

func (f *fakeProvider) Name() string                       { return f.name }
func (f *fakeProvider) IsAvailable(_ context.Context) bool { return f.available }

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry[*fakeProvider]()
	reg.RegisterFactory("fake", func(cfg map[string]any) (*fakeProvider, error) {
		name, _ := cfg["name"].(string)
		return &fakeProvider{name: name, available: true}, nil
	})

	p, err := reg.Create("fake", map[string]any{"name": "primary"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if p.Name() != "primary" {
		t.Errorf("Name() = %q, want %q", p.Name(), "primary")
	}

	// Created instances are cached for later lookup.
	cached, ok := reg.Get("fake")
	if !ok || cached != p {
		t.Error("Get() should return the created instance")
	}
}

func TestRegistryCreateUnknown(t *testing.T) {
	reg := NewRegistry[*fakeProvider]()
	if _, err := reg.Create("missing", nil); err == nil {
		t.Fatal("expected error for unregistered factory")
	}
}

func TestRegistryInstanceCache(t *testing.T) {
	reg := NewRegistry[*fakeProvider]()
	inst := &fakeProvider{name: "cached"}
	reg.Set("cached", inst)

	got, ok := reg.Get("cached")
	if !ok {
		t.Fatal("expected cached instance")
	}
	if got != inst {
		t.Error("Get() returned a different instance")
	}

	if _, ok := reg.Get("absent"); ok {
		t.Error("Get() found an instance that was never set")
	}
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry[*fakeProvider]()
	factory := func(cfg map[string]any) (*fakeProvider, error) { return &fakeProvider{}, nil }
	reg.RegisterFactory("zeta", factory)
	reg.RegisterFactory("alpha", factory)

	names := reg.List()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("List() = %v, want sorted [alpha zeta]", names)
	}
}
