package build

import (
	"slices"
	"testing"
)

func TestEnv_KeepsInsertionOrder(t *testing.T) {
	env := NewEnv()
	env.Set("OH_PLATFORM", "Linux-x64")
	env.Set("BUILDDIR", "buildhudson")
	env.Set("OH_PLATFORM", "Linux-ARM")

	if !slices.Equal(env.Keys(), []string{"OH_PLATFORM", "BUILDDIR"}) {
		t.Errorf("unexpected keys %q", env.Keys())
	}
	if !slices.Equal(env.Environ(), []string{"OH_PLATFORM=Linux-ARM", "BUILDDIR=buildhudson"}) {
		t.Errorf("unexpected environ %q", env.Environ())
	}
}

func TestEnvFromEnviron(t *testing.T) {
	env := EnvFromEnviron([]string{"A=1", "B=x=y", "broken", "=hidden", "A=2"})

	if env.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d: %q", env.Len(), env.Keys())
	}
	if env.Get("A") != "2" || env.Get("B") != "x=y" {
		t.Errorf("unexpected values %v", env.Snapshot())
	}
}

func TestEnv_UpdateDeleteLookup(t *testing.T) {
	env := NewEnv()
	env.Update(map[string]string{"Z": "26", "A": "1"})
	if !slices.Equal(env.Keys(), []string{"A", "Z"}) {
		t.Errorf("expected sorted insertion from Update, got %q", env.Keys())
	}

	env.Delete("A")
	env.Delete("missing")
	if _, ok := env.Lookup("A"); ok {
		t.Error("expected A to be deleted")
	}
	if !slices.Equal(env.Keys(), []string{"Z"}) {
		t.Errorf("unexpected keys %q", env.Keys())
	}
}

func TestEnv_SnapshotAndCloneAreIndependent(t *testing.T) {
	env := NewEnv()
	env.Set("A", "1")

	snap := env.Snapshot()
	clone := env.Clone()
	env.Set("A", "2")
	clone.Set("B", "3")

	if snap["A"] != "1" {
		t.Errorf("snapshot changed: %v", snap)
	}
	if clone.Get("A") != "1" {
		t.Errorf("clone changed: %v", clone.Snapshot())
	}
	if _, ok := env.Lookup("B"); ok {
		t.Error("clone wrote into original")
	}
}
