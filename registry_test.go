package main

import (
	"errors"
	"reflect"
	"testing"
)

func testRegistry() *Registry {
	return NewRegistry([]Identity{
		{Handle: "hendrik_w", Aliases: []string{"he", "hendrik"}, Shortcut: "he", Location: TableLocation{StartRow: 3}},
		{Handle: "aaron_mk", Aliases: []string{"aaron"}, Shortcut: "aaron", Location: TableLocation{SearchStart: 10, SearchEnd: 120}},
	})
}

func TestResolveMentionAndAlias(t *testing.T) {
	r := testRegistry()

	id, err := r.Resolve("@hendrik_w")
	if err != nil || id.Handle != "hendrik_w" {
		t.Fatalf("mention: got (%v, %v)", id.Handle, err)
	}
	id, err = r.Resolve("AARON")
	if err != nil || id.Handle != "aaron_mk" {
		t.Fatalf("alias is case-insensitive: got (%v, %v)", id.Handle, err)
	}
	// Handles match case-sensitively; the case-insensitive path is aliases only.
	if _, err := r.Resolve("Hendrik_W"); err == nil {
		t.Fatalf("expected case-sensitive handle match to fail")
	}
}

func TestResolveUnknownListsOptions(t *testing.T) {
	r := testRegistry()
	_, err := r.Resolve("XYZ")
	var unknown *UnknownIdentityError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownIdentityError, got %v", err)
	}
	want := []string{"@aaron_mk", "@hendrik_w", "aaron", "he", "hendrik"}
	if !reflect.DeepEqual(unknown.Known, want) {
		t.Fatalf("known options = %#v, want %#v", unknown.Known, want)
	}
}

func TestResolveSelf(t *testing.T) {
	r := testRegistry()
	id, err := r.ResolveSelf("Aaron_MK")
	if err != nil || id.Handle != "aaron_mk" {
		t.Fatalf("self-resolve is case-insensitive: got (%v, %v)", id.Handle, err)
	}
	if _, err := r.ResolveSelf(""); err == nil {
		t.Fatalf("expected empty handle to fail")
	}
}

func TestShortcut(t *testing.T) {
	r := testRegistry()
	id, ok := r.Shortcut("he")
	if !ok || id.Handle != "hendrik_w" {
		t.Fatalf("shortcut: got (%v, %v)", id.Handle, ok)
	}
	if _, ok := r.Shortcut("nobody"); ok {
		t.Fatalf("unclaimed shortcut should not resolve")
	}
}

func TestOthers(t *testing.T) {
	r := testRegistry()
	others := r.Others("hendrik_w")
	if len(others) != 1 || others[0].Handle != "aaron_mk" {
		t.Fatalf("others = %#v", others)
	}
}
