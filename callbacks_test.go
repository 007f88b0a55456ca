package main

import "testing"

func TestMarkDoneRowRoundTrip(t *testing.T) {
	data := encodeMarkDoneRow("bob", 42)
	if data != "mark_done:bob:42" {
		t.Fatalf("encoded = %q", data)
	}
	handle, row, showList, ok := decodeMarkDone(data)
	if !ok || showList {
		t.Fatalf("decode = (%q, %d, %v, %v)", handle, row, showList, ok)
	}
	if handle != "bob" || row != 42 {
		t.Fatalf("round-trip = (%q, %d), want (bob, 42)", handle, row)
	}
}

func TestShowListRoundTrip(t *testing.T) {
	handle, row, showList, ok := decodeMarkDone(encodeShowList("bob"))
	if !ok || !showList {
		t.Fatalf("show_list must decode as the list branch, got (%q, %d, %v, %v)", handle, row, showList, ok)
	}
	if handle != "bob" {
		t.Fatalf("handle = %q, want bob", handle)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, data := range []string{
		"",
		"done:5",
		"mark_done:bob",
		"mark_done::42",
		"mark_done:bob:zero",
		"mark_done:bob:-1",
		"mark_done:bob:0",
	} {
		if _, _, _, ok := decodeMarkDone(data); ok {
			t.Fatalf("decodeMarkDone(%q) accepted", data)
		}
	}
}
