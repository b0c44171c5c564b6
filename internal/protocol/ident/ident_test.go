package ident

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestIsValid(t *testing.T) {
	valid := []string{"a", "Alice", "Team 7", "0123456789abcdef", "UPPER lower 09"}
	for _, s := range valid {
		if !IsValid(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	invalid := []string{"", strings.Repeat("a", 17), "no!", "tab\there", "dash-name", "#TEAMS", "ümlaut"}
	for _, s := range invalid {
		if IsValid(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	teams := []string{"Red", "Blue", "Team 3"}
	statuses := []string{"Busy", "Free"}
	body := Pack(
		Category{Delim: DelimTeams, Items: teams},
		Category{Delim: DelimStatuses, Items: statuses},
	)

	wantLen := (2 + len(teams) + len(statuses)) * SlotSize
	if len(body) != wantLen+1 || body[len(body)-1] != '#' {
		t.Fatalf("bad description shape: len=%d last=%q", len(body), body[len(body)-1])
	}

	gotTeams, err := Unpack(body, DelimTeams)
	if err != nil {
		t.Fatalf("unpack teams: %v", err)
	}
	gotStatuses, err := Unpack(body, DelimStatuses)
	if err != nil {
		t.Fatalf("unpack statuses: %v", err)
	}
	assertEqual(t, gotTeams, teams)
	assertEqual(t, gotStatuses, statuses)
}

func TestUnpackMissingDelimiter(t *testing.T) {
	body := Pack(Category{Delim: DelimTeams, Items: []string{"Red"}})
	if _, err := Unpack(body, DelimUsers); !errors.Is(err, ErrDelimiterNotFound) {
		t.Fatalf("expected ErrDelimiterNotFound, got %v", err)
	}
}

func TestUnpackPreservesVacantSlots(t *testing.T) {
	names := []string{"Alice", "", "Carol"}
	body := Pack(Category{Delim: DelimUsers, Items: names})
	got, err := Unpack(body, DelimUsers)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	assertEqual(t, got, names)
}

func TestStatusVectorAfterPaddedList(t *testing.T) {
	names := []string{"Alice", "", "Carol"}
	vec := []byte{1, 0xff, 0}
	body := append(Pack(Category{Delim: DelimUsers, Items: names}), vec...)

	gotNames, err := Unpack(body, DelimUsers)
	if err != nil {
		t.Fatalf("unpack names: %v", err)
	}
	assertEqual(t, gotNames, names)

	gotVec, err := StatusVector(body)
	if err != nil {
		t.Fatalf("status vector: %v", err)
	}
	if !bytes.Equal(gotVec, vec) {
		t.Fatalf("status vector mismatch: got=%v want=%v", gotVec, vec)
	}
}

func TestStatusVectorMissingTerminator(t *testing.T) {
	body := []byte("#USERS")
	if _, err := StatusVector(body); !errors.Is(err, ErrNoStatusVector) {
		t.Fatalf("expected ErrNoStatusVector, got %v", err)
	}
}

func TestTrimPadding(t *testing.T) {
	if got := TrimPadding([]byte{'a', 'b', 0, 0}); string(got) != "ab" {
		t.Fatalf("trim mismatch: %q", got)
	}
	if got := TrimPadding([]byte{0, 0}); len(got) != 0 {
		t.Fatalf("all-zero slot should trim to empty, got %q", got)
	}
	if got := TrimPadding([]byte{'a', 0, 'b'}); string(got) != "a\x00b" {
		t.Fatalf("interior zeros must survive, got %q", got)
	}
}

func assertEqual(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("element %d mismatch: got=%q want=%q", i, got[i], want[i])
		}
	}
}
