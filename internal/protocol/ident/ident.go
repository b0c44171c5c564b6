// Package ident implements the identifier rules shared by team names,
// status names and display names, and the padded-slot list sub-format used
// to carry several named lists of identifiers in one flat message body.
package ident

import (
	"errors"
	"fmt"
	"strings"
)

// SlotSize is the fixed width of one identifier slot. Identifiers shorter
// than a slot are left-justified and zero-padded to this width.
const SlotSize = 16

// Delimiter slots recognised by the protocol. A delimiter marks the start
// of a named sub-list; identifiers may never start with '#'.
const (
	DelimTeams    = "#TEAMS"
	DelimStatuses = "#STATUSES"
	DelimUsers    = "#USERS"
)

// terminator closes a padded description. It is a single raw byte, not a
// full slot.
const terminator = '#'

var (
	ErrDelimiterNotFound = errors.New("ident: delimiter not found")
	ErrNoStatusVector    = errors.New("ident: status vector not found")
)

// IsValid reports whether s is a legal identifier: 1 to SlotSize
// characters, each a letter, digit or space.
func IsValid(s string) bool {
	if len(s) < 1 || len(s) > SlotSize {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == ' ':
		default:
			return false
		}
	}
	return true
}

// Category is one named sub-list of a padded description.
type Category struct {
	Delim string
	Items []string
}

// Pack encodes categories as a sequence of fixed-width slots, each
// category introduced by its delimiter slot, and closes the description
// with the single-byte terminator. A team-status body appends its raw
// status vector directly after that terminator.
func Pack(cats ...Category) []byte {
	slots := 0
	for _, cat := range cats {
		slots += 1 + len(cat.Items)
	}
	out := make([]byte, slots*SlotSize+1)
	out[len(out)-1] = terminator

	i := 0
	put := func(s string) {
		copy(out[i:i+SlotSize], s)
		i += SlotSize
	}
	for _, cat := range cats {
		put(cat.Delim)
		for _, item := range cat.Items {
			put(item)
		}
	}
	return out
}

// Unpack scans body slot by slot until it finds the exact delimiter, then
// collects identifiers until the next delimiter slot or the end of the
// body. Vacant slots come back as empty strings, preserving positions.
func Unpack(body []byte, delim string) ([]string, error) {
	i := 0
	for {
		slot, ok := slotAt(body, i)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrDelimiterNotFound, delim)
		}
		i += SlotSize
		if slot == delim {
			break
		}
	}

	var idents []string
	for {
		slot, ok := slotAt(body, i)
		if !ok || strings.HasPrefix(slot, "#") {
			return idents, nil
		}
		idents = append(idents, slot)
		i += SlotSize
	}
}

// StatusVector returns the raw status bytes of a team-status body: the
// bytes following the terminator that closes the padded username list.
func StatusVector(body []byte) ([]byte, error) {
	// Start past the '#' of the leading delimiter slot.
	i := 1
	for i < len(body) && body[i] != terminator {
		i++
	}
	i++
	if i > len(body) {
		return nil, ErrNoStatusVector
	}
	return body[i:], nil
}

// TrimPadding strips trailing zero bytes.
func TrimPadding(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return b[:end]
}

// slotAt reads the slot starting at offset i, trimmed of padding. A short
// final slot is padded implicitly. ok is false past the end of the body.
func slotAt(body []byte, i int) (slot string, ok bool) {
	if i >= len(body) {
		return "", false
	}
	end := i + SlotSize
	if end > len(body) {
		end = len(body)
	}
	return string(TrimPadding(body[i:end])), true
}
