package poll

import (
	"strconv"
	"strings"
)

type CorrectKind int

const (
	CorrectNone CorrectKind = iota
	CorrectByIndex
	CorrectByText
)

// CorrectOption designates the scored answer of a question. It is decided once
// when the row is parsed.
type CorrectOption struct {
	Kind  CorrectKind
	Index int // 1-based, set for CorrectByIndex
	Text  string
}

// ParseCorrectOption reads a CorrectOption cell. An integer is taken as a
// 1-based index, anything else non-empty as the literal option text.
func ParseCorrectOption(raw string) CorrectOption {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CorrectOption{Kind: CorrectNone}
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return CorrectOption{Kind: CorrectByIndex, Index: n}
	}
	return CorrectOption{Kind: CorrectByText, Text: raw}
}

// Resolve returns the 0-based index of the correct option within options.
// ok is false when the poll should be published as a regular poll.
func (c CorrectOption) Resolve(options []string) (int, bool) {
	switch c.Kind {
	case CorrectByIndex:
		if c.Index >= 1 && c.Index <= len(options) {
			return c.Index - 1, true
		}
	case CorrectByText:
		for i, opt := range options {
			if opt == c.Text {
				return i, true
			}
		}
	}
	return 0, false
}

func (c CorrectOption) String() string {
	switch c.Kind {
	case CorrectByIndex:
		return strconv.Itoa(c.Index)
	case CorrectByText:
		return c.Text
	default:
		return ""
	}
}
