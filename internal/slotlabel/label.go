package slotlabel

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	partRe  = regexp.MustCompile(`(?i)[\s\-–:,(]*\bpart\s*#?\s*(\d+)\b\)?`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// ParsedLabel holds the structured data parsed from a slot description.
type ParsedLabel struct {
	// Session is the normalized description with any part marker removed.
	Session string
	// Part is the part number, 0 when the slot is a single session.
	Part int
}

// MultiPart reports whether the description named a part.
func (p ParsedLabel) MultiPart() bool {
	return p.Part > 0
}

// Parse extracts the session key and part number from a slot description
// such as "Elysian Fields - Part 2".
func Parse(raw string) ParsedLabel {
	s := strings.TrimSpace(spaceRe.ReplaceAllString(raw, " "))

	part := 0
	if loc := partRe.FindStringSubmatchIndex(s); loc != nil {
		if n, err := strconv.Atoi(s[loc[2]:loc[3]]); err == nil && n > 0 {
			part = n
			s = strings.TrimSpace(s[:loc[0]] + " " + s[loc[1]:])
		}
	}

	s = strings.Trim(s, " -–:,")
	return ParsedLabel{
		Session: strings.ToLower(strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))),
		Part:    part,
	}
}
