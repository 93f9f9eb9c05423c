// Package progress tracks the translation status of string IDs across
// tool exports: a CSV listing of all project strings, a CSV of
// out-of-date strings, and a NearInfinity TXT export of unused strings.
// It renders the merged state as a growing PNG strip chart and an ASCII
// history table.
package progress

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// State is the set of status flags attached to one string ID.
type State uint8

const (
	// Accepted strings have an approved translation.
	Accepted State = 1 << iota
	// OutOfDate strings changed upstream after being translated.
	OutOfDate
	// Unused strings are not referenced by the game.
	Unused
)

// Snapshot holds the merged translation state of all project strings,
// ordered by ID.
type Snapshot struct {
	IDs    []int
	States map[int]State
}

// NewSnapshot merges the three exports. Every complete ID starts out
// accepted; an out-of-date listing revokes that; unused IDs get flagged
// on top. IDs appearing only in the out-of-date or unused listings are
// not part of the project and are dropped.
func NewSnapshot(complete, outOfDate, unused []int) *Snapshot {
	s := &Snapshot{States: make(map[int]State, len(complete))}
	for _, id := range complete {
		if _, ok := s.States[id]; !ok {
			s.IDs = append(s.IDs, id)
		}
		s.States[id] = Accepted
	}
	sort.Ints(s.IDs)
	for _, id := range outOfDate {
		if _, ok := s.States[id]; ok {
			s.States[id] = s.States[id]&^Accepted | OutOfDate
		}
	}
	for _, id := range unused {
		if _, ok := s.States[id]; ok {
			s.States[id] |= Unused
		}
	}
	return s
}

// Count returns the number of IDs carrying the given flag.
func (s *Snapshot) Count(flag State) int {
	n := 0
	for _, state := range s.States {
		if state&flag != 0 {
			n++
		}
	}
	return n
}

// Len returns the number of project strings.
func (s *Snapshot) Len() int { return len(s.IDs) }

// IDsFromCSV extracts the string IDs from the first column of a
// translation tool export. The export quotes every cell; lines whose
// first cell is not a quoted integer are skipped, since the files carry
// free-form header rows.
func IDsFromCSV(r io.Reader) ([]int, error) {
	var ids []int
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 1 || line[0] != '"' {
			continue
		}
		cell, _, _ := strings.Cut(line[1:], `","`)
		cell = strings.TrimSuffix(cell, `"`)
		if id, err := strconv.Atoi(cell); err == nil {
			ids = append(ids, id)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan csv: %w", err)
	}
	return dedupeSorted(ids), nil
}

var stringRefPattern = regexp.MustCompile(`^StringRef: (\d+) `)

// IDsFromTXT extracts the string IDs from a NearInfinity string listing,
// one "StringRef: <id> ..." line per string.
func IDsFromTXT(r io.Reader) ([]int, error) {
	var ids []int
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if m := stringRefPattern.FindStringSubmatch(scanner.Text()); m != nil {
			id, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan txt: %w", err)
	}
	return dedupeSorted(ids), nil
}

func dedupeSorted(ids []int) []int {
	sort.Ints(ids)
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || id != ids[i-1] {
			out = append(out, id)
		}
	}
	return out
}
