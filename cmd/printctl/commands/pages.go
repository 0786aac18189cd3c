package commands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// pageSpec selects pages of one file by name. A nil Pages means every page.
type pageSpec struct {
	Name  string
	Pages []int
}

// parseSpec parses NAME or NAME=RANGES.
func parseSpec(s string) (pageSpec, error) {
	name, ranges, hasRanges := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return pageSpec{}, fmt.Errorf("missing file name in %q", s)
	}
	if !hasRanges {
		return pageSpec{Name: name}, nil
	}
	pages, err := parseRanges(ranges)
	if err != nil {
		return pageSpec{}, fmt.Errorf("%s: %w", name, err)
	}
	return pageSpec{Name: name, Pages: pages}, nil
}

// parseRanges parses "1,3-5" into sorted, de-duplicated 1-based pages.
func parseRanges(s string) ([]int, error) {
	seen := map[int]bool{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		a, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || a < 1 {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		b := a
		if isRange {
			b, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || b < a {
				return nil, fmt.Errorf("invalid range %q", part)
			}
		}
		for p := a; p <= b; p++ {
			seen[p] = true
		}
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("no pages in %q", s)
	}
	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out, nil
}

// resolve returns the pages of a document with total pages that ps
// selects. Pages past the end are dropped.
func (ps pageSpec) resolve(total int) []int {
	if ps.Pages == nil {
		out := make([]int, total)
		for i := range out {
			out[i] = i + 1
		}
		return out
	}
	var out []int
	for _, p := range ps.Pages {
		if p <= total {
			out = append(out, p)
		}
	}
	return out
}
