// Package categorytree reads an indented outline of category names and
// inserts it into the category repository, parents before children.
package categorytree

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/Veraticus/bookkeeper/internal/common"
)

// DefaultOutline is the category tree seeded on first run.
const DefaultOutline = `
produce
    meat
        raw meat
        meat products
    sweets
books
clothes
`

// Pair is one outline entry and the name of its parent.
type Pair struct {
	Name   string
	Parent string
	// HasParent is false for top-level entries.
	HasParent bool
}

type frame struct {
	name   string
	indent int
	root   bool
}

// Parse reads an outline from r. See ParseLines.
func Parse(r io.Reader) ([]Pair, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read outline: %w", err)
	}
	return ParseLines(lines)
}

// ParseLines turns indented lines into child-parent pairs in the order the
// lines appear, which is also a valid insertion order. Deeper indentation
// nests a line under the previous one. Blank lines are skipped. A line that
// unindents to a depth no enclosing line has fails with
// common.ErrIndentationMismatch.
func ParseLines(lines []string) ([]Pair, error) {
	parents := []frame{}
	last := frame{indent: -1, root: true}
	var pairs []Pair

	lineNo := 0
	for _, line := range lines {
		lineNo++
		if strings.TrimSpace(line) == "" {
			continue
		}

		indent, name := split(line)
		switch {
		case indent > last.indent:
			parents = append(parents, last)
		case indent < last.indent:
			for indent < last.indent {
				last = parents[len(parents)-1]
				parents = parents[:len(parents)-1]
			}
			if indent != last.indent {
				return nil, fmt.Errorf("line %d %q: %w", lineNo, name, common.ErrIndentationMismatch)
			}
		}

		parent := parents[len(parents)-1]
		pairs = append(pairs, Pair{Name: name, Parent: parent.name, HasParent: !parent.root})
		last = frame{name: name, indent: indent}
	}

	return pairs, nil
}

// split returns the width of the leading whitespace and the trimmed name.
func split(line string) (int, string) {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	indent := len([]rune(line)) - len([]rune(trimmed))
	return indent, strings.TrimRightFunc(trimmed, unicode.IsSpace)
}
