// Package markers locates the conflict blocks git merge-file leaves behind.
package markers

import (
	"bytes"
	"errors"
	"fmt"
)

var ErrMalformedConflict = errors.New("malformed conflict markers")

var (
	markStart = []byte("<<<<<<<")
	markBase  = []byte("|||||||")
	markMid   = []byte("=======")
	markEnd   = []byte(">>>>>>>")
)

// Block is one conflict, identified by the 1-based lines of its start and
// end markers.
type Block struct {
	StartLine int
	EndLine   int
	HasBase   bool
}

type state int

const (
	outside state = iota
	inOurs
	inBase
	inTheirs
)

// Scan returns the conflict blocks in data.
//
// It is strict: once a start marker is seen, a separator and an end marker
// must follow (optionally with a diff3 base section in between).
func Scan(data []byte) ([]Block, error) {
	var blocks []Block
	var cur Block
	st := outside

	line := 0
	for rest := data; len(rest) > 0; {
		line++
		var l []byte
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			l, rest = rest[:i], rest[i+1:]
		} else {
			l, rest = rest, nil
		}

		switch st {
		case outside:
			if bytes.HasPrefix(l, markStart) {
				cur = Block{StartLine: line}
				st = inOurs
			}
		case inOurs:
			switch {
			case bytes.HasPrefix(l, markBase):
				cur.HasBase = true
				st = inBase
			case bytes.HasPrefix(l, markMid):
				st = inTheirs
			}
		case inBase:
			if bytes.HasPrefix(l, markMid) {
				st = inTheirs
			}
		case inTheirs:
			if bytes.HasPrefix(l, markEnd) {
				cur.EndLine = line
				blocks = append(blocks, cur)
				st = outside
			}
		}
	}

	switch st {
	case inOurs:
		return nil, fmt.Errorf("%w: missing separator after line %d", ErrMalformedConflict, cur.StartLine)
	case inBase:
		return nil, fmt.Errorf("%w: missing ======= after base section at line %d", ErrMalformedConflict, cur.StartLine)
	case inTheirs:
		return nil, fmt.Errorf("%w: missing end marker for line %d", ErrMalformedConflict, cur.StartLine)
	}
	return blocks, nil
}
