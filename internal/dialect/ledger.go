package dialect

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// span is the byte range [start, end) of a ledger inside a dump.
type span struct {
	start, end int
}

// ledger is the per-dialect grammar of the schema_migrations block.
type ledger interface {
	// versions returns every version recorded in content, in source order.
	versions(content string) []string
	// locate returns the region replaced by the rendered block.
	locate(content string) (span, bool)
	render(versions []string) string
}

// mergeLedger replaces the ledger of each text with the sorted union of the
// versions found across all texts. Texts without a ledger contribute nothing
// and are left as they are.
func mergeLedger(l ledger, texts []string) {
	lists := make([][]string, 0, len(texts))
	for _, text := range texts {
		lists = append(lists, l.versions(text))
	}

	union := lo.Union(lists...)
	if len(union) == 0 {
		return
	}
	slices.Sort(union)
	block := l.render(union)

	for i, text := range texts {
		sp, ok := l.locate(text)
		if !ok {
			continue
		}
		texts[i] = text[:sp.start] + block + text[sp.end:]
	}
}

// readLine returns the line starting at pos without its terminator, the
// offset of the following line, and whether the line ended with '\n'.
func readLine(content string, pos int) (line string, next int, terminated bool) {
	i := strings.IndexByte(content[pos:], '\n')
	if i < 0 {
		return content[pos:], len(content), false
	}
	return content[pos : pos+i], pos + i + 1, true
}

const (
	headerDoubleQuoted = `INSERT INTO "schema_migrations" (version) VALUES`
	headerBackQuoted   = "INSERT INTO `schema_migrations` (version) VALUES"
)

func isLedgerHeader(line string) bool {
	return line == headerDoubleQuoted || line == headerBackQuoted
}

// findAfterHeader scans content for ledger headers and calls body with the
// offset just past each one until body reports a match.
func findAfterHeader(content string, body func(pos int) (span, bool)) (span, bool) {
	for pos := 0; pos < len(content); {
		line, next, terminated := readLine(content, pos)
		if terminated && isLedgerHeader(line) {
			if sp, ok := body(next); ok {
				return sp, true
			}
		}
		pos = next
	}
	return span{}, false
}

// cutQuotedTuple parses `('<digits>')` at the start of s and returns the
// digits and the remainder.
func cutQuotedTuple(s string) (version, rest string, ok bool) {
	s, ok = strings.CutPrefix(s, "('")
	if !ok {
		return "", "", false
	}
	n := digitPrefix(s)
	if n == 0 {
		return "", "", false
	}
	rest, ok = strings.CutPrefix(s[n:], "')")
	if !ok {
		return "", "", false
	}
	return s[:n], rest, true
}

func digitPrefix(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
