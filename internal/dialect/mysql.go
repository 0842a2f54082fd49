package dialect

import (
	"fmt"
	"strings"
)

const (
	mysqlDumpHeader    = "-- MySQL dump "
	mysqlDumpCompleted = "-- Dump completed on "
	mysqlInsertPrefix  = "INSERT INTO schema_migrations (version) VALUES ('"
	autoIncrementKey   = " AUTO_INCREMENT="
)

// mysqlDialect covers mysqldump output, which records one INSERT statement
// per migration and embeds a completion timestamp and AUTO_INCREMENT
// counters that change between otherwise identical dumps.
type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) Match(content string) bool {
	for pos := 0; pos < len(content); {
		line, next, _ := readLine(content, pos)
		if strings.HasPrefix(line, mysqlDumpHeader) {
			return true
		}
		if _, _, ok := cutMySQLStatement(content, pos); ok {
			return true
		}
		pos = next
	}
	return false
}

func (mysqlDialect) MergeVersions(texts []string) {
	mergeLedger(mysqlLedger{}, texts)
}

// Scrub unifies the dump timestamps and drops AUTO_INCREMENT counters.
func (mysqlDialect) Scrub(texts []string) {
	mergeDumpTimestamps(texts)
	for i, text := range texts {
		texts[i] = scrubAutoIncrement(text)
	}
}

func (mysqlDialect) sealed() {}

// mergeDumpTimestamps rewrites every "-- Dump completed on" line to carry the
// greatest timestamp found in any text. Timestamps are compared as strings.
func mergeDumpTimestamps(texts []string) {
	latest := ""
	for _, text := range texts {
		for pos := 0; pos < len(text); {
			line, next, _ := readLine(text, pos)
			if ts, ok := dumpTimestamp(line); ok && ts > latest {
				latest = ts
			}
			pos = next
		}
	}
	if latest == "" {
		return
	}

	for i, text := range texts {
		texts[i] = eachLine(text, func(line string) string {
			if _, ok := dumpTimestamp(line); ok {
				return mysqlDumpCompleted + latest
			}
			return line
		})
	}
}

func dumpTimestamp(line string) (string, bool) {
	ts, ok := strings.CutPrefix(line, mysqlDumpCompleted)
	if !ok || ts == "" {
		return "", false
	}
	return ts, true
}

// scrubAutoIncrement removes the AUTO_INCREMENT=<n> table option from the
// closing line of CREATE TABLE statements, e.g.
//
//	) ENGINE=InnoDB AUTO_INCREMENT=42 DEFAULT CHARSET=utf8mb4;
func scrubAutoIncrement(text string) string {
	return eachLine(text, func(line string) string {
		if !strings.HasPrefix(line, ") ") || !strings.HasSuffix(line, ";") {
			return line
		}
		for end := len(line); ; {
			i := strings.LastIndex(line[1:end], autoIncrementKey)
			if i < 0 {
				return line
			}
			i++
			digits := digitPrefix(line[i+len(autoIncrementKey):])
			if digits > 0 {
				return line[:i] + line[i+len(autoIncrementKey)+digits:]
			}
			end = i
		}
	})
}

// eachLine applies fn to every line of text, excluding terminators, and
// reassembles the result.
func eachLine(text string, fn func(line string) string) string {
	var b strings.Builder
	b.Grow(len(text))
	for pos := 0; pos < len(text); {
		line, next, terminated := readLine(text, pos)
		b.WriteString(fn(line))
		if terminated {
			b.WriteByte('\n')
		}
		pos = next
	}
	return b.String()
}

type mysqlLedger struct{}

// cutMySQLStatement parses a ledger INSERT statement starting at pos together
// with the whitespace that follows it.
func cutMySQLStatement(content string, pos int) (version string, end int, ok bool) {
	rest, ok := strings.CutPrefix(content[pos:], mysqlInsertPrefix)
	if !ok {
		return "", 0, false
	}
	n := digitPrefix(rest)
	if n == 0 {
		return "", 0, false
	}
	tail, ok := strings.CutPrefix(rest[n:], "');")
	if !ok {
		return "", 0, false
	}
	w := 0
	for w < len(tail) && isSpace(tail[w]) {
		w++
	}
	if w == 0 {
		return "", 0, false
	}
	end = len(content) - len(tail) + w
	return rest[:n], end, true
}

// versions collects every ledger statement in the dump, not only the first
// run.
func (mysqlLedger) versions(content string) []string {
	var out []string
	for pos := 0; pos < len(content); {
		if v, end, ok := cutMySQLStatement(content, pos); ok {
			out = append(out, v)
			pos = end
			if content[end-1] != '\n' {
				_, pos, _ = readLine(content, pos)
			}
			continue
		}
		_, pos, _ = readLine(content, pos)
	}
	return out
}

func (mysqlLedger) locate(content string) (span, bool) {
	for pos := 0; pos < len(content); {
		if _, end, ok := cutMySQLStatement(content, pos); ok {
			sp := span{start: pos, end: end}
			for content[sp.end-1] == '\n' {
				_, next, ok := cutMySQLStatement(content, sp.end)
				if !ok {
					break
				}
				sp.end = next
			}
			return sp, true
		}
		_, pos, _ = readLine(content, pos)
	}
	return span{}, false
}

func (mysqlLedger) render(versions []string) string {
	var b strings.Builder
	for _, v := range versions {
		fmt.Fprintf(&b, "INSERT INTO schema_migrations (version) VALUES ('%s');\n\n", v)
	}
	return b.String()
}
