package dialect

import "strings"

// defaultDialect covers PostgreSQL, SQLite and newer MySQL dumps:
//
//	INSERT INTO "schema_migrations" (version) VALUES
//	('20210101000000'),
//	('20210102000000');
type defaultDialect struct{}

func (defaultDialect) Name() string { return "default" }

func (defaultDialect) Match(content string) bool {
	_, ok := defaultLedger{}.locate(content)
	return ok
}

func (defaultDialect) MergeVersions(texts []string) {
	mergeLedger(defaultLedger{}, texts)
}

func (defaultDialect) sealed() {}

type defaultLedger struct{}

// scan walks the tuple lines following a header at pos.
func (defaultLedger) scan(content string, pos int, visit func(version string)) (span, bool) {
	sp := span{start: pos, end: pos}
	for sp.end < len(content) {
		line, next, terminated := readLine(content, sp.end)
		if !terminated {
			break
		}
		version, rest, ok := cutQuotedTuple(line)
		if !ok || (rest != "," && rest != ";") {
			break
		}
		if visit != nil {
			visit(version)
		}
		sp.end = next
	}
	return sp, sp.end > sp.start
}

func (l defaultLedger) versions(content string) []string {
	var out []string
	findAfterHeader(content, func(pos int) (span, bool) {
		return l.scan(content, pos, func(v string) { out = append(out, v) })
	})
	return out
}

func (l defaultLedger) locate(content string) (span, bool) {
	return findAfterHeader(content, func(pos int) (span, bool) {
		return l.scan(content, pos, nil)
	})
}

func (defaultLedger) render(versions []string) string {
	var b strings.Builder
	for i, v := range versions {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("('")
		b.WriteString(v)
		b.WriteString("')")
	}
	b.WriteString(";\n")
	return b.String()
}
