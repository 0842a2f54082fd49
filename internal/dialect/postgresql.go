package dialect

import "strings"

// postgresqlDialect covers PostgreSQL dumps written with leading commas:
//
//	INSERT INTO "schema_migrations" (version) VALUES
//	 ('20210101000000')
//	,('20210102000000')
//	;
type postgresqlDialect struct{}

func (postgresqlDialect) Name() string { return "postgresql" }

func (postgresqlDialect) Match(content string) bool {
	_, ok := postgresqlLedger{}.locate(content)
	return ok
}

func (postgresqlDialect) MergeVersions(texts []string) {
	mergeLedger(postgresqlLedger{}, texts)
}

func (postgresqlDialect) sealed() {}

type postgresqlLedger struct{}

// scan walks the tuple lines following a header at pos. The block must be
// closed by a ';' right after the last tuple line, which is included in the
// span.
func (postgresqlLedger) scan(content string, pos int, visit func(version string)) (span, bool) {
	end := pos
	var found []string
	for end < len(content) {
		line, next, terminated := readLine(content, end)
		if !terminated || line == "" || (line[0] != ',' && line[0] != ' ') {
			break
		}
		version, rest, ok := cutQuotedTuple(line[1:])
		if !ok || rest != "" {
			break
		}
		found = append(found, version)
		end = next
	}
	if len(found) == 0 || end >= len(content) || content[end] != ';' {
		return span{}, false
	}
	if visit != nil {
		for _, v := range found {
			visit(v)
		}
	}
	return span{start: pos, end: end + 1}, true
}

func (l postgresqlLedger) versions(content string) []string {
	var out []string
	findAfterHeader(content, func(pos int) (span, bool) {
		return l.scan(content, pos, func(v string) { out = append(out, v) })
	})
	return out
}

func (l postgresqlLedger) locate(content string) (span, bool) {
	return findAfterHeader(content, func(pos int) (span, bool) {
		return l.scan(content, pos, nil)
	})
}

func (postgresqlLedger) render(versions []string) string {
	var b strings.Builder
	b.WriteString(" ")
	for i, v := range versions {
		if i > 0 {
			b.WriteString("\n,")
		}
		b.WriteString("('")
		b.WriteString(v)
		b.WriteString("')")
	}
	b.WriteString("\n;")
	return b.String()
}
