// Package dialect recognizes the structure.sql dump formats produced by the
// common Rails database adapters and merges their schema_migrations ledgers.
package dialect

// Dialect is one of the recognized dump formats.
//
// The set is closed: Default, PostgreSQL and MySQL are the only
// implementations.
type Dialect interface {
	// Name is a short human-readable label used in logs.
	Name() string

	// Match reports whether content is structurally in this dialect.
	Match(content string) bool

	// MergeVersions rewrites the version ledger of every text in place so
	// that each carries the sorted union of all versions found.
	MergeVersions(texts []string)

	sealed()
}

// Scrubber is implemented by dialects whose dumps carry volatile fields that
// must be normalized before the ledger merge.
type Scrubber interface {
	Scrub(texts []string)
}

var (
	Default    Dialect = defaultDialect{}
	PostgreSQL Dialect = postgresqlDialect{}
	MySQL      Dialect = mysqlDialect{}
)

// registry is ordered by precedence: the most specific format comes first
// because the detectors are not mutually exclusive.
var registry = []Dialect{MySQL, PostgreSQL, Default}

// All returns the registered dialects in detection order.
func All() []Dialect {
	out := make([]Dialect, len(registry))
	copy(out, registry)
	return out
}

// Identify returns the first dialect matching sample, or nil.
func Identify(sample string) Dialect {
	for _, d := range registry {
		if d.Match(sample) {
			return d
		}
	}
	return nil
}

// Merge runs the full merge procedure of d over texts: the scrubber, if the
// dialect has one, then the ledger merge.
func Merge(d Dialect, texts []string) {
	if s, ok := d.(Scrubber); ok {
		s.Scrub(texts)
	}
	d.MergeVersions(texts)
}
