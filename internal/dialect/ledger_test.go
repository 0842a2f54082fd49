package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultDump(header string, versions ...string) string {
	return "CREATE TABLE t (id integer);\n" + header + "\n" + defaultLedger{}.render(versions) + "\n"
}

func TestDefaultMergeUnion(t *testing.T) {
	texts := []string{
		"INSERT INTO \"schema_migrations\" (version) VALUES\n('1'),\n('2');\n",
		"INSERT INTO \"schema_migrations\" (version) VALUES\n('1');\n",
		"INSERT INTO \"schema_migrations\" (version) VALUES\n('1'),\n('3');\n",
	}

	Default.MergeVersions(texts)

	want := "INSERT INTO \"schema_migrations\" (version) VALUES\n('1'),\n('2'),\n('3');\n"
	for _, got := range texts {
		assert.Equal(t, want, got)
	}
}

func TestDefaultBackQuotedHeader(t *testing.T) {
	header := "INSERT INTO `schema_migrations` (version) VALUES"
	texts := []string{
		defaultDump(header, "20200101000000", "20200202000000"),
		defaultDump(header, "20200101000000"),
		defaultDump(header, "20200101000000", "20200303000000"),
	}
	require.True(t, Default.Match(texts[0]))

	Default.MergeVersions(texts)

	want := defaultDump(header, "20200101000000", "20200202000000", "20200303000000")
	for _, got := range texts {
		assert.Equal(t, want, got)
	}
}

func TestDefaultDeduplicatesAndSortsLexically(t *testing.T) {
	texts := []string{
		"INSERT INTO \"schema_migrations\" (version) VALUES\n('9'),\n('10'),\n('9');\n",
	}

	Default.MergeVersions(texts)

	assert.Equal(t, "INSERT INTO \"schema_migrations\" (version) VALUES\n('10'),\n('9');\n", texts[0])
}

func TestDefaultOnlyFirstLedgerIsRewritten(t *testing.T) {
	ledger := "INSERT INTO \"schema_migrations\" (version) VALUES\n('2');\n"
	texts := []string{
		"INSERT INTO \"schema_migrations\" (version) VALUES\n('1');\n" + ledger,
		"INSERT INTO \"schema_migrations\" (version) VALUES\n('3');\n",
	}

	Default.MergeVersions(texts)

	assert.Equal(t, "INSERT INTO \"schema_migrations\" (version) VALUES\n('1'),\n('3');\n"+ledger, texts[0])
}

func TestDefaultSkipsEmptyHeader(t *testing.T) {
	content := "INSERT INTO \"schema_migrations\" (version) VALUES\n" +
		"-- nothing here\n" +
		"INSERT INTO \"schema_migrations\" (version) VALUES\n('5');\n"
	assert.True(t, Default.Match(content))
	assert.Equal(t, []string{"5"}, defaultLedger{}.versions(content))
}

func TestPostgreSQLMergeUnion(t *testing.T) {
	texts := []string{
		"INSERT INTO \"schema_migrations\" (version) VALUES\n ('1')\n,('2')\n;\n\n",
		"INSERT INTO \"schema_migrations\" (version) VALUES\n ('1')\n;\n\n",
		"INSERT INTO \"schema_migrations\" (version) VALUES\n ('3')\n,('1')\n;\n\n",
	}

	PostgreSQL.MergeVersions(texts)

	want := "INSERT INTO \"schema_migrations\" (version) VALUES\n ('1')\n,('2')\n,('3')\n;\n\n"
	for _, got := range texts {
		assert.Equal(t, want, got)
	}
}

func TestDialectIsolation(t *testing.T) {
	leading := "INSERT INTO \"schema_migrations\" (version) VALUES\n ('1')\n,('2')\n;\n"
	trailing := "INSERT INTO \"schema_migrations\" (version) VALUES\n('1'),\n('2');\n"

	assert.False(t, Default.Match(leading))
	assert.False(t, PostgreSQL.Match(trailing))

	texts := []string{leading}
	Default.MergeVersions(texts)
	assert.Equal(t, leading, texts[0])

	texts = []string{trailing}
	PostgreSQL.MergeVersions(texts)
	assert.Equal(t, trailing, texts[0])
}

func TestMySQLLedgerCollectsEveryStatement(t *testing.T) {
	content := "INSERT INTO schema_migrations (version) VALUES ('1');\n\n" +
		"INSERT INTO schema_migrations (version) VALUES ('2');\n\n" +
		"-- trailer\n" +
		"INSERT INTO schema_migrations (version) VALUES ('3');\n"

	assert.Equal(t, []string{"1", "2", "3"}, mysqlLedger{}.versions(content))

	sp, ok := mysqlLedger{}.locate(content)
	require.True(t, ok)
	assert.Equal(t, 0, sp.start)
	assert.Equal(t, "-- trailer\n", content[sp.end:sp.end+len("-- trailer\n")])
}

func TestMySQLLedgerRequiresTrailingWhitespace(t *testing.T) {
	content := "INSERT INTO schema_migrations (version) VALUES ('1');"
	assert.Empty(t, mysqlLedger{}.versions(content))
	_, ok := mysqlLedger{}.locate(content)
	assert.False(t, ok)
}

func TestMySQLMergeVersions(t *testing.T) {
	stmt := func(v string) string {
		return "INSERT INTO schema_migrations (version) VALUES ('" + v + "');\n\n"
	}
	texts := []string{
		"-- MySQL dump\n" + stmt("2") + stmt("1"),
		"-- MySQL dump\n" + stmt("1"),
		"-- MySQL dump\n" + stmt("1") + stmt("3"),
	}

	MySQL.MergeVersions(texts)

	want := "-- MySQL dump\n" + stmt("1") + stmt("2") + stmt("3")
	for _, got := range texts {
		assert.Equal(t, want, got)
	}
}
