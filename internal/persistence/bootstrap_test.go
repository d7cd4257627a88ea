package persistence

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSchema mimics an engine: introspection reads the state that Exec
// statements mutate.
type fakeSchema struct {
	tables   map[string]bool
	columns  map[string]bool // "table.column"
	triggers map[string]bool
	execs    []string
	failOn   func(sql string) error
}

func newFakeSchema() *fakeSchema {
	return &fakeSchema{
		tables:   map[string]bool{},
		columns:  map[string]bool{},
		triggers: map[string]bool{},
	}
}

func (f *fakeSchema) TableExists(_ context.Context, name string) (bool, error) {
	return f.tables[name], nil
}

func (f *fakeSchema) ColumnExists(_ context.Context, table, column string) (bool, error) {
	return f.columns[table+"."+column], nil
}

func (f *fakeSchema) TriggerExists(_ context.Context, name string) (bool, error) {
	return f.triggers[name], nil
}

func (f *fakeSchema) Exec(_ context.Context, sql string) error {
	f.execs = append(f.execs, sql)
	if f.failOn != nil {
		if err := f.failOn(sql); err != nil {
			return err
		}
	}

	fields := strings.Fields(sql)
	upper := strings.ToUpper(strings.Join(fields, " "))
	switch {
	case strings.HasPrefix(upper, "CREATE TABLE IF NOT EXISTS"):
		name := strings.TrimSuffix(fields[5], "(")
		f.tables[name] = true
	case strings.HasPrefix(upper, "CREATE TRIGGER"):
		f.triggers[fields[2]] = true
	case strings.HasPrefix(upper, "ALTER TABLE") && strings.Contains(upper, "ADD COLUMN IF NOT EXISTS"):
		f.columns[fields[2]+"."+fields[8]] = true
	}
	return nil
}

func newTestBootstrapper(f *fakeSchema) *Bootstrapper {
	return NewBootstrapperWith(f, f, zap.NewNop(), "../../db/schema.sql")
}

func TestBootstrap_FreshInstallCreatesEverything(t *testing.T) {
	t.Parallel()

	f := newFakeSchema()
	b := newTestBootstrapper(f)

	require.NoError(t, b.Run(context.Background()))

	for _, table := range []string{"users", "user_permissions", "audit_logs", "articles", "events", "resources", "professors", "projects"} {
		exists, err := f.TableExists(context.Background(), table)
		require.NoError(t, err)
		assert.True(t, exists, "table %s", table)
	}
	assert.True(t, f.triggers["users_audit_trg"])
	assert.True(t, f.triggers["user_permissions_audit_trg"])
	assert.True(t, f.columns["users.last_login_at"])
	assert.True(t, f.columns["articles.cover_url"])
}

func TestBootstrap_SecondRunIsNoop(t *testing.T) {
	t.Parallel()

	f := newFakeSchema()
	b := newTestBootstrapper(f)

	require.NoError(t, b.Run(context.Background()))
	firstState := len(f.tables) + len(f.triggers) + len(f.columns)
	firstExecs := len(f.execs)

	require.NoError(t, b.Run(context.Background()))

	assert.Equal(t, firstState, len(f.tables)+len(f.triggers)+len(f.columns),
		"second run must not change schema state")
	assert.Equal(t, firstExecs, len(f.execs),
		"second run must not execute any DDL")
}

func TestBootstrap_EstablishedInstallAddsOnlyMissing(t *testing.T) {
	t.Parallel()

	f := newFakeSchema()
	// Established install: users exists, one content table is missing.
	for _, table := range requiredTables {
		f.tables[table] = true
	}
	delete(f.tables, "projects")
	f.triggers["users_audit_trg"] = true
	f.triggers["user_permissions_audit_trg"] = true
	f.columns["users.last_login_at"] = true
	f.columns["articles.cover_url"] = true

	b := newTestBootstrapper(f)
	require.NoError(t, b.Run(context.Background()))

	assert.True(t, f.tables["projects"])
	// No full-script replay: only the one CREATE TABLE ran.
	require.Len(t, f.execs, 1)
	assert.Contains(t, f.execs[0], "CREATE TABLE IF NOT EXISTS projects")
}

func TestBootstrap_FreshInstallToleratesStatementFailures(t *testing.T) {
	t.Parallel()

	f := newFakeSchema()
	f.failOn = func(sql string) error {
		if strings.Contains(sql, "CREATE INDEX") {
			return errors.New("simulated engine error")
		}
		return nil
	}
	b := newTestBootstrapper(f)

	// Index failures are logged, not fatal; tables still converge.
	require.NoError(t, b.Run(context.Background()))
	assert.True(t, f.tables["users"])
	assert.True(t, f.tables["audit_logs"])
}

func TestBootstrap_TriggerFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	f := newFakeSchema()
	f.failOn = func(sql string) error {
		if strings.Contains(sql, "CREATE TRIGGER") {
			return errors.New("permission denied")
		}
		return nil
	}
	b := newTestBootstrapper(f)

	require.NoError(t, b.Run(context.Background()))
	assert.False(t, f.triggers["users_audit_trg"])
	assert.True(t, f.tables["users"], "tables still created despite trigger failure")
}

func TestEnsureColumnExists(t *testing.T) {
	t.Parallel()

	f := newFakeSchema()
	b := newTestBootstrapper(f)

	require.NoError(t, b.EnsureColumnExists(context.Background(), "users", "last_login_at", "TIMESTAMPTZ"))
	assert.True(t, f.columns["users.last_login_at"])

	execs := len(f.execs)
	require.NoError(t, b.EnsureColumnExists(context.Background(), "users", "last_login_at", "TIMESTAMPTZ"))
	assert.Equal(t, execs, len(f.execs), "existing column must not be altered again")
}

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	script := `-- leading comment
CREATE TABLE IF NOT EXISTS a (id INT);

-- another comment
CREATE INDEX IF NOT EXISTS idx_a ON a(id);
`
	stmts := SplitStatements(script)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS a")
	assert.Contains(t, stmts[1], "CREATE INDEX IF NOT EXISTS idx_a")
}

func TestSplitStatements_ShippedSchemaHasNoProceduralBodies(t *testing.T) {
	t.Parallel()

	for _, unit := range triggerUnits {
		for _, stmt := range unit.Statements {
			// Trigger bodies must never be fed to the naive splitter.
			assert.NotContains(t, tableDDL["users"], stmt)
		}
	}
	for _, ddl := range tableDDL {
		assert.NotContains(t, ddl, "$$")
	}
}
