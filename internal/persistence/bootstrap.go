package persistence

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Introspector exposes the metadata lookups the bootstrap needs. Split
// from execution so the convergence logic is testable without an engine.
type Introspector interface {
	TableExists(ctx context.Context, name string) (bool, error)
	ColumnExists(ctx context.Context, table, column string) (bool, error)
	TriggerExists(ctx context.Context, name string) (bool, error)
}

// Execer runs a single DDL statement.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}

// requiredTables is everything the route layer assumes exists. users is
// foundational: its absence marks a fresh install.
var requiredTables = []string{
	"users",
	"user_permissions",
	"audit_logs",
	"articles",
	"events",
	"resources",
	"professors",
	"projects",
}

// tableDDL holds per-table creation statements used on established
// installs, where only the missing pieces are created.
var tableDDL = map[string]string{
	"users": `CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		verify_token TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	"user_permissions": `CREATE TABLE IF NOT EXISTS user_permissions (
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		resource TEXT NOT NULL,
		can_write BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, resource)
	)`,
	"audit_logs": `CREATE TABLE IF NOT EXISTS audit_logs (
		id BIGSERIAL PRIMARY KEY,
		table_name TEXT NOT NULL,
		row_id BIGINT NOT NULL,
		action TEXT NOT NULL,
		old_data JSONB,
		changed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	"articles": `CREATE TABLE IF NOT EXISTS articles (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		published_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	"events": `CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		starts_at TIMESTAMPTZ NOT NULL,
		ends_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	"resources": `CREATE TABLE IF NOT EXISTS resources (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL DEFAULT 'LINK',
		url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	"professors": `CREATE TABLE IF NOT EXISTS professors (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		website TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	"projects": `CREATE TABLE IF NOT EXISTS projects (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		abstract TEXT NOT NULL DEFAULT '',
		professor_id BIGINT REFERENCES professors(id) ON DELETE SET NULL,
		year INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// triggerUnits are executed as whole statements, never run through the
// semicolon splitter: procedural bodies contain semicolons of their own.
type triggerUnit struct {
	Name       string
	Statements []string
}

var triggerUnits = []triggerUnit{
	{
		Name: "users_audit_trg",
		Statements: []string{
			`CREATE OR REPLACE FUNCTION audit_users_update() RETURNS TRIGGER AS $$
			BEGIN
				INSERT INTO audit_logs (table_name, row_id, action, old_data)
				VALUES ('users', OLD.id, TG_OP, to_jsonb(OLD) - 'password_hash');
				RETURN NEW;
			END;
			$$ LANGUAGE plpgsql`,
			`DROP TRIGGER IF EXISTS users_audit_trg ON users`,
			`CREATE TRIGGER users_audit_trg AFTER UPDATE ON users
			FOR EACH ROW EXECUTE FUNCTION audit_users_update()`,
		},
	},
	{
		Name: "user_permissions_audit_trg",
		Statements: []string{
			`CREATE OR REPLACE FUNCTION audit_user_permissions_update() RETURNS TRIGGER AS $$
			BEGIN
				INSERT INTO audit_logs (table_name, row_id, action, old_data)
				VALUES ('user_permissions', OLD.user_id, TG_OP, to_jsonb(OLD));
				RETURN NEW;
			END;
			$$ LANGUAGE plpgsql`,
			`DROP TRIGGER IF EXISTS user_permissions_audit_trg ON user_permissions`,
			`CREATE TRIGGER user_permissions_audit_trg AFTER UPDATE ON user_permissions
			FOR EACH ROW EXECUTE FUNCTION audit_user_permissions_update()`,
		},
	},
}

// columnSpec is a targeted additive migration.
type columnSpec struct {
	Table      string
	Column     string
	Definition string
}

// additiveColumns evolved after the initial schema shipped; they are
// added individually so established installs converge without re-running
// the full script.
var additiveColumns = []columnSpec{
	{Table: "users", Column: "last_login_at", Definition: "TIMESTAMPTZ"},
	{Table: "articles", Column: "cover_url", Definition: "TEXT"},
}

// Bootstrapper makes the relational store match application expectations
// before the HTTP listener starts. Every step is idempotent and the whole
// sequence converges across restarts and partial failures.
type Bootstrapper struct {
	intro      Introspector
	exec       Execer
	logger     *zap.Logger
	schemaPath string
}

// NewBootstrapper builds a bootstrapper over a live pool.
func NewBootstrapper(pool *pgxpool.Pool, logger *zap.Logger, schemaPath string) *Bootstrapper {
	pg := &pgDB{pool: pool}
	return &Bootstrapper{intro: pg, exec: pg, logger: logger, schemaPath: schemaPath}
}

// NewBootstrapperWith wires explicit introspection and execution, used by
// tests.
func NewBootstrapperWith(intro Introspector, exec Execer, logger *zap.Logger, schemaPath string) *Bootstrapper {
	return &Bootstrapper{intro: intro, exec: exec, logger: logger, schemaPath: schemaPath}
}

// Run converges the schema in fixed order: tables, then triggers (they
// reference tables), then targeted column checks (they ALTER tables).
// Reachability and catalog existence are handled before the pool exists.
func (b *Bootstrapper) Run(ctx context.Context) error {
	if err := b.ensureTables(ctx); err != nil {
		return err
	}
	b.ensureTriggers(ctx)
	return b.ensureColumns(ctx)
}

// ensureTables distinguishes fresh from established installs via the
// foundational users table.
func (b *Bootstrapper) ensureTables(ctx context.Context) error {
	usersExist, err := b.intro.TableExists(ctx, "users")
	if err != nil {
		return fmt.Errorf("introspect tables: %w", err)
	}

	if !usersExist {
		return b.freshInstall(ctx)
	}

	for _, name := range requiredTables {
		exists, err := b.intro.TableExists(ctx, name)
		if err != nil {
			return fmt.Errorf("introspect table %s: %w", name, err)
		}
		if exists {
			continue
		}
		b.logger.Info("creating missing table", zap.String("table", name))
		if err := b.exec.Exec(ctx, tableDDL[name]); err != nil {
			return fmt.Errorf("create table %s: %w", name, err)
		}
	}
	return nil
}

// freshInstall runs the full DDL script statement by statement. A failing
// statement is logged and skipped: re-runs over a partially created
// schema legitimately trip on objects that already exist.
func (b *Bootstrapper) freshInstall(ctx context.Context) error {
	b.logger.Info("users table missing, treating as fresh install",
		zap.String("schema", b.schemaPath))

	script, err := os.ReadFile(b.schemaPath)
	if err != nil {
		return fmt.Errorf("read schema script: %w", err)
	}

	applied := 0
	for _, stmt := range SplitStatements(string(script)) {
		if err := b.exec.Exec(ctx, stmt); err != nil {
			b.logger.Warn("schema statement failed",
				zap.String("statement", truncate(stmt, 120)),
				zap.Error(err))
			continue
		}
		applied++
	}
	b.logger.Info("schema script applied", zap.Int("statements", applied))
	return nil
}

// ensureTriggers creates the audit triggers. Failures are logged, not
// fatal: auditing is an enhancement, not a serving requirement.
func (b *Bootstrapper) ensureTriggers(ctx context.Context) {
	for _, unit := range triggerUnits {
		exists, err := b.intro.TriggerExists(ctx, unit.Name)
		if err != nil {
			b.logger.Warn("trigger introspection failed",
				zap.String("trigger", unit.Name), zap.Error(err))
			continue
		}
		if exists {
			continue
		}
		for _, stmt := range unit.Statements {
			if err := b.exec.Exec(ctx, stmt); err != nil {
				b.logger.Warn("trigger statement failed",
					zap.String("trigger", unit.Name),
					zap.String("statement", truncate(stmt, 120)),
					zap.Error(err))
				break
			}
		}
	}
}

// ensureColumns applies the additive column set.
func (b *Bootstrapper) ensureColumns(ctx context.Context) error {
	for _, col := range additiveColumns {
		if err := b.EnsureColumnExists(ctx, col.Table, col.Column, col.Definition); err != nil {
			b.logger.Warn("additive column failed",
				zap.String("table", col.Table),
				zap.String("column", col.Column),
				zap.Error(err))
		}
	}
	return nil
}

// EnsureColumnExists adds a column when introspection shows it missing.
func (b *Bootstrapper) EnsureColumnExists(ctx context.Context, table, column, definition string) error {
	exists, err := b.intro.ColumnExists(ctx, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	b.logger.Info("adding column",
		zap.String("table", table), zap.String("column", column))
	stmt := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s`, table, column, definition)
	return b.exec.Exec(ctx, stmt)
}

// SplitStatements splits straight-line DDL on the statement terminator,
// dropping empty chunks and comment-only lines. Procedural bodies must
// not pass through here; they live in triggerUnits.
func SplitStatements(script string) []string {
	parts := strings.Split(script, ";")
	stmts := make([]string, 0, len(parts))
	for _, part := range parts {
		lines := strings.Split(part, "\n")
		kept := lines[:0]
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			kept = append(kept, line)
		}
		stmt := strings.TrimSpace(strings.Join(kept, "\n"))
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// pgDB implements Introspector and Execer over a pgx pool.
type pgDB struct {
	pool *pgxpool.Pool
}

func (p *pgDB) TableExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`, name).Scan(&exists)
	return exists, err
}

func (p *pgDB) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_schema = 'public' AND table_name = $1 AND column_name = $2
		)`, table, column).Scan(&exists)
	return exists, err
}

func (p *pgDB) TriggerExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = $1)`,
		name).Scan(&exists)
	return exists, err
}

func (p *pgDB) Exec(ctx context.Context, sql string) error {
	_, err := p.pool.Exec(ctx, sql)
	return err
}
