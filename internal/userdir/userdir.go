package userdir

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/isomorph/internal/value"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema
// 1 - Added case-insensitive UNIQUE index on users.login
const currentSchemaVersion = 1

// upsertSQL inserts a user at the end of insertion order, or updates the
// existing row in place.
const upsertSQL = `
	INSERT INTO users (login, name, avatar_url, company, seq)
	VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM users))
	ON CONFLICT(login) DO UPDATE SET
		name = excluded.name,
		avatar_url = excluded.avatar_url,
		company = excluded.company
`

// ErrNotFound is returned when no user has the requested login.
var ErrNotFound = errors.New("user not found")

// User is one directory entry.
type User struct {
	Login     string `json:"login" yaml:"login"`
	Name      string `json:"name" yaml:"name"`
	AvatarURL string `json:"avatar_url,omitempty" yaml:"avatar_url"`
	Company   string `json:"company,omitempty" yaml:"company"`
}

// Object returns u in the shape the user Store holds.
func (u User) Object() value.Object {
	return value.Object{
		"login":     value.String(u.Login),
		"name":      value.String(u.Name),
		"avatarUrl": value.String(u.AvatarURL),
		"company":   value.String(u.Company),
	}
}

// Directory is a SQLite user directory.
type Directory struct {
	db *sql.DB
}

// Open creates or opens a directory at path. ":memory:" opens a private
// in-memory database. Applies required pragmas and migrations.
//
// This function is idempotent - safe to call multiple times on one path.
func Open(path string) (*Directory, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One connection: SQLite has a single writer, and each connection to
	// ":memory:" would otherwise get its own empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Directory{db: db}, nil
}

// Close closes the database connection.
func (d *Directory) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Put inserts u, or replaces the user with the same login. The user keeps
// its original position in insertion order.
func (d *Directory) Put(ctx context.Context, u User) error {
	login, err := NormalizeLogin(u.Login)
	if err != nil {
		return fmt.Errorf("put user: %w", err)
	}

	_, err = d.db.ExecContext(ctx, upsertSQL, login, u.Name, u.AvatarURL, u.Company)
	if err != nil {
		return fmt.Errorf("put user %q: %w", login, err)
	}
	return nil
}

// Seed puts every user in one transaction.
func (d *Directory) Seed(ctx context.Context, users []User) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	defer tx.Rollback()

	for _, u := range users {
		login, err := NormalizeLogin(u.Login)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if _, err := tx.ExecContext(ctx, upsertSQL, login, u.Name, u.AvatarURL, u.Company); err != nil {
			return fmt.Errorf("seed user %q: %w", login, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit: %w", err)
	}
	return nil
}

// Get returns the user with login. Unknown logins fail with ErrNotFound.
func (d *Directory) Get(ctx context.Context, login string) (User, error) {
	key, err := NormalizeLogin(login)
	if err != nil {
		return User{}, err
	}

	row := d.db.QueryRowContext(ctx, `
		SELECT login, name, avatar_url, company
		FROM users
		WHERE login = ?
	`, key)

	var u User
	if err := row.Scan(&u.Login, &u.Name, &u.AvatarURL, &u.Company); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return User{}, fmt.Errorf("get user %q: %w", key, err)
	}
	return u, nil
}

// List returns every user ordered by login.
//
// Returns an empty slice (not nil) for an empty directory.
func (d *Directory) List(ctx context.Context) ([]User, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT login, name, avatar_url, company
		FROM users
		ORDER BY login COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Login, &u.Name, &u.AvatarURL, &u.Company); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// First returns the earliest inserted user. An empty directory fails with
// ErrNotFound.
func (d *Directory) First(ctx context.Context) (User, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT login, name, avatar_url, company
		FROM users
		ORDER BY seq ASC
		LIMIT 1
	`)

	var u User
	if err := row.Scan(&u.Login, &u.Name, &u.AvatarURL, &u.Company); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("first user: %w", err)
	}
	return u, nil
}

// NormalizeLogin returns login in its stored form. Logins may hold letters,
// digits, '-' and '_'.
func NormalizeLogin(login string) (string, error) {
	key := strings.ToLower(norm.NFC.String(strings.TrimSpace(login)))
	if key == "" {
		return "", errors.New("empty login")
	}
	for _, r := range key {
		switch {
		case r == '-' || r == '_':
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		default:
			return "", fmt.Errorf("invalid login %q", login)
		}
	}
	return key, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// migrateToV1 guards against logins that differ only in case, which
// directories written before normalization could hold.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_login_nocase
		ON users(login COLLATE NOCASE)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// schemaVersion returns PRAGMA user_version.
func (d *Directory) schemaVersion() (int, error) {
	var version int
	if err := d.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

// pragma returns the current value of a pragma.
func (d *Directory) pragma(name string) (string, error) {
	var v string
	if err := d.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&v); err != nil {
		return "", fmt.Errorf("failed to query %s: %w", name, err)
	}
	return v, nil
}
