package inviteengine

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding the history of generated invites.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the admin dashboard read while renders write; writers wait
	// on busy_timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS invites (
    id TEXT PRIMARY KEY,
    theme TEXT NOT NULL,
    child_name TEXT NOT NULL,
    age TEXT NOT NULL,
    date TEXT NOT NULL,
    time TEXT NOT NULL,
    venue TEXT NOT NULL,
    image_url TEXT NOT NULL,
    durable INTEGER NOT NULL DEFAULT 0,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    generated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS invites_generated_at ON invites (generated_at DESC);
`)
	return err
}

const inviteColumns = `id, theme, child_name, age, date, time, venue, image_url, durable, width, height, generated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanInvite(row scanner) (Invite, error) {
	var inv Invite
	var durable int
	err := row.Scan(&inv.ID, &inv.Theme, &inv.ChildName, &inv.Age, &inv.Date, &inv.Time,
		&inv.Venue, &inv.ImageURL, &durable, &inv.Width, &inv.Height, &inv.GeneratedAt)
	inv.Durable = durable == 1
	return inv, err
}

// SaveInvite upserts an invite record.
func (s *Store) SaveInvite(inv Invite) error {
	durable := 0
	if inv.Durable {
		durable = 1
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO invites (`+inviteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Theme, inv.ChildName, inv.Age, inv.Date, inv.Time, inv.Venue,
		inv.ImageURL, durable, inv.Width, inv.Height, inv.GeneratedAt)
	return err
}

// GetInvite returns a single invite by ID, or sql.ErrNoRows.
func (s *Store) GetInvite(id string) (Invite, error) {
	return scanInvite(s.db.QueryRow(`SELECT `+inviteColumns+` FROM invites WHERE id = ?`, id))
}

// ListInvites returns the newest invites first. A limit of zero or less
// returns every invite.
func (s *Store) ListInvites(limit int) ([]Invite, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT `+inviteColumns+` FROM invites ORDER BY generated_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

// CountInvites returns the number of recorded invites.
func (s *Store) CountInvites() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM invites`).Scan(&n)
	return n, err
}

// DeleteInvite removes an invite by ID.
func (s *Store) DeleteInvite(id string) error {
	_, err := s.db.Exec(`DELETE FROM invites WHERE id = ?`, id)
	return err
}
