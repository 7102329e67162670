package sqlite

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"aio/internal/domain"
	"aio/internal/ports"

	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = "1"

// maxGenerateAttempts bounds the random draw in GenerateUnique. With a
// 4-character ID space of 32^4 this only trips on a nearly full vault.
const maxGenerateAttempts = 100

// Index implements ports.IDIndex using SQLite. It records every entity
// ID ever seen in the vault, including completed and archived entities,
// so new IDs never collide with historical ones.
type Index struct {
	db        *sql.DB
	vaultPath string
	dbPath    string
}

var _ ports.IDIndex = (*Index)(nil)

// NewIndex creates an ID index for the given vault. The database lives
// in the vault's .aio directory.
func NewIndex(vaultPath string) *Index {
	return &Index{
		vaultPath: vaultPath,
		dbPath:    filepath.Join(vaultPath, ".aio", "ids.db"),
	}
}

// Open initializes the database, creating schema on first use.
func (idx *Index) Open() error {
	if err := os.MkdirAll(filepath.Dir(idx.dbPath), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	// WAL mode for better concurrency between CLI and daemon.
	db, err := sql.Open("sqlite3", idx.dbPath+"?_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	idx.db = db

	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS ids (
			id   TEXT PRIMARY KEY,
			kind TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("setup database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (idx *Index) Close() error {
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// Stale reports whether the stored fingerprint no longer matches this
// vault, meaning the database was built for a different vault or an
// older schema.
func (idx *Index) Stale() (bool, error) {
	var version, vaultHash string
	idx.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&version)
	idx.db.QueryRow("SELECT value FROM meta WHERE key = 'vault_hash'").Scan(&vaultHash)
	return version != schemaVersion || vaultHash != hashVaultPath(idx.vaultPath), nil
}

// Rebuild drops all recorded IDs and rescans the vault's markdown
// frontmatter for id fields.
func (idx *Index) Rebuild() error {
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM ids"); err != nil {
		return err
	}

	insert, err := tx.Prepare("INSERT OR IGNORE INTO ids (id, kind) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer insert.Close()

	err = filepath.WalkDir(idx.vaultPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != idx.vaultPath {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		id, kind := scanFrontmatterID(path)
		if id == "" {
			return nil
		}
		_, ierr := insert.Exec(id, kind)
		return ierr
	})
	if err != nil {
		return fmt.Errorf("scan vault: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?);
	`, schemaVersion); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO meta (key, value) VALUES ('vault_hash', ?);
	`, hashVaultPath(idx.vaultPath)); err != nil {
		return err
	}

	return tx.Commit()
}

// Counts returns the number of recorded IDs per entity kind.
func (idx *Index) Counts() (map[ports.EntityKind]int, error) {
	rows, err := idx.db.Query("SELECT kind, COUNT(*) FROM ids GROUP BY kind")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[ports.EntityKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[ports.EntityKind(kind)] = n
	}
	return counts, rows.Err()
}

// Contains reports whether an ID is already in use.
func (idx *Index) Contains(id string) (bool, error) {
	var n int
	err := idx.db.QueryRow("SELECT COUNT(*) FROM ids WHERE id = ?", domain.NormalizeID(id)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Add records an ID as used.
func (idx *Index) Add(kind ports.EntityKind, id string) error {
	_, err := idx.db.Exec("INSERT OR IGNORE INTO ids (id, kind) VALUES (?, ?)",
		domain.NormalizeID(id), string(kind))
	return err
}

// GenerateUnique draws random IDs until one is unused, records it, and
// returns it.
func (idx *Index) GenerateUnique(kind ports.EntityKind) (string, error) {
	for range maxGenerateAttempts {
		id := domain.GenerateID()
		used, err := idx.Contains(id)
		if err != nil {
			return "", err
		}
		if used {
			continue
		}
		if err := idx.Add(kind, id); err != nil {
			return "", err
		}
		return id, nil
	}
	return "", fmt.Errorf("could not generate a unique %s ID after %d attempts", kind, maxGenerateAttempts)
}

// hashVaultPath returns a short hash identifying the vault.
func hashVaultPath(vaultPath string) string {
	h := sha256.Sum256([]byte(vaultPath))
	return hex.EncodeToString(h[:8])
}

// scanFrontmatterID pulls the id and type fields from a file's YAML
// frontmatter. Files without frontmatter or without an id are skipped.
func scanFrontmatterID(path string) (id, kind string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", ""
	}
	content := string(data)
	if !strings.HasPrefix(content, "---\n") {
		return "", ""
	}
	end := strings.Index(content[4:], "\n---")
	if end < 0 {
		return "", ""
	}

	var meta struct {
		ID   string `yaml:"id"`
		Type string `yaml:"type"`
	}
	if err := yaml.Unmarshal([]byte(content[4:4+end]), &meta); err != nil {
		return "", ""
	}
	if !domain.IsValidID(meta.ID) {
		return "", ""
	}
	kind = meta.Type
	if kind == "" {
		kind = "task"
	}
	return domain.NormalizeID(meta.ID), kind
}
