package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"lighting-plan-server/models"
)

var ErrNotFound = errors.New("project not found")

const schema = `
CREATE TABLE IF NOT EXISTS projects (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    document    TEXT NOT NULL,
    light_count INTEGER NOT NULL DEFAULT 0,
    panel_count INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_updated_at ON projects(updated_at);
`

// Record is a stored project document with its bookkeeping columns.
type Record struct {
	Info     models.ProjectInfo
	Document models.Project
}

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init creates the schema if needed.
func (r *Repository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Create stores a new project under a fresh id.
func (r *Repository) Create(ctx context.Context, name string, doc models.Project) (string, error) {
	id := uuid.NewString()
	if err := r.Save(ctx, id, name, doc); err != nil {
		return "", err
	}
	return id, nil
}

// Save inserts or replaces the document for id, keeping created_at.
func (r *Repository) Save(ctx context.Context, id, name string, doc models.Project) error {
	data, err := models.EncodeProject(doc)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = r.db.ExecContext(ctx, `
        INSERT INTO projects (id, name, document, light_count, panel_count, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            document = excluded.document,
            light_count = excluded.light_count,
            panel_count = excluded.panel_count,
            updated_at = excluded.updated_at
    `, id, name, string(data), len(doc.Lights), len(doc.Panels), now, now)
	if err != nil {
		return fmt.Errorf("save project %s: %w", id, err)
	}
	log.Printf("[STORE] saved project %s (%d lights, %d panels)", id, len(doc.Lights), len(doc.Panels))
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, document, light_count, panel_count, created_at, updated_at
        FROM projects
        WHERE id = ?
    `, id)

	var rec Record
	var document, created, updated string
	if err := row.Scan(&rec.Info.ID, &rec.Info.Name, &document, &rec.Info.LightCount, &rec.Info.PanelCount, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	doc, err := models.DecodeProject([]byte(document))
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", id, err)
	}
	rec.Document = doc
	if err := parseTimes(&rec.Info, created, updated); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns project metadata, most recently updated first.
func (r *Repository) List(ctx context.Context) ([]models.ProjectInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, light_count, panel_count, created_at, updated_at
        FROM projects
        ORDER BY updated_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	infos := []models.ProjectInfo{}
	for rows.Next() {
		var info models.ProjectInfo
		var created, updated string
		if err := rows.Scan(&info.ID, &info.Name, &info.LightCount, &info.PanelCount, &created, &updated); err != nil {
			return nil, err
		}
		if err := parseTimes(&info, created, updated); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func parseTimes(info *models.ProjectInfo, created, updated string) error {
	var err error
	if info.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	if info.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return fmt.Errorf("updated_at: %w", err)
	}
	return nil
}

// OpenSQLite opens the database at dbPath, creating its directory.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
