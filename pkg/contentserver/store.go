package contentserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pluqqy/pluqqy-studio/pkg/models"
)

// ErrNotFound is returned when a project or page does not exist
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	prompt     TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pages (
	id                     TEXT PRIMARY KEY,
	project_id             TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	page_number            INTEGER NOT NULL,
	script_text            TEXT NOT NULL DEFAULT '',
	image_prompt           TEXT NOT NULL DEFAULT '',
	image_style            TEXT NOT NULL DEFAULT '',
	character_ids          TEXT NOT NULL DEFAULT '[]',
	background_description TEXT NOT NULL DEFAULT '',
	created_at             INTEGER NOT NULL,
	UNIQUE (project_id, page_number)
);
`

const pageColumns = `id, project_id, page_number, script_text, image_prompt, image_style,
	character_ids, background_description, created_at`

// Store persists projects and pages in SQLite
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens the database at path and creates the schema
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer keeps renumbering transactions from interleaving
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database handle
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateProject inserts an empty draft project
func (s *Store) CreateProject(ctx context.Context, title, prompt string) (models.Project, error) {
	now := s.now().UTC()
	p := models.Project{
		ID:        uuid.NewString(),
		Title:     title,
		Prompt:    prompt,
		Status:    models.ProjectStatusDraft,
		Pages:     []models.Page{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, title, prompt, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Prompt, p.Status, toMillis(now), toMillis(now),
	)
	if err != nil {
		return models.Project{}, fmt.Errorf("create project: %w", err)
	}
	p.CreatedAt = fromMillis(toMillis(now))
	p.UpdatedAt = p.CreatedAt
	return p, nil
}

// GetProject returns a project with its pages in page order
func (s *Store) GetProject(ctx context.Context, id string) (models.Project, error) {
	var (
		p                models.Project
		created, updated int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, prompt, status, created_at, updated_at FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Title, &p.Prompt, &p.Status, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, ErrNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("get project: %w", err)
	}
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE project_id = ? ORDER BY page_number`, id)
	if err != nil {
		return models.Project{}, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	p.Pages = []models.Page{}
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return models.Project{}, err
		}
		p.Pages = append(p.Pages, page)
	}
	if err := rows.Err(); err != nil {
		return models.Project{}, fmt.Errorf("list pages: %w", err)
	}
	return p, nil
}

// UpdateTitle replaces the title of a project
func (s *Store) UpdateTitle(ctx context.Context, id, title string) (models.ProjectTitle, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET title = ?, updated_at = ? WHERE id = ?`, title, toMillis(s.now()), id)
	if err != nil {
		return models.ProjectTitle{}, fmt.Errorf("update title: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ProjectTitle{}, ErrNotFound
	}
	return models.ProjectTitle{ID: id, Title: title}, nil
}

// GetPage returns page number n of a project
func (s *Store) GetPage(ctx context.Context, projectID string, n int) (models.Page, error) {
	return s.getPage(ctx, s.db, projectID, n)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) getPage(ctx context.Context, q querier, projectID string, n int) (models.Page, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE project_id = ? AND page_number = ?`, projectID, n)
	page, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Page{}, ErrNotFound
	}
	return page, err
}

// UpdatePage merges update into page n and returns the merged page
func (s *Store) UpdatePage(ctx context.Context, projectID string, n int, update models.PageUpdate) (models.Page, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Page{}, fmt.Errorf("begin update page: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	page, err := s.getPage(ctx, tx, projectID, n)
	if err != nil {
		return models.Page{}, err
	}
	update.Apply(&page)

	ids, err := encodeIDs(page.CharacterIDs)
	if err != nil {
		return models.Page{}, err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE pages SET script_text = ?, image_prompt = ?, image_style = ?, character_ids = ?,
		   background_description = ?
		 WHERE id = ?`,
		page.ScriptText, page.ImagePrompt, page.ImageStyle, ids, page.BackgroundDescription, page.ID,
	)
	if err != nil {
		return models.Page{}, fmt.Errorf("update page: %w", err)
	}
	if err := s.touch(ctx, tx, projectID); err != nil {
		return models.Page{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Page{}, fmt.Errorf("commit update page: %w", err)
	}
	return page, nil
}

// AddPage appends a page after the current last page
func (s *Store) AddPage(ctx context.Context, projectID string, pc models.PageContent) (models.Page, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Page{}, fmt.Errorf("begin add page: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := projectExists(ctx, tx, projectID); err != nil {
		return models.Page{}, err
	}
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages WHERE project_id = ?`, projectID).Scan(&count); err != nil {
		return models.Page{}, fmt.Errorf("count pages: %w", err)
	}

	page, err := s.insertPage(ctx, tx, projectID, count+1, pc)
	if err != nil {
		return models.Page{}, err
	}
	if err := s.touch(ctx, tx, projectID); err != nil {
		return models.Page{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Page{}, fmt.Errorf("commit add page: %w", err)
	}
	return page, nil
}

// DeletePage removes page n and moves every later page down by one so page
// numbers stay dense
func (s *Store) DeletePage(ctx context.Context, projectID string, n int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete page: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE project_id = ? AND page_number = ?`, projectID, n)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}

	// Two passes through negative numbers keep the unique index satisfied
	if _, err := tx.ExecContext(ctx,
		`UPDATE pages SET page_number = -(page_number - 1) WHERE project_id = ? AND page_number > ?`,
		projectID, n); err != nil {
		return fmt.Errorf("renumber pages: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE pages SET page_number = -page_number WHERE project_id = ? AND page_number < 0`,
		projectID); err != nil {
		return fmt.Errorf("renumber pages: %w", err)
	}

	if err := s.touch(ctx, tx, projectID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete page: %w", err)
	}
	return nil
}

// ReplacePages swaps every page of a project for pages, marks it generated
// and optionally retitles it
func (s *Store) ReplacePages(ctx context.Context, projectID, title string, pages []models.PageContent) (models.Project, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Project{}, fmt.Errorf("begin replace pages: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := projectExists(ctx, tx, projectID); err != nil {
		return models.Project{}, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE project_id = ?`, projectID); err != nil {
		return models.Project{}, fmt.Errorf("clear pages: %w", err)
	}
	for i, pc := range pages {
		if _, err := s.insertPage(ctx, tx, projectID, i+1, pc); err != nil {
			return models.Project{}, err
		}
	}

	query := `UPDATE projects SET status = ?, updated_at = ? WHERE id = ?`
	args := []any{models.ProjectStatusGenerated, toMillis(s.now()), projectID}
	if title != "" {
		query = `UPDATE projects SET status = ?, updated_at = ?, title = ? WHERE id = ?`
		args = []any{models.ProjectStatusGenerated, toMillis(s.now()), title, projectID}
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return models.Project{}, fmt.Errorf("mark generated: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Project{}, fmt.Errorf("commit replace pages: %w", err)
	}
	return s.GetProject(ctx, projectID)
}

func (s *Store) insertPage(ctx context.Context, tx *sql.Tx, projectID string, n int, pc models.PageContent) (models.Page, error) {
	now := fromMillis(toMillis(s.now()))
	page := models.Page{
		ID:                    uuid.NewString(),
		ProjectID:             projectID,
		Number:                n,
		ScriptText:            pc.ScriptText,
		ImagePrompt:           pc.ImagePrompt,
		ImageStyle:            pc.ImageStyle,
		CharacterIDs:          models.NormalizeCharacterIDs(pc.CharacterIDs),
		BackgroundDescription: pc.BackgroundDescription,
		CreatedAt:             now,
	}
	ids, err := encodeIDs(page.CharacterIDs)
	if err != nil {
		return models.Page{}, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO pages (`+pageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		page.ID, page.ProjectID, page.Number, page.ScriptText, page.ImagePrompt, page.ImageStyle,
		ids, page.BackgroundDescription, toMillis(now),
	)
	if err != nil {
		return models.Page{}, fmt.Errorf("insert page: %w", err)
	}
	return page, nil
}

func (s *Store) touch(ctx context.Context, tx *sql.Tx, projectID string) error {
	if _, err := tx.ExecContext(ctx, `UPDATE projects SET updated_at = ? WHERE id = ?`, toMillis(s.now()), projectID); err != nil {
		return fmt.Errorf("touch project: %w", err)
	}
	return nil
}

func projectExists(ctx context.Context, tx *sql.Tx, projectID string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, projectID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find project: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (models.Page, error) {
	var (
		page    models.Page
		ids     string
		created int64
	)
	err := row.Scan(&page.ID, &page.ProjectID, &page.Number, &page.ScriptText, &page.ImagePrompt,
		&page.ImageStyle, &ids, &page.BackgroundDescription, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Page{}, err
		}
		return models.Page{}, fmt.Errorf("scan page: %w", err)
	}
	if err := json.Unmarshal([]byte(ids), &page.CharacterIDs); err != nil {
		return models.Page{}, fmt.Errorf("decode character ids: %w", err)
	}
	page.CharacterIDs = models.NormalizeCharacterIDs(page.CharacterIDs)
	page.CreatedAt = fromMillis(created)
	return page, nil
}

func encodeIDs(ids []string) (string, error) {
	raw, err := json.Marshal(models.NormalizeCharacterIDs(ids))
	if err != nil {
		return "", fmt.Errorf("encode character ids: %w", err)
	}
	return string(raw), nil
}
