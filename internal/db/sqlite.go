package db

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type Database struct {
	db *sql.DB
}

func NewSQLite(path string) (*Database, error) {
	sqlDB, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	d := &Database{db: sqlDB}
	if err := d.migrate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Database) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		file_path TEXT NOT NULL,
		params TEXT NOT NULL,
		progress REAL DEFAULT 0,
		result TEXT,
		error TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		started_at DATETIME,
		completed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS transcripts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL,
		file_name TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL DEFAULT '',
		raw_path TEXT NOT NULL,
		corrected_path TEXT NOT NULL DEFAULT '',
		warning TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (job_id) REFERENCES jobs(id)
	);
	`
	_, err := d.db.Exec(schema)
	return err
}

// GetSetting returns a setting value by key, or defaultVal if not found
func (d *Database) GetSetting(key, defaultVal string) string {
	var val string
	err := d.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&val)
	if err != nil {
		return defaultVal
	}
	return val
}

// SetSetting upserts a setting
func (d *Database) SetSetting(key, value string) error {
	_, err := d.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP`,
		key, value, value,
	)
	return err
}

// DeleteSetting removes a setting so lookups fall back to their default
func (d *Database) DeleteSetting(key string) error {
	_, err := d.db.Exec("DELETE FROM settings WHERE key = ?", key)
	return err
}

// GetAllSettings returns all settings as a map
func (d *Database) GetAllSettings() (map[string]string, error) {
	rows, err := d.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		result[k] = v
	}
	return result, nil
}

// TranscriptRecord indexes a saved transcript so the API can list
// results without walking the output directory.
type TranscriptRecord struct {
	ID            int64  `json:"id"`
	JobID         string `json:"job_id"`
	FileName      string `json:"file_name"`
	Provider      string `json:"provider"`
	Model         string `json:"model"`
	RawPath       string `json:"raw_path"`
	CorrectedPath string `json:"corrected_path,omitempty"`
	Warning       string `json:"warning,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// CreateTranscript records a completed transcription's outputs
func (d *Database) CreateTranscript(rec *TranscriptRecord) (int64, error) {
	result, err := d.db.Exec(
		"INSERT INTO transcripts (job_id, file_name, provider, model, raw_path, corrected_path, warning) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.JobID, rec.FileName, rec.Provider, rec.Model, rec.RawPath, rec.CorrectedPath, rec.Warning,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListTranscripts returns saved transcripts, newest first
func (d *Database) ListTranscripts() ([]TranscriptRecord, error) {
	rows, err := d.db.Query(
		"SELECT id, job_id, file_name, provider, model, raw_path, corrected_path, warning, created_at FROM transcripts ORDER BY created_at DESC, id DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []TranscriptRecord
	for rows.Next() {
		var r TranscriptRecord
		if err := rows.Scan(&r.ID, &r.JobID, &r.FileName, &r.Provider, &r.Model, &r.RawPath, &r.CorrectedPath, &r.Warning, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if records == nil {
		records = []TranscriptRecord{}
	}
	return records, nil
}

// GetTranscript returns a single saved transcript by ID
func (d *Database) GetTranscript(id int64) (*TranscriptRecord, error) {
	var r TranscriptRecord
	err := d.db.QueryRow(
		"SELECT id, job_id, file_name, provider, model, raw_path, corrected_path, warning, created_at FROM transcripts WHERE id = ?", id,
	).Scan(&r.ID, &r.JobID, &r.FileName, &r.Provider, &r.Model, &r.RawPath, &r.CorrectedPath, &r.Warning, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteTranscript removes a transcript record by ID
func (d *Database) DeleteTranscript(id int64) error {
	_, err := d.db.Exec("DELETE FROM transcripts WHERE id = ?", id)
	return err
}

func (d *Database) Close() error {
	return d.db.Close()
}

// DB returns the underlying sql.DB for use by other packages (e.g., job queue)
func (d *Database) DB() *sql.DB {
	return d.db
}
