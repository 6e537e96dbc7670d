package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/audioscribe/backend/internal/correct"
	"github.com/audioscribe/backend/internal/transcript"
)

// Store persists uploaded audio and transcript outputs under two
// directory roots. Output files are named after the upload base name:
// <base>_raw_transcript.json/.txt and <base>_corrected_transcript.json/.txt.
type Store struct {
	UploadDir string
	OutputDir string
}

func NewStore(uploadDir, outputDir string) (*Store, error) {
	for _, dir := range []string{uploadDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
		}
	}
	return &Store{UploadDir: uploadDir, OutputDir: outputDir}, nil
}

var audioExtensions = map[string]bool{
	".wav": true, ".mp3": true, ".flac": true, ".ogg": true,
	".m4a": true, ".mp4": true, ".aac": true, ".webm": true,
}

func IsAudioFile(name string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(name))]
}

// SaveUpload writes the uploaded audio bytes and returns the stored path.
// The job ID prefixes the name so concurrent uploads of the same file
// cannot collide.
func (s *Store) SaveUpload(jobID, fileName string, data []byte) (string, error) {
	name := jobID + "_" + sanitizeName(fileName)
	path := filepath.Join(s.UploadDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return path, nil
}

// SaveRaw writes the canonical transcript as JSON plus a plain-text
// sidecar, returning the JSON path.
func (s *Store) SaveRaw(baseName string, tr *transcript.Canonical) (string, error) {
	base := outputBase(baseName)
	jsonPath := filepath.Join(s.OutputDir, base+"_raw_transcript.json")
	if err := writeJSON(jsonPath, tr); err != nil {
		return "", err
	}
	txtPath := filepath.Join(s.OutputDir, base+"_raw_transcript.txt")
	if err := os.WriteFile(txtPath, []byte(tr.Text()+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("save raw transcript text: %w", err)
	}
	return jsonPath, nil
}

// SaveCorrected writes the correction result next to the raw transcript.
func (s *Store) SaveCorrected(baseName string, c *correct.Correction) (string, error) {
	base := outputBase(baseName)
	jsonPath := filepath.Join(s.OutputDir, base+"_corrected_transcript.json")
	if err := writeJSON(jsonPath, c); err != nil {
		return "", err
	}
	txtPath := filepath.Join(s.OutputDir, base+"_corrected_transcript.txt")
	if err := os.WriteFile(txtPath, []byte(c.Corrected+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("save corrected transcript text: %w", err)
	}
	return jsonPath, nil
}

// LoadRaw reads a previously saved canonical transcript back by its
// upload base name.
func (s *Store) LoadRaw(baseName string) (*transcript.Canonical, error) {
	return s.LoadCanonical(filepath.Join(s.OutputDir, outputBase(baseName)+"_raw_transcript.json"))
}

// LoadCanonical reads a canonical transcript from a stored output path.
func (s *Store) LoadCanonical(path string) (*transcript.Canonical, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tr transcript.Canonical
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("parse stored transcript: %w", err)
	}
	return &tr, nil
}

type OutputEntry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ListOutputs returns the transcript files currently on disk.
func (s *Store) ListOutputs() ([]OutputEntry, error) {
	entries, err := os.ReadDir(s.OutputDir)
	if err != nil {
		return nil, err
	}
	var out []OutputEntry
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, OutputEntry{Name: entry.Name(), Size: info.Size()})
	}
	return out, nil
}

// OutputPath resolves a stored output file name, rejecting traversal
// outside the output directory.
func (s *Store) OutputPath(name string) (string, error) {
	full := filepath.Join(s.OutputDir, name)
	absBase, err := filepath.Abs(s.OutputDir)
	if err != nil {
		return "", err
	}
	absFull, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(absFull, absBase+string(filepath.Separator)) {
		return "", os.ErrPermission
	}
	return full, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func outputBase(fileName string) string {
	base := filepath.Base(fileName)
	return sanitizeName(strings.TrimSuffix(base, filepath.Ext(base)))
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
