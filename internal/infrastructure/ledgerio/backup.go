package ledgerio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jmanzanog/gainbase/internal/domain"
)

const (
	BackupVersion  = "1.0.0"
	BackupFileName = "data.json"
)

type Backup struct {
	Transactions []domain.Transaction `json:"transactions"`
	ExportedAt   time.Time            `json:"exportedAt"`
	Version      string               `json:"version"`
}

func NewBackup(txns []domain.Transaction, exportedAt time.Time) Backup {
	if txns == nil {
		txns = []domain.Transaction{}
	}
	return Backup{
		Transactions: txns,
		ExportedAt:   exportedAt.UTC(),
		Version:      BackupVersion,
	}
}

func ReadBackup(r io.Reader) (Backup, error) {
	var b Backup
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return Backup{}, fmt.Errorf("decoding backup: %w", err)
	}
	return b, nil
}

// WriteBackupFile replaces dir/data.json atomically: the document is written
// to a temporary file in dir and renamed over the previous backup.
func WriteBackupFile(dir string, b Backup) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "data-*.json.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("encoding backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	path := filepath.Join(dir, BackupFileName)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("replacing backup: %w", err)
	}
	return path, nil
}
