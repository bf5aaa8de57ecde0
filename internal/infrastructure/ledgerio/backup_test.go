package ledgerio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmanzanog/gainbase/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBackupFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	exportedAt := time.Date(2024, 6, 1, 2, 0, 0, 0, time.UTC)
	txn := domain.NewTransaction("TCS", domain.TransactionTypeBuy, domain.MustDecimal("3"), domain.MustDecimal("100.25"),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "INR", "")

	path, err := WriteBackupFile(dir, NewBackup([]domain.Transaction{txn}, exportedAt))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, BackupFileName), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()

	b, err := ReadBackup(f)
	require.NoError(t, err)
	assert.Equal(t, BackupVersion, b.Version)
	assert.True(t, b.ExportedAt.Equal(exportedAt))
	require.Len(t, b.Transactions, 1)
	assert.Equal(t, txn.ID, b.Transactions[0].ID)
	assert.True(t, b.Transactions[0].Price.Equal(txn.Price))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteBackupFile_Overwrites(t *testing.T) {
	dir := t.TempDir()

	_, err := WriteBackupFile(dir, NewBackup(nil, time.Now()))
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, BackupFileName))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"transactions": []`)

	txn := domain.NewTransaction("INFY", domain.TransactionTypeBuy, domain.MustDecimal("1"), domain.MustDecimal("1"),
		time.Now(), "INR", "")
	_, err = WriteBackupFile(dir, NewBackup([]domain.Transaction{txn}, time.Now()))
	require.NoError(t, err)

	raw, err = os.ReadFile(filepath.Join(dir, BackupFileName))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "INFY")
}
