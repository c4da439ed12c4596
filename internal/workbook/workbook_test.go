package workbook

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/sporesheet-cli/internal/grid"
	"github.com/KaramelBytes/sporesheet-cli/internal/sheet"
)

func newTemplate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spores.xlsx")
	w, err := Create(path, Options{}, Template{
		Title:  "Outdoor spore counts",
		Spare:  2,
		Labels: []string{"Alternaria", "Cladosporium"},
	})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return path
}

func TestCreateLaysOutFixedHeader(t *testing.T) {
	path := newTemplate(t)
	w, err := Open(path, Options{})
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, "Spores", w.Sheet())
	total, err := sheet.TotalColumn(w)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, 5, w.MaxRow())

	blank, err := w.Cell(sheet.HeaderRow, 2)
	require.NoError(t, err)
	assert.True(t, blank.IsBlank())

	label, err := sheet.Label(w, 5)
	require.NoError(t, err)
	assert.Equal(t, "Cladosporium", label)
}

func TestCellKindsRoundTrip(t *testing.T) {
	path := newTemplate(t)
	w, err := Open(path, Options{})
	require.NoError(t, err)

	require.NoError(t, w.SetCell(4, 2, grid.IntValue(12), grid.Data))
	require.NoError(t, w.SetCell(4, 3, grid.FloatValue(4.5), grid.Unstyled))
	require.NoError(t, w.SetCell(5, 2, grid.TextValue("12"), grid.Unstyled))
	require.NoError(t, w.SetCell(5, 3, grid.IntValue(9), grid.Unstyled))
	require.NoError(t, w.SetCell(5, 3, grid.EmptyValue(), grid.Unstyled))
	require.NoError(t, w.Save())
	require.NoError(t, w.Close())

	w, err = Open(path, Options{})
	require.NoError(t, err)
	defer w.Close()

	v, err := w.Cell(4, 2)
	require.NoError(t, err)
	assert.True(t, v.Equal(grid.IntValue(12)), "got %v (%s)", v, v.Kind())
	v, _ = w.Cell(4, 3)
	assert.True(t, v.Equal(grid.FloatValue(4.5)), "got %v (%s)", v, v.Kind())
	v, _ = w.Cell(5, 2)
	assert.Equal(t, grid.Text, v.Kind())
	n, ok := v.Number()
	assert.True(t, ok)
	assert.Equal(t, int64(12), n)
	v, _ = w.Cell(5, 3)
	assert.True(t, v.IsEmpty())
}

func TestInsertColumnShiftsTotal(t *testing.T) {
	path := newTemplate(t)
	w, err := Open(path, Options{})
	require.NoError(t, err)
	defer w.Close()

	before := w.MaxColumn()
	require.NoError(t, w.InsertColumn(2))
	assert.Equal(t, before+1, w.MaxColumn())
	total, err := sheet.TotalColumn(w)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestHeaderStyleIsBold(t *testing.T) {
	path := newTemplate(t)
	w, err := Open(path, Options{Font: Font{Family: "Calibri", Size: 10}})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.SetCell(sheet.HeaderRow, 2, grid.TextValue("M-1"), grid.Header))
	require.NoError(t, w.SetCell(4, 2, grid.IntValue(3), grid.Data))

	id, err := w.f.GetCellStyle(w.sheet, "B3")
	require.NoError(t, err)
	st, err := w.f.GetStyle(id)
	require.NoError(t, err)
	require.NotNil(t, st.Font)
	assert.True(t, st.Font.Bold)
	assert.Equal(t, "Calibri", st.Font.Family)

	id, err = w.f.GetCellStyle(w.sheet, "B4")
	require.NoError(t, err)
	st, err = w.f.GetStyle(id)
	require.NoError(t, err)
	require.NotNil(t, st.Font)
	assert.False(t, st.Font.Bold)
}

func TestOpenUnknownSheet(t *testing.T) {
	path := newTemplate(t)
	_, err := Open(path, Options{Sheet: "Indoor"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available sheets: Spores")
}

func TestBackupCopiesOriginalFile(t *testing.T) {
	path := newTemplate(t)
	w, err := Open(path, Options{})
	require.NoError(t, err)
	defer w.Close()

	dir := filepath.Join(t.TempDir(), "backups")
	dst, err := w.Backup(dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(dst), "spores."))
	assert.True(t, strings.HasSuffix(dst, ".bak.xlsx"))

	orig, err := os.ReadFile(path)
	require.NoError(t, err)
	copied, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, orig, copied)

	f, err := excelize.OpenFile(dst)
	require.NoError(t, err)
	assert.NoError(t, f.Close())
}

func TestLockedErrorClassification(t *testing.T) {
	perm := fmt.Errorf("atomic rename: %w", &fs.PathError{Op: "rename", Path: "x.xlsx", Err: fs.ErrPermission})
	assert.True(t, isLocked(perm))
	assert.True(t, isLocked(errors.New("The process cannot access the file because it is being used by another process.")))
	assert.False(t, isLocked(errors.New("disk full")))

	var err error = &LockedError{Path: "x.xlsx", Err: perm}
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Contains(t, err.Error(), "close the file")
}

func TestSaveIntoReadOnlyDirIsLocked(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for this user")
	}
	path := newTemplate(t)
	dir := filepath.Dir(path)
	w, err := Open(path, Options{})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.SetCell(4, 2, grid.IntValue(3), grid.Data))

	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	err = w.Save()
	var locked *LockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, path, locked.Path)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Contains(t, err.Error(), "close the file")
}
