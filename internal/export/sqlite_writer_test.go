package export

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/appseeds/api"
	"github.com/agentic-research/appseeds/internal/dataset"
	"github.com/agentic-research/appseeds/internal/datasource"
)

var tree = map[string]string{
	"demo/companies.yml": "mega_corp:\n  name: Megacorp\n",
	"demo/people.yml": `
joe_smith:
  first_name: Joe
  company_id: mega_corp
  tags: [admin, ops]
jane_doe:
  first_name: Jane
  company_id: mega_corp
  active: true
`,
}

func loadDemo(t *testing.T, policy api.IDPolicy) *dataset.Dataset {
	t.Helper()
	root := t.TempDir()
	for name, content := range tree {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	src, err := datasource.Directory(root)
	require.NoError(t, err)
	d := dataset.New(src, dataset.WithPolicy(policy))
	require.NoError(t, d.Load("demo"))
	return d
}

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	w := NewWriter(filepath.Join(t.TempDir(), "seeds.db"))
	w.Now = func() time.Time { return time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC) }
	return w
}

func openDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestWriter_WritesTables(t *testing.T) {
	d := loadDemo(t, api.IDPolicy{})
	w := newTestWriter(t)
	require.NoError(t, w.Write(context.Background(), d))

	db := openDB(t, w.Path)
	joe, err := d.ByLabel("people", "joe_smith")
	require.NoError(t, err)
	company, err := d.ByLabel("companies", "mega_corp")
	require.NoError(t, err)

	var (
		id        int64
		companyID int64
		name      string
		tags      string
		active    sql.NullBool
	)
	err = db.QueryRow(`SELECT id, company_id, first_name, tags, active FROM people WHERE label = ?`, "joe_smith").
		Scan(&id, &companyID, &name, &tags, &active)
	require.NoError(t, err)
	assert.Equal(t, joe.Pair.Integer, id)
	assert.Equal(t, company.Pair.Integer, companyID)
	assert.Equal(t, "Joe", name)
	assert.JSONEq(t, `["admin","ops"]`, tags)
	assert.False(t, active.Valid)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM people`).Scan(&n))
	assert.Equal(t, 2, n)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM companies`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestWriter_Metadata(t *testing.T) {
	d := loadDemo(t, api.IDPolicy{})
	w := newTestWriter(t)
	require.NoError(t, w.Write(context.Background(), d))

	var name, fp, at string
	err := openDB(t, w.Path).QueryRow(`SELECT dataset, fingerprint, exported_at FROM application_seeds`).Scan(&name, &fp, &at)
	require.NoError(t, err)
	want, err := d.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, "demo", name)
	assert.Equal(t, want, fp)
	assert.Equal(t, "2024-05-10T00:00:00Z", at)
}

func TestWriter_UUIDPolicy(t *testing.T) {
	d := loadDemo(t, api.IDPolicy{Default: api.IDUUID})
	w := newTestWriter(t)
	w.BatchSize = 1
	require.NoError(t, w.Write(context.Background(), d))

	jane, err := d.ByLabel("people", "jane_doe")
	require.NoError(t, err)
	var id, companyID string
	err = openDB(t, w.Path).QueryRow(`SELECT id, company_id FROM people WHERE label = 'jane_doe'`).Scan(&id, &companyID)
	require.NoError(t, err)
	assert.Equal(t, jane.Pair.UUID, id)
	assert.Equal(t, jane.Attributes["company_id"], companyID)
}

func TestWriter_ReplacesExisting(t *testing.T) {
	d := loadDemo(t, api.IDPolicy{})
	w := newTestWriter(t)
	require.NoError(t, w.Write(context.Background(), d))
	require.NoError(t, w.Write(context.Background(), d))

	var n int
	require.NoError(t, openDB(t, w.Path).QueryRow(`SELECT COUNT(*) FROM people`).Scan(&n))
	assert.Equal(t, 2, n)
	_, err := os.Stat(w.Path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWriter_Locked(t *testing.T) {
	d := loadDemo(t, api.IDPolicy{})
	w := newTestWriter(t)

	held := flock.New(w.Path + ".lock")
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer func() { _ = held.Unlock() }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err = w.Write(ctx, d)
	assert.Error(t, err)
}

func TestWriter_NotLoaded(t *testing.T) {
	src, err := datasource.Directory(t.TempDir())
	require.NoError(t, err)
	err = newTestWriter(t).Write(context.Background(), dataset.New(src))
	assert.ErrorIs(t, err, api.ErrNotLoaded)
}

func TestColumn(t *testing.T) {
	v, err := column(map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, v)
	v, _ = column(nil)
	assert.Nil(t, v)
	v, _ = column(int64(3))
	assert.Equal(t, int64(3), v)
}
