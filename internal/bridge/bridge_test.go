package bridge

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/KaramelBytes/sheetql-cli/internal/dataset"
	"github.com/KaramelBytes/sheetql-cli/internal/store"
	"github.com/KaramelBytes/sheetql-cli/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clientsDataset() *dataset.Dataset {
	ds := dataset.New("Clients", "id", "nom", "ville", "montant")
	_ = ds.Append(int64(1), "Dupont", "Lyon", 120.5)
	_ = ds.Append(int64(2), "Martin", "Paris", 80.0)
	_ = ds.Append(int64(3), "Durand", "Lyon", 42.25)
	_ = ds.Append(int64(4), "Petit", nil, 10.75)
	return ds
}

func salesDataset() *dataset.Dataset {
	ds := dataset.New("Sales 2024", "produit", "quantite")
	_ = ds.Append("A", int64(3))
	_ = ds.Append("B", int64(5))
	return ds
}

// writeWorkbook creates an xlsx fixture with the Clients and "Sales 2024" sheets.
func writeWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.xlsx")
	set := dataset.NewSet()
	set.Put("Clients", clientsDataset())
	set.Put("Sales 2024", salesDataset())
	require.NoError(t, store.Write(path, set))
	return path
}

func openBridge(t *testing.T, path string) *Bridge {
	t.Helper()
	b := New(path, Options{TempDir: t.TempDir(), Logger: testutil.NewTestLogger(t)})
	t.Cleanup(func() { _ = b.Close() })
	require.NoError(t, b.Connect(context.Background()))
	return b
}

func TestSanitizeTableName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Clients", "Clients"},
		{"Sales 2024", "Sales_2024"},
		{"2024 Sales", "_2024_Sales"},
		{"Q1-Report (final)", "Q1_Report__final_"},
		{"_private", "_private"},
		{"Données", "Données"},
		{"été", "été"},
		{"", DefaultTableName},
		{"   ", "___"},
		{"a.b", "a_b"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := SanitizeTableName(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, SanitizeTableName(tt.in), "deterministic")
			for _, r := range got {
				assert.True(t, isWordRune(r), "rune %q in %q", r, got)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unopened", Unopened.String())
	assert.Equal(t, "tables_ready", TablesReady.String())
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestMaterializeRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := openBridge(t, writeWorkbook(t))

	require.NoError(t, b.Materialize(ctx))
	assert.Equal(t, TablesReady, b.State())

	tables, err := b.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Clients", "Sales_2024"}, tables)

	got, err := b.RunQuery(ctx, "SELECT * FROM Clients")
	require.NoError(t, err)
	assert.Equal(t, ResultName, got.Name)
	assert.True(t, clientsDataset().Equal(got), "got %v", got.Rows)

	sales, err := b.RunQuery(ctx, "SELECT * FROM Sales_2024")
	require.NoError(t, err)
	assert.True(t, salesDataset().Equal(sales))
	assert.Equal(t, Queried, b.State())
}

func TestMaterializeSelectedAndUnknown(t *testing.T) {
	ctx := context.Background()
	b := openBridge(t, writeWorkbook(t))

	require.NoError(t, b.Materialize(ctx, "Sales 2024"))
	tables, err := b.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sales_2024"}, tables)

	err = b.Materialize(ctx, "Missing")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "dataset", nf.Kind)
	assert.Equal(t, "Missing", nf.Name)
}

func TestMaterializeSkipsEmptySheet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	set := dataset.NewSet()
	set.Put("Vide", dataset.New("Vide"))
	set.Put("Sales", salesDataset())
	require.NoError(t, store.Write(path, set))

	b := openBridge(t, path)
	require.NoError(t, b.Materialize(ctx))
	tables, err := b.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sales"}, tables)
}

func TestTableMetadata(t *testing.T) {
	ctx := context.Background()
	b := openBridge(t, writeWorkbook(t))
	require.NoError(t, b.Materialize(ctx, "Clients"))

	info, err := b.TableMetadata(ctx, "Clients")
	require.NoError(t, err)
	assert.Equal(t, int64(4), info.RowCount)
	assert.Equal(t, []string{"id", "nom", "ville", "montant"}, info.ColumnNames())
	assert.Equal(t, "INTEGER", info.Columns[0].Type)
	assert.Equal(t, "TEXT", info.Columns[1].Type)
	assert.Equal(t, "REAL", info.Columns[3].Type)
	assert.Equal(t, 2, info.Columns[2].Position)
	assert.True(t, info.Columns[2].Nullable)
	assert.False(t, info.Columns[0].PrimaryKey)

	_, err = b.TableMetadata(ctx, "Nope")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "table", nf.Kind)
}

func TestRunQueryError(t *testing.T) {
	ctx := context.Background()
	b := openBridge(t, writeWorkbook(t))
	require.NoError(t, b.Materialize(ctx))

	_, err := b.RunQuery(ctx, "SELECT nope FROM Clients")
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "SELECT nope FROM Clients", qe.Query)

	_, err = b.RunQuery(ctx, "SELEC broken")
	require.ErrorAs(t, err, &qe)
}

func TestRunMutationAffectsTableOnly(t *testing.T) {
	ctx := context.Background()
	b := openBridge(t, writeWorkbook(t))
	require.NoError(t, b.Materialize(ctx))

	n, err := b.RunMutation(ctx, "UPDATE Clients SET ville = 'Nice' WHERE ville = 'Lyon'")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, Updated, b.State())

	got, err := b.RunQuery(ctx, "SELECT COUNT(*) AS c FROM Clients WHERE ville = 'Nice'")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Rows[0][0])

	modified, ok := b.Modified("Clients")
	require.True(t, ok)
	assert.True(t, clientsDataset().Equal(modified), "mutations never touch the modified map")
}

func TestRunMutationFailureLeavesTable(t *testing.T) {
	ctx := context.Background()
	b := openBridge(t, writeWorkbook(t))
	require.NoError(t, b.Materialize(ctx))

	_, err := b.RunMutation(ctx, "UPDATE Clients SET missing_col = 1")
	var qe *QueryError
	require.ErrorAs(t, err, &qe)

	got, err := b.RunQuery(ctx, "SELECT COUNT(*) FROM Clients")
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Rows[0][0])
}

func TestReplaceDatasetPersistReload(t *testing.T) {
	ctx := context.Background()
	src := writeWorkbook(t)
	b := openBridge(t, src)
	require.NoError(t, b.Materialize(ctx))

	summary := "SELECT ville, COUNT(*) AS n FROM Clients WHERE ville IS NOT NULL GROUP BY ville ORDER BY ville"
	require.NoError(t, b.ReplaceDataset(ctx, "Summary", summary))
	require.NoError(t, b.ReplaceDataset(ctx, "Clients", "SELECT nom, montant FROM Clients WHERE montant > 50"))
	assert.Equal(t, []string{"Clients", "Sales 2024", "Summary"}, b.DatasetNames())

	orig, ok := b.Original("Clients")
	require.True(t, ok)
	assert.True(t, clientsDataset().Equal(orig), "original map is never mutated")

	live, err := b.RunQuery(ctx, "SELECT COUNT(*) FROM Clients")
	require.NoError(t, err)
	assert.Equal(t, int64(4), live.Rows[0][0], "live table untouched by ReplaceDataset")

	out := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, b.Persist(out))

	reloaded, err := store.Read(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"Clients", "Sales 2024", "Summary"}, reloaded.Names())

	clients, _ := reloaded.Get("Clients")
	want := dataset.New("", "nom", "montant")
	_ = want.Append("Dupont", 120.5)
	_ = want.Append("Martin", int64(80))
	assert.True(t, want.Equal(clients), "got %v %v", clients.Columns, clients.Rows)

	got, _ := reloaded.Get("Summary")
	wantSummary := dataset.New("", "ville", "n")
	_ = wantSummary.Append("Lyon", int64(2))
	_ = wantSummary.Append("Paris", int64(1))
	assert.True(t, wantSummary.Equal(got))
}

func TestReplaceDatasetPersistReloadKeepsRealResults(t *testing.T) {
	ctx := context.Background()
	src := filepath.Join(t.TempDir(), "scores.xlsx")
	scores := dataset.New("S", "k", "v")
	_ = scores.Append("a", int64(100))
	_ = scores.Append("a", int64(200))
	_ = scores.Append("a", int64(400))
	set := dataset.NewSet()
	set.Put("S", scores)
	require.NoError(t, store.Write(src, set))

	b := openBridge(t, src)
	require.NoError(t, b.Materialize(ctx))
	q := "SELECT k, AVG(v) AS avg, AVG(v) / 7 AS ratio FROM S GROUP BY k"
	require.NoError(t, b.ReplaceDataset(ctx, "S", q))
	require.NoError(t, b.Persist(""))

	want, err := b.RunQuery(ctx, q)
	require.NoError(t, err)
	reloaded, err := store.Read(src)
	require.NoError(t, err)
	got, ok := reloaded.Get("S")
	require.True(t, ok)
	assert.True(t, want.Equal(got), "query %v, reloaded %v", want.Rows, got.Rows)
	assert.Equal(t, 700.0/3, got.Rows[0][1])
}

func TestMaterializeDateCellsAsISOText(t *testing.T) {
	ctx := context.Background()
	src := filepath.Join(t.TempDir(), "orders.xlsx")
	orders := dataset.New("Orders", "day", "amount")
	_ = orders.Append(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), int64(10))
	_ = orders.Append(time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC), int64(20))
	set := dataset.NewSet()
	set.Put("Orders", orders)
	require.NoError(t, store.Write(src, set))

	b := openBridge(t, src)
	require.NoError(t, b.Materialize(ctx))
	got, err := b.RunQuery(ctx, "SELECT day, strftime('%Y-%m', day) AS month FROM Orders ORDER BY day")
	require.NoError(t, err)
	assert.Equal(t, []any{"2024-01-15 00:00:00", "2024-01"}, got.Rows[0])
	assert.Equal(t, []any{"2024-02-20 00:00:00", "2024-02"}, got.Rows[1])
}

func TestMaterializeAlwaysUsesOriginal(t *testing.T) {
	ctx := context.Background()
	b := openBridge(t, writeWorkbook(t))
	require.NoError(t, b.Materialize(ctx))
	require.NoError(t, b.ReplaceDataset(ctx, "Clients", "SELECT nom FROM Clients"))
	require.NoError(t, b.Materialize(ctx, "Clients"))

	info, err := b.TableMetadata(ctx, "Clients")
	require.NoError(t, err)
	assert.Len(t, info.Columns, 4)
}

func TestSetDataset(t *testing.T) {
	b := openBridge(t, writeWorkbook(t))
	require.ErrorIs(t, b.SetDataset("x", salesDataset()), ErrNotLoaded)

	_, err := b.LoadDatasets()
	require.NoError(t, err)
	ds := salesDataset()
	require.NoError(t, b.SetDataset("Resume", ds))
	ds.Rows[0][0] = "changed"

	got, ok := b.Modified("Resume")
	require.True(t, ok)
	assert.Equal(t, "A", got.Rows[0][0])
	assert.Equal(t, "Resume", got.Name)
}

func TestLoadMissingDocument(t *testing.T) {
	b := New(filepath.Join(t.TempDir(), "absent.xlsx"), Options{})
	defer b.Close()
	_, err := b.LoadDatasets()
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "document", nf.Kind)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadUnsupportedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	b := New(path, Options{})
	defer b.Close()
	_, err := b.LoadDatasets()
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.ErrorIs(t, err, store.ErrUnsupported)
}

func TestSnapshot(t *testing.T) {
	src := writeWorkbook(t)
	b := openBridge(t, src)

	backup, err := b.Snapshot("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(src), "book_backup.xlsx"), backup)

	want, err := os.ReadFile(src)
	require.NoError(t, err)
	got, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCloseRemovesEphemeralFile(t *testing.T) {
	ctx := context.Background()
	b := openBridge(t, writeWorkbook(t))
	require.NoError(t, b.Materialize(ctx))
	dbPath := b.DBPath()
	require.FileExists(t, dbPath)
	assert.True(t, b.Ephemeral())

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.NoFileExists(t, dbPath)
	assert.Equal(t, Closed, b.State())

	_, err := b.RunQuery(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = b.LoadDatasets()
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, b.Connect(ctx), ErrClosed)
	assert.ErrorIs(t, b.Persist(""), ErrClosed)
}

func TestPersistentDBPathSurvivesClose(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "keep.db")
	b := New(writeWorkbook(t), Options{DBPath: dbPath})
	require.NoError(t, b.Connect(ctx))
	require.NoError(t, b.Materialize(ctx))
	require.NoError(t, b.Close())
	assert.FileExists(t, dbPath)
}

func TestQueryBeforeConnect(t *testing.T) {
	b := New(writeWorkbook(t), Options{})
	defer b.Close()
	_, err := b.RunQuery(context.Background(), "SELECT 1")
	var ce *ConnectionError
	require.ErrorAs(t, err, &ce)
}

func TestConnectPingFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing().WillReturnError(errors.New("engine down"))
	mock.ExpectClose()

	tmp := t.TempDir()
	b := New("book.xlsx", Options{
		TempDir: tmp,
		Logger:  testutil.NewTestLogger(t),
		Opener:  func(string) (*sql.DB, error) { return db, nil },
	})
	err = b.Connect(context.Background())
	var ce *ConnectionError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Error(), "engine down")

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary database removed after failed connect")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMutationRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	b := New("book.xlsx", Options{
		TempDir: t.TempDir(),
		Opener:  func(string) (*sql.DB, error) { return db, nil },
	})
	require.NoError(t, b.Connect(context.Background()))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM Clients").WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	_, err = b.RunMutation(context.Background(), "DELETE FROM Clients")
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "DELETE FROM Clients", qe.Query)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE Clients").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()
	n, err := b.RunMutation(context.Background(), "UPDATE Clients SET ville = 'X'")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	mock.ExpectClose()
	require.NoError(t, b.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuickQuery(t *testing.T) {
	got, err := QuickQuery(context.Background(), writeWorkbook(t),
		"SELECT SUM(quantite) AS total FROM Sales_2024", Options{TempDir: t.TempDir()}, "Sales 2024")
	require.NoError(t, err)
	assert.Equal(t, []string{"total"}, got.Columns)
	assert.Equal(t, int64(8), got.Rows[0][0])
}

func TestUpdateWithQuery(t *testing.T) {
	src := writeWorkbook(t)
	err := UpdateWithQuery(context.Background(), src, "Lyon",
		"SELECT nom FROM Clients WHERE ville = 'Lyon' ORDER BY nom", "", true, Options{TempDir: t.TempDir()})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(filepath.Dir(src), "book_backup.xlsx"))
	set, err := store.Read(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"Clients", "Sales 2024", "Lyon"}, set.Names())
	lyon, _ := set.Get("Lyon")
	assert.Equal(t, [][]any{{"Dupont"}, {"Durand"}}, lyon.Rows)
}
