package project_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/sheetql-cli/internal/bridge"
	"github.com/KaramelBytes/sheetql-cli/internal/dataset"
	"github.com/KaramelBytes/sheetql-cli/internal/project"
	"github.com/KaramelBytes/sheetql-cli/internal/store"
)

func writeSales(t *testing.T, dir string) string {
	t.Helper()
	ds := dataset.New("Ventes", "produit", "vendeur", "montant")
	_ = ds.Append("A", "Alice", int64(100))
	_ = ds.Append("B", "bob ", int64(300))
	_ = ds.Append("C", "Alice", int64(600))
	set := dataset.NewSet()
	set.Put("Ventes", ds)
	path := filepath.Join(dir, "ventes.xlsx")
	if err := store.Write(path, set); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return path
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	tdir := t.TempDir()
	proj := project.NewProject("monthly", "monthly cleanup", filepath.Join(tdir, "proj"))
	if err := proj.SetWorkbook(filepath.Join(tdir, "book.xlsx")); err != nil {
		t.Fatal(err)
	}
	step, err := proj.AddStep(project.KindReplace, "Resume", "SELECT 1 AS one", "smoke")
	if err != nil {
		t.Fatalf("add step: %v", err)
	}
	if err := proj.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := project.LoadProject(filepath.Join(tdir, "proj"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Name != "monthly" || loaded.Description != "monthly cleanup" {
		t.Fatalf("unexpected metadata: %+v", loaded)
	}
	if !loaded.Backup {
		t.Fatalf("backup should default to true")
	}
	if len(loaded.Steps) != 1 || loaded.Steps[0].ID != step.ID || loaded.Steps[0].Kind != project.KindReplace {
		t.Fatalf("steps not persisted: %+v", loaded.Steps)
	}
	if !filepath.IsAbs(loaded.Workbook) {
		t.Fatalf("workbook path should be absolute: %s", loaded.Workbook)
	}
}

func TestLoadMissingProject(t *testing.T) {
	_, err := project.LoadProject(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "project not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestAddStepValidation(t *testing.T) {
	proj := project.NewProject("p", "", t.TempDir())
	if _, err := proj.AddStep(project.KindReplace, "", "SELECT 1", ""); err == nil {
		t.Fatalf("replace without sheet should fail")
	}
	if _, err := proj.AddStep(project.KindMutate, "", "  ", ""); err == nil {
		t.Fatalf("empty query should fail")
	}
	if _, err := proj.AddStep("drop", "S", "SELECT 1", ""); err == nil {
		t.Fatalf("unknown kind should fail")
	}
	if _, err := proj.AddStep(project.KindMutate, "", "DELETE FROM t", ""); err != nil {
		t.Fatalf("mutate without sheet is valid: %v", err)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]project.StepKind{"replace": project.KindReplace, " MUTATE ": project.KindMutate, "Query": project.KindQuery} {
		got, err := project.ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := project.ParseKind("upsert"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestRemoveStepByPrefix(t *testing.T) {
	proj := project.NewProject("p", "", t.TempDir())
	a, _ := proj.AddStep(project.KindQuery, "A", "SELECT 1", "")
	b, _ := proj.AddStep(project.KindQuery, "B", "SELECT 2", "")

	removed, err := proj.RemoveStep(project.ShortID(a.ID))
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.ID != a.ID || len(proj.Steps) != 1 || proj.Steps[0].ID != b.ID {
		t.Fatalf("unexpected steps after remove: %+v", proj.Steps)
	}
	if _, err := proj.RemoveStep("zzzz"); err == nil {
		t.Fatalf("expected not found error")
	}
	if _, err := proj.RemoveStep(""); err == nil {
		t.Fatalf("empty id must not match")
	}
}

func TestRunAppliesStepsInOrder(t *testing.T) {
	tdir := t.TempDir()
	book := writeSales(t, tdir)
	out := filepath.Join(tdir, "out.xlsx")

	proj := project.NewProject("p", "", filepath.Join(tdir, "proj"))
	if err := proj.SetWorkbook(book); err != nil {
		t.Fatal(err)
	}
	proj.Output = out
	mustAdd := func(kind project.StepKind, sheet, q string) {
		t.Helper()
		if _, err := proj.AddStep(kind, sheet, q, ""); err != nil {
			t.Fatal(err)
		}
	}
	mustAdd(project.KindMutate, "", "UPDATE Ventes SET vendeur = UPPER(TRIM(vendeur))")
	mustAdd(project.KindReplace, "Ventes", "SELECT produit, vendeur, montant * 2 AS montant FROM Ventes ORDER BY produit")
	mustAdd(project.KindQuery, "Resume", "SELECT vendeur, SUM(montant) AS total FROM Ventes GROUP BY vendeur ORDER BY total DESC")

	rep, err := proj.Run(context.Background(), bridge.Options{TempDir: t.TempDir()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(rep.Steps) != 3 || rep.Steps[0].Rows != 3 || rep.Steps[2].Rows != 2 {
		t.Fatalf("unexpected report: %+v", rep.Steps)
	}
	if rep.Backup == "" {
		t.Fatalf("backup expected")
	}
	if _, err := os.Stat(rep.Backup); err != nil {
		t.Fatalf("backup missing: %v", err)
	}

	set, err := store.Read(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if got := strings.Join(set.Names(), ","); got != "Ventes,Resume" {
		t.Fatalf("sheets = %s", got)
	}
	ventes, _ := set.Get("Ventes")
	if v, _ := ventes.Value(1, "vendeur"); v != "BOB" {
		t.Fatalf("mutation not visible to later steps: %v", v)
	}
	if v, _ := ventes.Value(2, "montant"); v != int64(1200) {
		t.Fatalf("montant = %v", v)
	}
	resume, _ := set.Get("Resume")
	if v, _ := resume.Value(0, "vendeur"); v != "ALICE" {
		t.Fatalf("resume top = %v", v)
	}
	if v, _ := resume.Value(0, "total"); v != int64(700) {
		t.Fatalf("resume total = %v", v)
	}
}

func TestRunWithoutWorkbook(t *testing.T) {
	proj := project.NewProject("p", "", t.TempDir())
	if _, err := proj.Run(context.Background(), bridge.Options{}); err == nil {
		t.Fatalf("expected error without workbook")
	}
}
