package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KaramelBytes/sheetql-cli/internal/bridge"
)

// StepResult records the outcome of one applied step.
type StepResult struct {
	ID    string   `json:"id"`
	Kind  StepKind `json:"kind"`
	Sheet string   `json:"sheet,omitempty"`
	// Rows is the result row count, or the affected rows of a mutation.
	Rows int64 `json:"rows"`
}

// RunReport summarizes a project run.
type RunReport struct {
	Workbook string        `json:"workbook"`
	Output   string        `json:"output"`
	Backup   string        `json:"backup,omitempty"`
	Steps    []StepResult  `json:"steps"`
	Sheets   []string      `json:"sheets"`
	Duration time.Duration `json:"duration"`
}

// Run applies every step in order to the project's workbook and writes the
// result to OutputPath. Mutations act on the live tables, so later steps see
// their effect; replace and query steps only change the written sheets.
func (p *Project) Run(ctx context.Context, opt bridge.Options) (*RunReport, error) {
	if p.Workbook == "" {
		return nil, errors.New("project has no workbook; set one with 'sheetql project set-workbook'")
	}
	if len(p.Steps) == 0 {
		return nil, errors.New("project has no steps")
	}
	start := time.Now()
	b := bridge.New(p.Workbook, opt)
	defer b.Close()

	if err := b.Connect(ctx); err != nil {
		return nil, err
	}
	if _, err := b.LoadDatasets(); err != nil {
		return nil, err
	}
	rep := &RunReport{Workbook: p.Workbook, Output: p.OutputPath()}
	if p.Backup {
		path, err := b.Snapshot("")
		if err != nil {
			return nil, err
		}
		rep.Backup = path
	}
	if err := b.Materialize(ctx); err != nil {
		return nil, err
	}
	for i, s := range p.Steps {
		res := StepResult{ID: s.ID, Kind: s.Kind, Sheet: s.Sheet}
		switch s.Kind {
		case KindMutate:
			n, err := b.RunMutation(ctx, s.Query)
			if err != nil {
				return nil, fmt.Errorf("step %d (%s): %w", i+1, ShortID(s.ID), err)
			}
			res.Rows = n
		case KindReplace:
			if err := b.ReplaceDataset(ctx, s.Sheet, s.Query); err != nil {
				return nil, fmt.Errorf("step %d (%s): %w", i+1, ShortID(s.ID), err)
			}
			ds, _ := b.Modified(s.Sheet)
			res.Rows = int64(ds.Len())
		case KindQuery:
			ds, err := b.RunQuery(ctx, s.Query)
			if err != nil {
				return nil, fmt.Errorf("step %d (%s): %w", i+1, ShortID(s.ID), err)
			}
			if err := b.SetDataset(s.Sheet, ds); err != nil {
				return nil, err
			}
			res.Rows = int64(ds.Len())
		default:
			return nil, fmt.Errorf("step %d (%s): unknown kind %q", i+1, ShortID(s.ID), s.Kind)
		}
		rep.Steps = append(rep.Steps, res)
	}
	if err := b.Persist(rep.Output); err != nil {
		return nil, err
	}
	rep.Sheets = b.DatasetNames()
	rep.Duration = time.Since(start)
	return rep, nil
}

// ShortID returns the first eight characters of a step ID.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
