package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/sheetql-cli/internal/utils"
	"github.com/google/uuid"
)

const (
	projectFileName = "project.json"
)

// Project is a named, persisted sequence of updates bound to a workbook.
type Project struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Workbook    string    `json:"workbook"`
	Output      string    `json:"output,omitempty"`
	Backup      bool      `json:"backup"`
	Steps       []*Step   `json:"steps"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Not serialized: on-disk location of the project.json
	rootDir string `json:"-"`
}

// NewProject constructs an in-memory project. Call Save() to persist.
func NewProject(name, description, rootDir string) *Project {
	return &Project{
		Name:        name,
		Description: description,
		Backup:      true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		rootDir:     rootDir,
	}
}

// LoadProject loads a project.json from the provided directory.
func LoadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, projectFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("project not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read project: %w", err)
	}
	var p Project
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	p.rootDir = dir
	return &p, nil
}

// RootDir returns the on-disk project directory path.
func (p *Project) RootDir() string { return p.rootDir }

// Save writes project.json using atomic write.
func (p *Project) Save() error {
	if p.rootDir == "" {
		return errors.New("project root directory not set")
	}
	if err := utils.EnsureDir(p.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	p.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(p)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(p.rootDir, projectFileName), data)
}

// SetWorkbook binds the project to a workbook. Relative paths are made
// absolute so the project can be run from any directory.
func (p *Project) SetWorkbook(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve workbook path: %w", err)
	}
	p.Workbook = abs
	p.UpdatedAt = time.Now()
	return nil
}

// AddStep appends an update step and returns it.
func (p *Project) AddStep(kind StepKind, sheet, query, description string) (*Step, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("step query is empty")
	}
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if kind != KindMutate && strings.TrimSpace(sheet) == "" {
		return nil, fmt.Errorf("%s step needs a target sheet", kind)
	}
	s := &Step{
		ID:          uuid.NewString(),
		Kind:        kind,
		Sheet:       sheet,
		Query:       query,
		Description: strings.TrimSpace(description),
		AddedAt:     time.Now(),
	}
	p.Steps = append(p.Steps, s)
	p.UpdatedAt = time.Now()
	return s, nil
}

// FindStep resolves a step by full ID or unique ID prefix.
func (p *Project) FindStep(idOrPrefix string) (*Step, int, error) {
	idx := -1
	for i, s := range p.Steps {
		if s.ID == idOrPrefix {
			return s, i, nil
		}
		if strings.HasPrefix(s.ID, idOrPrefix) {
			if idx >= 0 {
				return nil, -1, fmt.Errorf("step prefix %q is ambiguous", idOrPrefix)
			}
			idx = i
		}
	}
	if idx < 0 || idOrPrefix == "" {
		return nil, -1, fmt.Errorf("step %q not found", idOrPrefix)
	}
	return p.Steps[idx], idx, nil
}

// RemoveStep deletes a step by ID or unique ID prefix.
func (p *Project) RemoveStep(idOrPrefix string) (*Step, error) {
	s, i, err := p.FindStep(idOrPrefix)
	if err != nil {
		return nil, err
	}
	p.Steps = append(p.Steps[:i], p.Steps[i+1:]...)
	p.UpdatedAt = time.Now()
	return s, nil
}

// OutputPath returns where Run writes the workbook.
func (p *Project) OutputPath() string {
	if p.Output != "" {
		return p.Output
	}
	return p.Workbook
}
