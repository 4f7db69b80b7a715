package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/explorers-hub/internal/models"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

// LoadDefault builds the catalog bundled with the binary
func LoadDefault() (*Catalog, error) {
	return LoadFromFS(defaultsFS, "defaults")
}

// LoadFromDir builds a catalog from every YAML file in dir
func LoadFromDir(dir string) (*Catalog, error) {
	slog.Info("loading catalog from directory", "dir", dir)
	return LoadFromFS(os.DirFS(dir), ".")
}

// LoadFromFS builds a catalog from every *.yaml / *.yml file directly under dir.
// Files are read in lexical order, projects in the order they are listed.
func LoadFromFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(path.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	var projects []*models.Project
	for _, name := range files {
		loaded, err := loadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		slog.Debug("catalog file loaded", "file", name, "projects", len(loaded))
		projects = append(projects, loaded...)
	}

	c, err := New(projects)
	if err != nil {
		return nil, err
	}

	slog.Info("catalog loaded", "files", len(files), "projects", c.Len())
	return c, nil
}

// loadFile parses a single catalog YAML file
func loadFile(fsys fs.FS, name string) ([]*models.Project, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	projects := make([]*models.Project, 0, len(cf.Projects))
	for _, pf := range cf.Projects {
		projects = append(projects, pf.toModel())
	}
	return projects, nil
}

// --- YAML file structs ---

// catalogFile represents the YAML structure of a catalog file
type catalogFile struct {
	Projects []projectFile `yaml:"projects"`
}

// projectFile represents one project entry of a catalog file
type projectFile struct {
	ID            string     `yaml:"id"`
	Title         string     `yaml:"title"`
	Description   string     `yaml:"description"`
	Difficulty    string     `yaml:"difficulty"`
	Duration      string     `yaml:"duration"`
	Prerequisites []string   `yaml:"prerequisites"`
	TechStack     []string   `yaml:"tech_stack"`
	Steps         []stepFile `yaml:"steps"`
	RepoLink      string     `yaml:"repo_link"`
	DemoLink      string     `yaml:"demo_link"`
}

// stepFile represents one guide step; code and pitfalls may be omitted
type stepFile struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Code        *string  `yaml:"code"`
	Pitfalls    []string `yaml:"pitfalls"`
}

func (pf projectFile) toModel() *models.Project {
	p := &models.Project{
		ID:          strings.TrimSpace(pf.ID),
		Title:       pf.Title,
		Description: pf.Description,
		Difficulty:  models.Difficulty(strings.ToLower(strings.TrimSpace(pf.Difficulty))),
		Duration:    pf.Duration,
	}

	if !pf.hasDetail() {
		return p
	}

	detail := &models.ProjectDetail{
		Prerequisites: nonNil(pf.Prerequisites),
		TechStack:     nonNil(pf.TechStack),
		Steps:         make([]models.Step, 0, len(pf.Steps)),
		RepoLink:      pf.RepoLink,
		DemoLink:      pf.DemoLink,
	}
	for _, sf := range pf.Steps {
		detail.Steps = append(detail.Steps, models.Step{
			Title:       sf.Title,
			Description: sf.Description,
			Code:        sf.Code,
			Pitfalls:    sf.Pitfalls,
		})
	}
	p.Detail = detail
	return p
}

func (pf projectFile) hasDetail() bool {
	return len(pf.Prerequisites) > 0 || len(pf.TechStack) > 0 || len(pf.Steps) > 0 ||
		pf.RepoLink != "" || pf.DemoLink != ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
