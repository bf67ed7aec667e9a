package command

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/docsift/docsift/internal/common"
)

// DefaultCommand is resolved when the caller names no command.
const DefaultCommand = "extract-v1.json"

//go:embed extract-v1.json
var defaultSpecJSON []byte

// Resolver loads command specs from a single directory. Lookups use the
// basename of the requested name only, so a name with directory
// components cannot escape the commands directory.
type Resolver struct {
	dir string
}

func NewResolver(dir string) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve reads and validates the named command spec. An empty name
// resolves DefaultCommand.
func (r *Resolver) Resolve(name string) (*Spec, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultCommand
	}
	base := filepath.Base(name)
	if base == "." || base == ".." || base == "/" {
		return nil, common.NotFoundError("command spec not found: " + name)
	}

	data, err := os.ReadFile(filepath.Join(r.dir, base))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.NotFoundError("command spec not found: " + base)
		}
		return nil, common.InternalError("read command spec "+base, err)
	}
	return parseSpec(base, data)
}

// Summary is one row of the command listing.
type Summary struct {
	File       string `json:"file"`
	Name       string `json:"name"`
	SchemaName string `json:"schemaName"`
	Model      string `json:"model"`
}

// List enumerates the valid command specs in the directory. Files that
// fail to parse or validate are skipped.
func (r *Resolver) List() ([]Summary, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Summary{}, nil
		}
		return nil, err
	}
	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		spec, err := r.Resolve(e.Name())
		if err != nil {
			continue
		}
		out = append(out, Summary{
			File:       e.Name(),
			Name:       spec.Name,
			SchemaName: spec.SchemaName,
			Model:      spec.Model,
		})
	}
	return out, nil
}

// Seed writes the embedded default spec into the directory when no file
// named DefaultCommand exists yet, so a fresh install has a working
// command out of the box.
func (r *Resolver) Seed() error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(r.dir, DefaultCommand)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, defaultSpecJSON, 0o644)
}
