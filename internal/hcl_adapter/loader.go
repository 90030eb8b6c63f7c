package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/missiongraph/internal/config"
	"github.com/specialistvlad/missiongraph/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load orchestrates the entire HCL configuration loading process. It is
// agnostic to the origin of the paths and parses any valid block from any file.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	// A fresh parser per call: hclparse caches files by name, which would
	// hide edits between two loads of the same path.
	parser := hclparse.NewParser()
	model := config.NewModel()
	kindSources := make(map[string]string)

	for _, file := range hclFiles {
		fileModel, err := l.loadFile(ctx, parser, file)
		if err != nil {
			return nil, err
		}
		for _, k := range fileModel.Kinds {
			if prev, dup := kindSources[k.Name]; dup {
				return nil, fmt.Errorf("kind '%s' declared in both %s and %s", k.Name, prev, file)
			}
			kindSources[k.Name] = file
		}
		model.Merge(fileModel)
	}

	logger.Debug("HCL loading complete.", "kinds", len(model.Kinds), "records", len(model.Records), "missions", len(model.Missions))
	return model, nil
}

// LoadFile parses a single HCL file.
func (l *Loader) LoadFile(ctx context.Context, path string) (*config.Model, error) {
	return l.loadFile(ctx, hclparse.NewParser(), path)
}

func (l *Loader) loadFile(ctx context.Context, parser *hclparse.Parser, file string) (*config.Model, error) {
	hclFile, diags := parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
	}

	model := config.NewModel()
	for _, kind := range root.Kinds {
		def, err := translateKind(ctx, kind, file)
		if err != nil {
			return nil, err
		}
		model.Kinds = append(model.Kinds, def)
	}
	for _, record := range root.Records {
		def, err := translateRecord(ctx, record, file)
		if err != nil {
			return nil, err
		}
		if _, dup := model.Records[def.Name]; dup {
			return nil, fmt.Errorf("record '%s' declared twice in %s", def.Name, file)
		}
		model.Records[def.Name] = def
	}
	for _, mission := range root.Missions {
		def, err := translateMission(ctx, mission, file)
		if err != nil {
			return nil, err
		}
		model.Missions = append(model.Missions, def)
	}
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" {
					if _, wasSeen := seen[p]; !wasSeen {
						allFiles = append(allFiles, p)
						seen[p] = struct{}{}
					}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			if _, wasSeen := seen[path]; !wasSeen {
				allFiles = append(allFiles, path)
				seen[path] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
