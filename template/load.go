package template

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/templet-xyz/go-templet/schema"
)

// metadata is the template.yaml layout.
type metadata struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Description string   `yaml:"description"`
	Type        string   `yaml:"type"`
	Keywords    []string `yaml:"keywords"`
}

// Directory layout of a template source tree.
const (
	metadataFile = "template.yaml"
	modelFile    = "model.json"
	markupFile   = "grammar.tem"
	logicFile    = "logic.ergo"
	readmeFile   = "README.md"
	requestFile  = "request.json"
	responseFile = "response.json"
)

// FromDirectory loads a template from a source directory. template.yaml,
// model.json and grammar.tem are required; logic, README and samples are
// optional. Sample contract texts follow the pattern sample.md (default
// locale) and sample_<locale>.md.
func FromDirectory(dir string) (*Template, error) {
	metaBytes, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var meta metadata
	if err := yaml.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("parse %s: %w", metadataFile, err)
	}
	if meta.Name == "" || meta.Version == "" {
		return nil, fmt.Errorf("%s must declare name and version", metadataFile)
	}

	modelBytes, err := os.ReadFile(filepath.Join(dir, modelFile))
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	model, err := schema.FromJSON(modelBytes)
	if err != nil {
		return nil, err
	}

	markupBytes, err := os.ReadFile(filepath.Join(dir, markupFile))
	if err != nil {
		return nil, fmt.Errorf("read markup: %w", err)
	}

	t, err := New(meta.Name, meta.Version, model, string(markupBytes), meta.Type)
	if err != nil {
		return nil, err
	}
	t.SetDescription(meta.Description)
	t.SetKeywords(meta.Keywords)

	if logic, err := os.ReadFile(filepath.Join(dir, logicFile)); err == nil {
		t.SetLogic(string(logic))
	}
	if readme, err := os.ReadFile(filepath.Join(dir, readmeFile)); err == nil {
		t.SetReadme(string(readme))
	}
	if sample, err := readJSONFile(filepath.Join(dir, requestFile)); err != nil {
		return nil, err
	} else if sample != nil {
		t.SetRequestSample(sample)
	}
	if sample, err := readJSONFile(filepath.Join(dir, responseFile)); err != nil {
		return nil, err
	} else if sample != nil {
		t.SetResponseSample(sample)
	}
	if err := loadSamples(t, dir); err != nil {
		return nil, err
	}
	return t, nil
}

func readJSONFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return out, nil
}

func loadSamples(t *Template, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "sample") || !strings.HasSuffix(name, ".md") {
			continue
		}
		locale := "default"
		if rest := strings.TrimSuffix(strings.TrimPrefix(name, "sample"), ".md"); rest != "" {
			locale = strings.TrimPrefix(rest, "_")
		}
		text, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		t.SetSample(locale, string(text))
	}
	return nil
}
