package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestName is the file the CLI looks for when no source file is given.
const ManifestName = "plc.yml"

// DefaultEmitOutput is where an emit target writes when output is omitted.
const DefaultEmitOutput = "Main.java"

// Manifest represents the parsed contents of plc.yml.
type Manifest struct {
	Path        string
	Name        string
	Version     string
	Authors     []string
	Targets     map[string]*TargetSpec
	TargetOrder []string
}

// TargetSpec describes one runnable unit of the manifest. Main and Output are
// relative to the manifest directory.
type TargetSpec struct {
	Name   string
	Mode   TargetMode
	Main   string
	Output string
}

// TargetMode selects what the driver does with a target's source.
type TargetMode string

const (
	TargetModeRun   TargetMode = "run"
	TargetModeCheck TargetMode = "check"
	TargetModeEmit  TargetMode = "emit"
)

// IsValid reports whether the mode is recognised.
func (m TargetMode) IsValid() bool {
	switch m {
	case TargetModeRun, TargetModeCheck, TargetModeEmit:
		return true
	default:
		return false
	}
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses plc.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	manifest, err := decodeManifest(file, absPath)
	if err != nil {
		return nil, err
	}
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

func decodeManifest(r io.Reader, path string) (*Manifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", path)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	return raw.toManifest(path), nil
}

// FindManifest walks up from dir looking for plc.yml.
func FindManifest(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("manifest: resolve %s: %w", dir, err)
	}
	for {
		candidate := filepath.Join(current, ManifestName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("manifest: stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrManifestNotFound
		}
		current = parent
	}
}

var ErrManifestNotFound = errors.New("manifest: " + ManifestName + " not found")

var versionPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+){0,2}([0-9A-Za-z\-\+\.]*)?$`)

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if m.Version != "" && !versionPattern.MatchString(m.Version) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("invalid version %q", m.Version))
	}
	for i, author := range m.Authors {
		if author == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("authors[%d] must be a non-empty string", i))
		}
	}
	if len(m.TargetOrder) == 0 {
		errs.Issues = append(errs.Issues, "at least one target must be defined")
	}

	for _, name := range m.TargetOrder {
		target := m.Targets[name]
		if target.Mode == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q missing mode", name))
		} else if !target.Mode.IsValid() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q has unsupported mode %q", name, target.Mode))
		}
		switch {
		case target.Main == "":
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q requires a main source file", name))
		case filepath.Ext(target.Main) != ".plc":
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q main %q must be a .plc file", name, target.Main))
		}
		if target.Output != "" && target.Mode != TargetModeEmit {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q sets output but mode is %q", name, target.Mode))
		}
		if target.Mode == TargetModeEmit && target.Output == "" {
			target.Output = DefaultEmitOutput
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

var ErrNoTargets = errors.New("manifest: no targets defined")

// DefaultTarget returns the first target in manifest order.
func (m *Manifest) DefaultTarget() (*TargetSpec, error) {
	if m == nil || len(m.TargetOrder) == 0 {
		return nil, ErrNoTargets
	}
	return m.Targets[m.TargetOrder[0]], nil
}

// FindTarget looks up a target by name, ignoring case.
func (m *Manifest) FindTarget(name string) (*TargetSpec, bool) {
	if m == nil {
		return nil, false
	}
	name = strings.TrimSpace(name)
	if target, ok := m.Targets[name]; ok {
		return target, true
	}
	for _, key := range m.TargetOrder {
		if strings.EqualFold(key, name) {
			return m.Targets[key], true
		}
	}
	return nil, false
}

// Resolve turns a manifest-relative path into an absolute one.
func (m *Manifest) Resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(filepath.Dir(m.Path), filepath.FromSlash(rel))
}

type manifestFile struct {
	Name    string     `yaml:"name"`
	Version string     `yaml:"version"`
	Authors stringList `yaml:"authors"`
	Targets targetMap  `yaml:"targets"`
}

type targetYAML struct {
	Mode   TargetMode `yaml:"mode"`
	Main   string     `yaml:"main"`
	Output string     `yaml:"output"`
}

// targetMap keeps the document order of targets so the first one can be the
// default.
type targetMap struct {
	items []targetMapEntry
}

type targetMapEntry struct {
	name string
	spec *targetYAML
}

func (tm *targetMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		tm.items = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: targets must be a mapping")
	}
	items := make([]targetMapEntry, 0, len(value.Content)/2)
	seen := make(map[string]bool, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valueNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: targets must not use empty keys")
		}
		if seen[key] {
			return fmt.Errorf("manifest: target %q defined twice", key)
		}
		seen[key] = true
		// node.Decode does not inherit KnownFields, so check keys here.
		if valueNode.Kind == yaml.MappingNode {
			for j := 0; j < len(valueNode.Content); j += 2 {
				switch field := valueNode.Content[j].Value; field {
				case "main", "mode", "output":
				default:
					return fmt.Errorf("manifest: target %q: unknown field %q", key, field)
				}
			}
		}
		entry := new(targetYAML)
		if err := valueNode.Decode(entry); err != nil {
			return fmt.Errorf("manifest: target %q: %w", key, err)
		}
		items = append(items, targetMapEntry{name: key, spec: entry})
	}
	tm.items = items
	return nil
}

// stringList accepts either a single string or a sequence.
type stringList []string

func (sl *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*sl = nil
			return nil
		}
		*sl = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		out := make(stringList, len(items))
		for i, item := range items {
			out[i] = strings.TrimSpace(item)
		}
		*sl = out
		return nil
	default:
		return fmt.Errorf("manifest: expected a string or list of strings")
	}
}

func (mf manifestFile) toManifest(path string) *Manifest {
	result := &Manifest{
		Path:        path,
		Name:        strings.TrimSpace(mf.Name),
		Version:     strings.TrimSpace(mf.Version),
		Authors:     append([]string(nil), mf.Authors...),
		Targets:     make(map[string]*TargetSpec, len(mf.Targets.items)),
		TargetOrder: make([]string, 0, len(mf.Targets.items)),
	}
	for _, item := range mf.Targets.items {
		spec := &TargetSpec{Name: item.name}
		if item.spec != nil {
			spec.Mode = TargetMode(strings.TrimSpace(string(item.spec.Mode)))
			spec.Main = strings.TrimSpace(item.spec.Main)
			spec.Output = strings.TrimSpace(item.spec.Output)
		}
		result.Targets[item.name] = spec
		result.TargetOrder = append(result.TargetOrder, item.name)
	}
	return result
}
