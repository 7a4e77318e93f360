package load

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the on-disk description of a set of classes and repositories.
// JSON files are read through the YAML decoder.
type File struct {
	Package      string       `yaml:"package,omitempty"`
	Classes      []*ClassSpec `yaml:"classes,omitempty"`
	Repositories []*ClassSpec `yaml:"repositories,omitempty"`
}

// ClassSpec describes a class or, under File.Repositories, a repository.
type ClassSpec struct {
	Name        string          `yaml:"name"`
	Enum        bool            `yaml:"enum,omitempty"`
	Values      []string        `yaml:"values,omitempty"`
	Entity      string          `yaml:"entity,omitempty"`
	Annotations Annotations     `yaml:"annotations,omitempty"`
	Fields      []*MemberSpec   `yaml:"fields,omitempty"`
	Functions   []*FunctionSpec `yaml:"functions,omitempty"`
	Line        int             `yaml:"-"`
}

// MemberSpec describes a field or a function parameter.
type MemberSpec struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"`
	Annotations Annotations `yaml:"annotations,omitempty"`
}

// FunctionSpec describes a repository function. An empty Returns
// means Unit.
type FunctionSpec struct {
	Name        string        `yaml:"name"`
	Params      []*MemberSpec `yaml:"params,omitempty"`
	Returns     string        `yaml:"returns,omitempty"`
	Annotations Annotations   `yaml:"annotations,omitempty"`
}

// UnmarshalYAML records the line of the class for error positions.
func (c *ClassSpec) UnmarshalYAML(n *yaml.Node) error {
	type plain ClassSpec
	if err := n.Decode((*plain)(c)); err != nil {
		return err
	}
	c.Line = n.Line
	return nil
}

// Model is the result of loading one or more files into a universe.
type Model struct {
	Universe     *Universe
	Repositories []*Klass
}

// Entities returns the distinct entities mapped by the repositories,
// in repository order.
func (m *Model) Entities() []*Klass {
	var (
		ks   []*Klass
		seen = make(map[QualifiedName]bool)
	)
	for _, r := range m.Repositories {
		if r.Entity == nil || seen[r.Entity.Name()] {
			continue
		}
		seen[r.Entity.Name()] = true
		ks = append(ks, r.Entity.Klass)
	}
	return ks
}

// ReadFiles loads the given files into a fresh universe and checks that
// every referenced class was declared.
func ReadFiles(paths ...string) (*Model, error) {
	m := &Model{Universe: NewUniverse()}
	for _, path := range paths {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		repos, err := Parse(m.Universe, path, buf)
		if err != nil {
			return nil, err
		}
		m.Repositories = append(m.Repositories, repos...)
	}
	if err := m.Check(); err != nil {
		return nil, err
	}
	return m, nil
}

// Check reports classes that were referenced but never declared.
func (m *Model) Check() error {
	if names := m.Universe.Undeclared(); len(names) > 0 {
		s := make([]string, len(names))
		for i, n := range names {
			s[i] = n.String()
		}
		return fmt.Errorf("load: undeclared classes: %s", strings.Join(s, ", "))
	}
	return nil
}

// Parse decodes one file into u and returns its repositories. Classes
// are declared before any field is resolved, so files may reference
// classes declared later or in other files.
func Parse(u *Universe, path string, data []byte) ([]*Klass, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("load: %s: %w", path, err)
	}
	all := append(append([]*ClassSpec(nil), f.Classes...), f.Repositories...)
	klasses := make([]*Klass, len(all))
	for i, c := range all {
		if c.Name == "" {
			return nil, fmt.Errorf("load: %s:%d: class without name", path, c.Line)
		}
		k, err := u.Declare(qualify(c.Name, f.Package), fmt.Sprintf("%s:%d", path, c.Line))
		if err != nil {
			return nil, err
		}
		klasses[i] = k
	}
	for i, c := range all {
		if err := fill(u, f.Package, klasses[i], c); err != nil {
			return nil, fmt.Errorf("load: %s: class %s: %w", klasses[i].Pos, klasses[i].Name, err)
		}
	}
	return klasses[len(f.Classes):], nil
}

func fill(u *Universe, pkg string, k *Klass, c *ClassSpec) error {
	k.Enum, k.Values, k.Annotations = c.Enum, c.Values, c.Annotations
	for _, m := range c.Fields {
		t, err := u.ParseType(m.Type, pkg)
		if err != nil {
			return fmt.Errorf("field %s: %w", m.Name, err)
		}
		k.Fields = append(k.Fields, &Field{Name: m.Name, Type: t, Annotations: m.Annotations})
	}
	if c.Entity != "" {
		t, err := u.ParseType(c.Entity, pkg)
		if err != nil {
			return fmt.Errorf("entity: %w", err)
		}
		k.Entity = t
	}
	for _, fs := range c.Functions {
		fn := &Function{Name: fs.Name, Annotations: fs.Annotations}
		ret := fs.Returns
		if ret == "" {
			ret = Unit.Name
		}
		t, err := u.ParseType(ret, pkg)
		if err != nil {
			return fmt.Errorf("function %s: %w", fs.Name, err)
		}
		fn.Returns = t
		for _, p := range fs.Params {
			t, err := u.ParseType(p.Type, pkg)
			if err != nil {
				return fmt.Errorf("function %s: parameter %s: %w", fs.Name, p.Name, err)
			}
			fn.Parameters = append(fn.Parameters, &Parameter{Name: p.Name, Type: t, Annotations: p.Annotations})
		}
		k.Functions = append(k.Functions, fn)
	}
	return nil
}

func qualify(name, pkg string) QualifiedName {
	if strings.ContainsRune(name, '.') || pkg == "" {
		return ParseQualifiedName(name)
	}
	return QualifiedName{Pkg: pkg, Name: name}
}
