package gen

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Snapshot is a serializable view of a Graph. Encoding the snapshot of
// the same model twice yields identical bytes.
type Snapshot struct {
	Databases []*DatabaseSnapshot `json:"databases" yaml:"databases" msgpack:"databases"`
}

// DatabaseSnapshot describes one database.
type DatabaseSnapshot struct {
	Name  string          `json:"name" yaml:"name" msgpack:"name"`
	Repos []*RepoSnapshot `json:"repos" yaml:"repos" msgpack:"repos"`
}

// RepoSnapshot describes one repository.
type RepoSnapshot struct {
	Name    string            `json:"name" yaml:"name" msgpack:"name"`
	Table   string            `json:"table,omitempty" yaml:"table,omitempty" msgpack:"table,omitempty"`
	Columns []string          `json:"columns,omitempty" yaml:"columns,omitempty" msgpack:"columns,omitempty"`
	Methods []*MethodSnapshot `json:"methods" yaml:"methods" msgpack:"methods"`
}

// MethodSnapshot describes one synthesized method.
type MethodSnapshot struct {
	Name        string               `json:"name" yaml:"name" msgpack:"name"`
	Kind        string               `json:"kind" yaml:"kind" msgpack:"kind"`
	Query       string               `json:"query" yaml:"query" msgpack:"query"`
	Params      []*ParamSnapshot     `json:"params,omitempty" yaml:"params,omitempty" msgpack:"params,omitempty"`
	Returns     string               `json:"returns" yaml:"returns" msgpack:"returns"`
	Collection  bool                 `json:"collection,omitempty" yaml:"collection,omitempty" msgpack:"collection,omitempty"`
	Scalar      bool                 `json:"scalar,omitempty" yaml:"scalar,omitempty" msgpack:"scalar,omitempty"`
	Pagination  string               `json:"pagination,omitempty" yaml:"pagination,omitempty" msgpack:"pagination,omitempty"`
	Order       string               `json:"order,omitempty" yaml:"order,omitempty" msgpack:"order,omitempty"`
	Batch       bool                 `json:"batch,omitempty" yaml:"batch,omitempty" msgpack:"batch,omitempty"`
	Optimistic  bool                 `json:"optimistic,omitempty" yaml:"optimistic,omitempty" msgpack:"optimistic,omitempty"`
	Statement   bool                 `json:"statement,omitempty" yaml:"statement,omitempty" msgpack:"statement,omitempty"`
	Constructor *ConstructorSnapshot `json:"constructor,omitempty" yaml:"constructor,omitempty" msgpack:"constructor,omitempty"`
}

// ParamSnapshot describes a value bound into a query.
type ParamSnapshot struct {
	Position int    `json:"position" yaml:"position" msgpack:"position"`
	Path     string `json:"path" yaml:"path" msgpack:"path"`
	Type     string `json:"type" yaml:"type" msgpack:"type"`
	Kind     string `json:"kind" yaml:"kind" msgpack:"kind"`
	Storage  string `json:"storage,omitempty" yaml:"storage,omitempty" msgpack:"storage,omitempty"`
}

// ConstructorSnapshot describes a node of an object constructor tree.
type ConstructorSnapshot struct {
	Field    string                 `json:"field,omitempty" yaml:"field,omitempty" msgpack:"field,omitempty"`
	Class    string                 `json:"class" yaml:"class" msgpack:"class"`
	Column   string                 `json:"column,omitempty" yaml:"column,omitempty" msgpack:"column,omitempty"`
	Getter   string                 `json:"getter,omitempty" yaml:"getter,omitempty" msgpack:"getter,omitempty"`
	Nullable bool                   `json:"nullable,omitempty" yaml:"nullable,omitempty" msgpack:"nullable,omitempty"`
	Fields   []*ConstructorSnapshot `json:"fields,omitempty" yaml:"fields,omitempty" msgpack:"fields,omitempty"`
}

// Snapshot returns the serializable view of g.
func (g *Graph) Snapshot() *Snapshot {
	s := &Snapshot{}
	for _, db := range g.Databases() {
		ds := &DatabaseSnapshot{Name: db.Name.String()}
		for _, r := range db.Repos {
			ds.Repos = append(ds.Repos, snapshotRepo(r))
		}
		s.Databases = append(s.Databases, ds)
	}
	return s
}

func snapshotRepo(r *Repo) *RepoSnapshot {
	rs := &RepoSnapshot{Name: r.Name.String()}
	if r.Table != nil {
		rs.Table = r.Table.Name
		for _, c := range r.Table.Columns {
			rs.Columns = append(rs.Columns, c.Column.String())
		}
	}
	for _, m := range r.Methods {
		ms := &MethodSnapshot{
			Name:        m.Name,
			Kind:        m.Kind.String(),
			Query:       m.Query,
			Returns:     m.Returns.String(),
			Collection:  m.Collection,
			Scalar:      m.Scalar,
			Order:       m.OrderParam,
			Batch:       m.Batch,
			Optimistic:  m.Optimistic,
			Statement:   m.Statement,
			Constructor: snapshotConstructor(m.Constructor),
		}
		if m.Pagination != nil {
			ms.Pagination = m.Pagination.Param
		}
		for _, p := range m.QueryParams {
			ps := &ParamSnapshot{Position: p.Position, Path: p.Path, Type: p.Type.String(), Kind: p.Kind.String()}
			if p.Storage.Valid() {
				ps.Storage = p.Storage.String()
			}
			ms.Params = append(ms.Params, ps)
		}
		rs.Methods = append(rs.Methods, ms)
	}
	return rs
}

func snapshotConstructor(oc ObjectConstructor) *ConstructorSnapshot {
	switch oc := oc.(type) {
	case *Extractor:
		return &ConstructorSnapshot{Field: oc.Field, Class: oc.Class.String(), Column: oc.Column, Getter: oc.Getter, Nullable: oc.Nullable}
	case *Constructor:
		cs := &ConstructorSnapshot{Field: oc.Field, Class: oc.Class.String()}
		for _, f := range oc.Fields {
			cs.Fields = append(cs.Fields, snapshotConstructor(f))
		}
		return cs
	}
	return nil
}

// Snapshot encodings.
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatMsgpack = "msgpack"
)

// Encode writes s to w in the given format.
func (s *Snapshot) Encode(w io.Writer, format string) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(s)
	default:
		return NewConfigError("Format", format, fmt.Sprintf("unsupported format; use %s, %s, or %s", FormatJSON, FormatYAML, FormatMsgpack))
	}
}

// DecodeSnapshot reads a snapshot written by Encode.
func DecodeSnapshot(r io.Reader, format string) (*Snapshot, error) {
	s := &Snapshot{}
	var err error
	switch format {
	case FormatJSON, "":
		err = json.NewDecoder(r).Decode(s)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(s)
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(s)
	default:
		return nil, NewConfigError("Format", format, "unsupported format")
	}
	if err != nil {
		return nil, fmt.Errorf("sqlrepo: decode snapshot: %w", err)
	}
	return s, nil
}
