package sqlrepo

import (
	"strings"

	"github.com/lib/pq"
)

// Direction of a sort column.
type Direction uint8

// Sort directions.
const (
	DirectionAsc Direction = iota
	DirectionDesc
)

// String returns the SQL keyword.
func (d Direction) String() string {
	if d == DirectionDesc {
		return "DESC"
	}
	return "ASC"
}

// NullsOrder places NULL values before or after the others.
type NullsOrder uint8

// Nulls placement. NullsDefault leaves it to the database.
const (
	NullsDefault NullsOrder = iota
	NullsFirst
	NullsLast
)

// SortCol orders a result by one column.
type SortCol struct {
	Column    string     `json:"column"`
	Direction Direction  `json:"direction,omitempty"`
	Nulls     NullsOrder `json:"nulls,omitempty"`
}

// Asc sorts by column in ascending order.
func Asc(column string) SortCol {
	return SortCol{Column: column, Direction: DirectionAsc}
}

// Desc sorts by column in descending order.
func Desc(column string) SortCol {
	return SortCol{Column: column, Direction: DirectionDesc}
}

// NullsFirst returns a copy of c placing NULL values first.
func (c SortCol) NullsFirst() SortCol {
	c.Nulls = NullsFirst
	return c
}

// NullsLast returns a copy of c placing NULL values last.
func (c SortCol) NullsLast() SortCol {
	c.Nulls = NullsLast
	return c
}

// String renders the column with its direction, e.g. `"name" DESC NULLS LAST`.
func (c SortCol) String() string {
	var b strings.Builder
	b.WriteString(pq.QuoteIdentifier(c.Column))
	b.WriteByte(' ')
	b.WriteString(c.Direction.String())
	switch c.Nulls {
	case NullsFirst:
		b.WriteString(" NULLS FIRST")
	case NullsLast:
		b.WriteString(" NULLS LAST")
	}
	return b.String()
}

// Order is the sort order passed to methods with an Order
// parameter. It replaces the %orderBy token of the query.
type Order []SortCol

// OrderBy builds an Order from columns.
func OrderBy(cols ...SortCol) Order {
	return Order(cols)
}

// SQL renders the ORDER BY clause, or "" for an empty order.
func (o Order) SQL() string {
	if len(o) == 0 {
		return ""
	}
	cols := make([]string, len(o))
	for i, c := range o {
		cols[i] = c.String()
	}
	return "ORDER BY " + strings.Join(cols, ", ")
}
