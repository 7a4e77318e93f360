package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenRepo(t *testing.T) {
	code := shopFileCode(t, "my_class_repository.go")

	t.Run("declarations", func(t *testing.T) {
		assert.Contains(t, code, "// MyClassRepository is the repository of MyClass, stored in table my_class.")
		assert.Contains(t, code, "type MyClassRepository interface")
		assert.Contains(t, code, "type myClassRepository struct")
		assert.Contains(t, code, "func NewMyClassRepository(drv dialect.ExecQuerier) MyClassRepository")
		assert.Contains(t, code, "var _ MyClassRepository = (*myClassRepository)(nil)")
		assert.Contains(t, code, "// FindByID runs the derived method findById:")
	})

	tests := []struct {
		name string
		want []string
	}{
		{
			name: "collection",
			want: []string{
				"FindAll(ctx context.Context) ([]*MyClass, error)",
				"vs := []*MyClass{}",
				"v, err := scanMyClass(rows)",
				"vs = append(vs, v)",
			},
		},
		{
			name: "nullable single",
			want: []string{
				"FindByID(ctx context.Context, id string) (*MyClass, error)",
				`sqlrepo.NewNotSingularError("MyClassRepository.findById")`,
				"return nil, nil",
			},
		},
		{
			name: "required single",
			want: []string{
				"FindSingleByID(ctx context.Context, id string) (*MyClass, error)",
				`sqlrepo.NewNotFoundError("MyClassRepository.findSingleById")`,
			},
		},
		{
			name: "nullable parameter",
			want: []string{"FindFirstByName(ctx context.Context, name *string) (*MyClass, error)"},
		},
		{
			name: "scalars",
			want: []string{
				"Count(ctx context.Context) (int, error)",
				"Exists(ctx context.Context, id string) (bool, error)",
				"SelectDates(ctx context.Context, proc string) ([]time.Time, error)",
				`sql.ScanColumns(rows, map[string]any{"": &v})`,
			},
		},
		{
			name: "in list",
			want: []string{
				"FindByIDIn(ctx context.Context, id []string) ([]*MyClass, error)",
				"in0, err := sqlrepo.InList(id)",
				`query := sqlrepo.Expand(`,
				`map[string]string{"id": in0}`,
			},
		},
		{
			name: "order",
			want: []string{
				"FindAllOrdered(ctx context.Context, order sqlrepo.Order) ([]*MyClass, error)",
				`map[string]string{"orderBy": order.SQL()}`,
			},
		},
		{
			name: "pagination",
			want: []string{
				"FindByNamePaged(ctx context.Context, name string, pageable sqlrepo.Pageable) (sqlrepo.Page[*MyClass], error)",
				"[]any{name, pageable.PageSize, pageable.Offset()}",
				"return sqlrepo.NewPage(pageable, vs), nil",
				"return sqlrepo.Page[*MyClass]{}, sql.WrapError(",
			},
		},
		{
			name: "renamed parameter",
			want: []string{
				"FindByCapacityAndVersion(ctx context.Context, capacity string, v_ int, date time.Time) ([]*MyClass, error)",
				"[]any{capacity, date, v_}",
			},
		},
		{
			name: "save",
			want: []string{
				"Save(ctx context.Context, item *MyClass) error",
				"item.MyNestedClass.MyNestedNestedClass.Capacity",
				"sql.JSON{V: item.List}",
				"item.Enum",
				"r.drv.Exec(ctx, query, []any{item.ID, item.Name,",
			},
		},
		{
			name: "batch save",
			want: []string{
				"SaveAll(ctx context.Context, items []*MyClass) error",
				"for _, it := range items {",
				"[]any{it.ID, it.Name, it.MyNestedClass.Proc,",
			},
		},
		{
			name: "delete",
			want: []string{
				"DeleteAll(ctx context.Context) error",
				`const query = "DELETE FROM my_class"`,
				"r.drv.Exec(ctx, query, []any{}, nil)",
				"DeleteByIDAndDate(ctx context.Context, id string, date time.Time) error",
			},
		},
		{
			name: "statement",
			want: []string{
				"TurnOnLogs(ctx context.Context) error",
				`SELECT set_config('log_statement', 'all', true)`,
			},
		},
		{
			name: "projection",
			want: []string{
				"SelectProjection(ctx context.Context, proc string) (*ProjectionOfMyClass, error)",
				"v, err := scanProjectionOfMyClass(rows)",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, w := range tt.want {
				assert.Contains(t, code, w)
			}
		})
	}
}

func TestGenRepoPaged(t *testing.T) {
	code := shopFileCode(t, "my_class_repository.go")
	body := funcBody(t, code, "myClassRepository", "FindByNamePaged")
	assert.Contains(t, body, "vs := []*MyClass{}")
	assert.Contains(t, body, "for rows.Next() {")
	assert.Contains(t, body, "return sqlrepo.NewPage(pageable, vs), nil")
	assert.NotContains(t, body, "NewNotFoundError")
	assert.NotContains(t, body, "NewNotSingularError")
	assert.NotContains(t, body, "return v, nil")
}

func TestGenRepoOptimistic(t *testing.T) {
	code := shopFileCode(t, "optimistic_lock_repository.go")
	assert.Contains(t, code, "Save(ctx context.Context, item *OptimisticallyLockedItem) error")
	assert.Contains(t, code, "var res sql.Result")
	assert.Contains(t, code, "n, err := res.RowsAffected()")
	assert.Contains(t, code, `return sqlrepo.CheckAffected("OptimisticLockRepository.save", 1, n)`)
	assert.Contains(t, code, "var total int64")
	assert.Contains(t, code, "total += n")
	assert.Contains(t, code, `return sqlrepo.CheckAffected("OptimisticLockRepository.saveAll", int64(len(items)), total)`)
	assert.Contains(t, code, `return sqlrepo.CheckAffected("OptimisticLockRepository.delete", 1, n)`)
	assert.Contains(t, code, "Find(ctx context.Context, id uuid.UUID) (*OptimisticallyLockedItem, error)")
}

func TestGenRepoStandalone(t *testing.T) {
	code := shopFileCode(t, "report_repository.go")
	assert.Contains(t, code, "// ReportRepository is a standalone repository of ReportDB.")
	assert.Contains(t, code, "CountByProc(ctx context.Context, proc string) (int64, error)")
	assert.Contains(t, code, `sqlrepo.NewNotFoundError("ReportRepository.countByProc")`)
	assert.Contains(t, code, "return 0, sql.WrapError(")
}
