package gen

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlrepo/compiler/load"
)

func TestWithHeader(t *testing.T) {
	t.Run("sets header", func(t *testing.T) {
		c := &Config{}
		err := WithHeader("// Custom header")(c)

		require.NoError(t, err)
		assert.Equal(t, "// Custom header", c.Header)
	})

	t.Run("empty header is allowed", func(t *testing.T) {
		c := &Config{Header: "existing"}
		err := WithHeader("")(c)

		require.NoError(t, err)
		assert.Equal(t, "", c.Header)
	})
}

func TestWithDatabase(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    load.QualifiedName
		wantErr bool
	}{
		{"qualified", "my.pack.ShopDB", load.QualifiedName{Pkg: "my.pack", Name: "ShopDB"}, false},
		{"simple", "ShopDB", load.QualifiedName{Name: "ShopDB"}, false},
		{"empty", "", load.QualifiedName{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			err := WithDatabase(tt.value)(c)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Database)
		})
	}
}

func TestWithPackageAndTarget(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithPackage("github.com/org/project/db")(c))
	require.NoError(t, WithTarget("./db")(c))
	assert.Equal(t, "github.com/org/project/db", c.Package)
	assert.Equal(t, "./db", c.Target)

	assert.True(t, IsConfigError(WithPackage("")(c)))
	assert.True(t, IsConfigError(WithTarget("")(c)))
}

func TestWithWorkers(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithWorkers(3)(c))
	assert.Equal(t, 3, c.workers())

	c.Workers = 0
	assert.Positive(t, c.workers())

	err := WithWorkers(-1)(c)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestWithInclude(t *testing.T) {
	t.Run("matches by package segment", func(t *testing.T) {
		c := MustNewConfig(WithInclude("shop.*"))
		assert.True(t, c.Included(load.QualifiedName{Pkg: "shop", Name: "ItemRepository"}))
		assert.False(t, c.Included(load.QualifiedName{Pkg: "shop.admin", Name: "UserRepository"}))
		assert.False(t, c.Included(load.QualifiedName{Pkg: "billing", Name: "InvoiceRepository"}))
	})

	t.Run("super wildcard crosses segments", func(t *testing.T) {
		c := MustNewConfig(WithInclude("shop.**"))
		assert.True(t, c.Included(load.QualifiedName{Pkg: "shop.admin", Name: "UserRepository"}))
	})

	t.Run("no patterns include everything", func(t *testing.T) {
		c := &Config{}
		assert.True(t, c.Included(load.QualifiedName{Pkg: "x", Name: "Y"}))
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := NewConfig(WithInclude("shop.[a"))
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
}

func TestWithScalarAlias(t *testing.T) {
	c := MustNewConfig(WithScalarAlias("java.time.Instant", "timestamp"))
	instant := load.TypeOf(&load.Klass{Name: load.QualifiedName{Pkg: "java.time", Name: "Instant"}})
	assert.Equal(t, ScalarTimestamp, c.scalarTable().Kind(instant))
	assert.Equal(t, ScalarString, c.scalarTable().Kind(load.TypeOf(&load.Klass{Name: load.String})))
	assert.Equal(t, ScalarNone, DefaultScalars().Kind(instant), "defaults are not modified")

	_, err := NewConfig(WithScalarAlias("x.Y", "page"))
	assert.True(t, IsConfigError(err))
	_, err = NewConfig(WithScalarAlias("x.Y", "nope"))
	assert.True(t, IsConfigError(err))
}

func TestWithMappingCache(t *testing.T) {
	err := WithMappingCache(nil)(&Config{})
	require.Error(t, err)
	assert.True(t, IsConfigError(err))

	cache, err := NewMappingCache(16)
	require.NoError(t, err)
	defer cache.Close()
	c := MustNewConfig(WithMappingCache(cache))
	_, ok := c.cachedMapping(load.QualifiedName{Name: "Missing"})
	assert.False(t, ok)
}

func TestNewMappingCache(t *testing.T) {
	_, err := NewMappingCache(0)
	assert.True(t, IsConfigError(err))

	for _, capacity := range []int{1, 8, 16, 1024} {
		t.Run(fmt.Sprint(capacity), func(t *testing.T) {
			cache, err := NewMappingCache(capacity)
			require.NoError(t, err)
			defer cache.Close()
			n := load.QualifiedName{Pkg: "my.pack", Name: "MyClass"}
			tm := &TableMapping{}
			require.True(t, cache.Set(n, tm))
			got, ok := cache.Get(n)
			require.True(t, ok)
			assert.Same(t, tm, got)
		})
	}
}

func TestWithLogger(t *testing.T) {
	c := &Config{}
	assert.NotNil(t, c.logger())
	l := slog.Default()
	require.NoError(t, WithLogger(l)(c))
	assert.Same(t, l, c.logger())
}

func TestApplyAll(t *testing.T) {
	c := &Config{}
	err := c.ApplyAll(WithPackage(""), WithTarget(""), WithHeader("h"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Package")
	assert.Contains(t, err.Error(), "Target")
	assert.Equal(t, "h", c.Header)
}

func TestMustNewConfigPanics(t *testing.T) {
	assert.Panics(t, func() { MustNewConfig(WithWorkers(-1)) })
}
