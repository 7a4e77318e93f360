package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputConfig(t *testing.T) {
	t.Run("returns grouped output settings", func(t *testing.T) {
		c := &Config{
			Target:  "./db",
			Package: "github.com/test/project/db",
			Header:  "// Custom header",
		}

		output := c.Output()

		assert.Equal(t, "./db", output.Target)
		assert.Equal(t, "github.com/test/project/db", output.Package)
		assert.Equal(t, "// Custom header", output.Header)
	})

	t.Run("handles empty config", func(t *testing.T) {
		c := &Config{}

		output := c.Output()

		assert.Empty(t, output.Target)
		assert.Empty(t, output.Package)
		assert.Empty(t, output.Header)
	})
}
