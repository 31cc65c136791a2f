package roomcode

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	g := NewGenerator()

	codeFormat := regexp.MustCompile(`^[0-9a-f]{6}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code, err := g.Generate()
		require.NoError(t, err)
		assert.Regexp(t, codeFormat, code)
		seen[code] = struct{}{}
	}

	// 100 draws from a 16M code space colliding down to a handful would
	// mean the entropy source is broken.
	assert.Greater(t, len(seen), 90)
}
