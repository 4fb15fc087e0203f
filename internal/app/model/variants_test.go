package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariants_ArrayLiteral(t *testing.T) {
	v, err := Variants{"S", "Navy Blue", `a"b`}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"S","Navy Blue","a\"b"}`, v)

	var back Variants
	require.NoError(t, back.Scan([]byte(v.(string))))
	assert.Equal(t, Variants{"S", "Navy Blue", `a"b`}, back)

	require.NoError(t, back.Scan(nil))
	assert.Nil(t, back)
}
