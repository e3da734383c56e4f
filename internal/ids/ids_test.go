package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsSortableAndValid(t *testing.T) {
	a := New()
	b := New()

	assert.True(t, Valid(a))
	assert.True(t, Valid(b))
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b)
}

func TestValidRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "not-an-id", "01HZZZZZZZZZZZZZZZZZZZZZZZZZZ"} {
		assert.False(t, Valid(in), in)
	}
}
