package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeq(t *testing.T) {
	s := Seq(32)
	assert.Len(t, s, 32)
	assert.Regexp(t, `^[0-9a-zA-Z]+$`, s)
	assert.NotEqual(t, s, Seq(32))
	assert.Empty(t, Seq(0))
}
