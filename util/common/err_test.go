package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	assert.NoError(t, Combine(nil, nil))

	first := errors.New("shutdown listener")
	second := errors.New("close database")
	err := Combine(first, nil, second)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}

func TestNewErrorf(t *testing.T) {
	assert.EqualError(t, NewErrorf("port %d in use", 8080), "port 8080 in use")
}
