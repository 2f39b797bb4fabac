package taskflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AcceptsDiamond(t *testing.T) {
	assert.NoError(t, Validate(diamond()))
}

func TestValidate_RejectsMalformedLists(t *testing.T) {
	err := Validate([]Task{{ID: "a"}, {ID: "a"}})
	assert.ErrorIs(t, err, ErrInvalidWorkflow)

	err = Validate([]Task{{ID: ""}})
	assert.ErrorIs(t, err, ErrInvalidWorkflow)

	err = Validate([]Task{{ID: "a", Dependencies: []string{"ghost"}}})
	assert.ErrorIs(t, err, ErrInvalidWorkflow)
	assert.Contains(t, err.Error(), "ghost")
}

func TestValidate_ReportsCyclePath(t *testing.T) {
	err := Validate([]Task{
		{ID: "a", Dependencies: []string{"c"}},
		{ID: "b", Dependencies: []string{"a"}},
		{ID: "c", Dependencies: []string{"b"}},
	})
	require.ErrorIs(t, err, ErrCycleDetected)

	var gerr *GraphError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "a -> b -> c -> a", gerr.Msg)
}
