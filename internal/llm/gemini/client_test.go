package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), " ", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestNewClientDefaultsModel(t *testing.T) {
	c, err := NewClient(context.Background(), "test-key", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, c.model)
}
