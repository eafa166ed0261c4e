package logger

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorf_TagsError(t *testing.T) {
	inner := errors.New("connection refused")
	err := New("connector").Errorf("open films_db: %w", inner)

	require.Error(t, err)
	assert.Equal(t, "open films_db: connection refused", err.Error())
	assert.Equal(t, "connector", ErrorTag(err))
	assert.ErrorIs(t, err, inner)
}

func TestWithTag_KeepsInnermostTag(t *testing.T) {
	err := WithTag("parser", errors.New("bad yaml"))
	rewrapped := WithTag("serve", fmt.Errorf("load: %w", err))

	assert.Equal(t, "parser", ErrorTag(rewrapped))
}

func TestWithTag_Nil(t *testing.T) {
	assert.NoError(t, WithTag("cli", nil))
	assert.Empty(t, ErrorTag(nil))
	assert.Empty(t, ErrorTag(errors.New("untagged")))
}

func TestTaggedError_NilReceiver(t *testing.T) {
	var tagged *TaggedError
	assert.Empty(t, tagged.Error())
	assert.Empty(t, tagged.Tag())
	assert.NoError(t, tagged.Unwrap())
}
