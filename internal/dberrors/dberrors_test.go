package dberrors

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestMetaWrapsInnerMessage(t *testing.T) {
	cause := SchemaErrorf("table %q unknown", "ghosts")
	wrapped := Wrap(cause, "reporting failed")

	require.Equal(t, Meta, wrapped.Kind)
	require.Equal(t, cause.Error(), wrapped.Error())
}

func TestErrorSerialisesToSingleTextToken(t *testing.T) {
	original := IOErrorf("disk is on fire")

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var round Error
	require.NoError(t, json.Unmarshal(data, &round))

	require.Equal(t, StringForm, round.Kind)
	require.Equal(t, original.Error(), round.Error())
}
