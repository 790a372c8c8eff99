package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagValue_UnmarshalBool(t *testing.T) {
	var v FlagValue
	require.NoError(t, json.Unmarshal([]byte(`true`), &v))
	assert.True(t, v.IsTrue())
	assert.True(t, v.Equal(BoolFlag(true)))
	assert.False(t, v.Equal(BoolFlag(false)))
}

func TestFlagValue_UnmarshalNumber(t *testing.T) {
	var v FlagValue
	require.NoError(t, json.Unmarshal([]byte(`3`), &v))
	assert.True(t, v.IsTrue())
	assert.True(t, v.Equal(NumFlag(3)))
	assert.False(t, v.Equal(NumFlag(2)))
	assert.False(t, v.Equal(BoolFlag(true)))

	require.NoError(t, json.Unmarshal([]byte(`0`), &v))
	assert.False(t, v.IsTrue())
}

func TestFlagValue_UnmarshalRejectsStrings(t *testing.T) {
	var v FlagValue
	assert.Error(t, json.Unmarshal([]byte(`"yes"`), &v))
}

func TestFlagValue_MarshalRoundTrip(t *testing.T) {
	for _, v := range []FlagValue{BoolFlag(false), BoolFlag(true), NumFlag(7.5)} {
		data, err := json.Marshal(v)
		require.NoError(t, err)

		var back FlagValue
		require.NoError(t, json.Unmarshal(data, &back))
		assert.True(t, v.Equal(back), "round trip changed %s", v.String())
	}
}

func TestFlagValue_ZeroValueIsFalsy(t *testing.T) {
	var v FlagValue
	assert.False(t, v.IsTrue())
	assert.False(t, v.Equal(BoolFlag(false)))
}
