package values

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewPluginID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "simple id",
			input: "flow-guardian",
			want:  "flow-guardian",
		},
		{
			name:  "trims whitespace",
			input: "  flow-guardian  ",
			want:  "flow-guardian",
		},
		{
			name:  "digits allowed",
			input: "plugin-2",
			want:  "plugin-2",
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "uppercase rejected",
			input:   "FlowGuardian",
			wantErr: true,
		},
		{
			name:    "path separator rejected",
			input:   "../escape",
			wantErr: true,
		},
		{
			name:    "leading dash rejected",
			input:   "-plugin",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewPluginID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, id.IsEmpty())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id.String())
		})
	}
}

func Test_PluginID_Equals(t *testing.T) {
	a := MustNewPluginID("flow-guardian")
	b := MustNewPluginID("flow-guardian")
	c := MustNewPluginID("other")

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}

func Test_PluginID_JSON(t *testing.T) {
	id := MustNewPluginID("flow-guardian")

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"flow-guardian"`, string(data))

	var decoded PluginID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, id.Equals(decoded))

	var bad PluginID
	assert.Error(t, json.Unmarshal([]byte(`"NOT VALID"`), &bad))
}

func Test_RequestID_RoundTrip(t *testing.T) {
	id := NewRequestID()
	assert.False(t, id.IsZero())

	parsed, err := ParseRequestID(id.String())
	require.NoError(t, err)
	assert.True(t, id.Equals(parsed))

	_, err = ParseRequestID("not-a-uuid")
	assert.Error(t, err)
}
