package model

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleModelUnmarshal(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		identifier string
		window     int
	}{
		{
			name:       "bare string",
			input:      `"claude-sonnet-4-5-20250929"`,
			identifier: "claude-sonnet-4-5-20250929",
		},
		{
			name:       "descriptor prefers display name",
			input:      `{"id":"claude-opus-4-1","name":"opus","display_name":"Opus 4.1"}`,
			identifier: "Opus 4.1",
		},
		{
			name:       "descriptor falls back to name",
			input:      `{"id":"claude-opus-4-1","name":"opus"}`,
			identifier: "opus",
		},
		{
			name:       "descriptor falls back to id",
			input:      `{"id":"claude-opus-4-1"}`,
			identifier: "claude-opus-4-1",
		},
		{
			name:       "context window carried",
			input:      `{"id":"claude-sonnet-4-5","context_window_tokens":200000}`,
			identifier: "claude-sonnet-4-5",
			window:     200000,
		},
		{
			name:       "unrecognized shape treated as absent",
			input:      `[1,2,3]`,
			identifier: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fm FlexibleModel
			require.NoError(t, sonic.Unmarshal([]byte(tt.input), &fm))
			assert.Equal(t, tt.identifier, fm.Identifier())
			assert.Equal(t, tt.window, fm.ContextWindow())
		})
	}
}

func TestCostInfoUnmarshal(t *testing.T) {
	var ctx StatusContext
	require.NoError(t, sonic.Unmarshal([]byte(`{"cost":{"total_cost_usd":1.23}}`), &ctx))
	require.NotNil(t, ctx.Cost)
	assert.Equal(t, 1.23, ctx.Cost.TotalCostUSD)

	ctx = StatusContext{}
	require.NoError(t, sonic.Unmarshal([]byte(`{"cost":4.5}`), &ctx))
	require.NotNil(t, ctx.Cost)
	assert.Equal(t, 4.5, ctx.Cost.TotalCostUSD)
}

func TestWorkingDir(t *testing.T) {
	ctx := StatusContext{Cwd: "/legacy"}
	assert.Equal(t, "/legacy", ctx.WorkingDir())

	ctx.Workspace = &Workspace{CurrentDir: "/workspace"}
	assert.Equal(t, "/workspace", ctx.WorkingDir())

	ctx.Workspace = &Workspace{}
	assert.Equal(t, "/legacy", ctx.WorkingDir())
}

func TestStatusContextEmptyDocument(t *testing.T) {
	var ctx StatusContext
	require.NoError(t, sonic.Unmarshal([]byte(`{}`), &ctx))
	assert.Empty(t, ctx.WorkingDir())
	assert.True(t, ctx.Model.IsZero())
	assert.Nil(t, ctx.Cost)
}

func TestTokenTotalsTotal(t *testing.T) {
	totals := TokenTotals{Input: 1, Output: 2, CacheRead: 3, CacheCreation: 4}
	assert.Equal(t, 10, totals.Total())
}
