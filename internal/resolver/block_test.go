package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kaidence/cc-statusline/internal/core/model"
)

func TestResolveBlockSelection(t *testing.T) {
	active := model.UsageBlock{ID: "active", IsActive: true, CostUSD: 3.5, TotalTokens: 1000}
	older := model.UsageBlock{ID: "older", CostUSD: 1.0, TotalTokens: 500}
	newer := model.UsageBlock{ID: "newer", CostUSD: 2.0, TotalTokens: 700}
	gap := model.UsageBlock{ID: "gap", IsGap: true}

	tests := []struct {
		name     string
		blocks   []model.UsageBlock
		expected string
	}{
		{
			name:     "active block preferred",
			blocks:   []model.UsageBlock{older, active, newer},
			expected: "active",
		},
		{
			name:     "newest non-gap when none active",
			blocks:   []model.UsageBlock{older, newer},
			expected: "newer",
		},
		{
			name:     "trailing gap blocks skipped",
			blocks:   []model.UsageBlock{older, newer, gap, gap},
			expected: "newer",
		},
		{
			name:     "gap before active does not hide it",
			blocks:   []model.UsageBlock{older, active, gap},
			expected: "active",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := ResolveBlock(model.BlocksDocument{Blocks: tt.blocks})
			assert.NotNil(t, status.Block)
			assert.Equal(t, tt.expected, status.Block.ID)
		})
	}
}

// Tail-gap invariance: appending gap blocks after the selected block must
// not change the selection.
func TestResolveBlockTailGapInvariance(t *testing.T) {
	blocks := []model.UsageBlock{
		{ID: "a", TotalTokens: 100},
		{ID: "b", TotalTokens: 200},
	}
	base := ResolveBlock(model.BlocksDocument{Blocks: blocks})

	withGaps := append(append([]model.UsageBlock{}, blocks...),
		model.UsageBlock{IsGap: true}, model.UsageBlock{IsGap: true})
	gapped := ResolveBlock(model.BlocksDocument{Blocks: withGaps})

	assert.Equal(t, base.Block.ID, gapped.Block.ID)
}

func TestResolveBlockZeroState(t *testing.T) {
	tests := []struct {
		name   string
		blocks []model.UsageBlock
	}{
		{name: "empty collection", blocks: nil},
		{name: "only gaps", blocks: []model.UsageBlock{{IsGap: true}, {IsGap: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := ResolveBlock(model.BlocksDocument{Blocks: tt.blocks})
			assert.Nil(t, status.Block)
			assert.Zero(t, status.Cost)
			assert.Zero(t, status.Tokens)
			assert.Zero(t, status.UsagePercent)
			assert.Zero(t, status.TokensPerMinute)
			assert.Zero(t, status.RemainingMinutes)
		})
	}
}

func TestResolveBlockDerivations(t *testing.T) {
	doc := model.BlocksDocument{Blocks: []model.UsageBlock{{
		IsActive:    true,
		CostUSD:     12.34,
		TotalTokens: 48_837_876, // about half the block capacity
		BurnRate:    &model.BurnRate{TokensPerMinute: 42_600.7, CostPerHour: 4.2},
		Projection:  &model.Projection{RemainingMinutes: 95},
	}}}

	status := ResolveBlock(doc)
	assert.Equal(t, 12.34, status.Cost)
	assert.Equal(t, 48_837_876, status.Tokens)
	assert.InDelta(t, 50.0, status.UsagePercent, 0.01)
	assert.Equal(t, 42_600, status.TokensPerMinute)
	assert.Equal(t, 4.2, status.CostPerHour)
	assert.Equal(t, 95, status.RemainingMinutes)
}

// Usage above capacity is reported as computed, not clamped to 100.
func TestResolveBlockUsageCanExceedHundredPercent(t *testing.T) {
	doc := model.BlocksDocument{Blocks: []model.UsageBlock{{
		IsActive:    true,
		TotalTokens: BlockTokenLimit * 2,
	}}}

	status := ResolveBlock(doc)
	assert.InDelta(t, 200.0, status.UsagePercent, 0.01)
}
