// Package resolver derives statusline facts from whatever the sources
// produced. Every resolver reduces missing or malformed input to a
// well-defined zero state instead of an error.
package resolver

import (
	"github.com/kaidence/cc-statusline/internal/core/model"
)

// BlockTokenLimit is the token capacity of a standard 5-hour billing
// block. Usage percentage is reported against it without clamping, so
// heavy blocks can legitimately read above 100%.
const BlockTokenLimit = 97_675_753

// BlockStatus is everything derived from the selected billing block.
type BlockStatus struct {
	Block            *model.UsageBlock
	Cost             float64
	Tokens           int
	UsagePercent     float64
	TokensPerMinute  int
	CostPerHour      float64
	RemainingMinutes int
}

// ResolveBlock selects the relevant billing block and derives its
// metrics. Scanning runs newest-first: the first active block wins, and
// with no active block the newest non-gap block is used, skipping any
// trailing gap blocks. An empty collection yields the zero state.
func ResolveBlock(doc model.BlocksDocument) BlockStatus {
	var status BlockStatus

	for i := len(doc.Blocks) - 1; i >= 0; i-- {
		if doc.Blocks[i].IsActive {
			status.Block = &doc.Blocks[i]
			break
		}
	}
	if status.Block == nil {
		for i := len(doc.Blocks) - 1; i >= 0; i-- {
			if !doc.Blocks[i].IsGap {
				status.Block = &doc.Blocks[i]
				break
			}
		}
	}
	if status.Block == nil {
		return status
	}

	status.Cost = status.Block.CostUSD
	status.Tokens = status.Block.TotalTokens
	status.UsagePercent = float64(status.Block.TotalTokens) / float64(BlockTokenLimit) * 100

	if status.Block.BurnRate != nil {
		status.TokensPerMinute = int(status.Block.BurnRate.TokensPerMinute)
		status.CostPerHour = status.Block.BurnRate.CostPerHour
	}
	if status.Block.Projection != nil {
		status.RemainingMinutes = status.Block.Projection.RemainingMinutes
	}
	return status
}
