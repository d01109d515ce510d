package engine

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/kaidence/cc-statusline/internal/core/model"
	"github.com/kaidence/cc-statusline/internal/resolver"
	"github.com/kaidence/cc-statusline/internal/util"
)

// FallbackLine is emitted when the render fails beyond recovery. The
// host still sees a line and a zero exit.
const FallbackLine = "🤖 Claude | 💰 Status unavailable"

// segmentSeparator joins the statusline segments.
const segmentSeparator = " | "

// contextLimitMarker is appended to the model segment when the host
// reports the conversation has outgrown the 200k window.
const contextLimitMarker = " ⚠️ Context limit"

// RenderInput is everything the resolvers produced for one render.
type RenderInput struct {
	Model          string
	ExceedsContext bool
	Indexing       resolver.IndexingStatus
	Session        resolver.SessionCost
	Today          model.DailyTotal
	Block          resolver.BlockStatus
	Snapshot       *model.TokenMetricsSnapshot
	ContextUsed    int
	ContextWindow  int
}

// Formatter assembles the final line. Optional segments are omitted, not
// rendered empty.
type Formatter struct{}

// Format renders the fixed segment order: model, indexing, costs, burn
// rate, tokens, usage percentage, time left.
func (Formatter) Format(in RenderInput) string {
	segments := make([]string, 0, 7)

	modelSegment := "🤖 " + in.Model
	if in.ExceedsContext {
		modelSegment += contextLimitMarker
	}
	segments = append(segments, modelSegment)

	if indexSegment, ok := formatIndexing(in.Indexing); ok {
		segments = append(segments, indexSegment)
	}

	sessionStr := "N/A"
	if in.Session.Found {
		sessionStr = util.FormatCurrency(in.Session.Cost)
	}
	segments = append(segments, fmt.Sprintf("💰 %s session / %s today / %s block (%s left)",
		sessionStr,
		util.FormatCurrency(in.Today.TotalCost),
		util.FormatCurrency(in.Block.Cost),
		util.FormatRemaining(in.Block.RemainingMinutes)))

	segments = append(segments, "🔥 "+util.FormatBurnRate(in.Block.TokensPerMinute))
	segments = append(segments, formatTokens(in))
	segments = append(segments, fmt.Sprintf("%.1f%% used", in.Block.UsagePercent))
	segments = append(segments, util.FormatTimeLeft(in.Block.RemainingMinutes)+" left")

	return strings.Join(segments, segmentSeparator)
}

// formatTokens prefers an exact count: the fresh side-channel snapshot
// first, then the host's context usage (shown against the window when
// its size is known), then the block estimate.
func formatTokens(in RenderInput) string {
	if in.Snapshot != nil {
		return fmt.Sprintf("📊 %s tokens (actual)", util.FormatNumber(in.Snapshot.TotalUsed))
	}
	if in.ContextUsed > 0 {
		if in.ContextWindow > 0 {
			return fmt.Sprintf("%s/%s tokens",
				util.FormatNumber(in.ContextUsed), util.FormatNumber(in.ContextWindow))
		}
		return fmt.Sprintf("%s tokens", util.FormatNumber(in.ContextUsed))
	}
	return fmt.Sprintf("%s tokens", util.FormatNumber(in.Block.Tokens))
}

func formatIndexing(status resolver.IndexingStatus) (string, bool) {
	switch status.State {
	case resolver.IndexingIndexed:
		return "🔍 ✅ " + status.Name, true
	case resolver.IndexingInProgress:
		return fmt.Sprintf("🔍 ⏳ %s (%d%%)", status.Name, status.Percent), true
	case resolver.IndexingNotIndexed:
		return "🔍 ❌ " + status.Name, true
	case resolver.IndexingIdle:
		return "🔍 idle", true
	default:
		return "", false
	}
}

// TruncateToWidth clamps a rendered line to a display width, counting
// emoji and wide runes properly and ending with an ellipsis. Width zero
// or less leaves the line alone.
func TruncateToWidth(line string, width int) string {
	if width <= 0 || runewidth.StringWidth(line) <= width {
		return line
	}
	return runewidth.Truncate(line, width, "…")
}
