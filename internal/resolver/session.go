package resolver

import (
	"sort"
	"strings"

	"github.com/kaidence/cc-statusline/internal/core/model"
	"github.com/kaidence/cc-statusline/internal/util"
)

// SessionCost is the resolved per-session spend. Found distinguishes a
// genuine zero spend from "no idea": an unresolved session renders as
// "N/A", not "$0.00".
type SessionCost struct {
	Cost   float64
	Tokens int
	Found  bool
}

// ResolveSessionCost derives the session cost through a priority chain:
//
//  1. an authoritative cost in the host context wins outright, even at zero
//  2. an exact id match (host session id, or the cwd slug) against the
//     accounting records, scanned most-recently-active first
//  3. a record whose id contains the cwd's last path segment; a later
//     exact match still overrides this heuristic
//  4. the most recently active record, when any records exist at all
func ResolveSessionCost(ctx *model.StatusContext, doc model.SessionsDocument) SessionCost {
	if ctx != nil && ctx.Cost != nil {
		return SessionCost{Cost: ctx.Cost.TotalCostUSD, Found: true}
	}

	if len(doc.Sessions) == 0 {
		return SessionCost{}
	}

	sessions := make([]model.SessionRecord, len(doc.Sessions))
	copy(sessions, doc.Sessions)
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastActivityAt > sessions[j].LastActivityAt
	})

	var (
		hostID  string
		cwdSlug string
		lastSeg string
	)
	if ctx != nil {
		hostID = ctx.SessionID
		if cwd := ctx.WorkingDir(); cwd != "" {
			cwdSlug = util.SlugSessionID(cwd)
			lastSeg = strings.ToLower(util.LastSegment(cwd))
		}
	}

	var heuristic *model.SessionRecord
	for i := range sessions {
		record := &sessions[i]

		if hostID != "" && record.SessionID == hostID {
			return SessionCost{Cost: record.TotalCost, Tokens: record.TotalTokens, Found: true}
		}
		if cwdSlug != "" && strings.EqualFold(record.SessionID, cwdSlug) {
			return SessionCost{Cost: record.TotalCost, Tokens: record.TotalTokens, Found: true}
		}
		if heuristic == nil && lastSeg != "" && strings.Contains(strings.ToLower(record.SessionID), lastSeg) {
			// Remember the first substring hit but keep scanning: an
			// exact match further down the list must still win.
			heuristic = record
		}
	}

	if heuristic != nil {
		return SessionCost{Cost: heuristic.TotalCost, Tokens: heuristic.TotalTokens, Found: true}
	}

	mostRecent := sessions[0]
	return SessionCost{Cost: mostRecent.TotalCost, Tokens: mostRecent.TotalTokens, Found: true}
}
