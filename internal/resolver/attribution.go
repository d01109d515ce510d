package resolver

import (
	"strings"

	"github.com/samber/lo"

	"github.com/kaidence/cc-statusline/internal/core/model"
	"github.com/kaidence/cc-statusline/internal/core/modelname"
)

// RoutingAttribution is the routing service's verdict, already reduced to
// the two facts the resolver needs.
type RoutingAttribution struct {
	Model    string
	IsActual bool
}

// ResolveModel derives the display name for the active model.
// Priority: the routing service when it is authoritative for the session,
// then the host's model descriptor, then the models observed in the
// selected billing block, then the default label.
func ResolveModel(routing *RoutingAttribution, ctxModel model.FlexibleModel, block *model.UsageBlock) string {
	if routing != nil && routing.IsActual && routing.Model != "" {
		return modelname.Canonicalize(routing.Model)
	}

	if id := ctxModel.Identifier(); id != "" {
		return modelname.Canonicalize(id)
	}

	if block != nil && len(block.Models) > 0 {
		if joined := canonicalizeBlockModels(block.Models); joined != "" {
			return joined
		}
	}

	return modelname.DefaultDisplayName
}

// canonicalizeBlockModels scans the block's model list newest-first,
// drops the synthetic placeholder, and joins the distinct display names
// in first-seen order.
func canonicalizeBlockModels(models []string) string {
	names := make([]string, 0, len(models))
	for i := len(models) - 1; i >= 0; i-- {
		raw := models[i]
		if raw == modelname.SyntheticModel || raw == "" {
			continue
		}
		names = append(names, modelname.Canonicalize(raw))
	}
	return strings.Join(lo.Uniq(names), ", ")
}
