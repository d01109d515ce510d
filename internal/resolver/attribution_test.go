package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kaidence/cc-statusline/internal/core/model"
	"github.com/kaidence/cc-statusline/internal/core/modelname"
)

func TestResolveModelRoutingWins(t *testing.T) {
	routing := &RoutingAttribution{Model: "claude-opus-4-1-20250805", IsActual: true}
	ctxModel := model.FlexibleModel{Raw: "claude-sonnet-4-5"}

	assert.Equal(t, "Opus 4.1", ResolveModel(routing, ctxModel, nil))
}

func TestResolveModelNonActualRoutingIgnored(t *testing.T) {
	routing := &RoutingAttribution{Model: "claude-opus-4-1", IsActual: false}
	ctxModel := model.FlexibleModel{Raw: "claude-sonnet-4-5"}

	assert.Equal(t, "Sonnet 4.5", ResolveModel(routing, ctxModel, nil))
}

func TestResolveModelDescriptorPreference(t *testing.T) {
	ctxModel := model.FlexibleModel{Descriptor: &model.ModelDescriptor{
		ID:          "claude-haiku-1",
		Name:        "claude-sonnet-4",
		DisplayName: "Sonnet 4.5",
	}}

	assert.Equal(t, "Sonnet 4.5", ResolveModel(nil, ctxModel, nil))
}

func TestResolveModelBlockFallback(t *testing.T) {
	block := &model.UsageBlock{Models: []string{
		"claude-haiku-3",
		"claude-sonnet-4-5-20250929",
		modelname.SyntheticModel,
		"claude-opus-4-1-20250805",
		"claude-opus-4-1-20250805",
	}}

	// Newest first, synthetic dropped, duplicates collapsed.
	assert.Equal(t, "Opus 4.1, Sonnet 4.5, Haiku", ResolveModel(nil, model.FlexibleModel{}, block))
}

func TestResolveModelBlockAllSynthetic(t *testing.T) {
	block := &model.UsageBlock{Models: []string{modelname.SyntheticModel}}
	assert.Equal(t, modelname.DefaultDisplayName, ResolveModel(nil, model.FlexibleModel{}, block))
}

func TestResolveModelDefault(t *testing.T) {
	assert.Equal(t, modelname.DefaultDisplayName, ResolveModel(nil, model.FlexibleModel{}, nil))
}
