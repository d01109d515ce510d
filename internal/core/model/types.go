package model

import (
	"github.com/bytedance/sonic"
)

// StatusContext is the JSON document the host pipes to stdin once per
// render. Every field is optional; an empty document is valid input.
type StatusContext struct {
	Cwd               string        `json:"cwd,omitempty"`
	Workspace         *Workspace    `json:"workspace,omitempty"`
	SessionID         string        `json:"session_id,omitempty"`
	Model             FlexibleModel `json:"model,omitempty"`
	Cost              *CostInfo     `json:"cost,omitempty"`
	Context           *ContextInfo  `json:"context,omitempty"`
	Exceeds200kTokens bool          `json:"exceeds_200k_tokens,omitempty"`
}

// WorkingDir resolves the working directory, preferring the newer
// workspace shape over the legacy top-level cwd.
func (c *StatusContext) WorkingDir() string {
	if c.Workspace != nil && c.Workspace.CurrentDir != "" {
		return c.Workspace.CurrentDir
	}
	return c.Cwd
}

type Workspace struct {
	CurrentDir string `json:"current_dir,omitempty"`
}

// CostInfo carries the host's own cost tracking. When present it is
// authoritative, even at zero. Older hosts sent a bare number instead of
// the object form, so both decode.
type CostInfo struct {
	TotalCostUSD float64 `json:"total_cost_usd"`
}

func (c *CostInfo) UnmarshalJSON(data []byte) error {
	type costAlias CostInfo
	var obj costAlias
	if err := sonic.Unmarshal(data, &obj); err == nil {
		*c = CostInfo(obj)
		return nil
	}

	var num float64
	if err := sonic.Unmarshal(data, &num); err == nil {
		c.TotalCostUSD = num
		return nil
	}

	*c = CostInfo{}
	return nil
}

type ContextInfo struct {
	UsedTokens   int     `json:"used_tokens,omitempty"`
	UsagePercent float64 `json:"usage_percent,omitempty"`
}

// ModelDescriptor is the structured form of the host's model field.
type ModelDescriptor struct {
	ID                  string `json:"id,omitempty"`
	Name                string `json:"name,omitempty"`
	DisplayName         string `json:"display_name,omitempty"`
	ContextWindowTokens int    `json:"context_window_tokens,omitempty"`
}

// FlexibleModel is a tagged union for the host's "model" field, which
// arrives either as a bare string or as a descriptor object.
type FlexibleModel struct {
	Raw        string
	Descriptor *ModelDescriptor
}

func (fm *FlexibleModel) UnmarshalJSON(data []byte) error {
	var str string
	if err := sonic.Unmarshal(data, &str); err == nil {
		fm.Raw = str
		fm.Descriptor = nil
		return nil
	}

	var desc ModelDescriptor
	if err := sonic.Unmarshal(data, &desc); err == nil {
		fm.Raw = ""
		fm.Descriptor = &desc
		return nil
	}

	// Unrecognized shapes are treated as absent, not as a parse failure.
	fm.Raw = ""
	fm.Descriptor = nil
	return nil
}

func (fm FlexibleModel) MarshalJSON() ([]byte, error) {
	if fm.Descriptor != nil {
		return sonic.Marshal(fm.Descriptor)
	}
	return sonic.Marshal(fm.Raw)
}

// IsZero reports whether neither variant is populated.
func (fm FlexibleModel) IsZero() bool {
	return fm.Raw == "" && fm.Descriptor == nil
}

// Identifier extracts the raw model identifier: display name first, then
// name, then id for the structured variant; the string itself otherwise.
func (fm FlexibleModel) Identifier() string {
	if fm.Descriptor != nil {
		if fm.Descriptor.DisplayName != "" {
			return fm.Descriptor.DisplayName
		}
		if fm.Descriptor.Name != "" {
			return fm.Descriptor.Name
		}
		return fm.Descriptor.ID
	}
	return fm.Raw
}

// ContextWindow returns the context window size when the structured
// variant carries one.
func (fm FlexibleModel) ContextWindow() int {
	if fm.Descriptor != nil {
		return fm.Descriptor.ContextWindowTokens
	}
	return 0
}

// BlocksDocument is the accounting tool's blocks report.
type BlocksDocument struct {
	Blocks []UsageBlock `json:"blocks"`
}

// UsageBlock is one 5-hour accounting window.
type UsageBlock struct {
	ID          string      `json:"id,omitempty"`
	IsActive    bool        `json:"isActive"`
	IsGap       bool        `json:"isGap,omitempty"`
	CostUSD     float64     `json:"costUSD"`
	TotalTokens int         `json:"totalTokens"`
	BurnRate    *BurnRate   `json:"burnRate,omitempty"`
	Projection  *Projection `json:"projection,omitempty"`
	Models      []string    `json:"models,omitempty"`
}

type BurnRate struct {
	TokensPerMinute float64 `json:"tokensPerMinute"`
	CostPerHour     float64 `json:"costPerHour"`
}

type Projection struct {
	RemainingMinutes int `json:"remainingMinutes"`
}

// SessionsDocument is the accounting tool's per-session report.
type SessionsDocument struct {
	Sessions []SessionRecord `json:"sessions"`
}

type SessionRecord struct {
	SessionID      string  `json:"sessionId"`
	TotalCost      float64 `json:"totalCost"`
	TotalTokens    int     `json:"totalTokens"`
	LastActivityAt string  `json:"lastActivityAt,omitempty"`
}

// DailyDocument is the accounting tool's per-day report.
type DailyDocument struct {
	Daily []DailyTotal `json:"daily"`
}

type DailyTotal struct {
	Date        string  `json:"date"`
	TotalCost   float64 `json:"totalCost"`
	TotalTokens int     `json:"totalTokens"`
}

// TokenTotals are the cumulative per-category counters the ingestion
// listener maintains.
type TokenTotals struct {
	Input         int    `json:"input"`
	Output        int    `json:"output"`
	CacheRead     int    `json:"cacheRead"`
	CacheCreation int    `json:"cacheCreation"`
	LastUpdate    string `json:"lastUpdate,omitempty"`
	Model         string `json:"model,omitempty"`
}

// Total sums every category.
func (t TokenTotals) Total() int {
	return t.Input + t.Output + t.CacheRead + t.CacheCreation
}

// TokenMetricsSnapshot is the side-channel document the listener publishes
// and the renderer consumes when fresh.
type TokenMetricsSnapshot struct {
	Timestamp string      `json:"timestamp"`
	Totals    TokenTotals `json:"totals"`
	TotalUsed int         `json:"totalUsed"`
	Model     string      `json:"model,omitempty"`
}
