package util

import (
	"fmt"
	"sync"
	"time"
)

// TimeProvider handles timezone-aware time operations. "Today" for the
// accounting daily totals and the snapshot freshness window both resolve
// through it so tests can pin the zone.
type TimeProvider struct {
	location *time.Location
	mu       sync.RWMutex
}

var (
	globalTimeProvider *TimeProvider
	timeProviderMu     sync.Mutex
)

// InitializeTimeProvider initializes the global time provider with the
// specified timezone.
func InitializeTimeProvider(timezone string) error {
	timeProviderMu.Lock()
	defer timeProviderMu.Unlock()

	provider := &TimeProvider{}
	if err := provider.SetTimezone(timezone); err != nil {
		return err
	}
	globalTimeProvider = provider
	return nil
}

// GetTimeProvider returns the global time provider, defaulting to the
// local timezone when nothing was initialized.
func GetTimeProvider() *TimeProvider {
	if globalTimeProvider == nil {
		InitializeTimeProvider("Local")
	}
	return globalTimeProvider
}

// SetTimezone updates the timezone for the time provider.
func (tp *TimeProvider) SetTimezone(timezone string) error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	loc := time.Local
	if timezone != "" && timezone != "Local" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w", timezone, err)
		}
		loc = l
	}
	tp.location = loc
	return nil
}

// Now returns the current time in the configured timezone.
func (tp *TimeProvider) Now() time.Time {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return time.Now().In(tp.location)
}

// Today returns the current calendar date ("2006-01-02") in the
// configured timezone, the format the accounting tool emits.
func (tp *TimeProvider) Today() string {
	return tp.Now().Format("2006-01-02")
}
