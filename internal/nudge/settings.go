package nudge

import (
	"log"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Settings are the engine tunables, parsed from the string-typed settings
// store. Never applied partially: a malformed field falls back to its default
// while the rest of the snapshot still loads.
type Settings struct {
	Enabled         bool
	DeadlineDays    []int
	CountdownDays   []int
	OverdueDays     []int
	QuietHoursStart int // 0-23, UTC
	QuietHoursEnd   int // 0-23, UTC; window may wrap midnight (22 -> 8)
	MaxPerDay       int // sent notifications per recipient per UTC calendar day
}

// Setting keys as stored in system_settings.
const (
	KeyEnabled         = "NUDGE_ENABLED"
	KeyDeadlineDays    = "NUDGE_DEADLINE_DAYS"
	KeyCountdownDays   = "NUDGE_COUNTDOWN_DAYS"
	KeyOverdueDays     = "NUDGE_OVERDUE_DAYS"
	KeyQuietHoursStart = "NUDGE_QUIET_HOURS_START"
	KeyQuietHoursEnd   = "NUDGE_QUIET_HOURS_END"
	KeyMaxPerDay       = "NUDGE_MAX_PER_DAY_PER_USER"
)

const settingsTTL = 5 * time.Minute

// DefaultSettings returns the hardcoded fallbacks used when the settings
// source is unreachable or a field is malformed.
func DefaultSettings() Settings {
	return Settings{
		Enabled:         true,
		DeadlineDays:    []int{7, 3, 1},
		CountdownDays:   []int{30, 14, 7, 3, 1},
		OverdueDays:     []int{1, 3, 7},
		QuietHoursStart: 22,
		QuietHoursEnd:   8,
		MaxPerDay:       5,
	}
}

// SeedDefaults is the string form of DefaultSettings, for seeding the
// settings store on first boot.
func SeedDefaults() map[string]string {
	return map[string]string{
		KeyEnabled:         "true",
		KeyDeadlineDays:    "7,3,1",
		KeyCountdownDays:   "30,14,7,3,1",
		KeyOverdueDays:     "1,3,7",
		KeyQuietHoursStart: "22",
		KeyQuietHoursEnd:   "8",
		KeyMaxPerDay:       "5",
	}
}

// SettingsSource supplies raw key/value settings. Implemented by
// repository.SettingRepository.
type SettingsSource interface {
	GetAll() (map[string]string, error)
}

// SettingsCache holds the last good settings snapshot behind a TTL. Source
// outages degrade to the stale snapshot, then to hardcoded defaults. A
// settings failure must never take down a cycle.
type SettingsCache struct {
	source SettingsSource
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	snapshot Settings
	loadedAt time.Time
	loaded   bool
}

func NewSettingsCache(source SettingsSource, now func() time.Time) *SettingsCache {
	if now == nil {
		now = time.Now
	}
	return &SettingsCache{source: source, ttl: settingsTTL, now: now}
}

// Load returns the cached snapshot if fresh, otherwise re-fetches and parses.
func (c *SettingsCache) Load() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded && c.now().Sub(c.loadedAt) < c.ttl {
		return c.snapshot
	}

	raw, err := c.source.GetAll()
	if err != nil {
		log.Printf("[Nudge] Failed to load settings: %v", err)
		if c.loaded {
			return c.snapshot
		}
		return DefaultSettings()
	}

	c.snapshot = parseSettings(raw)
	c.loadedAt = c.now()
	c.loaded = true
	return c.snapshot
}

func parseSettings(raw map[string]string) Settings {
	def := DefaultSettings()
	return Settings{
		Enabled:         raw[KeyEnabled] != "false",
		DeadlineDays:    parseIntList(raw[KeyDeadlineDays], def.DeadlineDays),
		CountdownDays:   parseIntList(raw[KeyCountdownDays], def.CountdownDays),
		OverdueDays:     parseIntList(raw[KeyOverdueDays], def.OverdueDays),
		QuietHoursStart: parseHour(raw[KeyQuietHoursStart], def.QuietHoursStart),
		QuietHoursEnd:   parseHour(raw[KeyQuietHoursEnd], def.QuietHoursEnd),
		MaxPerDay:       parsePositive(raw[KeyMaxPerDay], def.MaxPerDay),
	}
}

func parseIntList(val string, fallback []int) []int {
	if val == "" {
		return fallback
	}
	var nums []int
	for _, part := range strings.Split(val, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	if len(nums) == 0 {
		return fallback
	}
	return nums
}

func parseHour(val string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n < 0 || n > 23 {
		return fallback
	}
	return n
}

func parsePositive(val string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}
