package nudge

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestSettingsCacheTTL(t *testing.T) {
	now := midday
	source := &fakeSettingsSource{values: SeedDefaults()}
	cache := NewSettingsCache(source, func() time.Time { return now })

	cache.Load()
	cache.Load()
	cache.Load()
	if source.calls != 1 {
		t.Fatalf("source calls = %d, want 1 within TTL", source.calls)
	}

	now = now.Add(settingsTTL + time.Second)
	cache.Load()
	if source.calls != 2 {
		t.Fatalf("source calls = %d, want 2 after TTL expiry", source.calls)
	}
}

func TestSettingsCacheStaleOnSourceFailure(t *testing.T) {
	now := midday
	values := SeedDefaults()
	values[KeyMaxPerDay] = "9"
	source := &fakeSettingsSource{values: values}
	cache := NewSettingsCache(source, func() time.Time { return now })

	first := cache.Load()
	if first.MaxPerDay != 9 {
		t.Fatalf("MaxPerDay = %d, want 9", first.MaxPerDay)
	}

	source.err = errors.New("connection refused")
	now = now.Add(settingsTTL + time.Second)
	stale := cache.Load()
	if stale.MaxPerDay != 9 {
		t.Errorf("MaxPerDay after failure = %d, want stale 9", stale.MaxPerDay)
	}
}

func TestSettingsCacheDefaultsWhenNeverLoaded(t *testing.T) {
	source := &fakeSettingsSource{err: errors.New("connection refused")}
	cache := NewSettingsCache(source, func() time.Time { return midday })

	got := cache.Load()
	if !reflect.DeepEqual(got, DefaultSettings()) {
		t.Fatalf("settings = %+v, want hardcoded defaults", got)
	}
}

func TestParseSettingsPerFieldFallback(t *testing.T) {
	raw := map[string]string{
		KeyEnabled:         "true",
		KeyDeadlineDays:    "10,5",
		KeyCountdownDays:   "not,numbers",
		KeyOverdueDays:     "2, 4 ,6",
		KeyQuietHoursStart: "25", // out of range
		KeyQuietHoursEnd:   "6",
		KeyMaxPerDay:       "-1", // must be positive
	}
	got := parseSettings(raw)
	def := DefaultSettings()

	if !got.Enabled {
		t.Error("Enabled = false, want true")
	}
	if !reflect.DeepEqual(got.DeadlineDays, []int{10, 5}) {
		t.Errorf("DeadlineDays = %v", got.DeadlineDays)
	}
	if !reflect.DeepEqual(got.CountdownDays, def.CountdownDays) {
		t.Errorf("CountdownDays = %v, want default on garbage input", got.CountdownDays)
	}
	if !reflect.DeepEqual(got.OverdueDays, []int{2, 4, 6}) {
		t.Errorf("OverdueDays = %v, want whitespace tolerated", got.OverdueDays)
	}
	if got.QuietHoursStart != def.QuietHoursStart {
		t.Errorf("QuietHoursStart = %d, want default for out-of-range hour", got.QuietHoursStart)
	}
	if got.QuietHoursEnd != 6 {
		t.Errorf("QuietHoursEnd = %d, want 6", got.QuietHoursEnd)
	}
	if got.MaxPerDay != def.MaxPerDay {
		t.Errorf("MaxPerDay = %d, want default for non-positive value", got.MaxPerDay)
	}
}

func TestParseSettingsEnabledOnlyFalseDisables(t *testing.T) {
	for _, val := range []string{"", "true", "TRUE", "yes", "1"} {
		if got := parseSettings(map[string]string{KeyEnabled: val}); !got.Enabled {
			t.Errorf("Enabled(%q) = false, want true", val)
		}
	}
	if got := parseSettings(map[string]string{KeyEnabled: "false"}); got.Enabled {
		t.Error(`Enabled("false") = true, want false`)
	}
}

func TestParseIntListSkipsBadEntries(t *testing.T) {
	got := parseIntList("7,x,1", []int{99})
	if !reflect.DeepEqual(got, []int{7, 1}) {
		t.Fatalf("parseIntList = %v, want [7 1]", got)
	}
}
