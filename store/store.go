package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"seatmap-cli/model"
)

const (
	floorPlanCacheTTL   = 24 * time.Hour
	maxRecentFloorPlans = 8
	appDir              = "seatmap-cli"
)

type cacheEnvelope[T any] struct {
	UpdatedAt time.Time `json:"updated_at"`
	Data      T         `json:"data"`
}

// RecentFloorPlan is a floor plan the user opened before.
type RecentFloorPlan struct {
	Source string `json:"source"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type floorPlanHistory struct {
	FloorPlans []RecentFloorPlan `json:"floor_plans"`
}

// Preferences are the editor settings that survive a restart.
type Preferences struct {
	LabelPrefix string `json:"label_prefix"`
	ShowLabels  bool   `json:"show_labels"`
}

// LoadFloorPlanCache returns the cached bytes of a remote floor plan and
// whether they are still fresh.
func LoadFloorPlanCache(url string) ([]byte, bool, error) {
	path, err := cachePath(floorPlanCacheName(url))
	if err != nil {
		return nil, false, err
	}
	cache, err := loadCache[[]byte](path)
	if err != nil {
		return nil, false, err
	}
	if len(cache.Data) == 0 {
		return nil, false, nil
	}
	return cache.Data, time.Since(cache.UpdatedAt) <= floorPlanCacheTTL, nil
}

func SaveFloorPlanCache(url string, data []byte) error {
	path, err := cachePath(floorPlanCacheName(url))
	if err != nil {
		return err
	}
	return saveCache(path, data)
}

func LoadRecentFloorPlans() ([]RecentFloorPlan, error) {
	path, err := configPath("history.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var history floorPlanHistory
	if err := json.Unmarshal(data, &history); err == nil {
		return history.FloorPlans, nil
	}

	var legacy []string
	if err := json.Unmarshal(data, &legacy); err == nil {
		var plans []RecentFloorPlan
		for _, source := range legacy {
			if source != "" {
				plans = append(plans, RecentFloorPlan{Source: source, Name: filepath.Base(source)})
			}
		}
		return plans, nil
	}

	return nil, errors.New("invalid floor plan history format")
}

// RememberFloorPlan moves plan to the top of the history.
func RememberFloorPlan(plan model.FloorPlan) error {
	source := strings.TrimSpace(plan.Source)
	if source == "" {
		return errors.New("floor plan source is required")
	}
	history, _ := LoadRecentFloorPlans()
	next := []RecentFloorPlan{{
		Source: source,
		Name:   plan.Name,
		Width:  plan.Width,
		Height: plan.Height,
	}}

	for _, existing := range history {
		if existing.Source == "" || existing.Source == source {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentFloorPlans {
			break
		}
	}

	return writeJSON(configPath, "history.json", floorPlanHistory{FloorPlans: next})
}

// LoadPreferences returns the saved preferences. ok is false when nothing has
// been saved yet.
func LoadPreferences() (Preferences, bool, error) {
	path, err := configPath("preferences.json")
	if err != nil {
		return Preferences{}, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Preferences{}, false, nil
		}
		return Preferences{}, false, err
	}
	var prefs Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return Preferences{}, false, errors.New("invalid preferences format")
	}
	return prefs, true, nil
}

func SavePreferences(prefs Preferences) error {
	return writeJSON(configPath, "preferences.json", prefs)
}

func loadCache[T any](path string) (cacheEnvelope[T], error) {
	var cache cacheEnvelope[T]
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return cache, err
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		return cache, err
	}
	return cache, nil
}

func saveCache[T any](path string, data T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	cache := cacheEnvelope[T]{
		UpdatedAt: time.Now(),
		Data:      data,
	}
	payload, err := json.Marshal(cache)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func writeJSON(resolve func(string) (string, error), name string, value any) error {
	path, err := resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func floorPlanCacheName(url string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return "floorplan_" + hex.EncodeToString(sum[:8]) + ".json"
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, name), nil
}

func cachePath(name string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, name), nil
}
