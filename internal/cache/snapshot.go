package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	gocache "github.com/patrickmn/go-cache"

	"github.com/histparl/rollcall/internal/model"
)

// snapshot is the serialized form of a resolution cache. Reference data is
// static, so resolutions from a previous run remain valid and can
// warm-start the next one.
type snapshot struct {
	Match     map[string]model.Resolution `json:"match"`
	Miss      []string                    `json:"miss"`
	Ambiguity map[string][]int64          `json:"ambiguity"`
	Ignore    []string                    `json:"ignore"`
	FuzzyFlag []string                    `json:"fuzzy_flag"`
}

// Save writes the cache contents to path as JSON.
func (c *ResolutionCache) Save(path string) error {
	snap := snapshot{
		Match:     make(map[string]model.Resolution, c.match.ItemCount()),
		Ambiguity: make(map[string][]int64, c.ambiguity.ItemCount()),
	}

	for k, item := range c.match.Items() {
		snap.Match[k] = item.Object.(model.Resolution)
	}
	for k := range c.miss.Items() {
		snap.Miss = append(snap.Miss, k)
	}
	for k, item := range c.ambiguity.Items() {
		snap.Ambiguity[k] = item.Object.([]int64)
	}
	for k := range c.ignore.Items() {
		snap.Ignore = append(snap.Ignore, k)
	}
	for k := range c.fuzzyFlag.Items() {
		snap.FuzzyFlag = append(snap.FuzzyFlag, k)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load merges a previously saved snapshot into the cache. A missing file
// is not an error; the run simply starts cold.
func (c *ResolutionCache) Load(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}

	for k, res := range snap.Match {
		c.match.Set(k, res, gocache.NoExpiration)
	}
	for _, k := range snap.Miss {
		c.miss.Set(k, struct{}{}, gocache.NoExpiration)
	}
	for k, candidates := range snap.Ambiguity {
		c.ambiguity.Set(k, candidates, gocache.NoExpiration)
	}
	for _, k := range snap.Ignore {
		c.ignore.Set(k, struct{}{}, gocache.NoExpiration)
	}
	for _, k := range snap.FuzzyFlag {
		c.fuzzyFlag.Set(k, struct{}{}, gocache.NoExpiration)
	}
	return nil
}
