package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"ev-dashboard/internal/analysis"
)

// Settings is the user's portfolio configuration. Bankroll is a snapshot the
// user maintains by hand; settling bets does not change it.
type Settings struct {
	Bankroll       float64               `json:"bankroll" yaml:"bankroll"`
	Currency       string                `json:"currency" yaml:"currency"`
	ValueThreshold float64               `json:"value_threshold" yaml:"value_threshold"`
	Policy         analysis.PolicyConfig `json:"policy" yaml:"policy"`
}

const (
	DefaultBankroll       = 1000.0
	DefaultCurrency       = "USD"
	DefaultValueThreshold = 0.02
	DefaultKellyFraction  = 0.25
)

// Default returns quarter-Kelly settings on a 1000 USD bankroll.
func Default() Settings {
	fraction := DefaultKellyFraction
	return Settings{
		Bankroll:       DefaultBankroll,
		Currency:       DefaultCurrency,
		ValueThreshold: DefaultValueThreshold,
		Policy: analysis.PolicyConfig{
			Kind:          analysis.KindFractionalKelly,
			KellyFraction: &fraction,
		},
	}
}

// applyDefaults fills fields a hand-written file may leave out.
func (s *Settings) applyDefaults() {
	d := Default()
	if s.Currency == "" {
		s.Currency = d.Currency
	}
	if s.Policy.Kind == "" {
		s.Policy = d.Policy
	}
}

// StakingPolicy resolves the configured policy.
func (s Settings) StakingPolicy() (analysis.Policy, error) {
	p, err := s.Policy.Policy()
	if err != nil {
		return nil, err
	}
	if err := analysis.ValidatePolicy(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks that the settings are usable for stake sizing.
func (s Settings) Validate() error {
	if math.IsNaN(s.Bankroll) || math.IsInf(s.Bankroll, 0) || s.Bankroll < 0 {
		return fmt.Errorf("%w: bankroll must be non-negative, got %v", analysis.ErrInvalidParameter, s.Bankroll)
	}
	if strings.TrimSpace(s.Currency) == "" {
		return fmt.Errorf("%w: currency is required", analysis.ErrMissingParameter)
	}
	if math.IsNaN(s.ValueThreshold) || s.ValueThreshold < 0 {
		return fmt.Errorf("%w: value threshold must be non-negative, got %v", analysis.ErrInvalidParameter, s.ValueThreshold)
	}
	_, err := s.StakingPolicy()
	return err
}

// FileStore keeps settings in a YAML or JSON file, chosen by extension.
type FileStore struct {
	path string

	mu       sync.RWMutex
	settings Settings
}

// Open loads settings from path. A missing file yields Default, which is
// written on the first Save.
func Open(path string) (*FileStore, error) {
	fs := &FileStore{path: path}
	if err := fs.Load(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Load re-reads the file.
func (f *FileStore) Load() error {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		f.mu.Lock()
		f.settings = Default()
		f.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read settings file: %w", err)
	}

	var s Settings
	if isJSON(f.path) {
		err = json.Unmarshal(data, &s)
	} else {
		err = yaml.Unmarshal(data, &s)
	}
	if err != nil {
		return fmt.Errorf("parse settings %s: %w", f.path, err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings %s: %w", f.path, err)
	}

	f.mu.Lock()
	f.settings = s
	f.mu.Unlock()
	return nil
}

// Get returns a copy of the current settings.
func (f *FileStore) Get() Settings {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.settings
}

// Save validates and persists s.
func (f *FileStore) Save(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write(s); err != nil {
		return err
	}
	f.settings = s
	return nil
}

// Update applies fn to a copy of the current settings and saves the result.
func (f *FileStore) Update(fn func(*Settings)) (Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.settings
	next.Policy = clonePolicy(f.settings.Policy)
	fn(&next)
	if err := next.Validate(); err != nil {
		return Settings{}, err
	}
	if err := f.write(next); err != nil {
		return Settings{}, err
	}
	f.settings = next
	return next, nil
}

func (f *FileStore) write(s Settings) error {
	var (
		data []byte
		err  error
	)
	if isJSON(f.path) {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = yaml.Marshal(s)
	}
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}

	// Write then rename so readers never see a partial file
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func clonePolicy(c analysis.PolicyConfig) analysis.PolicyConfig {
	cp := func(v *float64) *float64 {
		if v == nil {
			return nil
		}
		x := *v
		return &x
	}
	return analysis.PolicyConfig{
		Kind:          c.Kind,
		Amount:        cp(c.Amount),
		Percent:       cp(c.Percent),
		KellyFraction: cp(c.KellyFraction),
	}
}
