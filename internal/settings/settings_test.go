package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ev-dashboard/internal/analysis"
)

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())

	p, err := s.StakingPolicy()
	require.NoError(t, err)
	assert.Equal(t, analysis.FractionalKelly{Fraction: 0.25}, p)
}

func TestValidate(t *testing.T) {
	amount := 10.0
	badFraction := 2.0

	tests := []struct {
		name   string
		modify func(*Settings)
		want   error
	}{
		{"Negative bankroll", func(s *Settings) { s.Bankroll = -1 }, analysis.ErrInvalidParameter},
		{"Missing currency", func(s *Settings) { s.Currency = "" }, analysis.ErrMissingParameter},
		{"Negative threshold", func(s *Settings) { s.ValueThreshold = -0.1 }, analysis.ErrInvalidParameter},
		{"Kelly without fraction", func(s *Settings) {
			s.Policy = analysis.PolicyConfig{Kind: analysis.KindFractionalKelly}
		}, analysis.ErrMissingParameter},
		{"Kelly fraction above one", func(s *Settings) {
			s.Policy = analysis.PolicyConfig{Kind: analysis.KindFractionalKelly, KellyFraction: &badFraction}
		}, analysis.ErrInvalidParameter},
		{"Unknown kind", func(s *Settings) {
			s.Policy = analysis.PolicyConfig{Kind: "martingale", Amount: &amount}
		}, analysis.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.modify(&s)
			assert.ErrorIs(t, s.Validate(), tt.want)
		})
	}
}

func TestFileStoreMissingFileUsesDefault(t *testing.T) {
	fs, err := Open(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), fs.Get())
}

func TestFileStoreYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	fs, err := Open(path)
	require.NoError(t, err)

	pct := 2.0
	s := Settings{
		Bankroll:       5000,
		Currency:       "EUR",
		ValueThreshold: 0.03,
		Policy:         analysis.PolicyConfig{Kind: analysis.KindPercentage, Percent: &pct},
	}
	require.NoError(t, fs.Save(s))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, s, reopened.Get())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kind: percentage")
}

func TestFileStoreJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"bankroll": 750,
		"currency": "GBP",
		"value_threshold": 0.01,
		"policy": {"kind": "fixed", "amount": 20}
	}`), 0o644))

	fs, err := Open(path)
	require.NoError(t, err)

	s := fs.Get()
	assert.Equal(t, 750.0, s.Bankroll)
	p, err := s.StakingPolicy()
	require.NoError(t, err)
	assert.Equal(t, analysis.Fixed{Amount: 20}, p)
}

func TestFileStoreRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bankroll: -50\n"), 0o644))

	_, err := Open(path)
	assert.ErrorIs(t, err, analysis.ErrInvalidParameter)
}

func TestFileStoreUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	fs, err := Open(path)
	require.NoError(t, err)

	s, err := fs.Update(func(s *Settings) { s.Bankroll = 2500 })
	require.NoError(t, err)
	assert.Equal(t, 2500.0, s.Bankroll)

	_, err = fs.Update(func(s *Settings) { s.Bankroll = -1 })
	assert.ErrorIs(t, err, analysis.ErrInvalidParameter)
	assert.Equal(t, 2500.0, fs.Get().Bankroll, "failed update leaves settings unchanged")

	// Mutating the policy inside Update must not leak into the stored copy on failure
	_, err = fs.Update(func(s *Settings) {
		*s.Policy.KellyFraction = 5
	})
	assert.ErrorIs(t, err, analysis.ErrInvalidParameter)
	assert.Equal(t, 0.25, *fs.Get().Policy.KellyFraction)

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, reopened.Get().Bankroll)
}
