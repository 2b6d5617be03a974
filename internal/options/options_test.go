package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type decodeConfig struct {
	trailingLimit int
	strict        bool
	calls         []string
}

func withTrailingLimit(n int) Option[*decodeConfig] {
	return New(func(c *decodeConfig) error {
		if n < 0 {
			return errors.New("trailing limit cannot be negative")
		}
		c.trailingLimit = n
		c.calls = append(c.calls, "limit")

		return nil
	})
}

func withStrict() Option[*decodeConfig] {
	return NoError(func(c *decodeConfig) {
		c.strict = true
		c.calls = append(c.calls, "strict")
	})
}

func TestApply(t *testing.T) {
	cfg := &decodeConfig{}
	err := Apply(cfg, withTrailingLimit(64), nil, withStrict())
	require.NoError(t, err)
	require.Equal(t, 64, cfg.trailingLimit)
	require.True(t, cfg.strict)
	require.Equal(t, []string{"limit", "strict"}, cfg.calls)
}

func TestApply_StopsAtError(t *testing.T) {
	cfg := &decodeConfig{}
	err := Apply(cfg, withTrailingLimit(-1), withStrict())
	require.EqualError(t, err, "trailing limit cannot be negative")
	require.False(t, cfg.strict, "options after a failing one are not applied")
}

func TestApply_Empty(t *testing.T) {
	cfg := &decodeConfig{}
	require.NoError(t, Apply(cfg))
}
