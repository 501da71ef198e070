package build

import (
	"os"
	"sync"

	"github.com/knadh/koanf/parsers/json"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/logging"
	"github.com/arthur-debert/roc/pkg/settings"
)

// SettingsEnvVar carries JSON settings merged over the built context
const SettingsEnvVar = "ROC_CONFIG_SETTINGS"

// Current holds the context of the build a process performed. Settings from
// SettingsEnvVar are merged into it the first time it is read; later reads
// return the merged context without applying them again.
type Current struct {
	mu      sync.RWMutex
	ctx     *Context
	once    sync.Once
	onceErr error
	lookup  func(string) (string, bool)
}

// NewCurrent creates an empty holder reading the process environment
func NewCurrent() *Current {
	return &Current{lookup: os.LookupEnv}
}

// NewCurrentWithEnv creates a holder reading variables through lookup
func NewCurrentWithEnv(lookup func(string) (string, bool)) *Current {
	return &Current{lookup: lookup}
}

// Set stores the context of a finished build
func (c *Current) Set(ctx *Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx = ctx
}

// Get returns the stored context, nil before Set
func (c *Current) Get() (*Context, error) {
	c.mu.RLock()
	ctx := c.ctx
	c.mu.RUnlock()
	if ctx == nil {
		return nil, nil
	}

	c.once.Do(func() {
		c.onceErr = c.applyEnv()
	})
	if c.onceErr != nil {
		return nil, c.onceErr
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ctx, nil
}

func (c *Current) applyEnv() error {
	raw, ok := c.lookup(SettingsEnvVar)
	if !ok || raw == "" {
		return nil
	}

	patch, err := json.Parser().Unmarshal([]byte(raw))
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "%s is not valid JSON", SettingsEnvVar)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx.Config = settings.Merge(c.ctx.Config, patch)
	if err := settings.Validate(c.ctx.Config, c.ctx.Meta).Err(); err != nil {
		return errors.Wrapf(err, errors.ErrSettingsInvalid, "settings from %s are invalid", SettingsEnvVar)
	}

	logger := logging.GetLogger("build")
	logger.Debug().Int("keys", len(patch)).Msg("Applied settings from environment")
	return nil
}
