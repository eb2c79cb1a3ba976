package core

import (
	"slices"

	"github.com/llehouerou/waved/internal/config"
	"github.com/llehouerou/waved/internal/frontend"
)

// LoadFrontends loads the frontends named in Options.Frontends, or else
// every built-in frontend followed by the bundles found in frontends.dir.
// Frontends listed in frontends.disabled are skipped unless named
// explicitly. Failures are logged and skipped. It returns the number of
// running frontends.
func (c *Core) LoadFrontends() int {
	if len(c.opts.Frontends) > 0 {
		for _, name := range c.opts.Frontends {
			if c.static.Has(name) {
				_, _ = c.frontends.Load(c.static, name)
				continue
			}
			_, _ = c.frontends.Load(c.dynamic, config.ExpandPath(name))
		}
		return c.frontends.Len()
	}

	disabled := c.cfg.Strings(config.KeyFrontendsDisabled)
	for _, id := range c.static.IDs() {
		if slices.Contains(disabled, id) {
			c.log.Debug().Str("frontend", id).Msg("frontend disabled")
			continue
		}
		_, _ = c.frontends.Load(c.static, id)
	}

	dir := config.ExpandPath(c.cfg.String(config.KeyFrontendsDir))
	paths, err := frontend.Discover(dir)
	if err != nil {
		c.log.Warn().Err(err).Str("dir", dir).Msg("frontend scan failed")
	}
	for _, p := range paths {
		id := frontend.BundleID(p)
		if slices.Contains(disabled, id) {
			c.log.Debug().Str("frontend", id).Msg("frontend disabled")
			continue
		}
		if _, ok := c.frontends.Lookup(id); ok {
			c.log.Warn().Str("path", p).Msg("frontend already loaded, skipping bundle")
			continue
		}
		_, _ = c.frontends.Load(c.dynamic, p)
	}
	return c.frontends.Len()
}
