package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/eclass/pkg/observability"
)

// withMetrics runs fn with Prometheus hooks installed and writes the
// collected metrics to path afterwards, also when fn fails. An empty path
// runs fn unchanged.
func (c *CLI) withMetrics(path string, fn func() error) error {
	if path == "" {
		return fn()
	}

	reg := prometheus.NewRegistry()
	observability.NewMetrics(reg).Install()
	defer observability.Reset()

	runErr := fn()
	if err := observability.WriteTextfile(path, reg); err != nil {
		if runErr != nil {
			c.Logger.Warn("could not write metrics", "path", path, "error", err)
			return runErr
		}
		return fmt.Errorf("write metrics: %w", err)
	}
	c.Logger.Debug("wrote metrics", "path", path)
	return runErr
}
