package env

import "github.com/trimatrixio/matrix-engine/common/config"

// IsCI returns true if we are in CI mode.
func IsCI() bool {
	ci := config.GetString("CI", "false")
	return ci == "true"
}
