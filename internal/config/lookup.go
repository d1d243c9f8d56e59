package config

import (
	"os"
	"strings"
)

// LookupEnvOrString returns the trimmed value of key, or defaultVal when the
// variable is unset
func (c *Config) LookupEnvOrString(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(val)
	}

	return defaultVal
}
