package config

import "os"

// Environment is the runtime environment, taken from the ENV variable.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment resolves the current environment. CI is detected from the
// CI variable; anything unrecognised counts as development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch os.Getenv("ENV") {
	case "production":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// IsProduction reports whether strict configuration rules apply.
func IsProduction() bool {
	return GetEnvironment() == Production
}

func IsTest() bool {
	return GetEnvironment() == Test
}
