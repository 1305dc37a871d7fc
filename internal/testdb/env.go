package testdb

import (
	"net/url"
	"os"
)

// Environment variables checked for a Postgres test database, in order.
const (
	EnvDatabaseURL     = "DATABASE_URL"
	EnvScryTestDBURL   = "SCRY_TEST_DB_URL"
	EnvScryDatabaseURL = "SCRY_DATABASE_URL"
)

var databaseURLVars = []string{EnvDatabaseURL, EnvScryTestDBURL, EnvScryDatabaseURL}

// DatabaseURL returns the first configured Postgres test URL, or "".
func DatabaseURL() string {
	for _, name := range databaseURLVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// IsCI reports whether the tests run under a CI system.
func IsCI() bool {
	for _, name := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// MaskURL hides the password of a database URL for logging.
func MaskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
