package sqlstore

import (
	"fmt"
	"regexp"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validateName(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func validateNames(names ...string) error {
	for _, name := range names {
		if err := validateName(name); err != nil {
			return err
		}
	}
	return nil
}

// quote wraps an already validated identifier in double quotes.
func quote(name string) string {
	return `"` + name + `"`
}
