package inputs

import (
	"fmt"
	"strings"
)

// Inputs holds the identifiers required for a push. All of them must be
// provided on the command line, there are no defaults.
type Inputs struct {
	Profile       string
	AccountNumber string
	ImageName     string
	ImageTag      string
}

// Validate returns nil when all required inputs are set. When one or more
// are empty the returned error names every missing flag, not only the
// first one.
func (i Inputs) Validate() error {
	var missing []string
	if i.Profile == "" {
		missing = append(missing, "profile")
	}
	if i.AccountNumber == "" {
		missing = append(missing, "account-number")
	}
	if i.ImageName == "" {
		missing = append(missing, "image-name")
	}
	if i.ImageTag == "" {
		missing = append(missing, "image-tag")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}
	return nil
}
