package registry

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodePassword extracts the password from a combined authorization
// token. The token is base64 over "username:password"; anything that does
// not decode, or decodes to a different shape, is rejected.
func DecodePassword(token string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("could not decode authorization token: %w", err)
	}
	parts := strings.Split(string(raw), ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("unexpected authorization token format")
	}
	return parts[1], nil
}
