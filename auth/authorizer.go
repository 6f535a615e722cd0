package auth

import (
	"fmt"
	"strings"
)

// Authorize returns nil when id carries every role in required.
// An empty required list admits any authenticated identity.
func Authorize(id *Identity, required ...string) error {
	if id == nil {
		return ErrMissingCredentials
	}
	var missing []string
	for _, r := range required {
		if !id.HasRole(r) {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrForbidden, strings.Join(missing, ", "))
	}
	return nil
}
