package catalog

import (
	"fmt"
	"strings"
)

// validateRoles checks structural rules on a parsed catalog and returns a
// combined error describing every problem found.
func validateRoles(roles []Role) error {
	var errs []string

	if len(roles) == 0 {
		errs = append(errs, "catalog has no roles")
	}

	seen := make(map[string]string, len(roles))
	for i, r := range roles {
		if r.Key == "" {
			errs = append(errs, fmt.Sprintf("role %d has an empty name", i))
			continue
		}
		if prev, ok := seen[r.Key]; ok {
			errs = append(errs, fmt.Sprintf("role %q duplicates %q", r.Name, prev))
		}
		seen[r.Key] = r.Name

		if len(r.Skills) == 0 {
			errs = append(errs, fmt.Sprintf("role %q has no skills", r.Name))
		}
		skills := make(map[string]bool, len(r.Skills))
		for _, s := range r.Skills {
			if s.Key == "" {
				errs = append(errs, fmt.Sprintf("role %q has an empty skill name", r.Name))
				continue
			}
			if skills[s.Key] {
				errs = append(errs, fmt.Sprintf("role %q lists skill %q twice", r.Name, s.Name))
			}
			skills[s.Key] = true
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
