// Package skillgap computes which required skills a user still lacks for a
// role.
package skillgap

import (
	"github.com/abhisek/skillpath/internal/catalog"
)

// Record is the derived gap between a user's declared skills and a role.
type Record struct {
	DesiredRole   string   `json:"desiredRole"`
	RoleKey       string   `json:"roleKey"`
	UserSkills    []string `json:"userSkills"`
	MissingSkills []string `json:"missingSkills"`
}

// Known reports whether the role resolved against the catalog.
func (r Record) Known() bool {
	return r.RoleKey != ""
}

// MissingKeys returns the normalized keys of the missing skills.
func (r Record) MissingKeys() []string {
	keys := make([]string, len(r.MissingSkills))
	for i, s := range r.MissingSkills {
		keys[i] = catalog.Key(s)
	}
	return keys
}

// Contains reports whether skill is part of the missing set.
func (r Record) Contains(skill string) bool {
	k := catalog.Key(skill)
	for _, s := range r.MissingSkills {
		if catalog.Key(s) == k {
			return true
		}
	}
	return false
}

// Calculate returns the required skills of desiredRole not covered by
// userSkills, in catalog order and without duplicates. Skills compare by
// normalized key. An unknown role yields an empty gap, not an error.
func Calculate(cat *catalog.Catalog, userSkills []string, desiredRole string) Record {
	rec := Record{
		DesiredRole:   desiredRole,
		UserSkills:    append([]string(nil), userSkills...),
		MissingSkills: []string{},
	}

	role, ok := cat.Lookup(desiredRole)
	if !ok {
		return rec
	}
	rec.DesiredRole = role.Name
	rec.RoleKey = role.Key

	have := make(map[string]bool, len(userSkills))
	for _, s := range userSkills {
		have[catalog.Key(s)] = true
	}

	seen := make(map[string]bool, len(role.Skills))
	for _, s := range role.Skills {
		if have[s.Key] || seen[s.Key] {
			continue
		}
		seen[s.Key] = true
		rec.MissingSkills = append(rec.MissingSkills, s.Name)
	}
	return rec
}
