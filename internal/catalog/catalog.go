// Package catalog maps role names to their required skills.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Skill is one required skill of a role.
type Skill struct {
	Name string
	Key  string
}

// Role is a target job identity with its required skills in learning order.
type Role struct {
	Name        string
	Key         string
	Description string
	Skills      []Skill
}

// SkillNames returns the role's skill display names in catalog order.
func (r Role) SkillNames() []string {
	names := make([]string, len(r.Skills))
	for i, s := range r.Skills {
		names[i] = s.Name
	}
	return names
}

// HasSkill reports whether the role requires the named skill.
func (r Role) HasSkill(name string) bool {
	k := Key(name)
	for _, s := range r.Skills {
		if s.Key == k {
			return true
		}
	}
	return false
}

// Catalog is an immutable, indexed set of roles.
type Catalog struct {
	roles []Role
	byKey map[string]int
}

type fileFormat struct {
	Roles []struct {
		Name        string   `yaml:"name"`
		Description string   `yaml:"description"`
		Skills      []string `yaml:"skills"`
	} `yaml:"roles"`
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Key normalizes a role or skill name into its storage key: lower-case,
// runs of characters outside [a-z0-9] collapsed to "-", no leading or
// trailing "-". "Node.js" becomes "node-js".
func Key(name string) string {
	k := nonAlnum.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(k, "-")
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	roles := make([]Role, 0, len(f.Roles))
	for _, r := range f.Roles {
		role := Role{
			Name:        strings.TrimSpace(r.Name),
			Key:         Key(r.Name),
			Description: r.Description,
		}
		for _, s := range r.Skills {
			role.Skills = append(role.Skills, Skill{Name: strings.TrimSpace(s), Key: Key(s)})
		}
		roles = append(roles, role)
	}

	if err := validateRoles(roles); err != nil {
		return nil, err
	}

	c := &Catalog{roles: roles, byKey: make(map[string]int, len(roles))}
	for i, r := range roles {
		c.byKey[r.Key] = i
	}
	return c, nil
}

// Load reads a catalog file. An empty path returns the embedded catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog. It panics if the embedded data is
// invalid, which the package tests rule out.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultCatalog)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

// Lookup finds a role by name, matching on the normalized key.
func (c *Catalog) Lookup(name string) (Role, bool) {
	i, ok := c.byKey[Key(name)]
	if !ok {
		return Role{}, false
	}
	return cloneRole(c.roles[i]), true
}

// Roles returns every role in file order. The result is a copy.
func (c *Catalog) Roles() []Role {
	out := make([]Role, len(c.roles))
	for i, r := range c.roles {
		out[i] = cloneRole(r)
	}
	return out
}

// RoleNames returns every role name in file order.
func (c *Catalog) RoleNames() []string {
	out := make([]string, len(c.roles))
	for i, r := range c.roles {
		out[i] = r.Name
	}
	return out
}

func cloneRole(r Role) Role {
	r.Skills = append([]Skill(nil), r.Skills...)
	return r
}
