package catalog

import (
	"strings"
	"testing"
)

func TestKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Node.js", "node-js"},
		{"Full Stack Developer", "full-stack-developer"},
		{"  C++  ", "c"},
		{"UI/UX Design", "ui-ux-design"},
		{"CI/CD", "ci-cd"},
		{"--React--", "react"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Key(tt.in); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultCatalogIsValid(t *testing.T) {
	c := Default()
	if len(c.Roles()) == 0 {
		t.Fatal("default catalog has no roles")
	}
}

func TestLookupIsNormalized(t *testing.T) {
	c := Default()
	for _, name := range []string{"Web Developer", "web developer", "WEB-DEVELOPER", " web_developer "} {
		r, ok := c.Lookup(name)
		if !ok {
			t.Errorf("Lookup(%q) not found", name)
			continue
		}
		if r.Name != "Web Developer" {
			t.Errorf("Lookup(%q).Name = %q", name, r.Name)
		}
	}
	if _, ok := c.Lookup("Astronaut"); ok {
		t.Error("unknown role should not be found")
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	c := Default()
	r, _ := c.Lookup("Web Developer")
	r.Skills[0].Name = "mutated"
	again, _ := c.Lookup("Web Developer")
	if again.Skills[0].Name == "mutated" {
		t.Error("Lookup leaked internal slice")
	}
}

func TestHasSkill(t *testing.T) {
	r, _ := Default().Lookup("Full Stack Developer")
	if !r.HasSkill("node.JS") {
		t.Error("expected node.JS to match Node.js")
	}
	if r.HasSkill("Rust") {
		t.Error("Rust is not required")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "roles: []", "no roles"},
		{"duplicate role", "roles:\n  - {name: Dev, skills: [Go]}\n  - {name: dev, skills: [Go]}", "duplicates"},
		{"no skills", "roles:\n  - {name: Dev, skills: []}", "no skills"},
		{"duplicate skill", "roles:\n  - {name: Dev, skills: [Node.js, node js]}", "twice"},
		{"blank name", "roles:\n  - {name: '  ', skills: [Go]}", "empty name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestParseBadYAML(t *testing.T) {
	if _, err := Parse([]byte("roles: [")); err == nil {
		t.Fatal("expected YAML error")
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c != Default() {
		t.Error("empty path should return the embedded catalog")
	}
}
