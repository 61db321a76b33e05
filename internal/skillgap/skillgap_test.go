package skillgap

import (
	"slices"
	"testing"

	"github.com/abhisek/skillpath/internal/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Parse([]byte(`
roles:
  - name: Web Developer
    skills: [HTML, CSS, React, Node]
  - name: Backend Developer
    skills: [Go, SQL, Node.js]
`))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	return c
}

func TestCalculate(t *testing.T) {
	cat := testCatalog(t)

	tests := []struct {
		name   string
		skills []string
		role   string
		want   []string
	}{
		{"html css", []string{"HTML", "CSS"}, "Web Developer", []string{"React", "Node"}},
		{"nothing declared", nil, "Web Developer", []string{"HTML", "CSS", "React", "Node"}},
		{"all declared", []string{"node", "react", "css", "html"}, "Web Developer", []string{}},
		{"normalized compare", []string{"node.js"}, "backend developer", []string{"Go", "SQL"}},
		{"unknown role", []string{"HTML"}, "Astronaut", []string{}},
		{"irrelevant skills ignored", []string{"Rust"}, "Backend Developer", []string{"Go", "SQL", "Node.js"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(cat, tt.skills, tt.role)
			if !slices.Equal(got.MissingSkills, tt.want) {
				t.Errorf("missing = %v, want %v", got.MissingSkills, tt.want)
			}
		})
	}
}

func TestCalculateUnknownRoleIsNotKnown(t *testing.T) {
	rec := Calculate(testCatalog(t), nil, "Astronaut")
	if rec.Known() {
		t.Error("unknown role reported as known")
	}
	if rec.MissingSkills == nil {
		t.Error("missing skills should be empty, not nil")
	}
}

func TestCalculateDoesNotAliasInput(t *testing.T) {
	skills := []string{"HTML"}
	rec := Calculate(testCatalog(t), skills, "Web Developer")
	skills[0] = "changed"
	if rec.UserSkills[0] != "HTML" {
		t.Error("record aliases caller's slice")
	}
}

func TestRecordHelpers(t *testing.T) {
	rec := Calculate(testCatalog(t), []string{"Go"}, "Backend Developer")
	if !slices.Equal(rec.MissingKeys(), []string{"sql", "node-js"}) {
		t.Errorf("keys = %v", rec.MissingKeys())
	}
	if !rec.Contains("NODE.JS") {
		t.Error("Contains should normalize")
	}
	if rec.Contains("Go") {
		t.Error("declared skill reported missing")
	}
}
