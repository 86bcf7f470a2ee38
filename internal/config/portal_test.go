package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const portalYAML = `periods:
  from: "October 2023"
  months: 4
projects:
  - id: alpha
    name: Project Alpha
  - id: beta
    name: Project Beta
    from: "November 2023"
funding_caps:
  - source: "Incubation Grant"
    cap_cents: 5000000
  - source: "Self-Funded"
    cap_cents: 1000000
`

func writePortal(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portal.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write portal file: %v", err)
	}
	return path
}

func TestLoadPortal(t *testing.T) {
	p, err := LoadPortal(writePortal(t, portalYAML))
	if err != nil {
		t.Fatalf("LoadPortal: %v", err)
	}

	if p.Periods.From != "October 2023" || p.Periods.Months != 4 {
		t.Fatalf("unexpected periods: %+v", p.Periods)
	}
	if len(p.Projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(p.Projects))
	}

	spec := p.ProvisionSpec()
	if spec.FromLabel != "October 2023" || spec.Months != 4 {
		t.Fatalf("unexpected provision spec: %+v", spec)
	}
	// a project without its own start inherits the portal start
	if spec.Projects[0].FromLabel != "October 2023" {
		t.Fatalf("expected alpha to inherit the portal start, got %q", spec.Projects[0].FromLabel)
	}
	if spec.Projects[1].FromLabel != "November 2023" {
		t.Fatalf("expected beta to keep its own start, got %q", spec.Projects[1].FromLabel)
	}

	caps := p.FundingCaps()
	if caps["Incubation Grant"] != 5000000 {
		t.Fatalf("unexpected caps: %v", caps)
	}
}

func TestLoadPortalRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantSub string
	}{
		{
			"bad month label",
			"periods:\n  from: \"2023-10\"\n  months: 3\n",
			"invalid periods.from",
		},
		{
			"zero months",
			"periods:\n  from: \"October 2023\"\n  months: 0\n",
			"invalid periods.months",
		},
		{
			"duplicate project",
			"periods:\n  from: \"October 2023\"\n  months: 3\nprojects:\n  - id: alpha\n    name: A\n  - id: alpha\n    name: Dup\n",
			"duplicate project id",
		},
		{
			"unknown funding source",
			"periods:\n  from: \"October 2023\"\n  months: 3\nfunding_caps:\n  - source: \"Pocket Money\"\n    cap_cents: 1\n",
			"unknown funding source",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPortal(writePortal(t, tt.yaml))
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantSub)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Fatalf("expected error containing %q, got %v", tt.wantSub, err)
			}
		})
	}
}

func TestLoadPortalMissingFile(t *testing.T) {
	if _, err := LoadPortal(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
