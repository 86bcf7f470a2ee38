package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"finrep/internal/core"
	"finrep/internal/storage"
)

// Portal describes the externally provisioned shape of the reporting portal:
// which months exist, which projects report, and how much each funding
// channel may spend. It is loaded once at startup from a YAML file.
type Portal struct {
	Periods  PortalPeriods   `yaml:"periods"`
	Projects []PortalProject `yaml:"projects"`
	Funding  []PortalFunding `yaml:"funding_caps"`
}

type PortalPeriods struct {
	From   string `yaml:"from"` // month label, e.g. "October 2023"
	Months int    `yaml:"months"`
}

type PortalProject struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	From string `yaml:"from"` // first period the project reports in; defaults to Periods.From
}

type PortalFunding struct {
	Source   string `yaml:"source"`
	CapCents int64  `yaml:"cap_cents"`
}

// LoadPortal reads and validates a portal file.
func LoadPortal(path string) (*Portal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read portal file: %w", err)
	}

	var p Portal
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse portal file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("portal file %s: %w", path, err)
	}
	return &p, nil
}

// Validate checks the portal definition and returns an error listing every
// problem found.
func (p *Portal) Validate() error {
	var errors []string

	if _, _, err := core.ParseMonthLabel(p.Periods.From); err != nil {
		errors = append(errors, fmt.Sprintf("invalid periods.from %q: must look like %q", p.Periods.From, "October 2023"))
	}
	if p.Periods.Months < 1 {
		errors = append(errors, fmt.Sprintf("invalid periods.months %d: must be at least 1", p.Periods.Months))
	}

	seen := make(map[string]bool)
	for i, proj := range p.Projects {
		if strings.TrimSpace(proj.ID) == "" {
			errors = append(errors, fmt.Sprintf("project %d: id cannot be empty", i))
			continue
		}
		if seen[proj.ID] {
			errors = append(errors, fmt.Sprintf("duplicate project id %q", proj.ID))
		}
		seen[proj.ID] = true
		if proj.From != "" {
			if _, _, err := core.ParseMonthLabel(proj.From); err != nil {
				errors = append(errors, fmt.Sprintf("project %q: invalid from %q", proj.ID, proj.From))
			}
		}
	}

	for _, f := range p.Funding {
		if !core.ValidFundingSource(f.Source) {
			errors = append(errors, fmt.Sprintf("unknown funding source %q", f.Source))
		}
		if f.CapCents < 0 {
			errors = append(errors, fmt.Sprintf("funding source %q: cap cannot be negative", f.Source))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("invalid portal definition:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ProvisionSpec converts the portal definition into the storage seeding spec.
func (p *Portal) ProvisionSpec() storage.ProvisionSpec {
	spec := storage.ProvisionSpec{
		FromLabel: p.Periods.From,
		Months:    p.Periods.Months,
	}
	for _, proj := range p.Projects {
		from := proj.From
		if from == "" {
			from = p.Periods.From
		}
		spec.Projects = append(spec.Projects, storage.ProvisionProject{
			ID:        proj.ID,
			Name:      proj.Name,
			FromLabel: from,
		})
	}
	return spec
}

// FundingCaps returns the cap per canonical funding source name.
func (p *Portal) FundingCaps() map[string]int64 {
	caps := make(map[string]int64, len(p.Funding))
	for _, f := range p.Funding {
		caps[core.CanonicalFundingSource(f.Source)] = f.CapCents
	}
	return caps
}
