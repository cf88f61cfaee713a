// Package seed loads YAML fixtures and applies them through the CRM engine, so
// seeded data obeys the same rules as data created over the API.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/leadcrm/internal/crm"
)

// Fixtures is the root of a seed file.
type Fixtures struct {
	Organisations []Organisation `yaml:"organisations"`
}

// Organisation is an organiser signup plus the records it owns.
type Organisation struct {
	Name       string   `yaml:"name"`
	Username   string   `yaml:"username"`
	Email      string   `yaml:"email"`
	FirstName  string   `yaml:"first_name"`
	LastName   string   `yaml:"last_name"`
	Password   string   `yaml:"password"`
	Categories []string `yaml:"categories"`
	Agents     []Agent  `yaml:"agents"`
	Leads      []Lead   `yaml:"leads"`
}

type Agent struct {
	Username  string `yaml:"username"`
	Email     string `yaml:"email"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

// Lead references its category by name and its agent by username.
type Lead struct {
	FirstName   string `yaml:"first_name"`
	LastName    string `yaml:"last_name"`
	Age         int    `yaml:"age"`
	PhoneNumber string `yaml:"phone_number"`
	Email       string `yaml:"email"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Agent       string `yaml:"agent"`
}

// Summary counts the records created by Apply.
type Summary struct {
	Organisations int
	Categories    int
	Agents        int
	Leads         int
}

// Load decodes fixtures. Unknown keys are rejected.
func Load(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixtures
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse YAML fixtures: %w", err)
	}
	return &f, nil
}

// LoadFile reads fixtures from path.
func LoadFile(path string) (*Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixtures: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Apply creates every organisation in order and stops at the first error.
// Records created before the error are kept.
func Apply(ctx context.Context, svc *crm.Service, fixtures *Fixtures) (Summary, error) {
	var sum Summary

	for _, org := range fixtures.Organisations {
		if err := applyOrganisation(ctx, svc, org, &sum); err != nil {
			return sum, fmt.Errorf("organisation %q: %w", org.Username, err)
		}
	}

	log.Info().
		Int("organisations", sum.Organisations).
		Int("categories", sum.Categories).
		Int("agents", sum.Agents).
		Int("leads", sum.Leads).
		Msg("Fixtures applied")

	return sum, nil
}

func applyOrganisation(ctx context.Context, svc *crm.Service, org Organisation, sum *Summary) error {
	p, _, err := svc.SignupOrganiser(ctx, crm.SignupInput{
		Username:         org.Username,
		Email:            org.Email,
		FirstName:        org.FirstName,
		LastName:         org.LastName,
		Password:         org.Password,
		OrganizationName: org.Name,
	})
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	sum.Organisations++

	categories := make(map[string]uuid.UUID, len(org.Categories))
	for _, name := range org.Categories {
		category, err := svc.CreateCategory(ctx, p, name)
		if err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
		categories[name] = category.CategoryID
		sum.Categories++
	}

	agents := make(map[string]uuid.UUID, len(org.Agents))
	for _, a := range org.Agents {
		agent, err := svc.CreateAgent(ctx, p, crm.AgentInput{
			Username:  a.Username,
			Email:     a.Email,
			FirstName: a.FirstName,
			LastName:  a.LastName,
		})
		if err != nil {
			return fmt.Errorf("agent %q: %w", a.Username, err)
		}
		agents[a.Username] = agent.AgentID
		sum.Agents++
	}

	for i, l := range org.Leads {
		in := crm.LeadInput{
			FirstName:   l.FirstName,
			LastName:    l.LastName,
			Age:         l.Age,
			PhoneNumber: l.PhoneNumber,
			Email:       l.Email,
			Description: l.Description,
		}

		if l.Category != "" {
			id, ok := categories[l.Category]
			if !ok {
				return fmt.Errorf("lead %d: unknown category %q", i, l.Category)
			}
			in.CategoryID = &id
		}
		if l.Agent != "" {
			id, ok := agents[l.Agent]
			if !ok {
				return fmt.Errorf("lead %d: unknown agent %q", i, l.Agent)
			}
			in.AgentID = &id
		}

		if _, err := svc.CreateLead(ctx, p, in); err != nil {
			return fmt.Errorf("lead %d: %w", i, err)
		}
		sum.Leads++
	}

	return nil
}
