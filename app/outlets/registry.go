package outlets

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sinodesk/sinodesk/app/database"
)

// Seed is one tracked outlet definition from the outlets YAML file
type Seed struct {
	Domain          string `yaml:"domain"`
	Name            string `yaml:"name"`
	NameEN          string `yaml:"name_en"`
	Type            string `yaml:"type"`
	CredibilityTier string `yaml:"credibility_tier"`
	Language        string `yaml:"language"`
	Notes           string `yaml:"notes"`
}

type seedFile struct {
	Outlets []Seed `yaml:"outlets"`
}

// LoadSeeds reads outlet definitions from a YAML file
func LoadSeeds(path string) ([]Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read outlets file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse outlets file: %w", err)
	}

	for i, seed := range file.Outlets {
		if seed.Domain == "" {
			return nil, fmt.Errorf("outlet %d is missing a domain", i)
		}
		if seed.Name == "" {
			return nil, fmt.Errorf("outlet %q is missing a name", seed.Domain)
		}
	}

	return file.Outlets, nil
}

// Register upserts seed outlets into the store, keyed by domain pattern.
// Returns the number of outlets registered.
func Register(repo database.OutletRepository, seeds []Seed) (int, error) {
	registered := 0
	for _, seed := range seeds {
		outlet := &database.Outlet{
			ID:              uuid.NewString(),
			DomainPattern:   seed.Domain,
			Name:            seed.Name,
			NameEN:          seed.NameEN,
			Type:            seed.Type,
			CredibilityTier: seed.CredibilityTier,
			Language:        seed.Language,
			Notes:           seed.Notes,
			CreatedAt:       time.Now().UTC(),
		}
		if err := repo.UpsertByDomain(outlet); err != nil {
			return registered, fmt.Errorf("failed to register outlet %q: %w", seed.Domain, err)
		}
		registered++
	}
	return registered, nil
}
