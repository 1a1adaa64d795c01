package seed

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	types "github.com/yungbote/smartassist-backend/internal/domain"
)

//go:embed tutorials.yaml
var tutorialsYAML []byte

type catalogFile struct {
	Tutorials []struct {
		TutorialID string   `yaml:"tutorial_id"`
		Title      string   `yaml:"title"`
		Steps      []string `yaml:"steps"`
	} `yaml:"tutorials"`
}

// Catalog decodes the embedded tutorial catalogue.
func Catalog() ([]*types.Tutorial, error) {
	return parse(tutorialsYAML)
}

func parse(raw []byte) ([]*types.Tutorial, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode tutorial catalogue: %w", err)
	}
	out := make([]*types.Tutorial, 0, len(f.Tutorials))
	seen := map[string]bool{}
	for _, t := range f.Tutorials {
		code := strings.TrimSpace(t.TutorialID)
		if code == "" || len(t.Steps) == 0 {
			return nil, fmt.Errorf("tutorial %q: id and at least one step are required", t.Title)
		}
		if seen[code] {
			return nil, fmt.Errorf("tutorial %q listed twice", code)
		}
		seen[code] = true
		steps := make(datatypes.JSONSlice[string], 0, len(t.Steps))
		for _, s := range t.Steps {
			steps = append(steps, strings.TrimSpace(s))
		}
		out = append(out, &types.Tutorial{TutorialID: code, Title: t.Title, Steps: steps})
	}
	return out, nil
}

type Seeder interface {
	Seed(ctx context.Context, catalog []*types.Tutorial) error
}

// Tutorials upserts the embedded catalogue through s.
func Tutorials(ctx context.Context, s Seeder) error {
	catalog, err := Catalog()
	if err != nil {
		return err
	}
	return s.Seed(ctx, catalog)
}
