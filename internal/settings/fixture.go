package settings

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/youthcamp/portal/internal/models"
)

// FixtureFetcher serves settings from a local YAML file instead of the remote
// API. Used for development and offline demos; the file is re-read on every
// load so a refresh picks up edits.
type FixtureFetcher struct {
	Path string
}

// WebsiteSettings implements Fetcher.
func (f FixtureFetcher) WebsiteSettings(ctx context.Context) (*models.Settings, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings fixture: %w", err)
	}

	var settings models.Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings fixture: %w", err)
	}
	return &settings, nil
}
