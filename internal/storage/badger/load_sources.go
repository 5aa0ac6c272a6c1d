package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rentradar/internal/common"
	"github.com/ternarybob/rentradar/internal/interfaces"
	"github.com/ternarybob/rentradar/internal/models"
	"gopkg.in/yaml.v3"
)

// sourceSeed is the on-disk shape of one trackable unit in a seed file.
type sourceSeed struct {
	PropertyID string `toml:"property_id" yaml:"property_id"`
	UnitID     string `toml:"unit_id" yaml:"unit_id"`
	Site       string `toml:"site" yaml:"site"`
	URL        string `toml:"url" yaml:"url"`
}

type sourceSeedFile struct {
	Sources []sourceSeed `toml:"sources" yaml:"sources"`
}

// LoadSourcesFromDir loads listing source seed files (*.toml, *.yaml, *.yml)
// from a directory. New units are created; existing listings keep their
// rolling stats and only refresh site/URL.
func LoadSourcesFromDir(ctx context.Context, listings interfaces.ListingStorage, dir string, logger arbor.ILogger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("dir", dir).Msg("Sources directory does not exist, skipping seed load")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read sources directory %s: %w", dir, err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".toml" && ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn().Err(err).Str("file", path).Msg("Failed to read source seed file")
			continue
		}

		var seedFile sourceSeedFile
		if ext == ".toml" {
			err = toml.Unmarshal(data, &seedFile)
		} else {
			err = yaml.Unmarshal(data, &seedFile)
		}
		if err != nil {
			logger.Warn().Err(err).Str("file", path).Msg("Failed to parse source seed file")
			continue
		}

		for _, seed := range seedFile.Sources {
			if seed.PropertyID == "" || seed.UnitID == "" || seed.URL == "" {
				logger.Warn().Str("file", path).Msg("Skipping incomplete source seed")
				continue
			}

			id := common.ListingID(seed.PropertyID, seed.UnitID)
			existing, err := listings.GetListing(ctx, id)
			if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
				return loaded, err
			}

			if existing != nil {
				if existing.URL != seed.URL || existing.Site != seed.Site {
					existing.URL = seed.URL
					existing.Site = seed.Site
					if err := listings.SaveListing(ctx, existing); err != nil {
						return loaded, err
					}
				}
				continue
			}

			now := time.Now().UTC()
			listing := &models.ListingSource{
				ID:         id,
				PropertyID: seed.PropertyID,
				UnitID:     seed.UnitID,
				Site:       seed.Site,
				URL:        seed.URL,
				Status:     models.ListingStatusActive,
				CreatedAt:  now,
			}
			if err := listings.SaveListing(ctx, listing); err != nil {
				return loaded, err
			}
			loaded++
		}
	}

	if loaded > 0 {
		logger.Info().Int("count", loaded).Str("dir", dir).Msg("Listing sources loaded from seed files")
	}
	return loaded, nil
}
