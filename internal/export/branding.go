package export

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
)

const (
	logoMaxWidth  = 360
	logoMaxHeight = 120
)

// Branding is the letterhead printed on PDF and spreadsheet exports.
type Branding struct {
	Title        string
	Organization string
	Watermark    string
	// Logo is a PNG encoded image, empty when no logo is configured.
	Logo []byte
}

// BrandingSettings are the configured branding values.
type BrandingSettings struct {
	Title        string
	Organization string
	Watermark    string
	LogoPath     string
}

// BrandingStore holds the current branding. It is swapped whole on reload.
type BrandingStore struct {
	mu       sync.RWMutex
	branding Branding
	logger   zerolog.Logger
}

// NewBrandingStore loads the initial branding.
func NewBrandingStore(settings BrandingSettings, logger zerolog.Logger) (*BrandingStore, error) {
	store := &BrandingStore{logger: logger}
	if err := store.Update(settings); err != nil {
		return nil, err
	}
	return store, nil
}

// Current returns the branding in effect.
func (s *BrandingStore) Current() Branding {
	if s == nil {
		return Branding{Title: "AquaSmart"}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.branding
}

// Update replaces the branding. The previous branding stays in effect when
// the logo cannot be loaded.
func (s *BrandingStore) Update(settings BrandingSettings) error {
	next := Branding{
		Title:        strings.TrimSpace(settings.Title),
		Organization: strings.TrimSpace(settings.Organization),
		Watermark:    strings.TrimSpace(settings.Watermark),
	}
	if next.Title == "" {
		next.Title = "AquaSmart"
	}
	if path := strings.TrimSpace(settings.LogoPath); path != "" {
		logo, err := LoadLogo(path)
		if err != nil {
			return err
		}
		next.Logo = logo
	}

	s.mu.Lock()
	s.branding = next
	s.mu.Unlock()
	s.logger.Info().
		Str("title", next.Title).
		Bool("logo", len(next.Logo) > 0).
		Msg("export branding loaded")
	return nil
}

// LoadLogo decodes an image file and fits it into the letterhead box.
func LoadLogo(path string) ([]byte, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open logo: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > logoMaxWidth || bounds.Dy() > logoMaxHeight {
		img = imaging.Fit(img, logoMaxWidth, logoMaxHeight, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode logo: %w", err)
	}
	return buf.Bytes(), nil
}
