package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/phambaophuc/image-thumbnails/internal/services/processor"
	"gopkg.in/yaml.v3"
)

// ThumbnailSet is the list of thumbnails generated for every upload, plus an
// optional output format that overrides the uploaded file's extension.
type ThumbnailSet struct {
	Format string
	Specs  []processor.ThumbnailSpec
}

// Find returns the spec with the given name, falling back to a geometry
// match for "WxH" lookups.
func (s *ThumbnailSet) Find(name string) (processor.ThumbnailSpec, bool) {
	for _, spec := range s.Specs {
		if spec.Name == name {
			return spec, true
		}
	}
	if g, err := processor.ParseGeometry(name); err == nil {
		for _, spec := range s.Specs {
			if spec.Geometry == g {
				return spec, true
			}
		}
	}
	return processor.ThumbnailSpec{}, false
}

type thumbnailFile struct {
	Format     string                `yaml:"format"`
	Thumbnails []thumbnailDefinition `yaml:"thumbnails"`
}

type thumbnailDefinition struct {
	Name       string    `yaml:"name"`
	Size       string    `yaml:"size"`
	Crop       cropValue `yaml:"crop"`
	Upscale    *bool     `yaml:"upscale"`
	Format     string    `yaml:"format"`
	Quality    int       `yaml:"quality"`
	Colorspace string    `yaml:"colorspace"`
}

// cropValue accepts both `crop: true` and `crop: "50% 0%"`.
type cropValue string

func (c *cropValue) UnmarshalYAML(node *yaml.Node) error {
	var b bool
	if err := node.Decode(&b); err == nil {
		if b {
			*c = "center"
		} else {
			*c = ""
		}
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("crop must be a boolean or a string: %w", err)
	}
	*c = cropValue(s)
	return nil
}

const defaultThumbnails = `
thumbnails:
  - name: thumb
    size: 125x125
    crop: center
    upscale: false
  - name: small
    size: 300x200
    upscale: false
  - name: medium
    size: 640x480
    upscale: false
    quality: 90
`

// LoadThumbnailSet reads thumbnail definitions from path, or the built-in
// set when path is empty.
func LoadThumbnailSet(path string) (*ThumbnailSet, error) {
	data := []byte(defaultThumbnails)
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to read thumbnail config: %w", err)
		}
	}
	return ParseThumbnailSet(data)
}

// ParseThumbnailSet parses and validates a YAML thumbnail definition file.
// Every thumbnail must state upscale explicitly.
func ParseThumbnailSet(data []byte) (*ThumbnailSet, error) {
	var file thumbnailFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse thumbnail config: %w", err)
	}
	if len(file.Thumbnails) == 0 {
		return nil, errors.New("thumbnail config defines no thumbnails")
	}
	if file.Format != "" {
		if _, err := processor.ParseFormat(file.Format); err != nil {
			return nil, err
		}
	}

	set := &ThumbnailSet{Format: file.Format}
	seen := make(map[string]bool)
	for i, def := range file.Thumbnails {
		spec, err := def.toSpec()
		if err != nil {
			return nil, fmt.Errorf("thumbnail %d (%s): %w", i, def.Name, err)
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("duplicate thumbnail name %q", spec.Name)
		}
		seen[spec.Name] = true
		set.Specs = append(set.Specs, spec)
	}
	return set, nil
}

func (d thumbnailDefinition) toSpec() (processor.ThumbnailSpec, error) {
	geometry, err := processor.ParseGeometry(d.Size)
	if err != nil {
		return processor.ThumbnailSpec{}, err
	}
	if d.Upscale == nil {
		return processor.ThumbnailSpec{}, errors.New("upscale must be set explicitly")
	}
	crop, err := processor.ParseCropSpec(string(d.Crop))
	if err != nil {
		return processor.ThumbnailSpec{}, err
	}
	colorspace, err := processor.ParseColorspace(d.Colorspace)
	if err != nil {
		return processor.ThumbnailSpec{}, err
	}

	name := d.Name
	if name == "" {
		name = geometry.String()
	}

	spec := processor.ThumbnailSpec{
		Name:       name,
		Geometry:   geometry,
		Crop:       crop,
		Upscale:    *d.Upscale,
		Format:     d.Format,
		Quality:    d.Quality,
		Colorspace: colorspace,
	}
	if spec.Quality == 0 {
		spec.Quality = processor.DefaultQuality
	}
	return spec, spec.Validate()
}
