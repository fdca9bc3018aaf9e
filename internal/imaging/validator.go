// Package imaging validates candidate uploads before anything is stored.
// Validation has four layers, checked in order: file extension, declared
// MIME type, decodability, minimum dimensions. Each layer fails with a
// descriptive error wrapping common.ErrValidation.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/muralvote/muralvote/internal/common"
)

// Dimensions is the pixel size of a validated image.
type Dimensions struct {
	Width  int
	Height int
}

// Validator checks an upload and reports its dimensions.
type Validator interface {
	Validate(data []byte, filename, mimetype string) (Dimensions, error)
}

// DecodeValidator implements Validator with the standard image decoders.
// Only the image header is decoded; pixel data is never loaded.
type DecodeValidator struct {
	AllowedExtensions []string
	AllowedMimetypes  []string
	MinWidth          int
	MinHeight         int
}

func (v *DecodeValidator) Validate(data []byte, filename, mimetype string) (Dimensions, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !contains(v.AllowedExtensions, ext) {
		return Dimensions{}, fmt.Errorf("%w: the submitted candidate has the file extension %q which is not an allowed format", common.ErrValidation, ext)
	}

	if !contains(v.AllowedMimetypes, strings.ToLower(mimetype)) {
		return Dimensions{}, fmt.Errorf("%w: the submitted candidate has the MIME type %q which is not an allowed MIME type", common.ErrValidation, mimetype)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Dimensions{}, fmt.Errorf("%w: the submitted candidate could not be opened as an image", common.ErrValidation)
	}

	if cfg.Width < v.MinWidth {
		return Dimensions{}, fmt.Errorf("%w: the submitted candidate has a width of %d pixels which is lower than the minimum %d pixels required", common.ErrValidation, cfg.Width, v.MinWidth)
	}
	if cfg.Height < v.MinHeight {
		return Dimensions{}, fmt.Errorf("%w: the submitted candidate has a height of %d pixels which is lower than the minimum %d pixels required", common.ErrValidation, cfg.Height, v.MinHeight)
	}

	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
