package repository

import (
	"bytes"
	"fmt"
	"image"

	"github.com/bep/imagemeta"
	"github.com/corona10/goimagehash"

	"github.com/anime-shed/folkart-inspector/pkg/models"
)

// metadataFormats maps decoder names to the container formats imagemeta
// can read. Formats missing here carry no metadata we look at.
var metadataFormats = map[string]imagemeta.ImageFormat{
	"jpeg": imagemeta.JPEG,
	"png":  imagemeta.PNG,
	"tiff": imagemeta.TIFF,
	"webp": imagemeta.WebP,
}

var provenanceTags = map[imagemeta.Source]map[string]bool{
	imagemeta.EXIF: {
		"Artist":           true,
		"Copyright":        true,
		"ImageDescription": true,
		"Software":         true,
	},
	imagemeta.IPTC: {
		"By-line":          true,
		"CopyrightNotice":  true,
		"Caption-Abstract": true,
	},
	imagemeta.XMP: {
		"Creator":     true,
		"Rights":      true,
		"Description": true,
		"CreatorTool": true,
	},
}

// perceptualHash returns the 64-bit difference hash as 16 hex digits, or an
// empty string when hashing fails.
func perceptualHash(img image.Image) string {
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", hash.GetHash())
}

// readEmbeddedMetadata fills the descriptive provenance fields from EXIF,
// IPTC and XMP. Unreadable metadata is ignored. The first non-empty value
// found for a field wins.
func readEmbeddedMetadata(data []byte, format string, p *models.Provenance) {
	imageFormat, ok := metadataFormats[format]
	if !ok || len(data) == 0 {
		return
	}
	defer func() { _ = recover() }()

	_ = imagemeta.Decode(imagemeta.Options{
		R:           bytes.NewReader(data),
		ImageFormat: imageFormat,
		Sources:     imagemeta.EXIF | imagemeta.IPTC | imagemeta.XMP,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			if tags, ok := provenanceTags[ti.Source]; ok {
				return tags[ti.Tag]
			}
			return false
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			value := tagValueString(ti.Value)
			if value == "" {
				return nil
			}
			switch ti.Tag {
			case "Artist", "By-line", "Creator":
				setIfEmpty(&p.Artist, value)
			case "Copyright", "CopyrightNotice", "Rights":
				setIfEmpty(&p.Copyright, value)
			case "ImageDescription", "Caption-Abstract", "Description":
				setIfEmpty(&p.Description, value)
			case "Software", "CreatorTool":
				setIfEmpty(&p.Software, value)
			}
			return nil
		},
	})
}

func setIfEmpty(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// tagValueString extracts a string from a tag value. XMP values may be
// lists.
func tagValueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
	}
	return ""
}
