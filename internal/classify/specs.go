package classify

import "fmt"

// Specs is the output of the technical specification stage.
type Specs struct {
	AspectRatio     string
	FileSize        string
	ColorSpace      string
	BitDepth        int
	CompressionType string
}

// DescribeSpecs reports dimensions and size. The colour space, bit depth and
// compression fields are fixed regardless of the source format.
func DescribeSpecs(width, height int, byteSize int64) Specs {
	return Specs{
		AspectRatio:     fmt.Sprintf("%d:%d", width, height),
		FileSize:        fmt.Sprintf("%.1f MB", float64(byteSize)/bytesPerMB),
		ColorSpace:      "RGB",
		BitDepth:        24,
		CompressionType: "JPEG",
	}
}

func (s Specs) Fields() []Field {
	return []Field{
		{"aspectRatio", s.AspectRatio},
		{"fileSize", s.FileSize},
		{"colorSpace", s.ColorSpace},
		{"bitDepth", s.BitDepth},
		{"compressionType", s.CompressionType},
	}
}
