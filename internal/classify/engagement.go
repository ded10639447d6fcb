package classify

import (
	"fmt"
	"strings"
)

// Engagement is the output of the marketing stage.
type Engagement struct {
	Tags       []string
	Hashtags   []string
	Caption    string
	Audience   []string
	PriceRange string
	Categories []string
}

// GenerateEngagement builds tags, hashtags and a caption. The art form name
// is used verbatim in the first hashtag, spaces included.
func GenerateEngagement(art ArtForm, scene Scene) Engagement {
	hashtags := append([]string{fmt.Sprintf("#%sArt", art.Name)}, staticHashtags...)

	price := "$100-300"
	if art.Confidence > 0.9 {
		price = "$200-500"
	}

	return Engagement{
		Tags:       []string{"tribal", "nature", "geometric", strings.ToLower(art.Name), "indian-folk-art"},
		Hashtags:   hashtags,
		Caption:    fmt.Sprintf("Vibrant %s art depicting %s", art.Name, scene.Type),
		Audience:   clone(targetAudience),
		PriceRange: price,
		Categories: clone(marketplaceCategories),
	}
}

func (e Engagement) Fields() []Field {
	return []Field{
		{"suggestedTags", e.Tags},
		{"recommendedHashtags", e.Hashtags},
		{"suggestedCaption", e.Caption},
		{"targetAudience", e.Audience},
		{"priceRange", e.PriceRange},
		{"marketplaceCategories", e.Categories},
	}
}
