package analyzer

// FeatureBundle holds the measurements extracted from one asset. It is
// produced once per analysis and treated as read-only afterwards.
type FeatureBundle struct {
	// EdgeDensity is the fraction of pixels marked by Canny(50, 150).
	EdgeDensity float64 `json:"edgeDensity"`

	// Means of the 8-bit HSV saturation and value channels.
	MeanSaturation float64 `json:"meanSaturation"`
	MeanValue      float64 `json:"meanValue"`

	// Mean luminance of the left and right halves of the image.
	LeftLuminance  float64 `json:"leftLuminance"`
	RightLuminance float64 `json:"rightLuminance"`

	HasCircularPrimitive      bool `json:"hasCircularPrimitive"`
	HasLinearPrimitiveCluster bool `json:"hasLinearPrimitiveCluster"`

	// DominantColors are the k-means centroids as lowercase #rrggbb.
	DominantColors []string `json:"dominantColors"`
}
