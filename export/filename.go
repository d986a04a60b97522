package export

import "time"

const (
	filenamePrefix = "cube-model-"
	dateLayout     = "2006-01-02"
)

// SuggestedFilename names an STL download after the UTC calendar date.
func SuggestedFilename(t time.Time) string {
	return filenamePrefix + t.UTC().Format(dateLayout) + ".stl"
}

// SuggestedGLBFilename is SuggestedFilename for the glTF preview.
func SuggestedGLBFilename(t time.Time) string {
	return filenamePrefix + t.UTC().Format(dateLayout) + ".glb"
}
