package extractor

import "strings"

const (
	// ImageMarker is the token that flags an embedded image or diagram.
	ImageMarker = "[IMAGE]"

	// ImageAnnotation is appended on its own line when ImageMarker occurs.
	ImageAnnotation = "[Image Detected: Diagram/Flowchart detected in the document.]"
)

// AnnotateImages appends ImageAnnotation when text contains ImageMarker in
// any letter case. This is a placeholder for real image analysis.
func AnnotateImages(text string) string {
	if !strings.Contains(strings.ToUpper(text), ImageMarker) {
		return text
	}
	return text + "\n" + ImageAnnotation
}
