package report

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCaser converts machine-readable identifiers to display labels.
// cases.Title allocates a new caser per call, so we share one instance.
var titleCaser = cases.Title(language.English)

// transformLabel converts a transform identifier such as "external_links"
// into a display label such as "External Links".
func transformLabel(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

// transformLabels converts a list of transform identifiers to display labels.
func transformLabels(names []string) []string {
	labels := make([]string, len(names))
	for i, name := range names {
		labels[i] = transformLabel(name)
	}
	return labels
}
