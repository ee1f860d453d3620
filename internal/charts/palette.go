// Package charts renders the study's summary and per-trial figures, as
// browser-ready ECharts HTML and as PNG files for report artifacts.
package charts

// Fixed sound-pair colors so a pair keeps its color across sessions even
// when the set of pairs in use varies.
var soundPairColors = map[string]string{
	"3.0, 3.0":   "#87CEEB", // skyblue
	"12.0, 12.0": "#4682B4", // steelblue
	"3.0, 12.0":  "#D8BFD8", // thistle
	"12.0, 3.0":  "#BA55D3", // mediumorchid
}

// Series colors shared by the HTML and PNG renderers.
const (
	colorHits      = "#2E8B57" // seagreen
	colorViolation = "#FF4500" // orangered
	colorMass      = "#000000"
	colorSideBias  = "#20B2AA" // lightseagreen
	colorPub       = "#0000FF"
	colorRig       = "#00FFFF" // cyan
	colorTarget    = "#303030"
	colorUnknown   = "#9E9E9E"
)

// PairColor returns the fixed color for a sound pair, gray for pairs
// outside the known set.
func PairColor(pair string) string {
	if c, ok := soundPairColors[pair]; ok {
		return c
	}
	return colorUnknown
}
