package model

// DefaultColumnColor is the color token given to new columns.
const DefaultColumnColor = "white"

// ColumnColors is the palette of color tokens a column can take, in cycling order.
var ColumnColors = []string{
	"white",
	"red",
	"orange",
	"yellow",
	"green",
	"blue",
	"purple",
}

// NextColor returns the palette entry after color, wrapping around. Unknown tokens
// map to the first palette entry.
func NextColor(color string) string {
	for i, c := range ColumnColors {
		if c == color {
			return ColumnColors[(i+1)%len(ColumnColors)]
		}
	}
	return ColumnColors[0]
}
