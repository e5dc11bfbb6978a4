// Package analysis joins sonority indices with climate summaries, groups
// them by area or family and normalises them with power transforms.
package analysis

// Macroareas in plotting order.
const (
	Pacific      = "Pacific"
	SouthAmerica = "SouthAmerica"
	NorthAmerica = "NorthAmerica"
	Africa       = "Africa"
	Eurasia      = "Eurasia"
	Australia    = "Australia"
)

// MacroareaOrder lists every macroarea once.
var MacroareaOrder = []string{Pacific, SouthAmerica, NorthAmerica, Africa, Eurasia, Australia}

// Macroarea classifies a coordinate by a fixed set of longitude bands and
// dividing lines.
func Macroarea(lon, lat float64) string {
	x, y := lon, lat
	// below reports whether (x, y) lies on or below the line through
	// (x1, y1) and (x2, y2).
	below := func(x1, y1, x2, y2 float64) bool {
		return (x2-x1)*(y-y1) <= (y2-y1)*(x-x1)
	}

	if x <= -168 ||
		x <= -98 && below(-168, 40, -98, 5) ||
		x <= -98 && y <= 5 {
		return Pacific
	}
	if x <= -28 && below(-94, 86, -28, 46) ||
		x <= -28 && y <= 46 {
		if y <= 5 ||
			-80 < x && x <= -66 && y <= 13 ||
			-66 < x && y <= 11 {
			return SouthAmerica
		}
		return NorthAmerica
	}
	if x <= 62 {
		if x <= -3 && y <= 36 ||
			-3 < x && x <= 3 && below(-3, 36, 3, 38) ||
			3 < x && x <= 11 && y <= 38 ||
			11 < x && x <= 13 && below(11, 38, 13, 34) ||
			13 < x && x <= 30 && y <= 34 ||
			30 < x && x <= 44 && below(30, 34, 44, 11) ||
			44 < x && below(44, 11, 62, 17) {
			return Africa
		}
		return Eurasia
	}
	if x <= 127 && y <= -13 ||
		127 < x && x <= 145 && y <= -10 ||
		145 < x && x <= 162 && below(145, -10, 162, -30) {
		return Australia
	}
	if x <= 97 && below(62, 0, 97, 6) ||
		97 < x && x <= 104 && below(97, 6, 104, 0) ||
		104 < x && x <= 120 && below(104, 0, 120, 22) ||
		120 < x && x <= 123 && y <= 26 ||
		123 < x && y <= 22 {
		return Pacific
	}
	return Eurasia
}
