// Package colors assigns display colors to category names.
//
// A category gets a color the first time it is seen and keeps it forever:
// the assignment is a deterministic hash of the name, cached under the
// lower-cased name, and the user can replace any entry with a custom color.
package colors

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
)

// CachedColor is one entry of the persistent category color cache.
type CachedColor struct {
	Color  string `json:"color"`
	Custom bool   `json:"custom"`
}

// Cache maps lower-cased category names to their assigned color. Entries
// are never evicted.
type Cache map[string]CachedColor

// Hue sub-ranges keep income and expense charts visually distinguishable:
// revenue categories land in greens/cyans, expenses in reds/yellows.
const (
	revenueMinHue = 100
	revenueMaxHue = 180
	expenseMinHue = 0
	expenseMaxHue = 60
)

// hashName computes the 32-bit signed polynomial rolling hash (base 31)
// of the category name. It walks UTF-16 code units, not runes, so names
// outside the basic multilingual plane hash over their surrogate pairs;
// int32 arithmetic wraps, which is exactly the overflow behavior the
// cached colors were originally derived with.
func hashName(name string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(name)) {
		h = int32(u) + (h<<5 - h)
	}
	return h
}

// ColorFor returns the display color for a category, assigning and caching
// one on first sight.
//
// The cache key ignores the revenue flag on purpose: once a category is
// cached, the stored color wins even if its classification later changes.
func ColorFor(category string, isRevenue bool, cache Cache) string {
	key := strings.ToLower(category)
	if entry, ok := cache[key]; ok {
		return entry.Color
	}

	h := int64(hashName(category))
	if h < 0 {
		h = -h
	}
	normalized := float64(h) / math.MaxInt32

	minHue, maxHue := expenseMinHue, expenseMaxHue
	if isRevenue {
		minHue, maxHue = revenueMinHue, revenueMaxHue
	}
	hue := (int(normalized*float64(maxHue-minHue)) + minHue) % 360

	color := fmt.Sprintf("hsl(%d, 70%%, 50%%)", hue)
	cache[key] = CachedColor{Color: color, Custom: false}
	return color
}

// SetCustom stores a user-picked hex color for a category, converted to the
// HSL form the rest of the system renders with.
func SetCustom(category, hexColor string, cache Cache) {
	cache[strings.ToLower(category)] = CachedColor{Color: HexToHSL(hexColor), Custom: true}
}

var hslNumbers = regexp.MustCompile(`\d+`)

// HSLToHex converts an "hsl(h, s%, l%)" string to "#rrggbb". Malformed
// input yields black, matching the picker's forgiving behavior.
func HSLToHex(hsl string) string {
	parts := hslNumbers.FindAllString(hsl, -1)
	if len(parts) < 3 {
		return "#000000"
	}
	h, _ := strconv.Atoi(parts[0])
	s, _ := strconv.Atoi(parts[1])
	l, _ := strconv.Atoi(parts[2])

	r, g, b := hslToRGB(float64(h), float64(s), float64(l))
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// HexToHSL converts "#rrggbb" or "#rgb" shorthand to an "hsl(h, s%, l%)"
// string. The round trip through HSLToHex is perceptually stable but not
// guaranteed bit-exact for arbitrary inputs.
func HexToHSL(hex string) string {
	var r, g, b int64
	switch len(hex) {
	case 4:
		r, _ = strconv.ParseInt(string(hex[1])+string(hex[1]), 16, 32)
		g, _ = strconv.ParseInt(string(hex[2])+string(hex[2]), 16, 32)
		b, _ = strconv.ParseInt(string(hex[3])+string(hex[3]), 16, 32)
	case 7:
		r, _ = strconv.ParseInt(hex[1:3], 16, 32)
		g, _ = strconv.ParseInt(hex[3:5], 16, 32)
		b, _ = strconv.ParseInt(hex[5:7], 16, 32)
	}
	h, s, l := rgbToHSL(int(r), int(g), int(b))
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", h, s, l)
}

// hslToRGB maps hue [0,360), saturation and lightness [0,100] to 8-bit
// RGB components. Component-wise conversion, no gamma correction.
func hslToRGB(h, s, l float64) (int, int, int) {
	s /= 100
	l /= 100
	f := func(n float64) float64 {
		k := math.Mod(n+h/30, 12)
		a := s * math.Min(l, 1-l)
		return l - a*math.Max(-1, math.Min(math.Min(k-3, 9-k), 1))
	}
	return int(math.Round(255 * f(0))), int(math.Round(255 * f(8))), int(math.Round(255 * f(4)))
}

func rgbToHSL(ri, gi, bi int) (int, int, int) {
	r := float64(ri) / 255
	g := float64(gi) / 255
	b := float64(bi) / 255
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l := (max + min) / 2

	var h, s float64
	if max != min {
		d := max - min
		if l > 0.5 {
			s = d / (2 - max - min)
		} else {
			s = d / (max + min)
		}
		switch max {
		case r:
			h = (g - b) / d
			if g < b {
				h += 6
			}
		case g:
			h = (b-r)/d + 2
		case b:
			h = (r-g)/d + 4
		}
		h /= 6
	}
	return int(math.Round(h * 360)), int(math.Round(s * 100)), int(math.Round(l * 100))
}
