package colors

import (
	"strconv"
	"strings"
	"testing"
)

func hueOf(t *testing.T, color string) int {
	t.Helper()
	parts := hslNumbers.FindAllString(color, -1)
	if len(parts) < 3 {
		t.Fatalf("not an hsl color: %q", color)
	}
	h, _ := strconv.Atoi(parts[0])
	return h
}

func TestColorForIsDeterministic(t *testing.T) {
	a := ColorFor("moradia", false, Cache{})
	b := ColorFor("moradia", false, Cache{})
	if a != b {
		t.Fatalf("same name, different colors: %q vs %q", a, b)
	}
}

func TestColorForHueRanges(t *testing.T) {
	names := []string{"moradia", "contas", "saúde", "transporte", "alimentação", "lazer", "salário"}
	for _, name := range names {
		h := hueOf(t, ColorFor(name, false, Cache{}))
		if h < expenseMinHue || h >= expenseMaxHue {
			t.Fatalf("expense hue for %q = %d, want [%d,%d)", name, h, expenseMinHue, expenseMaxHue)
		}
		h = hueOf(t, ColorFor(name, true, Cache{}))
		if h < revenueMinHue || h >= revenueMaxHue {
			t.Fatalf("revenue hue for %q = %d, want [%d,%d)", name, h, revenueMinHue, revenueMaxHue)
		}
	}
}

func TestColorForCacheWinsOverFlag(t *testing.T) {
	cache := Cache{}
	first := ColorFor("contas", false, cache)
	// Same category asked for as revenue: the cached color still wins.
	if got := ColorFor("contas", true, cache); got != first {
		t.Fatalf("flag changed a cached color: %q vs %q", got, first)
	}
}

func TestColorForCaseInsensitiveKey(t *testing.T) {
	cache := Cache{}
	first := ColorFor("Moradia", false, cache)
	if got := ColorFor("moradia", false, cache); got != first {
		t.Fatalf("case-variant lookup missed the cache: %q vs %q", got, first)
	}
	if _, ok := cache["moradia"]; !ok {
		t.Fatal("cache key not lower-cased")
	}
	if len(cache) != 1 {
		t.Fatalf("cache has %d entries", len(cache))
	}
}

func TestHashNameWraps(t *testing.T) {
	// A long name overflows int32; the wraparound must stay stable.
	long := strings.Repeat("categoria-muito-longa-", 10)
	if hashName(long) != hashName(long) {
		t.Fatal("hash not deterministic")
	}
	if hashName("a") != 'a' {
		t.Fatalf("hash of single rune = %d", hashName("a"))
	}
	if hashName("ab") != int32('a')*31+int32('b') {
		t.Fatalf("hash base = %d", hashName("ab"))
	}
}

func TestHashNameHashesSurrogatePairs(t *testing.T) {
	// U+1F4B0 sits outside the basic multilingual plane and encodes as
	// the surrogate pair D83D DCB0; both units feed the hash, so the
	// result differs from hashing the code point directly.
	want := int32(0xD83D)*31 + int32(0xDCB0)
	if got := hashName("\U0001F4B0"); got != want {
		t.Fatalf("hash = %d, want %d", got, want)
	}
}

func TestSetCustom(t *testing.T) {
	cache := Cache{}
	ColorFor("Lazer", false, cache)
	SetCustom("Lazer", "#d92626", cache)

	entry, ok := cache["lazer"]
	if !ok {
		t.Fatal("custom entry missing")
	}
	if !entry.Custom {
		t.Fatal("entry not flagged custom")
	}
	if entry.Color != "hsl(0, 70%, 50%)" {
		t.Fatalf("converted color = %q", entry.Color)
	}
	// Custom entries are what ColorFor keeps returning.
	if got := ColorFor("lazer", false, cache); got != entry.Color {
		t.Fatalf("ColorFor returned %q after override", got)
	}
}

func TestHSLToHex(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"hsl(0, 70%, 50%)", "#d92626"},
		{"hsl(120, 70%, 50%)", "#26d926"},
		{"hsl(240, 70%, 50%)", "#2626d9"},
		{"hsl(0, 0%, 100%)", "#ffffff"},
		{"hsl(0, 0%, 0%)", "#000000"},
		{"not a color", "#000000"},
	}
	for _, tc := range cases {
		if got := HSLToHex(tc.in); got != tc.want {
			t.Fatalf("HSLToHex(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHexToHSL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"#d92626", "hsl(0, 70%, 50%)"},
		{"#26d926", "hsl(120, 70%, 50%)"},
		{"#2626d9", "hsl(240, 70%, 50%)"},
		{"#fff", "hsl(0, 0%, 100%)"},
		{"#000", "hsl(0, 0%, 0%)"},
	}
	for _, tc := range cases {
		if got := HexToHSL(tc.in); got != tc.want {
			t.Fatalf("HexToHSL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHexHSLRoundTrip(t *testing.T) {
	for _, hex := range []string{"#d92626", "#26d926", "#2626d9", "#808080"} {
		if got := HSLToHex(HexToHSL(hex)); got != hex {
			t.Fatalf("round trip %q -> %q", hex, got)
		}
	}
}
