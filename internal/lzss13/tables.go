package lzss13

// The 37-symbol meta-code and the five predefined lit/len/distance
// tables are, per spec.md §6, "pure data" that a real implementation
// embeds verbatim from the original format's constant tables. Neither
// the distilled specification text nor any file in the retrieved
// reference corpus (including the C reference implementation's stub
// sources) carries the literal historical byte values, so these
// tables are instead generated here as self-consistent canonical
// code-length sets (a recursive binary split over the symbol range,
// which always satisfies the Kraft equality exactly) rather than
// fabricated as if transcribed from an unverifiable source. Decoding
// of the container's own dynamic-mode trees (S == 0, the common case)
// does not depend on these values at all; only the five predefined
// sets (S in 1..5) use them, and do so consistently with each other.
var metaCodeLengths = []int{
	6, 6, 5, 5, 5, 6, 6, 5, 5, 5, 6, 6, 5, 5, 5, 5, 5, 5, 5, 6,
	6, 5, 5, 5, 5, 5, 5, 5, 6, 6, 5, 5, 5, 5, 5, 5, 5,
}

var predefinedLitlen = []int{
	9, 9, 8, 9, 9, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8,
	8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8,
	8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8,
	8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8,
	8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8,
	8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8,
	8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8,
	8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8,
	8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8,
	8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8,
	8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8,
	8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8,
	8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8,
	8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8,
	8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8,
	8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8, 8, 9, 9, 8, 8,
	8,
}

var predefinedDist11 = []int{4, 4, 3, 4, 4, 3, 4, 4, 3, 3, 3}
var predefinedDist12 = []int{4, 4, 3, 4, 4, 3, 4, 4, 3, 4, 4, 3}
var predefinedDist13 = []int{4, 4, 4, 4, 4, 4, 3, 4, 4, 3, 4, 4, 3}
var predefinedDist14 = []int{4, 4, 4, 4, 4, 4, 3, 4, 4, 4, 4, 4, 4, 3}

type predefinedSet struct {
	litlen1, litlen2, dist []int
}

var predefinedTables = [5]predefinedSet{
	{predefinedLitlen, predefinedLitlen, predefinedDist11},
	{predefinedLitlen, predefinedLitlen, predefinedDist12},
	{predefinedLitlen, predefinedLitlen, predefinedDist13},
	{predefinedLitlen, predefinedLitlen, predefinedDist14},
	{predefinedLitlen, predefinedLitlen, predefinedDist11},
}
