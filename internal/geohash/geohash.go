// Package geohash implements the fixed-width geohash byte string used as
// the key type throughout the geo index: lexicographic ordering on the
// encoded string corresponds to ascending geohash, and a byte-string prefix
// relation corresponds to geographic containment of the longer (finer) cell
// by the shorter one.
//
// This is standard-library only: none of the example repos in the
// retrieval pack vendor a geohash implementation, so there is nothing in
// the corpus to ground a third-party choice on. The encoding itself is
// small enough (interleave-bits-then-base32) that reimplementing it here
// is simpler and more auditable than adding an unfamiliar dependency for a
// single leaf algorithm.
package geohash

import "strings"

const base32Alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// Hash is a geohash encoded as its canonical base32 string. String
// comparison (`<`, `==`) on Hash values is the GeoHash total order the
// geo index's sorted arrays rely on.
type Hash string

// Encode computes the geohash of (lat, lon) at the given character
// precision (1-12 is the conventional range). The geo index stores hashes
// in fixed payloadoptions.MaxGeohashPrecisionLimit-byte slots; bytes beyond
// that width are not kept.
func Encode(lat, lon float64, precision int) Hash {
	latRange := [2]float64{-90, 90}
	lonRange := [2]float64{-180, 180}

	var sb strings.Builder
	bit, ch, evenBit := 0, 0, true

	for sb.Len() < precision {
		if evenBit {
			mid := (lonRange[0] + lonRange[1]) / 2
			if lon >= mid {
				ch |= 1 << uint(4-bit)
				lonRange[0] = mid
			} else {
				lonRange[1] = mid
			}
		} else {
			mid := (latRange[0] + latRange[1]) / 2
			if lat >= mid {
				ch |= 1 << uint(4-bit)
				latRange[0] = mid
			} else {
				latRange[1] = mid
			}
		}
		evenBit = !evenBit

		if bit < 4 {
			bit++
		} else {
			sb.WriteByte(base32Alphabet[ch])
			bit, ch = 0, 0
		}
	}

	return Hash(sb.String())
}

// HasPrefix reports whether h is contained within (equal to or a
// refinement of) the geographic cell named by prefix.
func HasPrefix(h Hash, prefix Hash) bool {
	return strings.HasPrefix(string(h), string(prefix))
}

// Less reports whether a sorts strictly before b in geohash order.
func Less(a, b Hash) bool {
	return a < b
}

// Truncate returns h restricted to precision characters, or h unchanged if
// it is already that short or shorter.
func Truncate(h Hash, precision int) Hash {
	if precision >= len(h) {
		return h
	}
	return h[:precision]
}
