package handlers

import (
	"math"
	"strconv"
	"strings"
)

// validProductInput reports whether a candidate payload is well formed: name
// and image non-blank after trimming, price a finite number >= 0. Create and
// update apply the same check.
func validProductInput(name string, price float64, image string) bool {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(image) == "" {
		return false
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return false
	}
	return true
}

// parseID accepts only exact integers; "1.5" and "abc" are both rejected.
func parseID(raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}
