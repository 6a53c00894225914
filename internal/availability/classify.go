package availability

import (
	"regexp"

	"camops/internal"
)

// Classifier sorts a free-text notes field into ownership groups. The percent
// check runs first and wins outright; rows matching neither rule stay
// unclassified and are dropped by the matcher.
type Classifier struct {
	// Keslow ownership: a barcode/serial token carrying an NBCA marker,
	// e.g. "BC# 9042510 S/N 62023 (NBCA)" or "(NBCA**)".
	KeslowPattern *regexp.Regexp
	// Barcode and serial extraction, shared by all groups.
	BarcodeSerialPattern *regexp.Regexp
}

func NewClassifier() *Classifier {
	return &Classifier{
		KeslowPattern:        regexp.MustCompile(`(?i)BC#\s*\S+\s+S/N\s*\d+.*\(NBCA\*{0,2}\)`),
		BarcodeSerialPattern: regexp.MustCompile(`(?i)BC#\s*([\w\-]+)\s+S/N\s*(\d+)`),
	}
}

func (c *Classifier) Classify(notes string) internal.OwnershipGroup {
	if containsPercent(notes) {
		return internal.GroupConsigner
	}
	if c.KeslowPattern.MatchString(notes) {
		return internal.GroupKeslow
	}
	return internal.GroupUnclassified
}

// ExtractBarcodeSerial pulls the BC#/S-N pair out of notes. A row without the
// pattern yields empty strings rather than being rejected.
func (c *Classifier) ExtractBarcodeSerial(notes string) (barcode, serial string) {
	m := c.BarcodeSerialPattern.FindStringSubmatch(notes)
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}

func containsPercent(notes string) bool {
	for _, r := range notes {
		if r == '%' {
			return true
		}
	}
	return false
}
