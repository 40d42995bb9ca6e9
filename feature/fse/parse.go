package fse

import (
	"regexp"
	"strings"
)

// Labels printed above the values inside the FSE header blocks.
const (
	CodemLabel        = "CODEM / DT. REV. ROT."
	PartLabel         = "PN / REV. PN / LID"
	TraceabilityLabel = "IND. RASTR."
)

var partNumberPattern = regexp.MustCompile(`(\d+-\d+-\d+)`)

// StripLabel removes a leading label line from text and trims the rest.
func StripLabel(text, label string) string {
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, label); ok {
		if rest == "" || rest[0] == '\n' || rest[0] == '\r' {
			return strings.TrimSpace(rest)
		}
	}
	return text
}

// SplitOrderItem splits "55\n10" or "55/10" into order and item.
func SplitOrderItem(raw string) (order, item string) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), "\n", "/")
	parts := strings.SplitN(raw, "/", 2)
	order = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		item = strings.TrimSpace(parts[1])
	}
	return order, item
}

// SplitCodemDate splits the CODEM block into the CODEM and its routing revision date.
func SplitCodemDate(raw string) (codem, date string) {
	lines := strings.Split(StripLabel(raw, CodemLabel), "\n")
	codem = strings.TrimSpace(lines[0])
	if len(lines) > 1 {
		date = strings.TrimSpace(lines[1])
	}
	return codem, date
}

// SplitPartBlob splits the part block into part number, revision and LID by
// position. Missing trailing fields are empty.
func SplitPartBlob(raw string) (pn, rev, lid string) {
	fields := strings.Fields(StripLabel(raw, PartLabel))
	out := [3]string{}
	copy(out[:], fields)
	return out[0], out[1], out[2]
}

// ExtractPartNumber returns the first "digits-digits-digits" group of pn, or ""
// when there is none.
func ExtractPartNumber(pn string) string {
	return partNumberPattern.FindString(pn)
}

// JoinSerials joins the non-blank serial numbers with ", ".
func JoinSerials(values []string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, ", ")
}
