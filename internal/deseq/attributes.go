package deseq

import "strings"

// Attribute keys recognized in GFF-style attribute strings. Matching is
// case-sensitive.
const (
	attrGene     = "gene"
	attrLocusTag = "locus_tag"
)

// ParseAttributes extracts the gene name and locus tag from a GFF-style
// attribute string such as "gene=gyrA;locus_tag=PA_0001;product=DNA gyrase".
// Segments are separated by ';' and split on the first '='; keys and values
// are whitespace-trimmed. Segments without '=' and unrecognized keys are
// ignored. When a key repeats, the last occurrence wins. Missing keys yield
// empty strings. ParseAttributes never fails.
func ParseAttributes(raw string) (geneName, locusTag string) {
	if raw == "" {
		return "", ""
	}

	for _, segment := range strings.Split(raw, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		eq := strings.Index(segment, "=")
		if eq < 0 {
			// Malformed segment, no key=value separator.
			continue
		}

		key := strings.TrimSpace(segment[:eq])
		value := strings.TrimSpace(segment[eq+1:])

		switch key {
		case attrGene:
			geneName = value
		case attrLocusTag:
			locusTag = value
		}
	}

	return geneName, locusTag
}
