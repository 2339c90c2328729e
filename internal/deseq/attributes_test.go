package deseq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAttributes(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		gene     string
		locusTag string
	}{
		{
			name:     "typical annotation",
			raw:      "gene=gyrA;locus_tag=PA_0001;product=DNA gyrase",
			gene:     "gyrA",
			locusTag: "PA_0001",
		},
		{
			name:     "locus tag only",
			raw:      "locus_tag=PA_0905.1;product=hypothetical protein",
			gene:     "",
			locusTag: "PA_0905.1",
		},
		{
			name:     "empty string",
			raw:      "",
			gene:     "",
			locusTag: "",
		},
		{
			name:     "repeated key last wins",
			raw:      "gene=foo;gene=bar",
			gene:     "bar",
			locusTag: "",
		},
		{
			name:     "malformed segment ignored",
			raw:      "pseudo;locus_tag=PA1000",
			gene:     "",
			locusTag: "PA1000",
		},
		{
			name:     "whitespace trimmed",
			raw:      " gene = nadB ; locus_tag = PA2001 ",
			gene:     "nadB",
			locusTag: "PA2001",
		},
		{
			name:     "value containing equals splits on first",
			raw:      "gene=rpoB=alt;locus_tag=PA4270",
			gene:     "rpoB=alt",
			locusTag: "PA4270",
		},
		{
			name:     "keys are case sensitive",
			raw:      "Gene=gyrA;LOCUS_TAG=PA_0001",
			gene:     "",
			locusTag: "",
		},
		{
			name:     "product never used as gene fallback",
			raw:      "product=DNA gyrase;Name=gyrA",
			gene:     "",
			locusTag: "",
		},
		{
			name:     "trailing semicolon",
			raw:      "gene=dnaA;",
			gene:     "dnaA",
			locusTag: "",
		},
		{
			name:     "empty value",
			raw:      "gene=;locus_tag=PA0001",
			gene:     "",
			locusTag: "PA0001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gene, locusTag := ParseAttributes(tt.raw)
			assert.Equal(t, tt.gene, gene)
			assert.Equal(t, tt.locusTag, locusTag)
		})
	}
}
