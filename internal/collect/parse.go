package collect

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppetrenko/veridex/internal/model"
)

// ParsedBlock is the classifier's structured output after parsing. Parsing
// is total: any malformed response still yields a usable, degraded block.
type ParsedBlock struct {
	Update     string
	Class      model.Class
	Statement  string
	Source     string
	Evidence   string
	Confidence int
	Reason     string
}

var digitsRe = regexp.MustCompile(`\d+`)

// ParseBlock parses the line-oriented KEY: value contract. Unknown lines
// are ignored; missing fields keep safe defaults (UNSURE, NONE, 0).
func ParseBlock(block string) ParsedBlock {
	parsed := ParsedBlock{
		Class:    model.ClassUnsure,
		Source:   model.None,
		Evidence: model.None,
	}

	for _, rawLine := range strings.Split(block, "\n") {
		line := strings.TrimSpace(rawLine)
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "UPDATE":
			parsed.Update = value
		case "CLASS":
			parsed.Class = model.Class(strings.ToUpper(value))
		case "STATEMENT":
			parsed.Statement = value
		case "SOURCE":
			parsed.Source = value
		case "EVIDENCE":
			parsed.Evidence = strings.Trim(value, `"`)
		case "CONFIDENCE":
			if m := digitsRe.FindString(value); m != "" {
				if n, err := strconv.Atoi(m); err == nil {
					parsed.Confidence = n
				}
			}
		case "REASON":
			parsed.Reason = value
		}
	}

	if !parsed.Class.Valid() {
		parsed.Class = model.ClassUnsure
	}
	parsed.Confidence = model.ClampConfidence(parsed.Confidence)
	return parsed
}

// ApplyHardRules enforces the classification invariants the model cannot be
// trusted with: a FACT without a source URL and a direct quote downgrades
// to UNSURE, and an empty source falls back to the search result URL.
func ApplyHardRules(parsed ParsedBlock, searchURL string) ParsedBlock {
	source := parsed.Source
	if source == model.None || source == "" {
		source = searchURL
	}
	if source == "" {
		source = model.None
	}
	parsed.Source = source

	if parsed.Class == model.ClassFact {
		if parsed.Source == model.None || parsed.Evidence == "" || parsed.Evidence == model.None {
			parsed.Class = model.ClassUnsure
		}
	}
	return parsed
}

// DegradedBlock is the sentinel the collector substitutes when an upstream
// collaborator is unreachable, so the pipeline always makes forward
// progress with an UNSURE, confidence-0 record.
func DegradedBlock(update, statement, reason string) string {
	return "UPDATE: " + update + "\n" +
		"CLASS: UNSURE\n" +
		"STATEMENT: " + statement + "\n" +
		"SOURCE: NONE\n" +
		"EVIDENCE: \"NONE\"\n" +
		"CONFIDENCE: 0\n" +
		"REASON: " + reason
}
