package rag

import "strings"

// fallbackCorpus is the fixed set of statute-summary blocks served as
// context when vector retrieval is unavailable or returns nothing. The
// first three blocks double as the unconditional top-up set, so the
// broadest summaries come first.
var fallbackCorpus = []string{
	"Under the POSH Act (Prevention of Sexual Harassment at Workplace, 2013), every organisation with 10 or more employees must constitute an Internal Complaints Committee (ICC). The ICC receives complaints of sexual harassment, conducts a time-bound inquiry, and recommends action to the employer.",

	"Sexual harassment at the workplace includes unwelcome physical contact or advances, demands or requests for sexual favours, sexually coloured remarks, showing pornography, and any other unwelcome conduct of a sexual nature, whether physical, verbal or non-verbal.",

	"A written complaint should be filed with the ICC within three months of the incident, extendable by a further three months where circumstances prevented earlier filing. The ICC must complete its inquiry within ninety days and the employer must act on its recommendations within sixty days of the report.",

	"During the pendency of an inquiry, the complainant may request interim relief such as transfer of the complainant or respondent to another workplace, leave of up to three months in addition to regular entitlement, or restraint of the respondent from supervising the complainant's work.",

	"Quid pro quo harassment occurs when employment benefits such as promotion, pay or continued employment are made conditional on sexual favours, or when refusal results in threatened or actual retaliation including termination, demotion or hostile treatment.",

	"The identity of the complainant, respondent and witnesses, and all inquiry proceedings, are confidential under the POSH Act. Publishing or disclosing them is penalised. Retaliation against a complainant or witness for filing or supporting a complaint is itself misconduct.",
}

// Corpus selection rule: keep blocks sharing at least one word longer
// than four characters with the question, case-insensitive; when fewer
// than two blocks match, serve the first three blocks unconditionally.
const (
	fallbackMinMatches = 2
	fallbackTopUp      = 3
	overlapMinWordLen  = 4
)

// selectFallbackContext picks fallback blocks for a question. It always
// returns at least two blocks.
func selectFallbackContext(question string) []string {
	questionWords := significantWords(question)

	var matched []string
	for _, block := range fallbackCorpus {
		if sharesWord(block, questionWords) {
			matched = append(matched, block)
		}
	}

	if len(matched) < fallbackMinMatches {
		return fallbackCorpus[:fallbackTopUp]
	}
	return matched
}

func significantWords(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range splitWords(text) {
		if len(w) > overlapMinWordLen {
			words[w] = true
		}
	}
	return words
}

func sharesWord(block string, questionWords map[string]bool) bool {
	for _, w := range splitWords(block) {
		if questionWords[w] {
			return true
		}
	}
	return false
}

func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
}
