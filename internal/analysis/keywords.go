package analysis

import "strings"

// Tier base scores. Tiers are checked in descending severity order and
// the first tier with a match wins; this is a precedence rule, not an
// additive one. The ordering is the safety contract of the fallback
// classifier and must not be rearranged.
const (
	scoreCritical  = 9
	scoreHigh      = 7
	scoreModerate  = 5
	scoreLowSignal = 2
	scoreBase      = 4
)

// Boost amounts applied after tier selection and category floors.
const (
	distressBoost   = 2
	repetitionBoost = 1
	lengthBoost     = 1
	longDescription = 300
)

// maxKeywords caps the matched-term list carried on the analysis record.
const maxKeywords = 5

// ClassifierVersion identifies the keyword tables and scoring rules.
// Bump it whenever either changes so cached analyses from a previous
// deployment are dropped at startup.
const ClassifierVersion = "1"

// criticalTerms describe incidents that are serious on their face.
var criticalTerms = []string{
	"assault",
	"rape",
	"molest",
	"stalk",
	"blackmail",
	"threatened to kill",
	"kill me",
	"forced",
	"forcing",
}

// highTerms cover unwanted contact, threats, retaliation and abuse of
// position.
var highTerms = []string{
	"unwanted touch",
	"touched me",
	"groped",
	"grabbed",
	"cornered",
	"physical",
	"threat",
	"coercion",
	"coerce",
	"fire me",
	"terminate",
	"demote",
	"intimidat",
	"abuse of power",
	"power over",
	"retaliat",
	"hit me",
	"slapped",
	"pushed me",
}

// moderateTerms cover remarks, unwelcome attention and hostile or
// cyber conduct.
var moderateTerms = []string{
	"inappropriate",
	"remarks",
	"comments about",
	"staring",
	"leering",
	"jokes",
	"joking",
	"innuendo",
	"flirting",
	"messages",
	"texting me",
	"whatsapp",
	"social media",
	"online",
	"hostile",
	"discriminat",
	"rumours",
	"rumors",
	"gossip",
}

// lowSignalTerms are hedging phrases that suggest a minor or one-off
// incident.
var lowSignalTerms = []string{
	"misunderstanding",
	"minor",
	"once",
	"accident",
	"not a big deal",
}

// distressTerms signal acute emotional impact; their presence raises the
// score by distressBoost.
var distressTerms = []string{
	"afraid",
	"scared",
	"fear",
	"panic",
	"anxious",
	"trauma",
	"depressed",
	"suicid",
	"want to die",
	"unsafe",
	"helpless",
	"crying",
	"nightmare",
}

// repetitionTerms signal an ongoing pattern rather than an isolated
// incident.
var repetitionTerms = []string{
	"again",
	"every day",
	"everyday",
	"every time",
	"for months",
	"for weeks",
	"for years",
	"repeatedly",
	"keeps doing",
	"not the first time",
	"continues",
}

type scoreResult struct {
	score   int
	matched []string
}

// matchTerms returns the terms present in text, preserving list order.
// Matching is plain substring containment on lowercased input, so a term
// like "threat" also catches "threatened".
func matchTerms(text string, terms []string) []string {
	var hits []string
	for _, term := range terms {
		if strings.Contains(text, term) {
			hits = append(hits, term)
		}
	}
	return hits
}

// scoreDescription is the pure scoring pass: tier precedence, category
// floors, boosts, then clamp. It has no I/O and runs in time
// proportional to the input length.
func scoreDescription(description string, category Category) scoreResult {
	text := strings.ToLower(description)

	criticalHits := matchTerms(text, criticalTerms)
	highHits := matchTerms(text, highTerms)
	moderateHits := matchTerms(text, moderateTerms)
	lowHits := matchTerms(text, lowSignalTerms)
	distressHits := matchTerms(text, distressTerms)
	repetitionHits := matchTerms(text, repetitionTerms)

	score := scoreBase
	switch {
	case len(criticalHits) > 0:
		score = scoreCritical
	case len(highHits) > 0:
		score = scoreHigh
	case len(moderateHits) > 0:
		score = scoreModerate
	case len(lowHits) > 0:
		score = scoreLowSignal
	}

	// Category floors: these raise the score to a minimum and can never
	// lower it.
	if category == CategoryPhysical && score < 7 {
		score = 7
	}
	if category == CategoryQuidProQuo && score < 8 {
		score = 8
	}

	if len(distressHits) > 0 {
		score = min(10, score+distressBoost)
	}
	if len(repetitionHits) > 0 {
		score = min(10, score+repetitionBoost)
	}
	if len(description) > longDescription {
		score = min(10, score+lengthBoost)
	}

	if score > 10 {
		score = 10
	}
	if score < 1 {
		score = 1
	}

	matched := make([]string, 0, maxKeywords)
	for _, hits := range [][]string{criticalHits, highHits, moderateHits, lowHits, distressHits, repetitionHits} {
		for _, hit := range hits {
			if len(matched) >= maxKeywords {
				return scoreResult{score: score, matched: matched}
			}
			matched = append(matched, hit)
		}
	}

	return scoreResult{score: score, matched: matched}
}
