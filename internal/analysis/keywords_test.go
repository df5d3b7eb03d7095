package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreDescriptionTierPrecedence(t *testing.T) {
	// Critical, high and moderate terms all present; the critical tier
	// wins and nothing is added on top of it.
	res := scoreDescription("He assaulted me after making threats and inappropriate remarks", CategoryVerbal)

	assert.Equal(t, scoreCritical, res.score)
	assert.Contains(t, res.matched, "assault")
	assert.Contains(t, res.matched, "threat")
}

func TestScoreDescriptionBaseScore(t *testing.T) {
	res := scoreDescription("My desk was moved without telling me and I was not informed", CategoryVerbal)

	assert.Equal(t, scoreBase, res.score)
	assert.Empty(t, res.matched)
}

func TestScoreDescriptionTiers(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        int
	}{
		{"critical term", "He threatened to kill me", scoreCritical},
		{"high term", "He grabbed my arm in the hallway", scoreHigh},
		{"moderate term", "He keeps making jokes about my appearance", scoreModerate},
		{"low signal term", "It was probably a misunderstanding", scoreLowSignal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := scoreDescription(tt.description, CategoryVerbal)
			assert.Equal(t, tt.want, res.score)
		})
	}
}

func TestCategoryFloors(t *testing.T) {
	tests := []struct {
		name        string
		description string
		category    Category
		want        int
	}{
		{"physical floor on bland text", "He blocked my way in the corridor", CategoryPhysical, 7},
		{"quid pro quo floor on bland text", "My manager suggested we discuss my promotion over dinner", CategoryQuidProQuo, 8},
		{"verbal has no floor", "He blocked my way in the corridor", CategoryVerbal, scoreBase},
		{"floor never lowers a critical score", "He assaulted me", CategoryPhysical, scoreCritical},
		{"unknown category has no floor", "He blocked my way in the corridor", Category("other"), scoreBase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := scoreDescription(tt.description, tt.category)
			assert.Equal(t, tt.want, res.score)
		})
	}
}

func TestBoosts(t *testing.T) {
	t.Run("distress boost", func(t *testing.T) {
		res := scoreDescription("He keeps making jokes and I am afraid to come to work", CategoryVerbal)
		assert.Equal(t, scoreModerate+distressBoost, res.score)
	})

	t.Run("repetition boost", func(t *testing.T) {
		res := scoreDescription("He makes jokes about my clothes every day", CategoryVerbal)
		assert.Equal(t, scoreModerate+repetitionBoost, res.score)
	})

	t.Run("length boost", func(t *testing.T) {
		long := strings.Repeat("The schedule for the offsite was published late and the room allocation list was wrong. ", 5)
		assert.Greater(t, len(long), longDescription)

		res := scoreDescription(long, CategoryVerbal)
		assert.Equal(t, scoreBase+lengthBoost, res.score)
	})

	t.Run("score clamps at ten", func(t *testing.T) {
		res := scoreDescription("I am scared he will assault me again", CategoryVerbal)
		assert.Equal(t, 10, res.score)
	})
}

func TestKeywordCapAndOrder(t *testing.T) {
	res := scoreDescription("He groped me and grabbed me, made inappropriate remarks, staring and leering with jokes", CategoryVerbal)

	assert.Len(t, res.matched, maxKeywords)
	// Higher tiers come first, each tier in list order.
	assert.Equal(t, []string{"groped", "grabbed", "inappropriate", "remarks", "staring"}, res.matched)
}

func TestMatchTermsPreservesOrder(t *testing.T) {
	hits := matchTerms("he threatened to fire me after he cornered me", highTerms)

	assert.Equal(t, []string{"cornered", "threat", "fire me"}, hits)
}
