package compaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEntities_ProperNouns(t *testing.T) {
	entities := ExtractEntities("We spoke with Sarah about the London office.")
	assert.Contains(t, entities, "Sarah")
	assert.Contains(t, entities, "London")
	assert.NotContains(t, entities, "We") // common starter, excluded
}

func TestExtractEntities_IdentifierStyles(t *testing.T) {
	entities := ExtractEntities("Check the HttpClient and parseJSON against max_retry_count.")
	assert.Contains(t, entities, "HttpClient")
	assert.Contains(t, entities, "parseJSON")
	assert.Contains(t, entities, "max_retry_count")
}

func TestExtractEntities_NumbersWithUnits(t *testing.T) {
	entities := ExtractEntities("The request took 250ms and used 12MB of memory.")
	found := false
	for _, e := range entities {
		if e == "250ms" || e == "12MB" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestExtractEntities_CapsAtTen(t *testing.T) {
	text := "Alice Bob Carol Dave Erin Frank Grace Heidi Ivan Judy Karl Liam"
	entities := ExtractEntities(text)
	assert.LessOrEqual(t, len(entities), 10)
}

func TestExtractEntities_NoDuplicates(t *testing.T) {
	entities := ExtractEntities("Sarah met Sarah again about Sarah's project.")
	count := 0
	for _, e := range entities {
		if e == "Sarah" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestEntitySuffix(t *testing.T) {
	assert.Equal(t, "", entitySuffix("the quick brown fox"))
	suffix := entitySuffix("We spoke with Sarah about the project.")
	assert.Contains(t, suffix, "entities:")
	assert.Contains(t, suffix, "Sarah")
}

func TestHasVowel(t *testing.T) {
	assert.True(t, hasVowel("cat"))
	assert.True(t, hasVowel("sky")) // y counts as a vowel here
	assert.False(t, hasVowel("crwth"))
}
