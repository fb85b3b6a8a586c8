package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Null(t *testing.T) {
	assert.True(t, Null.IsNull())
	assert.True(t, String("").IsNull())
	assert.True(t, Number(math.NaN()).IsNull())
	assert.False(t, String("x").IsNull())
	assert.False(t, Number(0).IsNull())
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, String("Alice").Equal(String("Alice")))
	assert.False(t, String("Alice").Equal(String("alice")))
	assert.True(t, Number(3).Equal(Number(3)))
	assert.False(t, Number(3).Equal(String("3")))
	assert.False(t, Null.Equal(Null))
}

func TestValue_Text(t *testing.T) {
	assert.Equal(t, "Alice", String("Alice").Text())
	assert.Equal(t, "3", Number(3).Text())
	assert.Equal(t, "2.5", Number(2.5).Text())
	assert.Equal(t, "", Null.Text())
}

func TestValue_Any(t *testing.T) {
	assert.Equal(t, "a", String("a").Any())
	assert.Equal(t, 1.5, Number(1.5).Any())
	assert.Nil(t, Null.Any())
}

func TestJoinID(t *testing.T) {
	assert.Equal(t, "Smith_42", JoinID([]Value{String("Smith"), Number(42)}))
	assert.Equal(t, "u1", JoinID([]Value{String("u1")}))
}

func TestRecord_GetHas(t *testing.T) {
	r := Record{ID: "u1", Fields: map[string]Value{"name": String("Alice"), "city": Null}}
	assert.Equal(t, "Alice", r.Get("name").Text())
	assert.True(t, r.Has("city"))
	assert.True(t, r.Get("city").IsNull())
	assert.False(t, r.Has("age"))
	assert.True(t, r.Get("age").IsNull())
}

func TestScoreMap_InsertionOrder(t *testing.T) {
	m := NewScoreMap(3)
	m.Set("p2", 0.5)
	m.Set("p1", 0.9)
	m.Set("p3", 0.1)
	m.Set("p2", 0.7)

	require.Equal(t, 3, m.Len())
	assert.Equal(t, []ScoreEntry{
		{ProviderID: "p2", Score: 0.7},
		{ProviderID: "p1", Score: 0.9},
		{ProviderID: "p3", Score: 0.1},
	}, m.Entries())

	s, ok := m.Get("p1")
	assert.True(t, ok)
	assert.InDelta(t, 0.9, s, 1e-12)

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestRecommendation_Flatten(t *testing.T) {
	r := Recommendation{User: "u1", Partners: []Partner{{ID: "p1", Score: 0.9}, {ID: "p2", Score: 0.6}}}
	flat := r.Flatten()
	assert.Equal(t, "u1", flat["user"])
	assert.Equal(t, "p1", flat["partner1"])
	assert.Equal(t, 0.9, flat["partnerScore1"])
	assert.Equal(t, "p2", flat["partner2"])
	assert.Len(t, flat, 5)
}

func TestHeader(t *testing.T) {
	assert.Equal(t, []string{"user"}, Header(0))
	assert.Equal(t, []string{"user", "partner1", "partnerScore1", "partner2", "partnerScore2"}, Header(2))
}

func TestMaxPartners(t *testing.T) {
	recs := []Recommendation{
		{User: "a"},
		{User: "b", Partners: []Partner{{ID: "p1"}, {ID: "p2"}}},
		{User: "c", Partners: []Partner{{ID: "p1"}}},
	}
	assert.Equal(t, 2, MaxPartners(recs))
	assert.Equal(t, 0, MaxPartners(nil))
}
