package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mhsenam/rentmio/internal/utils"
)

func TestParticipantPairIsOrderIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	l1, h1 := ParticipantPair(a, b)
	l2, h2 := ParticipantPair(b, a)
	assert.Equal(t, l1, l2)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, l1, h1)
}

func TestPropertyKey(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "", PropertyKey(nil))
	assert.Equal(t, "", PropertyKey(&uuid.Nil))
	assert.Equal(t, id.String(), PropertyKey(&id))
}

func TestFilterMatches(t *testing.T) {
	p := &Property{Price: 150, Bedrooms: 2, Bathrooms: 1.5, City: "Lisbon", PropertyType: "Apartment"}

	assert.True(t, PropertyFilter{}.Matches(p))
	assert.True(t, PropertyFilter{MinPrice: utils.Ptr(100.0), MaxPrice: utils.Ptr(150.0)}.Matches(p))
	assert.False(t, PropertyFilter{MaxPrice: utils.Ptr(149.0)}.Matches(p))
	assert.False(t, PropertyFilter{Bedrooms: utils.Ptr(3)}.Matches(p))
	assert.True(t, PropertyFilter{Bathrooms: utils.Ptr(1.5)}.Matches(p))
	assert.False(t, PropertyFilter{Location: utils.Ptr("Porto")}.Matches(p))
	assert.False(t, PropertyFilter{PropertyType: utils.Ptr("Villa")}.Matches(p))
}
