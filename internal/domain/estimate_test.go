package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestTransition_Allowed(t *testing.T) {
	cases := []struct {
		from, to EstimateStatus
	}{
		{EstimateDraft, EstimateSent},
		{EstimateDraft, EstimateAccepted},
		{EstimateSent, EstimateAccepted},
		{EstimateSent, EstimateRejected},
		{EstimateRejected, EstimateDraft},
		{EstimateAccepted, EstimateConverted},
	}
	for _, tc := range cases {
		e := &Estimate{Status: tc.from}
		require.NoError(t, e.Transition(tc.to, testNow), "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.to, e.Status)
		assert.Equal(t, testNow, e.UpdatedAt)
	}
}

func TestTransition_Rejected(t *testing.T) {
	cases := []struct {
		from, to EstimateStatus
	}{
		{EstimateDraft, EstimateConverted},
		{EstimateRejected, EstimateAccepted},
		{EstimateConverted, EstimateDraft},
		{EstimateSent, EstimateConverted},
	}
	for _, tc := range cases {
		e := &Estimate{Status: tc.from}
		err := e.Transition(tc.to, testNow)
		require.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.from, e.Status, "status should not change")
	}
}

func TestTransition_SameStatusIsNoop(t *testing.T) {
	e := &Estimate{Status: EstimateSent}
	require.NoError(t, e.Transition(EstimateSent, testNow))
	assert.True(t, e.UpdatedAt.IsZero())
}

func TestTransition_UnknownStatus(t *testing.T) {
	e := &Estimate{Status: EstimateDraft}
	err := e.Transition("archived", testNow)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	err := Validate(&Customer{FirstName: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	err = Validate(&Customer{Email: "not-an-email"})
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "firstname")
	assert.Contains(t, err.Error(), "email")
}

func TestItemPatch_MergesOverExisting(t *testing.T) {
	base := (&ItemNode{
		ID:           "i1",
		Description:  "Drywall",
		Quantity:     2,
		MaterialCost: FloatPtr(10),
		LaborCost:    FloatPtr(5),
		OrderIndex:   3,
	}).Annotate()

	merged := ItemPatch{ID: "i1", Description: StrPtr("Drywall, 1/2in")}.Apply(base)

	assert.Equal(t, "Drywall, 1/2in", merged.Description)
	assert.Equal(t, 10.0, *merged.MaterialCost)
	assert.Equal(t, 5.0, *merged.LaborCost)
	assert.Equal(t, 3, merged.OrderIndex)
	assert.Equal(t, 30.0, merged.LineCostTotal)
	assert.Equal(t, "Drywall", base.Description, "receiver must stay untouched")
}

func TestItemPatch_NormalizesInput(t *testing.T) {
	base := &ItemNode{ID: "i1", Quantity: 3}
	merged := ItemPatch{ID: "i1", Quantity: FloatPtr(-2), LaborCost: FloatPtr(-1)}.Apply(base)
	assert.Equal(t, 1.0, merged.Quantity)
	assert.Equal(t, 0.0, *merged.LaborCost)
}

func TestGroupPatch_KeepsChildren(t *testing.T) {
	child := &ItemNode{ID: "i1"}
	g := &GroupNode{ID: "g1", Name: "Kitchen", Children: []Node{child}}
	merged := GroupPatch{ID: "g1", Name: StrPtr("Bath")}.Apply(g)
	assert.Equal(t, "Bath", merged.Name)
	require.Len(t, merged.Children, 1)
	assert.Same(t, child, merged.Children[0])
}
