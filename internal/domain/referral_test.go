package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferrals_Add(t *testing.T) {
	var r Referrals
	id := uuid.New()

	require.True(t, r.Add(ReferralEntry{Stage: StageDirect, UserID: id, Name: "Bob"}))
	assert.False(t, r.Add(ReferralEntry{Stage: StageDirect, UserID: id, Name: "Bob"}), "same user twice in one sequence")
	assert.True(t, r.Add(ReferralEntry{Stage: StageSecond, UserID: id, Name: "Bob"}), "different sequence is independent")
	assert.False(t, r.Add(ReferralEntry{Stage: ReferralStage(4), UserID: id}))

	assert.Len(t, r.Direct, 1)
	assert.Len(t, r.Stage2, 1)
	assert.Empty(t, r.Stage3)
	assert.NotNil(t, r.Direct[0].History)
}

func TestGroupReferrals(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	r := GroupReferrals([]ReferralEntry{
		{Stage: StageDirect, UserID: a},
		{Stage: StageDirect, UserID: b},
		{Stage: StageThird, UserID: c},
		{Stage: StageDirect, UserID: a},
	})

	require.Len(t, r.Direct, 2)
	assert.Equal(t, a, r.Direct[0].UserID)
	assert.Equal(t, b, r.Direct[1].UserID)
	assert.Empty(t, r.Stage2)
	assert.NotNil(t, r.Stage2)
	assert.True(t, r.Contains(StageThird, c))
}

func TestReferrals_AttachIncentives(t *testing.T) {
	a := uuid.New()
	r := GroupReferrals([]ReferralEntry{{Stage: StageSecond, UserID: a}})

	r.AttachIncentives([]ReferralIncentive{
		{Stage: StageSecond, ReferredUserID: a},
		{Stage: StageDirect, ReferredUserID: a},
	})

	assert.Len(t, r.Stage2[0].History, 1)
}

func TestReferralStage(t *testing.T) {
	assert.Equal(t, "direct", StageDirect.String())
	assert.Equal(t, "stage3", StageThird.String())
	assert.True(t, StageThird.Valid())
	assert.False(t, ReferralStage(0).Valid())
	assert.False(t, ReferralStage(MaxReferralDepth+1).Valid())
}
