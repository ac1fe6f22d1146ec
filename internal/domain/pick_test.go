package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pickStatus(s PickStatus) *PickStatus {
	return &s
}

func TestPickStatusDescription(t *testing.T) {
	tests := []struct {
		status      PickStatus
		description string
	}{
		{PickStatusSuspended, "Suspended"},
		{PickStatusWIP, "Work in Progress"},
		{PickStatusPicked, "Successfully Picked"},
		{PickStatusAssigned, "Assigned to Picker"},
		{PickStatusDelivered, "Delivered to Picker"},
		{PickStatus("something_else"), "something_else"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.description, tt.status.Description())
	}
}

func TestWasWorked(t *testing.T) {
	assert.False(t, (&Pick{}).WasWorked())
	assert.True(t, (&Pick{Status: pickStatus(PickStatusWIP)}).WasWorked())
	assert.True(t, (&Pick{WorkerID: "worker-7"}).WasWorked())
}

func TestDeemedOut(t *testing.T) {
	fallback := &Skill{SkillID: "straggler"}

	tests := []struct {
		name   string
		pick   Pick
		deemed bool
	}{
		{
			name:   "Straggled suspended pick with no fallback is deemed out",
			pick:   Pick{Straggled: true, Status: pickStatus(PickStatusSuspended), Skill: Skill{SkillID: "pick"}},
			deemed: true,
		},
		{
			name:   "Fallback skill still available",
			pick:   Pick{Straggled: true, Status: pickStatus(PickStatusSuspended), Skill: Skill{SkillID: "pick", StragglerSkill: fallback}},
			deemed: false,
		},
		{
			name:   "Not suspended",
			pick:   Pick{Straggled: true, Status: pickStatus(PickStatusWIP), Skill: Skill{SkillID: "pick"}},
			deemed: false,
		},
		{
			name:   "Never straggled",
			pick:   Pick{Straggled: false, Status: pickStatus(PickStatusSuspended), Skill: Skill{SkillID: "pick"}},
			deemed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.deemed, tt.pick.DeemedOut())
		})
	}
}

func TestHandledByStraggler(t *testing.T) {
	assert.True(t, (&Pick{Straggled: true, Skill: Skill{SkillID: "pick"}}).HandledByStraggler())
	assert.False(t, (&Pick{Straggled: true, Skill: Skill{SkillID: "pick", StragglerSkill: &Skill{SkillID: "straggler"}}}).HandledByStraggler())
	assert.False(t, (&Pick{Straggled: false, Skill: Skill{SkillID: "pick"}}).HandledByStraggler())
}

func TestRepickSkill(t *testing.T) {
	withFallback := Skill{SkillID: "pick", StragglerSkill: &Skill{SkillID: "straggler"}}
	assert.Equal(t, "straggler", withFallback.RepickSkill().SkillID)

	withoutFallback := Skill{SkillID: "pick"}
	assert.Equal(t, "pick", withoutFallback.RepickSkill().SkillID)
}

func TestRepick(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	pick := Pick{
		PickID:   101,
		Status:   pickStatus(PickStatusSuspended),
		WorkerID: "worker-7",
		Skill:    Skill{SkillID: "pick", StragglerSkill: &Skill{SkillID: "straggler"}},
		Quantity: 2,
	}

	pick.Repick(now)

	assert.Equal(t, "straggler", pick.Skill.SkillID)
	assert.Nil(t, pick.Status)
	assert.Empty(t, pick.WorkerID)
	assert.True(t, pick.Straggled)
	assert.Equal(t, now, pick.LastUpdate)
	assert.Zero(t, pick.Quantity)
}

func TestMostRecentlyUpdated(t *testing.T) {
	base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	older := &Pick{PickID: 1, LastUpdate: base}
	newer := &Pick{PickID: 2, LastUpdate: base.Add(5 * time.Minute)}

	mostRecent := MostRecentlyUpdated([]*Pick{older, newer})
	require.NotNil(t, mostRecent)
	assert.Equal(t, 2, mostRecent.PickID)

	assert.Nil(t, MostRecentlyUpdated(nil))
}

func TestMostRecentlyCreated(t *testing.T) {
	base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	older := &Pick{PickID: 1, CreatedOn: base, LastUpdate: base.Add(time.Hour)}
	newer := &Pick{PickID: 2, CreatedOn: base.Add(time.Minute), LastUpdate: base}

	mostRecent := MostRecentlyCreated([]*Pick{older, newer})
	require.NotNil(t, mostRecent)
	assert.Equal(t, 2, mostRecent.PickID)

	assert.Nil(t, MostRecentlyCreated(nil))
}
