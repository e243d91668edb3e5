package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bplcommander/models"
)

func cappedUser(workloadCap, overBeyondCap int) *models.User {
	return &models.User{WorkloadCap: workloadCap, OverBeyondCap: overBeyondCap}
}

func TestSummarizeWorkload(t *testing.T) {
	user := cappedUser(100, 20)

	t.Run("empty", func(t *testing.T) {
		summary := SummarizeWorkload(user, nil, nil)

		assert.Equal(t, 0, summary.TotalWorkload)
		assert.Equal(t, 100, summary.AvailableCapacity)
		assert.Equal(t, 20, summary.OverBeyondAvailable)
	})

	t.Run("only active projects count", func(t *testing.T) {
		summary := SummarizeWorkload(user, []AssignmentLoad{
			{Involvement: 40, ProjectStatus: models.ProjectActive},
			{Involvement: 30, ProjectStatus: models.ProjectCompleted},
			{Involvement: 20, ProjectStatus: models.ProjectOnHold},
		}, nil)

		assert.Equal(t, 40, summary.ProjectWorkload)
		assert.Equal(t, 60, summary.AvailableCapacity)
	})

	t.Run("only open initiatives count", func(t *testing.T) {
		summary := SummarizeWorkload(user, nil, []InitiativeLoad{
			{Workload: 10, Status: models.InitiativeOpen},
			{Workload: 5, Status: models.InitiativeInProgress},
			{Workload: 15, Status: models.InitiativeCompleted},
		})

		assert.Equal(t, 15, summary.OverBeyondWorkload)
		assert.Equal(t, 5, summary.OverBeyondAvailable)
	})

	t.Run("total combines both", func(t *testing.T) {
		summary := SummarizeWorkload(user,
			[]AssignmentLoad{{Involvement: 60, ProjectStatus: models.ProjectActive}},
			[]InitiativeLoad{{Workload: 10, Status: models.InitiativeOpen}})

		assert.Equal(t, 70, summary.TotalWorkload)
	})

	t.Run("over-and-beyond can go negative without affecting project capacity", func(t *testing.T) {
		summary := SummarizeWorkload(user, nil, []InitiativeLoad{
			{Workload: 35, Status: models.InitiativeOpen},
		})

		assert.Equal(t, -15, summary.OverBeyondAvailable)
		assert.Equal(t, 100, summary.AvailableCapacity)
	})
}

func TestFitsWithinCap(t *testing.T) {
	assert.True(t, FitsWithinCap(90, 10, 100), "exact fit allowed")
	assert.False(t, FitsWithinCap(90, 15, 100), "overflow rejected")
	assert.True(t, FitsWithinCap(0, 100, 100))
	assert.False(t, FitsWithinCap(0, 101, 100))
	assert.True(t, FitsWithinCap(50, 30, 120), "non-default cap")
}
