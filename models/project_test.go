package models

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Unassigning must free the (project, employee) unique index so the pair can
// be assigned again. Soft delete would keep the row in the index while hiding
// it from the duplicate check.
func TestProjectAssignmentDeletesHard(t *testing.T) {
	_, hasDeletedAt := reflect.TypeOf(ProjectAssignment{}).FieldByName("DeletedAt")
	assert.False(t, hasDeletedAt, "assignments must not soft-delete")

	db, err := gorm.Open(postgres.Open("host=localhost user=test dbname=test"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	tx := db.Delete(&ProjectAssignment{ID: 1})
	require.NoError(t, tx.Error)
	assert.True(t, strings.HasPrefix(tx.Statement.SQL.String(), "DELETE"),
		"delete must remove the row, not stamp it")
}

func TestSnapshotOfCapturesMutableFields(t *testing.T) {
	p := &Project{
		Title:          "Platform migration",
		Status:         ProjectOnHold,
		Priority:       PriorityHigh,
		ManagerID:      4,
		EstimatedHours: 120,
		Tags:           []string{"infra"},
	}

	snapshot := SnapshotOf(p)

	assert.Equal(t, "Platform migration", snapshot.Title)
	assert.Equal(t, ProjectOnHold, snapshot.Status)
	assert.Equal(t, uint(4), snapshot.ManagerID)
	assert.Equal(t, []string{"infra"}, snapshot.Tags)
}
