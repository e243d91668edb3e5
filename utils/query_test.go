package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bplcommander/models"
)

// dryRunDB builds SQL without a live connection so predicate shapes can be
// asserted on the generated statement.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=localhost user=test dbname=test"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func getterFor(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestParseQueryContextPagination(t *testing.T) {
	tests := []struct {
		name      string
		query     map[string]string
		wantPage  int
		wantLimit int
	}{
		{"defaults when absent", map[string]string{}, 1, 10},
		{"valid values", map[string]string{"page": "3", "limit": "25"}, 3, 25},
		{"zero page clamps to 1", map[string]string{"page": "0"}, 1, 10},
		{"negative page clamps to 1", map[string]string{"page": "-5"}, 1, 10},
		{"limit above max clamps to 100", map[string]string{"limit": "500"}, 1, 100},
		{"zero limit clamps to 1", map[string]string{"limit": "0"}, 1, 1},
		{"non-numeric falls back to defaults", map[string]string{"page": "abc", "limit": "xyz"}, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qc := ParseQueryContext(getterFor(tt.query))
			assert.Equal(t, tt.wantPage, qc.Pagination.Page)
			assert.Equal(t, tt.wantLimit, qc.Pagination.Limit)
		})
	}
}

func TestParseQueryContextFiltersAndFlags(t *testing.T) {
	qc := ParseQueryContext(getterFor(map[string]string{
		"status":    "active",
		"priority":  "high",
		"search":    "platform",
		"include":   "manager, comments",
		"analytics": "true",
		"workload":  "yes", // only the literal "true" counts
		"manager":   "7",
	}))

	assert.Equal(t, "active", qc.Filters["status"])
	assert.Equal(t, "high", qc.Filters["priority"])
	assert.Equal(t, "platform", qc.Filters["search"])
	assert.Equal(t, []string{"manager", "comments"}, qc.Include)
	assert.True(t, qc.Flags.Analytics)
	assert.False(t, qc.Flags.Workload)
	assert.False(t, qc.Flags.Count)
	assert.Equal(t, "7", qc.Manager)
}

func TestParseQueryContextIgnoresUnknownKeys(t *testing.T) {
	qc := ParseQueryContext(getterFor(map[string]string{
		"favorite_color": "blue",
		"status":         "active",
	}))

	assert.Len(t, qc.Filters, 1)
	assert.Equal(t, "active", qc.Filters["status"])
}

func TestBuildWhereClauseNormalizesEnums(t *testing.T) {
	clause := BuildWhereClause(map[string]string{
		"status":   "on-hold",
		"priority": "high",
		"role":     "program_manager",
	}, nil)

	require.Len(t, clause.Conditions, 3)
	byField := map[string]Condition{}
	for _, cond := range clause.Conditions {
		byField[cond.Field] = cond
	}

	assert.Equal(t, "ON_HOLD", byField["status"].Value)
	assert.Equal(t, OpEq, byField["status"].Op)
	assert.Equal(t, "HIGH", byField["priority"].Value)
	assert.Equal(t, "PROGRAM_MANAGER", byField["role"].Value)
}

func TestBuildWhereClauseDepartmentAndSearch(t *testing.T) {
	clause := BuildWhereClause(map[string]string{
		"department": "Engineering",
		"search":     "migration",
	}, nil)

	require.Len(t, clause.Conditions, 1)
	assert.Equal(t, "department", clause.Conditions[0].Field)
	assert.Equal(t, OpIContains, clause.Conditions[0].Op)
	assert.Equal(t, "migration", clause.Search)
}

func TestBuildWhereClauseKeepsBaseConditions(t *testing.T) {
	base := []Condition{{Field: "is_active", Op: OpEq, Value: true}}
	clause := BuildWhereClause(map[string]string{"status": "active"}, base)

	require.Len(t, clause.Base, 1)
	assert.Equal(t, "is_active", clause.Base[0].Field)
	assert.Equal(t, true, clause.Base[0].Value)
	require.Len(t, clause.Conditions, 1)
	assert.Equal(t, "status", clause.Conditions[0].Field)
}

func TestApplyKeepsBaselineOutsideColumnSet(t *testing.T) {
	db := dryRunDB(t)

	clause := BuildWhereClause(map[string]string{"role": "admin"}, []Condition{
		{Field: "is_active", Op: OpEq, Value: true},
	})
	// Deliberately no is_active: the baseline must survive anyway.
	columns := []string{"role", "department", "name", "email"}

	var users []models.User
	tx := clause.Apply(db.Model(&models.User{}), columns).Find(&users)
	require.NoError(t, tx.Error)

	sql := tx.Statement.SQL.String()
	assert.Contains(t, sql, "is_active")
	assert.Contains(t, sql, "role")
}

func TestApplySkipsUserFiltersOutsideColumnSet(t *testing.T) {
	db := dryRunDB(t)

	clause := BuildWhereClause(map[string]string{"role": "admin"}, nil)

	var projects []models.Project
	tx := clause.Apply(db.Model(&models.Project{}), []string{"status", "priority", "title", "description"}).Find(&projects)
	require.NoError(t, tx.Error)

	assert.NotContains(t, tx.Statement.SQL.String(), "role")
}

func TestBuildIncludeClause(t *testing.T) {
	t.Run("resolves known relations", func(t *testing.T) {
		preloads := BuildIncludeClause([]string{"manager", "comments"})

		var paths []string
		for _, p := range preloads {
			paths = append(paths, p.Path)
		}
		assert.Equal(t, []string{"Manager", "Comments", "Comments.User"}, paths)
	})

	t.Run("comments are ordered newest first", func(t *testing.T) {
		preloads := BuildIncludeClause([]string{"comments"})

		require.NotEmpty(t, preloads)
		assert.Equal(t, "created_at DESC", preloads[0].Order)
	})

	t.Run("case-insensitive and deduplicated", func(t *testing.T) {
		preloads := BuildIncludeClause([]string{"Manager", "MANAGER", "manager"})
		require.Len(t, preloads, 1)
		assert.Equal(t, "Manager", preloads[0].Path)
	})

	t.Run("unknown names are ignored", func(t *testing.T) {
		preloads := BuildIncludeClause([]string{"passwords", "secrets"})
		assert.Empty(t, preloads)
	})

	t.Run("manager projection omits sensitive columns", func(t *testing.T) {
		preloads := BuildIncludeClause([]string{"manager"})
		require.Len(t, preloads, 1)
		assert.NotContains(t, preloads[0].Columns, "password_hash")
	})
}

func TestPaginationMeta(t *testing.T) {
	t.Run("middle page", func(t *testing.T) {
		meta := PaginationMeta(47, 2, 5)

		assert.Equal(t, int64(47), meta["total"])
		assert.Equal(t, 2, meta["page"])
		assert.Equal(t, 5, meta["limit"])
		assert.Equal(t, 10, meta["total_pages"])
		assert.Equal(t, true, meta["has_next_page"])
		assert.Equal(t, true, meta["has_prev_page"])
		assert.Equal(t, 3, meta["next_page"])
		assert.Equal(t, 1, meta["prev_page"])
	})

	t.Run("first page", func(t *testing.T) {
		meta := PaginationMeta(47, 1, 5)

		assert.Equal(t, false, meta["has_prev_page"])
		assert.Nil(t, meta["prev_page"])
		assert.Equal(t, 2, meta["next_page"])
	})

	t.Run("last page", func(t *testing.T) {
		meta := PaginationMeta(47, 10, 5)

		assert.Equal(t, false, meta["has_next_page"])
		assert.Nil(t, meta["next_page"])
		assert.Equal(t, 9, meta["prev_page"])
	})

	t.Run("empty result", func(t *testing.T) {
		meta := PaginationMeta(0, 1, 10)

		assert.Equal(t, 0, meta["total_pages"])
		assert.Equal(t, false, meta["has_next_page"])
		assert.Equal(t, false, meta["has_prev_page"])
	})
}

// Full translation of a representative list request.
func TestParseQueryContextFullRequest(t *testing.T) {
	qc := ParseQueryContext(getterFor(map[string]string{
		"status":  "active",
		"include": "manager,comments",
		"page":    "2",
		"limit":   "5",
	}))

	assert.Equal(t, 2, qc.Pagination.Page)
	assert.Equal(t, 5, qc.Pagination.Limit)
	assert.Equal(t, 5, qc.Pagination.Offset())

	clause := BuildWhereClause(qc.Filters, nil)
	require.Len(t, clause.Conditions, 1)
	assert.Equal(t, "ACTIVE", clause.Conditions[0].Value)

	preloads := BuildIncludeClause(qc.Include)
	assert.Len(t, preloads, 3)
}
