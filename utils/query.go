package utils

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination holds the clamped page window for a list request.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (p Pagination) Offset() int { return (p.Page - 1) * p.Limit }

// Flags are the boolean query toggles; true only for the literal string "true".
type Flags struct {
	Analytics bool `json:"analytics"`
	Workload  bool `json:"workload"`
	Count     bool `json:"count"`
}

// QueryContext is the structured form of a list request's query string.
// Parsing never fails; ValidatePagination rejects out-of-range values later.
type QueryContext struct {
	Pagination Pagination
	Filters    map[string]string
	Include    []string
	Flags      Flags

	// Entity-specific filters, passed through as-is.
	Manager  string
	Assignee string
	Creator  string
	Unread   bool
	Type     string
}

// filterFields is the fixed allow-list of generic filter keys.
var filterFields = []string{"status", "priority", "role", "department", "search"}

// ParseQueryContext extracts pagination, filters, include list and flags from
// a query-value getter. Non-numeric pagination input falls back to defaults.
func ParseQueryContext(get func(key string) string) *QueryContext {
	qc := &QueryContext{
		Pagination: Pagination{Page: DefaultPage, Limit: DefaultLimit},
		Filters:    make(map[string]string),
	}

	if raw := get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			if page < 1 {
				page = 1
			}
			qc.Pagination.Page = page
		}
	}
	if raw := get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			if limit < 1 {
				limit = 1
			}
			if limit > MaxLimit {
				limit = MaxLimit
			}
			qc.Pagination.Limit = limit
		}
	}

	for _, field := range filterFields {
		if v := get(field); v != "" {
			qc.Filters[field] = v
		}
	}

	if raw := get("include"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				qc.Include = append(qc.Include, trimmed)
			}
		}
	}

	qc.Flags = Flags{
		Analytics: get("analytics") == "true",
		Workload:  get("workload") == "true",
		Count:     get("count") == "true",
	}

	qc.Manager = get("manager")
	qc.Assignee = get("assignee")
	qc.Creator = get("creator")
	qc.Unread = get("unread") == "true"
	qc.Type = get("type")

	return qc
}

// Condition operators understood by the store layer.
const (
	OpEq        = "eq"
	OpIContains = "icontains"
)

// Condition is one field predicate in a conjunction.
type Condition struct {
	Field string
	Op    string
	Value interface{}
}

// WhereClause is a backend-neutral predicate tree: handler-supplied baseline
// conditions, a conjunction of user filter conditions, plus an optional
// OR-group free-text search. Baselines always apply; only the user-supplied
// parts are subject to the entity column intersection.
type WhereClause struct {
	Base       []Condition
	Conditions []Condition
	Search     string
}

// searchableFields the OR search ranges over. Fields absent from the target
// entity are inert.
var searchableFields = []string{"name", "title", "description", "email"}

// BuildWhereClause turns the allow-listed filters into a predicate tree.
// Baseline conditions always apply in conjunction and cannot be overridden by
// user filters. Enum filters are uppercased to match the stored representation.
func BuildWhereClause(filters map[string]string, base []Condition) WhereClause {
	clause := WhereClause{Base: append([]Condition{}, base...)}

	if search, ok := filters["search"]; ok {
		clause.Search = search
	}
	if status, ok := filters["status"]; ok {
		clause.Conditions = append(clause.Conditions, Condition{
			Field: "status",
			Op:    OpEq,
			Value: strings.ReplaceAll(strings.ToUpper(status), "-", "_"),
		})
	}
	if priority, ok := filters["priority"]; ok {
		clause.Conditions = append(clause.Conditions, Condition{
			Field: "priority",
			Op:    OpEq,
			Value: strings.ToUpper(priority),
		})
	}
	if role, ok := filters["role"]; ok {
		clause.Conditions = append(clause.Conditions, Condition{
			Field: "role",
			Op:    OpEq,
			Value: strings.ToUpper(role),
		})
	}
	if department, ok := filters["department"]; ok {
		clause.Conditions = append(clause.Conditions, Condition{
			Field: "department",
			Op:    OpIContains,
			Value: department,
		})
	}

	return clause
}

// Apply attaches the predicate tree to a GORM query. columns is the set of
// filterable columns the target entity actually has; user conditions and
// search fields outside it are skipped rather than erroring. Baseline
// conditions come from the handler, not the request, and apply regardless of
// the column set.
func (w WhereClause) Apply(tx *gorm.DB, columns []string) *gorm.DB {
	for _, cond := range w.Base {
		tx = applyCondition(tx, cond)
	}

	has := make(map[string]bool, len(columns))
	for _, c := range columns {
		has[c] = true
	}

	for _, cond := range w.Conditions {
		if !has[cond.Field] {
			continue
		}
		tx = applyCondition(tx, cond)
	}

	if w.Search != "" {
		var parts []string
		var args []interface{}
		for _, field := range searchableFields {
			if !has[field] {
				continue
			}
			parts = append(parts, field+" ILIKE ?")
			args = append(args, "%"+w.Search+"%")
		}
		if len(parts) > 0 {
			tx = tx.Where(strings.Join(parts, " OR "), args...)
		}
	}

	return tx
}

func applyCondition(tx *gorm.DB, cond Condition) *gorm.DB {
	switch cond.Op {
	case OpIContains:
		return tx.Where(cond.Field+" ILIKE ?", "%"+toString(cond.Value)+"%")
	default:
		return tx.Where(cond.Field+" = ?", cond.Value)
	}
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// Preload describes one relation to eagerly fetch: the GORM association path,
// the projected columns (nil means the full record) and an optional ordering.
type Preload struct {
	Path    string
	Columns []string
	Order   string
}

// includeTable is the capability allow-list of requestable relations. Foreign
// key columns ride along in the projections so GORM can stitch associations.
var includeTable = map[string][]Preload{
	"manager": {
		{Path: "Manager", Columns: []string{"id", "name", "email", "role", "designation"}},
	},
	"assignments": {
		{Path: "Assignments"},
		{Path: "Assignments.Employee", Columns: []string{"id", "name", "email", "role"}},
	},
	"milestones": {
		{Path: "Milestones"},
	},
	"comments": {
		{Path: "Comments", Order: "created_at DESC"},
		{Path: "Comments.User", Columns: []string{"id", "name", "avatar"}},
	},
	"assignee": {
		{Path: "Assignee", Columns: []string{"id", "name", "email", "role"}},
	},
	"creator": {
		{Path: "Creator", Columns: []string{"id", "name", "email", "role"}},
	},
	"subordinates": {
		{Path: "Subordinates", Columns: []string{"id", "name", "email", "role", "is_active", "manager_id"}},
	},
	"managedprojects": {
		{Path: "ManagedProjects", Columns: []string{"id", "title", "status", "priority", "manager_id"}},
	},
}

// BuildIncludeClause resolves requested relation names (case-insensitive)
// against the allow-list. Unknown names are silently ignored.
func BuildIncludeClause(include []string) []Preload {
	var preloads []Preload
	seen := make(map[string]bool)
	for _, name := range include {
		key := strings.ToLower(strings.TrimSpace(name))
		entries, ok := includeTable[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		preloads = append(preloads, entries...)
	}
	return preloads
}

// ApplyIncludes attaches the resolved preloads to a GORM query. Associations
// the target model does not have are skipped by matching against paths.
func ApplyIncludes(tx *gorm.DB, preloads []Preload, associations []string) *gorm.DB {
	valid := make(map[string]bool, len(associations))
	for _, a := range associations {
		valid[a] = true
	}

	for _, p := range preloads {
		root := strings.SplitN(p.Path, ".", 2)[0]
		if !valid[root] {
			continue
		}
		preload := p
		tx = tx.Preload(preload.Path, func(db *gorm.DB) *gorm.DB {
			if len(preload.Columns) > 0 {
				db = db.Select(preload.Columns)
			}
			if preload.Order != "" {
				db = db.Order(preload.Order)
			}
			return db
		})
	}
	return tx
}

// PaginationMeta builds the metadata envelope for a paginated list response.
func PaginationMeta(total int64, page, limit int) fiber.Map {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	hasNext := page < totalPages
	hasPrev := page > 1

	meta := fiber.Map{
		"total":         total,
		"page":          page,
		"limit":         limit,
		"total_pages":   totalPages,
		"has_next_page": hasNext,
		"has_prev_page": hasPrev,
		"next_page":     nil,
		"prev_page":     nil,
	}
	if hasNext {
		meta["next_page"] = page + 1
	}
	if hasPrev {
		meta["prev_page"] = page - 1
	}
	return meta
}
