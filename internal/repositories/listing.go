package repositories

import (
	"fmt"
	"sort"
	"strings"

	"resto_pos_backend/internal/models"
)

// FieldMap maps public query-facing field names to actual SQL columns.
// Requests may only search/sort fields present in the map; anything
// else is silently ignored rather than rejected, since list callers
// rely on permissive behavior.
type FieldMap map[string]string

// SearchCondition builds an OR group of case-insensitive LIKE matches
// over every mapped field, e.g. "(f.name ILIKE $3 OR f.description ILIKE $4)".
// argIndex is the placeholder number the first argument should use.
// An empty search term or an empty field map yields no condition.
func SearchCondition(search string, fields FieldMap, argIndex int) (string, []interface{}) {
	if search == "" || len(fields) == 0 {
		return "", nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var parts []string
	var args []interface{}
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s ILIKE $%d", fields[name], argIndex))
		args = append(args, "%"+search+"%")
		argIndex++
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// OrderByClause translates a "col1,-col2" sort expression into an
// ORDER BY clause. A leading '-' selects descending order. Columns not
// present in the field map are skipped. Returns an empty string when no
// valid column remains.
func OrderByClause(sortExpr string, fields FieldMap) string {
	if sortExpr == "" {
		return ""
	}

	var parts []string
	for _, col := range strings.Split(sortExpr, ",") {
		direction := "ASC"
		col = strings.TrimSpace(col)
		if strings.HasPrefix(col, "-") {
			direction = "DESC"
			col = col[1:]
		}
		column, ok := fields[col]
		if !ok {
			continue
		}
		parts = append(parts, column+" "+direction)
	}
	if len(parts) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// LimitOffsetClause builds the paging tail of a list query. A limit of
// zero or less means the full unpaginated result set.
func LimitOffsetClause(opts models.ListOptions, argIndex int) (string, []interface{}) {
	if opts.Limit <= 0 {
		return "", nil
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	clause := fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	return clause, []interface{}{opts.Limit, (page - 1) * opts.Limit}
}
