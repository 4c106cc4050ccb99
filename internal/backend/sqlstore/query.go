package sqlstore

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"zheliyou/internal/domain"
)

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// selectList renders q.Columns ("*" or a comma list) after checking every name.
func selectList(table, columns string, types map[string]string) (string, error) {
	columns = strings.TrimSpace(columns)
	if columns == "" || columns == "*" {
		return "*", nil
	}
	parts := strings.Split(columns, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			continue
		}
		if _, ok := types[name]; !ok {
			return "", unknownColumn(table, name)
		}
		out = append(out, quoteIdent(name))
	}
	if len(out) == 0 {
		return "*", nil
	}
	return strings.Join(out, ", "), nil
}

// whereClause renders q's filters as " WHERE ..." with placeholders.
// Filters are ANDed; AnyOf is one ORed group.
func whereClause(table string, q domain.Query, types map[string]string) (string, []any, error) {
	var (
		conds []string
		args  []any
	)
	for _, f := range q.Filters {
		cond, a, err := condition(table, f, types)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, cond)
		args = append(args, a...)
	}
	if len(q.AnyOf) > 0 {
		var group []string
		for _, f := range q.AnyOf {
			cond, a, err := condition(table, f, types)
			if err != nil {
				return "", nil, err
			}
			group = append(group, cond)
			args = append(args, a...)
		}
		conds = append(conds, "("+strings.Join(group, " OR ")+")")
	}
	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func condition(table string, f domain.Filter, types map[string]string) (string, []any, error) {
	if err := f.Validate(); err != nil {
		return "", nil, err
	}
	if _, ok := types[f.Field]; !ok {
		return "", nil, unknownColumn(table, f.Field)
	}
	col := quoteIdent(f.Field)

	switch f.Op {
	case domain.OpEq:
		if f.Value == nil {
			return col + " IS NULL", nil, nil
		}
		return col + " = ?", []any{filterArg(f.Value)}, nil
	case domain.OpNeq:
		if f.Value == nil {
			return col + " IS NOT NULL", nil, nil
		}
		return col + " <> ?", []any{filterArg(f.Value)}, nil
	case domain.OpGt:
		return col + " > ?", []any{filterArg(f.Value)}, nil
	case domain.OpGte:
		return col + " >= ?", []any{filterArg(f.Value)}, nil
	case domain.OpLt:
		return col + " < ?", []any{filterArg(f.Value)}, nil
	case domain.OpLte:
		return col + " <= ?", []any{filterArg(f.Value)}, nil
	case domain.OpLike:
		return col + " LIKE ?", []any{likePattern(f.ValueString())}, nil
	case domain.OpIlike:
		return "LOWER(" + col + ") LIKE LOWER(?)", []any{likePattern(f.ValueString())}, nil
	case domain.OpIs:
		switch strings.ToLower(f.ValueString()) {
		case "null":
			return col + " IS NULL", nil, nil
		case "true":
			return col + " IS TRUE", nil, nil
		case "false":
			return col + " IS FALSE", nil, nil
		}
		return "", nil, domain.ValidationError{Field: "filter", Msg: fmt.Sprintf("is expects null, true or false, got %q", f.ValueString())}
	case domain.OpIn:
		values := f.Values()
		if len(values) == 0 {
			return "1 = 0", nil, nil
		}
		args := make([]any, 0, len(values))
		for _, v := range values {
			args = append(args, v)
		}
		return col + " IN (" + placeholders(len(values)) + ")", args, nil
	}
	return "", nil, domain.ValidationError{Field: "filter", Msg: fmt.Sprintf("unsupported operator %q", f.Op)}
}

func orderClause(table string, order []domain.Sort, types map[string]string) (string, error) {
	if len(order) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(order))
	for _, s := range order {
		if _, ok := types[s.Field]; !ok {
			return "", unknownColumn(table, s.Field)
		}
		dir := "DESC"
		if s.Ascending() {
			dir = "ASC"
		}
		parts = append(parts, quoteIdent(s.Field)+" "+dir)
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// limitClause caps single-row reads at two rows, enough to detect ambiguity.
func limitClause(q domain.Query) string {
	switch {
	case q.Limit > 0:
		return " LIMIT " + strconv.Itoa(q.Limit)
	case q.Single:
		return " LIMIT 2"
	}
	return ""
}

func buildSelect(table string, q domain.Query, types map[string]string) (string, []any, error) {
	cols, err := selectList(table, q.Columns, types)
	if err != nil {
		return "", nil, err
	}
	where, args, err := whereClause(table, q, types)
	if err != nil {
		return "", nil, err
	}
	order, err := orderClause(table, q.Order, types)
	if err != nil {
		return "", nil, err
	}
	return "SELECT " + cols + " FROM " + quoteIdent(table) + where + order + limitClause(q), args, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func likePattern(v string) string {
	return strings.ReplaceAll(v, "*", "%")
}

func filterArg(v any) any {
	switch t := v.(type) {
	case bool:
		if t {
			return 1
		}
		return 0
	}
	return v
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
