package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"zheliyou/internal/domain"
	"zheliyou/internal/domain/models"
)

func (s *Store) Select(ctx context.Context, table string, q domain.Query, out any) error {
	types, err := s.prepare(ctx, table, q)
	if err != nil {
		return err
	}
	query, args, err := buildSelect(table, q, types)
	if err != nil {
		return err
	}
	rows, err := s.query(ctx, types, query, args...)
	if err != nil {
		return err
	}
	return assign(rows, out, q.Single)
}

func (s *Store) Insert(ctx context.Context, table string, record any, out any) error {
	types, err := s.prepare(ctx, table, domain.Query{})
	if err != nil {
		return err
	}
	values, err := encodeRecord(table, record, types)
	if err != nil {
		return err
	}

	if _, ok := types["id"]; !ok {
		return domain.ValidationError{Field: "table", Msg: table + " has no id column"}
	}
	if isBlank(values["id"]) {
		values["id"] = uuid.NewString()
	}
	now := s.now().UTC()
	for _, col := range []string{"created_at", "updated_at"} {
		if _, ok := types[col]; ok && isBlank(values[col]) {
			values[col] = now
		}
	}

	keys := sortedKeys(values)
	cols := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		cols[i] = quoteIdent(k)
		args[i] = values[k]
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(table), strings.Join(cols, ", "), placeholders(len(keys)))
	if _, err := s.db().ExecContext(ctx, stmt, args...); err != nil {
		return translate(err)
	}

	stored, err := s.query(ctx, types, "SELECT * FROM "+quoteIdent(table)+" WHERE `id` = ?", values["id"])
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		return domain.InternalError{Msg: fmt.Sprintf("inserted row not found in %s", table)}
	}
	s.publish(models.ChangeInsert, table, stored[0], nil)
	return assign(stored, out, out != nil && !isSlicePtr(out))
}

func (s *Store) Update(ctx context.Context, table string, q domain.Query, patch any, out any) error {
	types, err := s.prepare(ctx, table, q)
	if err != nil {
		return err
	}
	if len(q.Filters) == 0 && len(q.AnyOf) == 0 {
		return domain.ValidationError{Field: "update", Msg: "refusing to update without a filter"}
	}
	values, err := encodeRecord(table, patch, types)
	if err != nil {
		return err
	}
	delete(values, "id")
	if len(values) == 0 {
		return domain.ValidationError{Field: "body", Msg: "no columns to update"}
	}
	if _, ok := types["updated_at"]; ok && isBlank(values["updated_at"]) {
		values["updated_at"] = s.now().UTC()
	}
	single := out != nil && !isSlicePtr(out)

	before, ids, err := s.matching(ctx, table, q, types)
	if err != nil {
		return err
	}
	if single && len(before) != 1 {
		return singleRowError(len(before))
	}
	if len(before) == 0 {
		return assign(before, out, false)
	}

	keys := sortedKeys(values)
	sets := make([]string, len(keys))
	args := make([]any, 0, len(keys)+len(ids))
	for i, k := range keys {
		sets[i] = quoteIdent(k) + " = ?"
		args = append(args, values[k])
	}
	args = append(args, ids...)
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE `id` IN (%s)", quoteIdent(table), strings.Join(sets, ", "), placeholders(len(ids)))
	if _, err := s.db().ExecContext(ctx, stmt, args...); err != nil {
		return translate(err)
	}

	after, err := s.query(ctx, types, "SELECT * FROM "+quoteIdent(table)+" WHERE `id` IN ("+placeholders(len(ids))+")", ids...)
	if err != nil {
		return err
	}
	old := indexByID(before)
	for _, row := range after {
		s.publish(models.ChangeUpdate, table, row, old[fmt.Sprint(row["id"])])
	}
	return assign(after, out, single)
}

func (s *Store) Delete(ctx context.Context, table string, q domain.Query) error {
	types, err := s.prepare(ctx, table, q)
	if err != nil {
		return err
	}
	if len(q.Filters) == 0 && len(q.AnyOf) == 0 {
		return domain.ValidationError{Field: "delete", Msg: "refusing to delete without a filter"}
	}

	before, ids, err := s.matching(ctx, table, q, types)
	if err != nil || len(before) == 0 {
		return err
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE `id` IN (%s)", quoteIdent(table), placeholders(len(ids)))
	if _, err := s.db().ExecContext(ctx, stmt, ids...); err != nil {
		return translate(err)
	}
	for _, row := range before {
		s.publish(models.ChangeDelete, table, nil, row)
	}
	return nil
}

func (s *Store) prepare(ctx context.Context, table string, q domain.Query) (map[string]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if err := domain.Required("table", table); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return s.columns(ctx, table)
}

// matching loads the full rows a write is about to touch, and their ids.
func (s *Store) matching(ctx context.Context, table string, q domain.Query, types map[string]string) ([]map[string]any, []any, error) {
	if _, ok := types["id"]; !ok {
		return nil, nil, domain.ValidationError{Field: "table", Msg: table + " has no id column"}
	}
	where, args, err := whereClause(table, q, types)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.query(ctx, types, "SELECT * FROM "+quoteIdent(table)+where, args...)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]any, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r["id"])
	}
	return rows, ids, nil
}

func (s *Store) query(ctx context.Context, types map[string]string, query string, args ...any) ([]map[string]any, error) {
	rows, err := s.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	return scanRows(rows, types)
}

func indexByID(rows []map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any, len(rows))
	for _, r := range rows {
		out[fmt.Sprint(r["id"])] = r
	}
	return out
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
