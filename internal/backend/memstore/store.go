// Package memstore is an in-process backend.Client. It keeps every table in
// memory and is meant for local development and tests; nothing is persisted.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"zheliyou/internal/backend"
	"zheliyou/internal/domain"
	"zheliyou/internal/domain/models"
	"zheliyou/internal/realtime"
	"zheliyou/internal/remote"
)

type user struct {
	principal models.Principal
	password  string
}

type state struct {
	mu     sync.Mutex
	tables map[string][]map[string]any
	users  map[string]*user
	tokens map[string]string

	failNext error
	calls    []string
	last     domain.Query
}

// Store shares its state with every copy returned by WithToken.
type Store struct {
	st    *state
	hub   *realtime.Hub
	token string
	now   func() time.Time
}

var _ backend.Client = (*Store)(nil)

func New() *Store {
	return &Store{
		st: &state{
			tables: map[string][]map[string]any{},
			users:  map[string]*user{},
			tokens: map[string]string{},
		},
		hub: realtime.NewHub(),
		now: time.Now,
	}
}

// Seed appends rows to table as they are, without publishing events.
func (s *Store) Seed(table string, rows ...any) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for _, r := range rows {
		row, err := toRow(r)
		if err != nil {
			panic(fmt.Sprintf("memstore: seed %s: %v", table, err))
		}
		s.st.tables[table] = append(s.st.tables[table], row)
	}
}

// Rows returns a copy of the rows currently in table.
func (s *Store) Rows(table string) []map[string]any {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	out := make([]map[string]any, 0, len(s.st.tables[table]))
	for _, r := range s.st.tables[table] {
		out = append(out, copyRow(r))
	}
	return out
}

// FailNext makes the next call of any kind return err.
func (s *Store) FailNext(err error) {
	s.st.mu.Lock()
	s.st.failNext = err
	s.st.mu.Unlock()
}

// Calls lists the calls made so far, e.g. "select trips".
func (s *Store) Calls() []string {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return append([]string{}, s.st.calls...)
}

// LastQuery returns the query of the most recent Select.
func (s *Store) LastQuery() domain.Query {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return s.st.last
}

func (s *Store) WithToken(token string) backend.Client {
	cp := *s
	cp.token = strings.TrimSpace(token)
	return &cp
}

func (s *Store) Subscribe(table string, filters []domain.Filter, listener realtime.Listener) (*realtime.Subscription, error) {
	return s.hub.NewSubscription(table, filters, listener, realtime.Hooks{})
}

// begin locks the state and records call; callers must unlock.
func (s *Store) begin(ctx context.Context, call string) error {
	s.st.mu.Lock()
	s.st.calls = append(s.st.calls, call)
	if err := s.st.failNext; err != nil {
		s.st.failNext = nil
		return err
	}
	if ctx != nil {
		return ctx.Err()
	}
	return nil
}

func (s *Store) publish(t models.ChangeType, table string, newRow, oldRow map[string]any) {
	s.hub.Publish(models.ChangeEvent{
		Type:            t,
		Schema:          "public",
		Table:           table,
		New:             newRow,
		Old:             oldRow,
		CommitTimestamp: s.now().UTC(),
	})
}

var (
	errInvalidCredentials = &remote.ServiceError{Status: 400, Code: "invalid_credentials", Message: "Invalid login credentials"}
	errSessionMissing     = &remote.ServiceError{Status: 401, Code: "session_missing", Message: "Auth session missing!"}
	errUserExists         = &remote.ServiceError{Status: 422, Code: "user_already_exists", Message: "User already registered"}
)

func (s *Store) SignUp(ctx context.Context, creds models.Credentials) (models.Session, error) {
	err := s.begin(ctx, "sign_up")
	defer s.st.mu.Unlock()
	if err != nil {
		return models.Session{}, err
	}
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || creds.Password == "" {
		return models.Session{}, &remote.ServiceError{Status: 400, Code: "validation_failed", Message: "email and password are required"}
	}
	if _, ok := s.st.users[email]; ok {
		return models.Session{}, errUserExists
	}
	now := s.now().UTC()
	u := &user{
		principal: models.Principal{ID: uuid.NewString(), Email: email, Role: "authenticated", Metadata: creds.Metadata, CreatedAt: &now},
		password:  creds.Password,
	}
	s.st.users[email] = u
	return s.sessionLocked(u), nil
}

func (s *Store) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	err := s.begin(ctx, "sign_in")
	defer s.st.mu.Unlock()
	if err != nil {
		return models.Session{}, err
	}
	u, ok := s.st.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok || u.password != password {
		return models.Session{}, errInvalidCredentials
	}
	return s.sessionLocked(u), nil
}

func (s *Store) SignOut(ctx context.Context) error {
	err := s.begin(ctx, "sign_out")
	defer s.st.mu.Unlock()
	if err != nil {
		return err
	}
	if _, ok := s.st.tokens[s.token]; !ok || s.token == "" {
		return errSessionMissing
	}
	delete(s.st.tokens, s.token)
	return nil
}

func (s *Store) CurrentUser(ctx context.Context) (models.Principal, error) {
	err := s.begin(ctx, "current_user")
	defer s.st.mu.Unlock()
	if err != nil {
		return models.Principal{}, err
	}
	email, ok := s.st.tokens[s.token]
	if !ok || s.token == "" {
		return models.Principal{}, errSessionMissing
	}
	return s.st.users[email].principal, nil
}

func (s *Store) sessionLocked(u *user) models.Session {
	token := uuid.NewString()
	s.st.tokens[token] = u.principal.Email
	return models.Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   3600,
		ExpiresAt:   s.now().Add(time.Hour).Unix(),
		User:        u.principal,
	}
}

func (s *Store) Select(ctx context.Context, table string, q domain.Query, out any) error {
	err := s.begin(ctx, "select "+table)
	defer s.st.mu.Unlock()
	if err != nil {
		return err
	}
	if err := q.Validate(); err != nil {
		return err
	}
	s.st.last = q

	rows := []map[string]any{}
	for _, row := range s.st.tables[table] {
		if matches(row, q) {
			rows = append(rows, copyRow(row))
		}
	}
	sortRows(rows, q.Order)
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return decodeInto(rows, q.Single, out)
}

func (s *Store) Insert(ctx context.Context, table string, record any, out any) error {
	err := s.begin(ctx, "insert "+table)
	defer s.st.mu.Unlock()
	if err != nil {
		return err
	}
	row, err := toRow(record)
	if err != nil {
		return err
	}
	if id, _ := row["id"].(string); id == "" {
		row["id"] = uuid.NewString()
	}
	for _, existing := range s.st.tables[table] {
		if existing["id"] == row["id"] {
			return &remote.ServiceError{Status: 409, Code: backend.CodeUniqueViolation, Message: "duplicate key value violates unique constraint"}
		}
	}
	now := s.now().UTC().Format(time.RFC3339Nano)
	if _, ok := row["created_at"]; !ok {
		row["created_at"] = now
	}
	s.st.tables[table] = append(s.st.tables[table], row)
	s.publish(models.ChangeInsert, table, copyRow(row), nil)
	if out == nil {
		return nil
	}
	return decodeInto([]map[string]any{row}, !isSlicePtr(out), out)
}

func (s *Store) Update(ctx context.Context, table string, q domain.Query, patch any, out any) error {
	err := s.begin(ctx, "update "+table)
	defer s.st.mu.Unlock()
	if err != nil {
		return err
	}
	if err := writeFilter(q); err != nil {
		return err
	}
	changes, err := toRow(patch)
	if err != nil {
		return err
	}
	delete(changes, "id")
	changes["updated_at"] = s.now().UTC().Format(time.RFC3339Nano)

	var targets []map[string]any
	for _, row := range s.st.tables[table] {
		if matches(row, q) {
			targets = append(targets, row)
		}
	}
	if q.Single && len(targets) != 1 {
		return &remote.ServiceError{Status: 406, Code: backend.CodeSingleRow, Message: backend.MsgSingleRow}
	}
	updated := make([]map[string]any, 0, len(targets))
	for _, row := range targets {
		old := copyRow(row)
		for k, v := range changes {
			row[k] = v
		}
		updated = append(updated, copyRow(row))
		s.publish(models.ChangeUpdate, table, copyRow(row), old)
	}
	if out == nil {
		return nil
	}
	return decodeInto(updated, q.Single, out)
}

func (s *Store) Delete(ctx context.Context, table string, q domain.Query) error {
	err := s.begin(ctx, "delete "+table)
	defer s.st.mu.Unlock()
	if err != nil {
		return err
	}
	if err := writeFilter(q); err != nil {
		return err
	}
	kept := make([]map[string]any, 0, len(s.st.tables[table]))
	for _, row := range s.st.tables[table] {
		if matches(row, q) {
			s.publish(models.ChangeDelete, table, nil, copyRow(row))
			continue
		}
		kept = append(kept, row)
	}
	s.st.tables[table] = kept
	return nil
}

func writeFilter(q domain.Query) error {
	if err := q.Validate(); err != nil {
		return err
	}
	if len(q.Filters) == 0 && len(q.AnyOf) == 0 {
		return domain.ValidationError{Field: "filter", Msg: "writes need at least one filter"}
	}
	return nil
}

func matches(row map[string]any, q domain.Query) bool {
	for _, f := range q.Filters {
		if !filterMatches(row, f) {
			return false
		}
	}
	if len(q.AnyOf) == 0 {
		return true
	}
	for _, f := range q.AnyOf {
		if filterMatches(row, f) {
			return true
		}
	}
	return false
}

func filterMatches(row map[string]any, f domain.Filter) bool {
	v, present := row[f.Field]
	if !present {
		v = nil
	}
	switch f.Op {
	case domain.OpEq:
		if f.Value == nil {
			return v == nil
		}
		return v != nil && render(v) == f.ValueString()
	case domain.OpNeq:
		if f.Value == nil {
			return v != nil
		}
		return v != nil && render(v) != f.ValueString()
	case domain.OpGt, domain.OpGte, domain.OpLt, domain.OpLte:
		if v == nil {
			return false
		}
		c := compare(v, f.ValueString())
		switch f.Op {
		case domain.OpGt:
			return c > 0
		case domain.OpGte:
			return c >= 0
		case domain.OpLt:
			return c < 0
		}
		return c <= 0
	case domain.OpLike:
		return v != nil && likeMatch(render(v), f.ValueString(), false)
	case domain.OpIlike:
		return v != nil && likeMatch(render(v), f.ValueString(), true)
	case domain.OpIs:
		switch strings.ToLower(f.ValueString()) {
		case "null":
			return v == nil
		case "true":
			return v == true
		case "false":
			return v == false
		}
		return false
	case domain.OpIn:
		if v == nil {
			return false
		}
		got := render(v)
		for _, want := range f.Values() {
			if got == want {
				return true
			}
		}
	}
	return false
}

// render prints a decoded JSON value the way it would appear in a filter.
func render(v any) string {
	if n, ok := v.(float64); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func compare(v any, want string) int {
	if n, ok := v.(float64); ok {
		if w, err := strconv.ParseFloat(want, 64); err == nil {
			switch {
			case n < w:
				return -1
			case n > w:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(render(v), want)
}

// likeMatch supports the * and % wildcards.
func likeMatch(s, pattern string, fold bool) bool {
	if fold {
		s, pattern = strings.ToLower(s), strings.ToLower(pattern)
	}
	if !strings.ContainsAny(pattern, "*%") {
		return s == pattern
	}
	parts := strings.FieldsFunc(pattern, func(r rune) bool { return r == '*' || r == '%' })
	anchoredStart := !strings.HasPrefix(pattern, "*") && !strings.HasPrefix(pattern, "%")
	anchoredEnd := !strings.HasSuffix(pattern, "*") && !strings.HasSuffix(pattern, "%")
	if len(parts) == 0 {
		return true
	}
	pos := 0
	for i, part := range parts {
		idx := strings.Index(s[pos:], part)
		if idx < 0 || (i == 0 && anchoredStart && idx != 0) {
			return false
		}
		pos += idx + len(part)
	}
	return !anchoredEnd || strings.HasSuffix(s, parts[len(parts)-1])
}

func sortRows(rows []map[string]any, order []domain.Sort) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range order {
			a, b := rows[i][o.Field], rows[j][o.Field]
			if reflect.DeepEqual(a, b) {
				continue
			}
			// nulls last in both directions
			if a == nil || b == nil {
				return b == nil
			}
			less := compare(a, render(b)) < 0
			if o.Ascending() {
				return less
			}
			return !less
		}
		return false
	})
}

func decodeInto(rows []map[string]any, single bool, out any) error {
	if out == nil {
		return nil
	}
	if single {
		if len(rows) != 1 {
			return &remote.ServiceError{Status: 406, Code: backend.CodeSingleRow, Message: backend.MsgSingleRow}
		}
		return convert(rows[0], out)
	}
	return convert(rows, out)
}

func toRow(v any) (map[string]any, error) {
	row := map[string]any{}
	if err := convert(v, &row); err != nil {
		return nil, domain.ValidationError{Field: "record", Msg: "must encode to a JSON object", Err: err}
	}
	return row, nil
}

func convert(in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func copyRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

func isSlicePtr(out any) bool {
	v := reflect.ValueOf(out)
	return v.Kind() == reflect.Pointer && v.Elem().Kind() == reflect.Slice
}
