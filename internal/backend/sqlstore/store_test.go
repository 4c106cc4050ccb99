package sqlstore

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zheliyou/internal/domain"
	"zheliyou/internal/domain/models"
	"zheliyou/internal/remote"
)

var fixedNow = time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)

func newStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := New(db, Options{JWTSecret: "test-secret", Now: func() time.Time { return fixedNow }})
	require.NoError(t, err)
	return s, mock
}

// expectColumns answers the information_schema lookup; pairs are name, type.
func expectColumns(mock sqlmock.Sqlmock, table string, pairs ...string) {
	rows := sqlmock.NewRows([]string{"column_name", "data_type"})
	for i := 0; i+1 < len(pairs); i += 2 {
		rows.AddRow(pairs[i], pairs[i+1])
	}
	mock.ExpectQuery(`information_schema\.columns`).WithArgs(table).WillReturnRows(rows)
}

var tripColumns = []string{
	"id", "char", "creator_id", "char", "title", "varchar", "destination", "varchar",
	"start_date", "date", "budget", "decimal", "max_members", "int", "status", "varchar",
	"created_at", "datetime", "updated_at", "datetime",
}

var matchColumns = []string{
	"id", "char", "user_id", "char", "matched_user_id", "char", "trip_id", "char",
	"score", "decimal", "status", "varchar", "created_at", "datetime", "updated_at", "datetime",
}

func tripRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "creator_id", "title", "destination", "start_date", "budget", "max_members", "status", "created_at", "updated_at"})
}

func matchRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "matched_user_id", "trip_id", "score", "status", "created_at", "updated_at"})
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(nil, Options{})
	assert.True(t, domain.IsValidation(err))
}

func TestMigrateCreatesTables(t *testing.T) {
	s, mock := newStore(t)
	for _, table := range []string{"auth_users", "revoked_tokens", "user_profiles", "trips", "matches", "attractions"} {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectDecodesTypedColumns(t *testing.T) {
	s, mock := newStore(t)
	expectColumns(mock, "trips", tripColumns...)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `trips` WHERE `creator_id` = ? ORDER BY `created_at` DESC")).
		WithArgs("u1").
		WillReturnRows(tripRows().AddRow("t1", "u1", "West Lake", "Hangzhou",
			time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), []byte("1200.50"), int64(4), "open", fixedNow, nil))

	var trips []models.Trip
	q := domain.Query{}.Where(domain.Eq("creator_id", "u1")).OrderBy("created_at", false)
	require.NoError(t, s.Select(context.Background(), domain.TableTrips, q, &trips))

	require.Len(t, trips, 1)
	assert.Equal(t, "2025-05-01", trips[0].StartDate)
	assert.Equal(t, 1200.5, trips[0].Budget)
	assert.Equal(t, 4, trips[0].MaxMembers)
	require.NotNil(t, trips[0].CreatedAt)
	assert.True(t, trips[0].CreatedAt.Equal(fixedNow))
	assert.Nil(t, trips[0].UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectCachesColumns(t *testing.T) {
	s, mock := newStore(t)
	expectColumns(mock, "trips", tripColumns...)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `trips`")).WillReturnRows(tripRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `trips`")).WillReturnRows(tripRows())

	var trips []models.Trip
	require.NoError(t, s.Select(context.Background(), domain.TableTrips, domain.Query{}, &trips))
	require.NoError(t, s.Select(context.Background(), domain.TableTrips, domain.Query{}, &trips))
	assert.Empty(t, trips)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectOrGroup(t *testing.T) {
	s, mock := newStore(t)
	expectColumns(mock, "matches", matchColumns...)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `matches` WHERE (`user_id` = ? OR `matched_user_id` = ?) ORDER BY `created_at` DESC")).
		WithArgs("u1", "u1").
		WillReturnRows(matchRows().AddRow("m1", "u2", "u1", nil, []byte("87.50"), "pending", fixedNow, fixedNow))

	q := domain.Query{AnyOf: []domain.Filter{domain.Eq("user_id", "u1"), domain.Eq("matched_user_id", "u1")}}.OrderBy("created_at", false)
	var matches []models.Match
	require.NoError(t, s.Select(context.Background(), domain.TableMatches, q, &matches))

	require.Len(t, matches, 1)
	assert.Equal(t, "", matches[0].TripID)
	assert.Equal(t, 87.5, matches[0].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectUnknownColumnIsServiceError(t *testing.T) {
	s, mock := newStore(t)
	expectColumns(mock, "trips", tripColumns...)

	var trips []models.Trip
	err := s.Select(context.Background(), domain.TableTrips, domain.Query{}.Where(domain.Eq("owner", "u1")), &trips)

	assert.True(t, remote.IsServiceError(err, "42703"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectUnknownTable(t *testing.T) {
	s, mock := newStore(t)
	expectColumns(mock, "nope")

	var rows []map[string]any
	err := s.Select(context.Background(), "nope", domain.Query{}, &rows)
	assert.True(t, remote.IsServiceError(err, "PGRST205"))
}

func TestSelectSingleWithoutRow(t *testing.T) {
	s, mock := newStore(t)
	expectColumns(mock, "trips", tripColumns...)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `trips` WHERE `id` = ? LIMIT 2")).
		WithArgs("missing").
		WillReturnRows(tripRows())

	var trip models.Trip
	err := s.Select(context.Background(), domain.TableTrips, domain.ByID("missing"), &trip)

	kind, msg := remote.Classify(err)
	assert.Equal(t, remote.KindService, kind)
	assert.Equal(t, "JSON object requested, multiple (or no) rows returned", msg)
}

func TestSelectFilterOperators(t *testing.T) {
	types := map[string]string{"city": "varchar", "rating": "decimal", "image_url": "varchar", "id": "char"}
	q := domain.Query{Filters: []domain.Filter{
		{Field: "city", Op: domain.OpIlike, Value: "*hang*"},
		{Field: "rating", Op: domain.OpGte, Value: 4.5},
		{Field: "image_url", Op: domain.OpIs, Value: nil},
		{Field: "id", Op: domain.OpIn, Value: []string{"a", "b"}},
	}, Limit: 10}

	sql, args, err := buildSelect("attractions", q, types)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `attractions` WHERE LOWER(`city`) LIKE LOWER(?) AND `rating` >= ? AND `image_url` IS NULL AND `id` IN (?, ?) LIMIT 10", sql)
	assert.Equal(t, []any{"%hang%", 4.5, "a", "b"}, args)
}

func TestInsertGeneratesIDAndPublishes(t *testing.T) {
	s, mock := newStore(t)
	events := make(chan models.ChangeEvent, 1)
	sub, err := s.Subscribe(domain.TableTrips, nil, func(e models.ChangeEvent) { events <- e })
	require.NoError(t, err)
	require.NoError(t, sub.Start(context.Background()))
	defer sub.Stop()

	expectColumns(mock, "trips", tripColumns...)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `trips` (`created_at`, `creator_id`, `destination`, `id`, `title`, `updated_at`) VALUES (?, ?, ?, ?, ?, ?)")).
		WithArgs(sqlmock.AnyArg(), "u1", "Jiaxing", sqlmock.AnyArg(), "Wuzhen", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `trips` WHERE `id` = ?")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(tripRows().AddRow("t9", "u1", "Wuzhen", "Jiaxing", nil, nil, nil, "planning", fixedNow, fixedNow))

	var stored models.Trip
	in := models.Trip{CreatorID: "u1", Title: "Wuzhen", Destination: "Jiaxing"}
	require.NoError(t, s.Insert(context.Background(), domain.TableTrips, in, &stored))
	assert.Equal(t, "t9", stored.ID)
	assert.Equal(t, "planning", stored.Status, "column default")

	select {
	case e := <-events:
		assert.Equal(t, models.ChangeInsert, e.Type)
		assert.Equal(t, "Wuzhen", e.New["title"])
	case <-time.After(time.Second):
		t.Fatal("no change event delivered")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertDuplicateKey(t *testing.T) {
	s, mock := newStore(t)
	expectColumns(mock, "user_profiles", "id", "char", "username", "varchar", "interests", "json", "created_at", "datetime", "updated_at", "datetime")
	mock.ExpectExec("INSERT INTO `user_profiles`").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'lin' for key 'uq_user_profiles_username'"})

	err := s.Insert(context.Background(), domain.TableUserProfiles, models.UserProfile{ID: "u1", Username: "lin", Interests: []string{"hiking"}}, nil)

	assert.True(t, remote.IsServiceError(err, "23505"))
	_, msg := remote.Classify(err)
	assert.Equal(t, "duplicate key value violates unique constraint", msg)
}

func TestInsertUnknownColumn(t *testing.T) {
	s, mock := newStore(t)
	expectColumns(mock, "trips", tripColumns...)

	err := s.Insert(context.Background(), domain.TableTrips, map[string]any{"nickname": "x"}, nil)
	assert.True(t, remote.IsServiceError(err, "PGRST204"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSingleRow(t *testing.T) {
	s, mock := newStore(t)
	expectColumns(mock, "matches", matchColumns...)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `matches` WHERE `id` = ?")).
		WithArgs("m1").
		WillReturnRows(matchRows().AddRow("m1", "u1", "u2", nil, nil, "pending", fixedNow, fixedNow))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `matches` SET `status` = ?, `updated_at` = ? WHERE `id` IN (?)")).
		WithArgs("accepted", sqlmock.AnyArg(), "m1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `matches` WHERE `id` IN (?)")).
		WithArgs("m1").
		WillReturnRows(matchRows().AddRow("m1", "u1", "u2", nil, nil, "accepted", fixedNow, fixedNow))

	var out models.Match
	err := s.Update(context.Background(), domain.TableMatches, domain.ByID("m1"), map[string]any{"status": "accepted"}, &out)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusAccepted, out.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSingleMissingRowDoesNotWrite(t *testing.T) {
	s, mock := newStore(t)
	expectColumns(mock, "matches", matchColumns...)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `matches` WHERE `id` = ?")).
		WithArgs("m404").
		WillReturnRows(matchRows())

	var out models.Match
	err := s.Update(context.Background(), domain.TableMatches, domain.ByID("m404"), map[string]any{"status": "accepted"}, &out)
	assert.True(t, remote.IsServiceError(err, "PGRST116"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePublishesOldRow(t *testing.T) {
	s, mock := newStore(t)
	events := make(chan models.ChangeEvent, 1)
	sub, err := s.Subscribe(domain.TableTrips, []domain.Filter{domain.Eq("creator_id", "u1")}, func(e models.ChangeEvent) { events <- e })
	require.NoError(t, err)
	require.NoError(t, sub.Start(context.Background()))
	defer sub.Stop()

	expectColumns(mock, "trips", tripColumns...)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `trips` WHERE `id` = ?")).
		WithArgs("t1").
		WillReturnRows(tripRows().AddRow("t1", "u1", "West Lake", "Hangzhou", nil, nil, nil, "open", fixedNow, fixedNow))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `trips` WHERE `id` IN (?)")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Delete(context.Background(), domain.TableTrips, domain.ByID("t1")))

	select {
	case e := <-events:
		assert.Equal(t, models.ChangeDelete, e.Type)
		assert.Equal(t, "t1", e.Old["id"])
	case <-time.After(time.Second):
		t.Fatal("no change event delivered")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWritesNeedFilter(t *testing.T) {
	s, mock := newStore(t)
	expectColumns(mock, "trips", tripColumns...)

	err := s.Delete(context.Background(), domain.TableTrips, domain.Query{})
	assert.True(t, domain.IsValidation(err))
	err = s.Update(context.Background(), domain.TableTrips, domain.Query{}, map[string]any{"title": "x"}, nil)
	assert.True(t, domain.IsValidation(err))
}

func TestTranslatePassesTransportErrors(t *testing.T) {
	err := context.DeadlineExceeded
	assert.Equal(t, err, translate(err))

	svc := translate(&mysql.MySQLError{Number: 1146, Message: "Table 'x.y' doesn't exist"})
	assert.True(t, remote.IsServiceError(svc, "1146"))
}
