package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"eventboard/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var eventRowColumns = []string{"id", "title", "date", "location", "type", "description", "registration_link", "flyers", "photos", "created_at", "updated_at"}

var stamp = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func eventRows() *sqlmock.Rows {
	return sqlmock.NewRows(eventRowColumns)
}

func addEventRow(rows *sqlmock.Rows, id, title string, date time.Time, flyers, photos string) *sqlmock.Rows {
	return rows.AddRow(id, title, date, "Hall A", "meetup", "desc", "", flyers, photos, stamp, stamp)
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			event: &domain.Event{
				Title:       "Launch",
				Date:        date,
				Location:    "Hall A",
				Description: "desc",
				Flyers:      []string{"events/flyers/a.png"},
				CreatedAt:   stamp,
				UpdatedAt:   stamp,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events \(title, date, location, type, description, registration_link, flyers, photos, created_at, updated_at\)`).
					WithArgs("Launch", "2026-07-01", "Hall A", "", "desc", "", sqlmock.AnyArg(), sqlmock.AnyArg(), stamp, stamp).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-1"))
			},
			wantID: "ev-uuid-1",
		},
		{
			name:  "db error",
			event: &domain.Event{Title: "Launch", Date: date, Description: "desc"},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Event
		wantErr error
	}{
		{
			name: "success normalizes date and arrays",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, title, date, location, type, description, registration_link, flyers, photos, created_at, updated_at FROM events WHERE id = \$1`).
					WithArgs("ev-1").
					WillReturnRows(addEventRow(eventRows(), "ev-1", "Launch",
						time.Date(2026, 7, 1, 0, 0, 0, 0, time.FixedZone("X", 3600)),
						`{events/flyers/a.png,events/flyers/b.png}`, `{}`))
			},
			want: &domain.Event{
				ID:          "ev-1",
				Title:       "Launch",
				Date:        time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
				Location:    "Hall A",
				Type:        "meetup",
				Description: "desc",
				Flyers:      []string{"events/flyers/a.png", "events/flyers/b.png"},
				Photos:      []string{},
				CreatedAt:   stamp,
				UpdatedAt:   stamp,
			},
		},
		{
			name: "not found",
			id:   "ev-missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM events WHERE id = \$1`).
					WithArgs("ev-missing").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "db error",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM events WHERE id = \$1`).
					WithArgs("ev-1").
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			got, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tt.wantErr))
				require.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_FindWhere(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		filter  domain.EventFilter
		mock    func(mock sqlmock.Sqlmock)
		wantIDs []string
		wantErr bool
	}{
		{
			name:   "no bounds ascending",
			filter: domain.EventFilter{Order: domain.SortAscending},
			mock: func(mock sqlmock.Sqlmock) {
				rows := eventRows()
				addEventRow(rows, "a", "A", from, "{}", "{}")
				addEventRow(rows, "b", "B", to, "{}", "{}")
				mock.ExpectQuery(`SELECT .* FROM events ORDER BY date ASC, id ASC`).
					WillReturnRows(rows)
			},
			wantIDs: []string{"a", "b"},
		},
		{
			name:   "from only",
			filter: domain.EventFilter{From: &from},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM events WHERE date >= \$1 ORDER BY date ASC, id ASC`).
					WithArgs("2026-01-01").
					WillReturnRows(eventRows())
			},
			wantIDs: []string{},
		},
		{
			name:   "range descending",
			filter: domain.EventFilter{From: &from, To: &to, Order: domain.SortDescending},
			mock: func(mock sqlmock.Sqlmock) {
				rows := eventRows()
				addEventRow(rows, "b", "B", to, "{}", "{}")
				mock.ExpectQuery(`SELECT .* FROM events WHERE date >= \$1 AND date <= \$2 ORDER BY date DESC, id DESC`).
					WithArgs("2026-01-01", "2026-06-14").
					WillReturnRows(rows)
			},
			wantIDs: []string{"b"},
		},
		{
			name:   "query error",
			filter: domain.EventFilter{},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			got, err := repo.FindWhere(ctx, tt.filter)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			require.Equal(t, tt.wantIDs, ids)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_Adjacent(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	current := &domain.Event{ID: "m", Date: date}

	t.Run("both neighbours", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`WHERE \(date, id\) < \(\$1::date, \$2::uuid\)\s+ORDER BY date DESC, id DESC\s+LIMIT 1`).
			WithArgs("2026-03-10", "m").
			WillReturnRows(addEventRow(eventRows(), "l", "Before", date, "{}", "{}"))
		mock.ExpectQuery(`WHERE \(date, id\) > \(\$1::date, \$2::uuid\)\s+ORDER BY date ASC, id ASC\s+LIMIT 1`).
			WithArgs("2026-03-10", "m").
			WillReturnRows(addEventRow(eventRows(), "z", "After", date.AddDate(0, 0, 1), "{}", "{}"))

		prev, next, err := NewEventRepository(db).Adjacent(ctx, current)
		require.NoError(t, err)
		require.Equal(t, "l", prev.ID)
		require.Equal(t, "z", next.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no neighbours", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`WHERE \(date, id\) <`).WillReturnRows(eventRows())
		mock.ExpectQuery(`WHERE \(date, id\) >`).WillReturnRows(eventRows())

		prev, next, err := NewEventRepository(db).Adjacent(ctx, current)
		require.NoError(t, err)
		require.Nil(t, prev)
		require.Nil(t, next)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`WHERE \(date, id\) <`).WillReturnError(sql.ErrConnDone)

		_, _, err = NewEventRepository(db).Adjacent(ctx, current)
		require.ErrorIs(t, err, sql.ErrConnDone)
	})
}

func TestEventRepository_UpdateFields(t *testing.T) {
	ctx := context.Background()
	title := "Renamed"
	date := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	flyers := []string{"events/flyers/x.png"}

	tests := []struct {
		name    string
		update  domain.EventUpdate
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name:   "partial update",
			update: domain.EventUpdate{Title: &title, Date: &date, Flyers: &flyers},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE events SET updated_at = NOW\(\), title = \$1, date = \$2, flyers = \$3\s+WHERE id = \$4\s+RETURNING`).
					WithArgs("Renamed", "2026-08-02", sqlmock.AnyArg(), "ev-1").
					WillReturnRows(addEventRow(eventRows(), "ev-1", "Renamed", date, `{events/flyers/x.png}`, "{}"))
			},
		},
		{
			name:   "empty update fetches current row",
			update: domain.EventUpdate{},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM events WHERE id = \$1`).
					WithArgs("ev-1").
					WillReturnRows(addEventRow(eventRows(), "ev-1", "Launch", date, "{}", "{}"))
			},
		},
		{
			name:   "not found",
			update: domain.EventUpdate{Title: &title},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE events SET`).
					WithArgs("Renamed", "ev-1").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			got, err := NewEventRepository(db).UpdateFields(ctx, "ev-1", tt.update)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "ev-1", got.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
					WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
					WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			err = NewEventRepository(db).Delete(ctx, "ev-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
