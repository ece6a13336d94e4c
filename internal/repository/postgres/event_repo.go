package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"eventboard/internal/domain"
)

const eventColumns = `id, title, date, location, type, description, registration_link, flyers, photos, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, date, location, type, description, registration_link, flyers, photos, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Date.Format(domain.DateLayout), e.Location, e.Type, e.Description, e.RegistrationLink,
		pq.Array(nonNil(e.Flyers)), pq.Array(nonNil(e.Photos)), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// FindWhere lists events inside the filter's inclusive date range. Ties on date are broken by id.
func (r *eventRepository) FindWhere(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.From != nil {
		args = append(args, f.From.Format(domain.DateLayout))
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, f.To.Format(domain.DateLayout))
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}
	query := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if f.Order == domain.SortDescending {
		query += ` ORDER BY date DESC, id DESC`
	} else {
		query += ` ORDER BY date ASC, id ASC`
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Adjacent(ctx context.Context, e *domain.Event) (*domain.Event, *domain.Event, error) {
	date := e.Date.Format(domain.DateLayout)
	prev, err := r.adjacent(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE (date, id) < ($1::date, $2::uuid)
		ORDER BY date DESC, id DESC
		LIMIT 1
	`, date, e.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("previous event: %w", err)
	}
	next, err := r.adjacent(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE (date, id) > ($1::date, $2::uuid)
		ORDER BY date ASC, id ASC
		LIMIT 1
	`, date, e.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("next event: %w", err)
	}
	return prev, next, nil
}

func (r *eventRepository) adjacent(ctx context.Context, query, date, id string) (*domain.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, date, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// UpdateFields applies the non-nil fields of u. With nothing to change it returns the current row.
func (r *eventRepository) UpdateFields(ctx context.Context, id string, u domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	set := func(column string, v interface{}) {
		args = append(args, v)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if u.Title != nil {
		set("title", *u.Title)
	}
	if u.Date != nil {
		set("date", u.Date.Format(domain.DateLayout))
	}
	if u.Location != nil {
		set("location", *u.Location)
	}
	if u.Type != nil {
		set("type", *u.Type)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.RegistrationLink != nil {
		set("registration_link", *u.RegistrationLink)
	}
	if u.Flyers != nil {
		set("flyers", pq.Array(nonNil(*u.Flyers)))
	}
	if u.Photos != nil {
		set("photos", pq.Array(nonNil(*u.Photos)))
	}
	if len(args) == 0 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), len(args), eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var flyers, photos []string
	err := row.Scan(
		&e.ID, &e.Title, &e.Date, &e.Location, &e.Type, &e.Description, &e.RegistrationLink,
		pq.Array(&flyers), pq.Array(&photos), &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	y, m, d := e.Date.Date()
	e.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	e.Flyers = nonNil(flyers)
	e.Photos = nonNil(photos)
	return e, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
