package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tvshow-api/internal/models"
)

type tvShowDBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const tvShowColumns = `Id, Title, ReleaseDate, Genre, Showtype, Actors, Favourite`

// TVShowRepository handles TVShow database operations
type TVShowRepository struct {
	sqlite *SQLiteDB
}

// NewTVShowRepository creates a new TVShowRepository
func NewTVShowRepository(sqliteDB *SQLiteDB) *TVShowRepository {
	return &TVShowRepository{sqlite: sqliteDB}
}

// withConn runs fn on a dedicated connection which is released on every exit path.
func (r *TVShowRepository) withConn(ctx context.Context, fn func(db tvShowDBTX) error) error {
	conn, err := r.sqlite.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn)
}

// Create inserts a new TVShow. It returns false without writing when the Id is taken.
func (r *TVShowRepository) Create(ctx context.Context, show *models.TVShow) (bool, error) {
	var created bool
	err := r.withConn(ctx, func(db tvShowDBTX) error {
		exists, err := r.exists(ctx, db, show.ID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		result, err := db.ExecContext(ctx, `
			INSERT INTO TvShows (Id, Title, ReleaseDate, Genre, Showtype, Actors, Favourite)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, show.ID, show.Title, formatReleaseDate(show.ReleaseDate), show.Genre, show.ShowType, show.Actors, show.Favourite)
		if err != nil {
			return fmt.Errorf("failed to insert tv show %d: %w", show.ID, err)
		}
		created, err = singleRowAffected(result)
		return err
	})
	return created, err
}

// GetByID retrieves a TVShow by its Id. A missing row yields nil, nil.
func (r *TVShowRepository) GetByID(ctx context.Context, id int) (*models.TVShow, error) {
	var show *models.TVShow
	err := r.withConn(ctx, func(db tvShowDBTX) error {
		row := db.QueryRowContext(ctx, `SELECT `+tvShowColumns+` FROM TvShows WHERE Id = ? LIMIT 1`, id)
		s, err := scanTVShow(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get tv show %d: %w", id, err)
		}
		show = s
		return nil
	})
	return show, err
}

// GetAll retrieves every TVShow in storage order
func (r *TVShowRepository) GetAll(ctx context.Context) ([]models.TVShow, error) {
	return r.list(ctx, `SELECT `+tvShowColumns+` FROM TvShows`)
}

// GetByGenre retrieves TVShows whose genre equals genre
func (r *TVShowRepository) GetByGenre(ctx context.Context, genre string) ([]models.TVShow, error) {
	return r.list(ctx, `SELECT `+tvShowColumns+` FROM TvShows WHERE Genre = ?`, genre)
}

// GetByShowType retrieves TVShows whose show type equals showType
func (r *TVShowRepository) GetByShowType(ctx context.Context, showType string) ([]models.TVShow, error) {
	return r.list(ctx, `SELECT `+tvShowColumns+` FROM TvShows WHERE Showtype = ?`, showType)
}

// GetByFavourite retrieves TVShows flagged as favourite
func (r *TVShowRepository) GetByFavourite(ctx context.Context) ([]models.TVShow, error) {
	return r.list(ctx, `SELECT `+tvShowColumns+` FROM TvShows WHERE Favourite = ?`, models.IsFavourite)
}

// SearchByTitle retrieves TVShows whose title contains term
func (r *TVShowRepository) SearchByTitle(ctx context.Context, term string) ([]models.TVShow, error) {
	return r.list(ctx, `SELECT `+tvShowColumns+` FROM TvShows WHERE Title LIKE '%' || ? || '%'`, term)
}

// SearchActorsByTitle returns the actors of at most one TVShow whose title contains term
func (r *TVShowRepository) SearchActorsByTitle(ctx context.Context, term string) ([]string, error) {
	actors := []string{}
	err := r.withConn(ctx, func(db tvShowDBTX) error {
		rows, err := db.QueryContext(ctx, `SELECT Actors FROM TvShows WHERE Title LIKE '%' || ? || '%' LIMIT 1`, term)
		if err != nil {
			return fmt.Errorf("failed to search actors: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var a sql.NullString
			if err := rows.Scan(&a); err != nil {
				return err
			}
			if a.Valid {
				actors = append(actors, a.String)
			}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return actors, nil
}

// Update overwrites every mutable column of an existing TVShow.
// It returns false without writing when no row has the Id.
func (r *TVShowRepository) Update(ctx context.Context, show *models.TVShow) (bool, error) {
	var updated bool
	err := r.withConn(ctx, func(db tvShowDBTX) error {
		exists, err := r.exists(ctx, db, show.ID)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}

		result, err := db.ExecContext(ctx, `
			UPDATE TvShows
			SET Title = ?, ReleaseDate = ?, Genre = ?, Showtype = ?, Actors = ?, Favourite = ?
			WHERE Id = ?
		`, show.Title, formatReleaseDate(show.ReleaseDate), show.Genre, show.ShowType, show.Actors, show.Favourite, show.ID)
		if err != nil {
			return fmt.Errorf("failed to update tv show %d: %w", show.ID, err)
		}
		updated, err = singleRowAffected(result)
		return err
	})
	return updated, err
}

// Delete removes a TVShow. It returns false when no row has the Id.
func (r *TVShowRepository) Delete(ctx context.Context, id int) (bool, error) {
	var deleted bool
	err := r.withConn(ctx, func(db tvShowDBTX) error {
		result, err := db.ExecContext(ctx, `DELETE FROM TvShows WHERE Id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete tv show %d: %w", id, err)
		}
		deleted, err = singleRowAffected(result)
		return err
	})
	return deleted, err
}

// Count returns the number of stored TVShows
func (r *TVShowRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.withConn(ctx, func(db tvShowDBTX) error {
		return db.QueryRowContext(ctx, `SELECT COUNT(*) FROM TvShows`).Scan(&n)
	})
	return n, err
}

// Ping verifies the underlying database is reachable
func (r *TVShowRepository) Ping(ctx context.Context) error {
	return r.sqlite.Ping(ctx)
}

func (r *TVShowRepository) exists(ctx context.Context, db tvShowDBTX, id int) (bool, error) {
	var found int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM TvShows WHERE Id = ? LIMIT 1`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check tv show %d: %w", id, err)
	}
	return true, nil
}

func (r *TVShowRepository) list(ctx context.Context, query string, args ...any) ([]models.TVShow, error) {
	shows := []models.TVShow{}
	err := r.withConn(ctx, func(db tvShowDBTX) error {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to query tv shows: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			show, err := scanTVShow(rows)
			if err != nil {
				return err
			}
			shows = append(shows, *show)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return shows, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTVShow(row rowScanner) (*models.TVShow, error) {
	var (
		show        models.TVShow
		releaseDate string
		genre       sql.NullString
		showType    sql.NullString
		actors      sql.NullString
		favourite   sql.NullInt64
	)
	if err := row.Scan(&show.ID, &show.Title, &releaseDate, &genre, &showType, &actors, &favourite); err != nil {
		return nil, err
	}

	// Rows written by other tools may use any of the accepted layouts
	parsed, err := models.ParseDateTime(releaseDate)
	if err != nil {
		return nil, fmt.Errorf("tv show %d: %w", show.ID, err)
	}
	show.ReleaseDate = parsed
	show.Genre = nullableString(genre)
	show.ShowType = nullableString(showType)
	show.Actors = nullableString(actors)
	show.Favourite = int(favourite.Int64)
	return &show, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// formatReleaseDate keeps the caller's offset so reads return the same value that was written
func formatReleaseDate(d models.DateTime) string {
	return d.Format(time.RFC3339Nano)
}

func singleRowAffected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
