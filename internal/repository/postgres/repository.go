package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/sirupsen/logrus"

	"github.com/gfdmit/web-forum/board-service/config"
	"github.com/gfdmit/web-forum/board-service/internal/model"
	"github.com/gfdmit/web-forum/board-service/internal/repository"

	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const selectPosts = "SELECT id, title, description, contact, comments, created_at FROM board.posts"

type postgresRepository struct {
	db *sql.DB
}

func New(ctx context.Context, conf config.Postgres, log *logrus.Logger) (*postgresRepository, error) {
	db, err := sql.Open("postgres", conf.URL())
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres.WithInstance: %w", err)
	}
	migrations := fmt.Sprintf("file://%v", conf.Migrations)
	m, err := migrate.NewWithDatabaseInstance(migrations, conf.DB, driver)
	if err != nil {
		return nil, fmt.Errorf("migrate.NewWithDatabaseInstance: %w", err)
	}
	log.Info("[POSTGRES] applying migrations...")
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("error when migrating: %w", err)
		}
		log.Info("[POSTGRES] nothing to migrate")
	} else {
		log.Info("[POSTGRES] migrated successfully")
	}

	return &postgresRepository{
		db: db,
	}, nil
}

func (pr *postgresRepository) ListPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := pr.db.QueryContext(ctx, selectPosts+" ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

func (pr *postgresRepository) CreatePost(ctx context.Context, p model.Post) (model.Post, error) {
	p.CreatedAt = p.CreatedAt.UTC().Truncate(time.Microsecond)
	comments, err := encodeComments(p.Comments)
	if err != nil {
		return model.Post{}, err
	}

	var id int64
	err = pr.db.QueryRowContext(ctx,
		"INSERT INTO board.posts (title, description, contact, comments, created_at) VALUES($1, $2, $3, $4, $5) RETURNING id",
		p.Title, p.Description, p.Contact, comments, p.CreatedAt).Scan(&id)
	if err != nil {
		return model.Post{}, err
	}
	p.ID = strconv.FormatInt(id, 10)
	if p.Comments == nil {
		p.Comments = []model.Comment{}
	}
	return p, nil
}

func (pr *postgresRepository) GetPost(ctx context.Context, id string) (model.Post, error) {
	pid, err := parseID(id)
	if err != nil {
		return model.Post{}, err
	}

	row := pr.db.QueryRowContext(ctx, selectPosts+" WHERE id = $1", pid)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Post{}, repository.ErrPostNotFound
		}
		return model.Post{}, err
	}
	return p, nil
}

func (pr *postgresRepository) SavePost(ctx context.Context, p model.Post) (model.Post, error) {
	pid, err := parseID(p.ID)
	if err != nil {
		return model.Post{}, err
	}
	for i := range p.Comments {
		p.Comments[i].CreatedAt = p.Comments[i].CreatedAt.UTC().Truncate(time.Microsecond)
	}
	comments, err := encodeComments(p.Comments)
	if err != nil {
		return model.Post{}, err
	}

	res, err := pr.db.ExecContext(ctx,
		"UPDATE board.posts SET title = $2, description = $3, contact = $4, comments = $5 WHERE id = $1",
		pid, p.Title, p.Description, p.Contact, comments)
	if err != nil {
		return model.Post{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Post{}, err
	}
	if n == 0 {
		return model.Post{}, repository.ErrPostNotFound
	}
	return p, nil
}

func (pr *postgresRepository) ExpiredPosts(ctx context.Context, cutoff time.Time) ([]model.Post, error) {
	rows, err := pr.db.QueryContext(ctx, selectPosts+" WHERE created_at < $1", cutoff)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

func (pr *postgresRepository) DeletePostsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := pr.db.ExecContext(ctx, "DELETE FROM board.posts WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (pr *postgresRepository) Close(ctx context.Context) error {
	return pr.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (model.Post, error) {
	var (
		p        model.Post
		id       int64
		comments []byte
	)
	err := row.Scan(&id, &p.Title, &p.Description, &p.Contact, &comments, &p.CreatedAt)
	if err != nil {
		return model.Post{}, err
	}
	p.ID = strconv.FormatInt(id, 10)
	p.CreatedAt = p.CreatedAt.UTC()
	p.Comments, err = decodeComments(comments)
	if err != nil {
		return model.Post{}, err
	}
	return p, nil
}

func scanPosts(rows *sql.Rows) ([]model.Post, error) {
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func parseID(id string) (int64, error) {
	pid, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid post id %q: %w", id, err)
	}
	return pid, nil
}

// encodeComments returns text rather than bytes: lib/pq sends []byte as bytea,
// which jsonb columns reject.
func encodeComments(comments []model.Comment) (string, error) {
	if comments == nil {
		comments = []model.Comment{}
	}
	data, err := json.Marshal(comments)
	if err != nil {
		return "", fmt.Errorf("encoding comments: %w", err)
	}
	return string(data), nil
}

func decodeComments(data []byte) ([]model.Comment, error) {
	comments := []model.Comment{}
	if len(data) == 0 {
		return comments, nil
	}
	if err := json.Unmarshal(data, &comments); err != nil {
		return nil, fmt.Errorf("decoding comments: %w", err)
	}
	for i := range comments {
		comments[i].CreatedAt = comments[i].CreatedAt.UTC()
	}
	return comments, nil
}
