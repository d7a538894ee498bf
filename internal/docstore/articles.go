package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/naija-watch/conflict-monitor/internal/apperrors"
	"github.com/naija-watch/conflict-monitor/internal/domain"
)

// ArticleRepo persists domain.Article rows and implements the dedup
// gate: insert-if-absent by URL, and reject a
// content_hash collision against a different URL within a 24h window.
type ArticleRepo struct {
	db *DB
}

// NewArticleRepo constructs an ArticleRepo over db.
func NewArticleRepo(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

// Insert attempts to persist a new article. It returns apperrors.DuplicateItem
// if the URL already exists or the content hash collides within 24h.
func (r *ArticleRepo) Insert(ctx context.Context, a domain.Article) error {
	var existingURL string
	err := r.db.Conn().QueryRowContext(ctx, `SELECT url FROM articles WHERE url = ?`, a.URL).Scan(&existingURL)
	if err == nil {
		return apperrors.DuplicateItem("article url %q already exists", a.URL)
	}
	if err != sql.ErrNoRows {
		return apperrors.TransientExternal(err, "failed to check article url %q", a.URL)
	}

	cutoff := a.ScrapedAt.Add(-24 * time.Hour)
	var collidingURL string
	err = r.db.Conn().QueryRowContext(ctx,
		`SELECT url FROM articles WHERE content_hash = ? AND scraped_at >= ? AND url != ? LIMIT 1`,
		a.ContentHash, cutoff.Format(time.RFC3339), a.URL,
	).Scan(&collidingURL)
	if err == nil {
		return apperrors.DuplicateItem("article content_hash %q collides with url %q within 24h", a.ContentHash, collidingURL)
	}
	if err != sql.ErrNoRows {
		return apperrors.TransientExternal(err, "failed to check article content_hash %q", a.ContentHash)
	}

	_, err = r.db.Conn().ExecContext(ctx,
		`INSERT INTO articles (id, url, title, content, source, scraped_at, content_hash, processing_status, error_log, pre_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.URL, a.Title, a.Content, a.Source, a.ScrapedAt.Format(time.RFC3339), a.ContentHash,
		string(a.ProcessingStatus), nullableString(a.ErrorLog), a.PreScore,
	)
	if err != nil {
		return apperrors.TransientExternal(err, "failed to insert article %q", a.URL)
	}
	return nil
}

// UpdateStatus flips an article's processing_status, optionally recording
// an error_log. This is the only mutation Articles ever undergo.
func (r *ArticleRepo) UpdateStatus(ctx context.Context, id string, status domain.ProcessingStatus, errLog string) error {
	_, err := r.db.Conn().ExecContext(ctx,
		`UPDATE articles SET processing_status = ?, error_log = ? WHERE id = ?`,
		string(status), nullableString(errLog), id,
	)
	if err != nil {
		return apperrors.TransientExternal(err, "failed to update article %q status", id)
	}
	return nil
}

// Get fetches a single article by id.
func (r *ArticleRepo) Get(ctx context.Context, id string) (*domain.Article, error) {
	row := r.db.Conn().QueryRowContext(ctx,
		`SELECT id, url, title, content, source, scraped_at, content_hash, processing_status, error_log, pre_score
		 FROM articles WHERE id = ?`, id)
	return scanArticle(row)
}

// ListPending returns articles with processing_status=pending, oldest
// first, used by the reconciliation pass to find un-acknowledged publishes.
func (r *ArticleRepo) ListPending(ctx context.Context, limit int) ([]domain.Article, error) {
	rows, err := r.db.Conn().QueryContext(ctx,
		`SELECT id, url, title, content, source, scraped_at, content_hash, processing_status, error_log, pre_score
		 FROM articles WHERE processing_status = ? ORDER BY scraped_at ASC LIMIT ?`,
		string(domain.StatusPending), limit)
	if err != nil {
		return nil, apperrors.TransientExternal(err, "failed to list pending articles")
	}
	defer rows.Close()
	return scanArticles(rows)
}

// List returns articles scraped at or after `since` (zero value = no
// lower bound), newest first, bounded by limit.
func (r *ArticleRepo) List(ctx context.Context, since time.Time, limit int) ([]domain.Article, error) {
	rows, err := r.db.Conn().QueryContext(ctx,
		`SELECT id, url, title, content, source, scraped_at, content_hash, processing_status, error_log, pre_score
		 FROM articles WHERE scraped_at >= ? ORDER BY scraped_at DESC LIMIT ?`,
		since.Format(time.RFC3339), limit)
	if err != nil {
		return nil, apperrors.TransientExternal(err, "failed to list articles")
	}
	defer rows.Close()
	return scanArticles(rows)
}

func scanArticles(rows *sql.Rows) ([]domain.Article, error) {
	var out []domain.Article
	for rows.Next() {
		a, err := scanArticleRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*domain.Article, error) {
	return scanArticleRow(row)
}

func scanArticleRow(row rowScanner) (*domain.Article, error) {
	var a domain.Article
	var scrapedAt string
	var status string
	var errLog sql.NullString
	var preScore sql.NullFloat64

	if err := row.Scan(&a.ID, &a.URL, &a.Title, &a.Content, &a.Source, &scrapedAt,
		&a.ContentHash, &status, &errLog, &preScore); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.TransientExternal(err, "failed to scan article row")
	}

	parsed, err := time.Parse(time.RFC3339, scrapedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scraped_at %q: %w", scrapedAt, err)
	}
	a.ScrapedAt = parsed
	a.ProcessingStatus = domain.ProcessingStatus(status)
	if errLog.Valid {
		a.ErrorLog = errLog.String
	}
	if preScore.Valid {
		v := preScore.Float64
		a.PreScore = &v
	}
	return &a, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
