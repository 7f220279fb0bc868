package persistence

import (
	"context"
	"database/sql"
	"time"

	"post-radar/domain/model"

	"github.com/lib/pq"
)

const postColumns = `id, tracked_account_id, member_id, author_username, text, quoted_text,
        is_retweet, is_reply, is_quote, reply_to_id,
        likes, reposts, replies, quotes, views, bookmarks,
        translated_text, comment_text, quoted_translated_text, translated_at,
        created_at, fetched_at, raw_json`

// PostRepository implements the post store on PostgreSQL.
type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository { return &PostRepository{db: db} }

// InsertMany writes posts inside one transaction. A duplicate
// (tracked_account_id, id) is skipped via ON CONFLICT DO NOTHING; dedup by
// id is an invariant here, not an error condition.
func (r *PostRepository) InsertMany(ctx context.Context, posts []model.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	q := `INSERT INTO posts (` + postColumns + `)
          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
          ON CONFLICT (tracked_account_id, id) DO NOTHING`
	inserted := 0
	for i := range posts {
		p := &posts[i]
		var res sql.Result
		res, err = tx.ExecContext(ctx, q,
			p.ID, p.TrackedAccountID, p.MemberID, p.AuthorUsername, p.Text, p.QuotedText,
			p.IsRetweet, p.IsReply, p.IsQuote, p.ReplyToID,
			p.Metrics.Likes, p.Metrics.Reposts, p.Metrics.Replies, p.Metrics.Quotes, p.Metrics.Views, p.Metrics.Bookmarks,
			p.TranslatedText, p.CommentText, p.QuotedTranslatedText, p.TranslatedAt,
			p.CreatedAt, p.FetchedAt, nullableBytes(p.RawJSON),
		)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *PostRepository) FindUntranslated(ctx context.Context, memberID string, limit int) ([]model.Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts
          WHERE member_id=$1 AND translated_at IS NULL
          ORDER BY created_at ASC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, memberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (r *PostRepository) CountUntranslated(ctx context.Context, memberID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE member_id=$1 AND translated_at IS NULL`,
		memberID).Scan(&count)
	return count, err
}

func (r *PostRepository) GetByID(ctx context.Context, memberID, postID string) (*model.Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts WHERE member_id=$1 AND id=$2 LIMIT 1`
	rows, err := r.db.QueryContext(ctx, q, memberID, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	posts, err := scanPosts(rows)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return &posts[0], nil
}

func (r *PostRepository) UpdateTranslation(ctx context.Context, memberID, postID, translatedText, commentText string, quotedTranslatedText *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE posts SET translated_text=$1, comment_text=$2, quoted_translated_text=$3, translated_at=$4 WHERE member_id=$5 AND id=$6`,
		translatedText, commentText, quotedTranslatedText, time.Now().UTC(), memberID, postID)
	return err
}

func (r *PostRepository) PurgeOlderThan(ctx context.Context, memberID string, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM posts WHERE member_id=$1 AND created_at < $2`,
		memberID, cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *PostRepository) PurgeOrphaned(ctx context.Context, memberID string, activeAccountIDs []int64) (int, error) {
	var res sql.Result
	var err error
	if len(activeAccountIDs) == 0 {
		res, err = r.db.ExecContext(ctx, `DELETE FROM posts WHERE member_id=$1`, memberID)
	} else {
		res, err = r.db.ExecContext(ctx,
			`DELETE FROM posts WHERE member_id=$1 AND tracked_account_id <> ALL($2)`,
			memberID, pq.Array(activeAccountIDs))
	}
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *PostRepository) ListByMember(ctx context.Context, memberID string, limit int) ([]model.Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts WHERE member_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, memberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func scanPosts(rows *sql.Rows) ([]model.Post, error) {
	var posts []model.Post
	for rows.Next() {
		var p model.Post
		var quoted, replyTo, translated, comment, quotedTranslated sql.NullString
		var translatedAt sql.NullTime
		var raw []byte
		if err := rows.Scan(
			&p.ID, &p.TrackedAccountID, &p.MemberID, &p.AuthorUsername, &p.Text, &quoted,
			&p.IsRetweet, &p.IsReply, &p.IsQuote, &replyTo,
			&p.Metrics.Likes, &p.Metrics.Reposts, &p.Metrics.Replies, &p.Metrics.Quotes, &p.Metrics.Views, &p.Metrics.Bookmarks,
			&translated, &comment, &quotedTranslated, &translatedAt,
			&p.CreatedAt, &p.FetchedAt, &raw,
		); err != nil {
			return nil, err
		}
		if quoted.Valid {
			p.QuotedText = &quoted.String
		}
		if replyTo.Valid {
			p.ReplyToID = &replyTo.String
		}
		if translated.Valid {
			p.TranslatedText = &translated.String
		}
		if comment.Valid {
			p.CommentText = &comment.String
		}
		if quotedTranslated.Valid {
			p.QuotedTranslatedText = &quotedTranslated.String
		}
		if translatedAt.Valid {
			t := translatedAt.Time
			p.TranslatedAt = &t
		}
		p.RawJSON = raw
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func nullableBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
