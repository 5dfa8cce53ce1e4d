package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"postsmith/internal/domain"
)

const urlListSeparator = "\n"

func (d *Database) SaveRun(ctx context.Context, result *domain.RunResult) (int64, error) {
	if result == nil {
		return 0, errors.New("run result is nil")
	}

	query := strings.TrimSpace(result.Query)
	if query == "" {
		return 0, errors.New("run query is empty")
	}

	stmt := "insert into runs (query, post, urls, summary_count) values (?, ?, ?, ?)"

	res, err := d.db.ExecContext(
		ctx,
		stmt,
		query,
		result.Post,
		strings.Join(result.URLs, urlListSeparator),
		int64(len(result.Summaries)),
	)
	if err != nil {
		return 0, fmt.Errorf("execute query: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("fetch last insert ID: %w", err)
	}

	return id, nil
}

func (d *Database) ListRuns(ctx context.Context, limit int64) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	stmt := `select id, query, post, urls, summary_count, created_at
	from runs
	order by created_at desc, id desc
	limit ?`

	rows, err := d.db.QueryContext(ctx, stmt, limit)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"limit", limit,
				"operation", "ListRuns")
		}
	}()

	var runs []domain.Run
	for rows.Next() {
		var r domain.Run
		var urls string
		if err = rows.Scan(&r.ID, &r.Query, &r.Post, &urls, &r.SummaryCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		urls = strings.TrimSpace(urls)
		if urls != "" {
			r.URLs = strings.Split(urls, urlListSeparator)
		}

		runs = append(runs, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return runs, nil
}

func (d *Database) AddTopic(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New("topic query is empty")
	}

	stmt := "insert or ignore into topics (query) values (?)"

	_, err := d.db.ExecContext(ctx, stmt, query)

	return err
}

func (d *Database) RemoveTopic(ctx context.Context, topicID int64) error {
	stmt := "delete from topics where id = ?"

	_, err := d.db.ExecContext(ctx, stmt, topicID)

	return err
}

func (d *Database) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	stmt := "select id, query, created_at from topics order by id"

	rows, err := d.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", "ListTopics")
		}
	}()

	var topics []domain.Topic
	for rows.Next() {
		var t domain.Topic
		if err = rows.Scan(&t.ID, &t.Query, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		t.Query = strings.TrimSpace(t.Query)
		topics = append(topics, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return topics, nil
}
