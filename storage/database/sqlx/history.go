package sqlxrepos

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/prediction"
)

type historyRepository struct {
	db core.DBExecutor
}

var _ prediction.Repository = (*historyRepository)(nil)

func NewHistoryRepository(db core.DBExecutor) *historyRepository {
	return &historyRepository{db: db}
}

func (repo historyRepository) CreateHistory(ctx context.Context, h prediction.History, exec ...core.DBExecutor) (prediction.History, error) {
	q := `INSERT INTO prediction_history (student_id, student_name, grade, score, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := getExec(repo.db, exec).QueryRowxContext(ctx, q,
		h.StudentID, h.StudentName, h.Grade, h.Score, h.Confidence, h.CreatedAt,
	).Scan(&h.ID)
	if err != nil {
		return prediction.History{}, errors.Wrap(err, "inserting history")
	}
	return h, nil
}

func (repo historyRepository) QueryHistory(ctx context.Context, filter prediction.QueryFilter, exec ...core.DBExecutor) ([]prediction.History, error) {
	var (
		b     strings.Builder
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	b.WriteString(`SELECT h.id, h.student_id, h.student_name, h.grade, h.score, h.confidence, h.created_at
		FROM prediction_history h`)
	if filter.CreatedBy != "" {
		// history of deleted students has no owner left
		b.WriteString(" JOIN student s ON s.id = h.student_id")
		conds = append(conds, "s.created_by = "+arg(filter.CreatedBy))
	}
	if filter.Grade != "" {
		conds = append(conds, "h.grade = "+arg(filter.Grade))
	}
	if !filter.Start.IsZero() {
		conds = append(conds, "h.created_at >= "+arg(filter.Start))
	}
	if !filter.End.IsZero() {
		conds = append(conds, "h.created_at <= "+arg(filter.End))
	}
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY h.created_at DESC, h.id ASC")

	entries := make([]prediction.History, 0)
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &entries, b.String(), args...); err != nil {
		return nil, errors.Wrap(err, "selecting history")
	}
	return entries, nil
}

func (repo historyRepository) CountHistory(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &n, "SELECT COUNT(*) FROM prediction_history")
	return n, errors.Wrap(err, "counting history")
}
