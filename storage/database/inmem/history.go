package inmemdb

import (
	"context"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/prediction"
)

type historyRepository struct {
	db       *historyTable
	students *studentTable
}

var _ prediction.Repository = (*historyRepository)(nil)

func NewHistoryRepository(db *DB) *historyRepository {
	return &historyRepository{db: db.history, students: db.student}
}

func (repo *historyRepository) CreateHistory(ctx context.Context, h prediction.History, exec ...core.DBExecutor) (prediction.History, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.pk++
	h.ID = repo.db.pk
	repo.db.t[h.ID] = h

	id := h.ID
	journal(exec, func() {
		dropCreated(&repo.db.mutex, &repo.db.pk, id, func() { delete(repo.db.t, id) })
	})
	return h, nil
}

func (repo *historyRepository) QueryHistory(ctx context.Context, filter prediction.QueryFilter, _ ...core.DBExecutor) ([]prediction.History, error) {
	var owners map[int]string
	if filter.CreatedBy != "" {
		repo.students.mutex.RLock()
		owners = make(map[int]string, len(repo.students.t))
		for id, std := range repo.students.t {
			owners[id] = std.CreatedBy
		}
		repo.students.mutex.RUnlock()
	}

	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]prediction.History, 0, len(repo.db.t))
	for _, h := range repo.db.t {
		if filter.Grade != "" && h.Grade != filter.Grade {
			continue
		}
		if !filter.Start.IsZero() && h.CreatedAt.Before(filter.Start) {
			continue
		}
		if !filter.End.IsZero() && h.CreatedAt.After(filter.End) {
			continue
		}
		if owners != nil {
			// history of deleted students has no owner left
			if owner, ok := owners[h.StudentID]; !ok || owner != filter.CreatedBy {
				continue
			}
		}
		entries = append(entries, h)
	}
	prediction.SortNewestFirst(entries)
	return entries, nil
}

func (repo *historyRepository) CountHistory(ctx context.Context, _ ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.t), nil
}
