package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) checkUserID(userID string, excludedID int) error {
	for _, std := range repo.db.t {
		if std.UserID == userID && std.ID != excludedID {
			return student.ErrUserIDExists
		}
	}
	return nil
}

func (repo *studentRepository) CheckUserIDUniqueness(ctx context.Context, userID string, excludedID int, _ ...core.DBExecutor) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.checkUserID(userID, excludedID)
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if err := repo.checkUserID(std.UserID, 0); err != nil {
		return student.Student{}, err
	}
	repo.db.pk++
	std.ID = repo.db.pk
	repo.db.t[std.ID] = std

	id := std.ID
	journal(exec, func() {
		dropCreated(&repo.db.mutex, &repo.db.pk, id, func() { delete(repo.db.t, id) })
	})
	return std, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter, _ ...core.DBExecutor) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	stds := make([]student.Student, 0, len(repo.db.t))
	for _, std := range repo.db.t {
		if filter.CreatedBy == "" || std.CreatedBy == filter.CreatedBy {
			stds = append(stds, std)
		}
	}
	sort.Slice(stds, func(i, j int) bool { return stds[i].ID < stds[j].ID })
	return stds, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id int, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.t[id]; ok {
		return std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	origStd, ok := repo.db.t[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if err := repo.checkUserID(std.UserID, std.ID); err != nil {
		return student.Student{}, err
	}
	prev := origStd
	journal(exec, func() {
		repo.update(prev.ID, func(s *student.Student) {
			s.UserID = prev.UserID
			s.Name = prev.Name
			s.WeeklySelfStudyHours = prev.WeeklySelfStudyHours
			s.AttendancePercentage = prev.AttendancePercentage
			s.ClassParticipation = prev.ClassParticipation
		})
	})

	origStd.UserID = std.UserID
	origStd.Name = std.Name
	origStd.WeeklySelfStudyHours = std.WeeklySelfStudyHours
	origStd.AttendancePercentage = std.AttendancePercentage
	origStd.ClassParticipation = std.ClassParticipation
	repo.db.t[std.ID] = origStd
	return origStd, nil
}

func (repo *studentRepository) SetPrediction(ctx context.Context, id int, grade string, score float64, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	std, ok := repo.db.t[id]
	if !ok {
		return student.ErrNotFound
	}
	prevGrade, prevScore := std.PredictedGrade, std.PredictedScore
	journal(exec, func() {
		repo.update(id, func(s *student.Student) {
			s.PredictedGrade, s.PredictedScore = prevGrade, prevScore
		})
	})

	std.PredictedGrade = null.StringFrom(grade)
	std.PredictedScore = null.Float64From(score)
	repo.db.t[id] = std
	return nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	std, ok := repo.db.t[id]
	if !ok {
		return student.ErrNotFound
	}
	delete(repo.db.t, id)

	journal(exec, func() {
		repo.db.mutex.Lock()
		defer repo.db.mutex.Unlock()
		if _, ok := repo.db.t[id]; !ok {
			repo.db.t[id] = std
		}
	})
	return nil
}

// update applies fn to the row with id, if it still exists.
func (repo *studentRepository) update(id int, fn func(std *student.Student)) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	if std, ok := repo.db.t[id]; ok {
		fn(&std)
		repo.db.t[id] = std
	}
}

func (repo *studentRepository) CountStudents(ctx context.Context, _ ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.t), nil
}
