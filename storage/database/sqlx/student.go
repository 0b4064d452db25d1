package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/student"
)

const studentColumns = `id, user_id, name, weekly_self_study_hours, attendance_percentage, class_participation,
	created_by, predicted_grade, predicted_score, created_at`

type studentRepository struct {
	db core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db core.DBExecutor) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) CheckUserIDUniqueness(ctx context.Context, userID string, excludedID int, exec ...core.DBExecutor) error {
	var exists bool
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &exists,
		"SELECT EXISTS(SELECT 1 FROM student WHERE user_id = $1 AND id <> $2)", userID, excludedID,
	)
	if err != nil {
		return errors.Wrap(err, "checking user_id")
	}
	if exists {
		return student.ErrUserIDExists
	}
	return nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	q := `INSERT INTO student (user_id, name, weekly_self_study_hours, attendance_percentage, class_participation, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := getExec(repo.db, exec).QueryRowxContext(ctx, q,
		std.UserID, std.Name, std.WeeklySelfStudyHours, std.AttendancePercentage, std.ClassParticipation,
		std.CreatedBy, std.CreatedAt,
	).Scan(&std.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrUserIDExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter, exec ...core.DBExecutor) ([]student.Student, error) {
	q := "SELECT " + studentColumns + " FROM student"
	var args []interface{}
	if filter.CreatedBy != "" {
		q += " WHERE created_by = $1"
		args = append(args, filter.CreatedBy)
	}
	q += " ORDER BY id"

	stds := make([]student.Student, 0)
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &stds, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	return stds, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error) {
	var std student.Student
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &std, "SELECT "+studentColumns+" FROM student WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "selecting student")
	}
	return std, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	q := `UPDATE student
		SET user_id = $1, name = $2, weekly_self_study_hours = $3, attendance_percentage = $4, class_participation = $5
		WHERE id = $6
		RETURNING ` + studentColumns

	var updated student.Student
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &updated, q,
		std.UserID, std.Name, std.WeeklySelfStudyHours, std.AttendancePercentage, std.ClassParticipation, std.ID,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return student.Student{}, student.ErrNotFound
		case isUniqueViolation(err):
			return student.Student{}, student.ErrUserIDExists
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return updated, nil
}

func (repo studentRepository) SetPrediction(ctx context.Context, id int, grade string, score float64, exec ...core.DBExecutor) error {
	res, err := getExec(repo.db, exec).ExecContext(ctx,
		"UPDATE student SET predicted_grade = $1, predicted_score = $2 WHERE id = $3", grade, score, id,
	)
	if err != nil {
		return errors.Wrap(err, "updating student prediction")
	}
	return checkAffected(res, student.ErrNotFound)
}

func (repo studentRepository) DeleteStudent(ctx context.Context, id int, exec ...core.DBExecutor) error {
	res, err := getExec(repo.db, exec).ExecContext(ctx, "DELETE FROM student WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return checkAffected(res, student.ErrNotFound)
}

func (repo studentRepository) CountStudents(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &n, "SELECT COUNT(*) FROM student")
	return n, errors.Wrap(err, "counting students")
}
