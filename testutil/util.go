package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/prediction"
	"github.com/trezcool/alama/core/student"
	"github.com/trezcool/alama/core/user"
)

// NewValidator returns a validator with every custom validation registered, and its translator.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(t *testing.T, repo user.Repository, uname, pwd, role string, createdAt ...time.Time) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Username:  uname,
		Role:      role,
		CreatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	userID, name, createdBy string,
	study, attendance, participation float64,
) student.Student {
	std, err := repo.CreateStudent(context.Background(), student.Student{
		UserID:               userID,
		Name:                 name,
		WeeklySelfStudyHours: study,
		AttendancePercentage: attendance,
		ClassParticipation:   participation,
		CreatedBy:            createdBy,
		CreatedAt:            time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

// CreateHistory records a prediction of std without touching the Student.
func CreateHistory(t *testing.T, repo prediction.Repository, std student.Student, score float64, createdAt time.Time) prediction.History {
	h, err := repo.CreateHistory(context.Background(), prediction.History{
		StudentID:   std.ID,
		StudentName: std.Name,
		Grade:       prediction.GradeFor(score),
		Score:       score,
		Confidence:  prediction.ConfidenceFor(score),
		CreatedAt:   createdAt.UTC(),
	})
	if err != nil {
		t.Fatalf("CreateHistory() failed: %v", err)
	}
	return h
}

// Predicted returns std as seen after a prediction scored it.
func Predicted(std student.Student, score float64) student.Student {
	std.PredictedGrade = null.StringFrom(prediction.GradeFor(score))
	std.PredictedScore = null.Float64From(score)
	return std
}
