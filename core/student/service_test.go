package student_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/student"
	"github.com/trezcool/alama/core/user"
	inmemdb "github.com/trezcool/alama/storage/database/inmem"
	"github.com/trezcool/alama/testutil"
)

var (
	alice = user.Identity{Username: "alice", Role: user.RoleUser}
	bob   = user.Identity{Username: "bob", Role: user.RoleUser}
	admin = user.Identity{Username: "Admin", Role: user.RoleAdmin}
)

func setup() (*student.Service, student.Repository) {
	repo := inmemdb.NewStudentRepository(inmemdb.Open())
	validate, _ := testutil.NewValidator()
	return student.NewService(repo, validate), repo
}

func newStudent(userID, name string, study, attendance, participation json.Number) student.NewStudent {
	return student.NewStudent{
		UserID:        userID,
		Name:          name,
		Study:         study,
		Attendance:    attendance,
		Participation: participation,
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	fields := make(map[string]string)

	var vErrs validator.ValidationErrors
	var vErr *core.ValidationError
	switch {
	case errors.As(err, &vErrs):
		for _, fe := range vErrs {
			fields[fe.Field()] = fe.Tag()
		}
	case errors.As(err, &vErr):
		for _, fe := range vErr.Fields {
			fields[fe.Field] = fe.Error
		}
	default:
		t.Fatalf("not a validation error: %v", err)
	}
	return fields
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup()

	t.Run("anonymous", func(t *testing.T) {
		_, err := svc.Create(ctx, user.Identity{}, newStudent("S1", "Ann", "5", "90", "8"))
		assert.True(t, errors.Is(err, core.ErrUnauthorized))
	})

	std, err := svc.Create(ctx, alice, newStudent(" S1 ", " Ann ", "5", " 90.5", "8"))
	require.NoError(t, err)
	assert.Equal(t, 1, std.ID)
	assert.Equal(t, "S1", std.UserID)
	assert.Equal(t, "Ann", std.Name)
	assert.Equal(t, alice.Username, std.CreatedBy)
	assert.Equal(t, []float64{5, 90.5, 8}, std.Features())
	assert.False(t, std.PredictedGrade.Valid)
	assert.False(t, std.CreatedAt.IsZero())

	tests := []struct {
		name string
		ns   student.NewStudent
		want map[string]string
	}{
		{
			name: "required", ns: student.NewStudent{},
			want: map[string]string{
				"user_id": "required", "name": "required", "study": "required", "attendance": "required", "participation": "required",
			},
		},
		{
			name: "not numbers", ns: newStudent("S2", "Ben", "five", "90%", "8"),
			want: map[string]string{"study": "numeric", "attendance": "numeric"},
		},
		{name: "negative study", ns: newStudent("S2", "Ben", "-1", "-90", "-8"), want: map[string]string{"study": "nonneg"}},
		{
			name: "too long", ns: newStudent(string(make([]byte, 51)), "Ben", "1", "2", "3"),
			want: map[string]string{"user_id": "max"},
		},
		{name: "duplicate user_id", ns: newStudent("S1", "Ben", "1", "2", "3"), want: map[string]string{"user_id": student.ErrUserIDExists.Error()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, bob, tt.ns)
			require.Error(t, err)
			assert.Equal(t, tt.want, fieldErrors(t, err))
		})
	}

	n, err := repo.CountStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestService_ListGet(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup()

	ann := testutil.CreateStudent(t, repo, "S1", "Ann", alice.Username, 5, 90, 8)
	ben := testutil.CreateStudent(t, repo, "S2", "Ben", bob.Username, 2, 60, 4)
	cat := testutil.CreateStudent(t, repo, "S3", "Cat", alice.Username, 7, 95, 9)

	listTests := []struct {
		name    string
		id      user.Identity
		want    []student.Student
		wantErr error
	}{
		{name: "anonymous", id: user.Identity{}, wantErr: core.ErrUnauthorized},
		{name: "admin", id: admin, want: []student.Student{ann, ben, cat}},
		{name: "alice", id: alice, want: []student.Student{ann, cat}},
		{name: "bob", id: bob, want: []student.Student{ben}},
		{name: "nobody", id: user.Identity{Username: "carol", Role: user.RoleUser}, want: []student.Student{}},
	}
	for _, tt := range listTests {
		t.Run("List: "+tt.name, func(t *testing.T) {
			got, err := svc.List(ctx, tt.id)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	getTests := []struct {
		name    string
		id      user.Identity
		stdID   int
		wantErr error
	}{
		{name: "anonymous", id: user.Identity{}, stdID: ann.ID, wantErr: core.ErrUnauthorized},
		{name: "not found before forbidden", id: bob, stdID: 99, wantErr: core.ErrNotFound},
		{name: "forbidden", id: bob, stdID: ann.ID, wantErr: core.ErrForbidden},
		{name: "owner", id: alice, stdID: ann.ID},
		{name: "admin", id: admin, stdID: ann.ID},
	}
	for _, tt := range getTests {
		t.Run("Get: "+tt.name, func(t *testing.T) {
			got, err := svc.Get(ctx, tt.id, tt.stdID)
			if tt.wantErr != nil {
				assert.Truef(t, errors.Is(err, tt.wantErr), "Get() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ann, got)
		})
	}
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup()

	ann := testutil.CreateStudent(t, repo, "S1", "Ann", alice.Username, 5, 90, 8)
	ben := testutil.CreateStudent(t, repo, "S2", "Ben", bob.Username, 2, 60, 4)
	require.NoError(t, repo.SetPrediction(ctx, ann.ID, "B", 78))

	_, err := svc.Update(ctx, bob, ann.ID, student.UpdateStudent(newStudent("S1", "Anna", "6", "91", "9")))
	assert.True(t, errors.Is(err, core.ErrForbidden))

	_, err = svc.Update(ctx, alice, ann.ID, student.UpdateStudent(newStudent("S2", "Anna", "6", "91", "9")))
	require.Error(t, err)
	assert.Equal(t, map[string]string{"user_id": student.ErrUserIDExists.Error()}, fieldErrors(t, err))

	// keeping its own user_id is fine
	got, err := svc.Update(ctx, alice, ann.ID, student.UpdateStudent(newStudent("S1", "Anna", "6", "91", "9")))
	require.NoError(t, err)

	want := testutil.Predicted(ann, 78)
	want.Name = "Anna"
	want.WeeklySelfStudyHours, want.AttendancePercentage, want.ClassParticipation = 6, 91, 9
	assert.Equal(t, want, got)

	// admins may update anyone's
	got, err = svc.Update(ctx, admin, ben.ID, student.UpdateStudent(newStudent("S9", "Benny", "1", "2", "3")))
	require.NoError(t, err)
	assert.Equal(t, "S9", got.UserID)
	assert.Equal(t, bob.Username, got.CreatedBy)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup()

	ann := testutil.CreateStudent(t, repo, "S1", "Ann", alice.Username, 5, 90, 8)
	ben := testutil.CreateStudent(t, repo, "S2", "Ben", bob.Username, 2, 60, 4)

	tests := []struct {
		name    string
		id      user.Identity
		stdID   int
		wantErr error
	}{
		{name: "anonymous", id: user.Identity{}, stdID: ann.ID, wantErr: core.ErrUnauthorized},
		{name: "not the owner", id: bob, stdID: ann.ID, wantErr: core.ErrForbidden},
		{name: "owner", id: alice, stdID: ann.ID},
		{name: "already deleted", id: alice, stdID: ann.ID, wantErr: student.ErrNotFound},
		{name: "admin", id: admin, stdID: ben.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Delete(ctx, tt.id, tt.stdID)
			if tt.wantErr != nil {
				assert.Truef(t, errors.Is(err, tt.wantErr), "Delete() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	n, err := repo.CountStudents(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
