package catalog_test

import (
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/facultypref/core"
	"github.com/trezcool/facultypref/core/catalog"
	dummydb "github.com/trezcool/facultypref/storage/database/dummy"
	"github.com/trezcool/facultypref/tests"
)

var subjects = []catalog.Subject{
	{Year: 2, Code: "ALGO", Name: "Algorithms"},
	{Year: 1, Code: "PHY", Name: "Physics"},
	{Year: 1, Code: "MATH", Name: "Mathematics"},
}

func setup(t *testing.T) (*catalog.Service, catalog.Repository) {
	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewCatalogRepository(db)
	validate, _ := testutil.NewValidator()
	testutil.CreateCatalog(t, repo, subjects, "Carol", "Alice", "Bob")
	return catalog.NewService(repo, validate), repo
}

func TestService_Subjects(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	all, err := svc.Subjects(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Subject{subjects[2], subjects[1], subjects[0]}, all)

	year1, err := svc.Subjects(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Subject{subjects[2], subjects[1]}, year1)

	year4, err := svc.Subjects(ctx, 4)
	require.NoError(t, err)
	assert.Empty(t, year4)
}

func TestService_Faculty(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	faculty, err := svc.Faculty(ctx)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Faculty{{Name: "Alice"}, {Name: "Bob"}, {Name: "Carol"}}, faculty)

	ok, err := svc.HasFaculty(ctx, " Bob ")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasFaculty(ctx, "Zed")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_Import(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	imported, err := svc.ImportSubjects(ctx, strings.NewReader("Year,Subject_Code,Subject_Name\n3,DS,Data Structures\n"))
	require.NoError(t, err)
	assert.Len(t, imported, 1)

	all, err := svc.Subjects(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Subject{{Year: 3, Code: "DS", Name: "Data Structures"}}, all, "subjects are replaced")

	_, err = svc.ImportSubjects(ctx, strings.NewReader("Year\n1\n"))
	assert.Error(t, err)
	all, err = svc.Subjects(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1, "invalid files change nothing")

	faculty, warnings, err := svc.ImportFaculty(ctx, strings.NewReader("Name\nDr. A. Rao\nDr A Rao\n"))
	require.NoError(t, err)
	assert.Len(t, faculty, 2)
	require.Len(t, warnings, 1)
	assert.Equal(t, 3, warnings[0].Row)
}

func TestService_Availability(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	avail, err := svc.ResetAvailability(ctx)
	require.NoError(t, err)
	assert.Len(t, avail, 9)

	tests := []struct {
		name       string
		faculty    string
		update     catalog.AvailabilityUpdate
		wantErr    error
		wantFields map[string]string
		wantValErr bool
	}{
		{name: "unknown faculty", faculty: "Zed", update: catalog.AvailabilityUpdate{Subjects: []catalog.SubjectAvailability{{SubjectCode: "MATH"}}}, wantErr: catalog.ErrNotFound},
		{name: "no subjects", faculty: "Alice", wantValErr: true},
		{name: "blank subject", faculty: "Alice", update: catalog.AvailabilityUpdate{Subjects: []catalog.SubjectAvailability{{SubjectCode: " "}}}, wantValErr: true},
		{
			name:       "duplicate subject",
			faculty:    "Alice",
			update:     catalog.AvailabilityUpdate{Subjects: []catalog.SubjectAvailability{{SubjectCode: "MATH"}, {SubjectCode: "MATH", Available: true}}},
			wantValErr: true,
		},
		{
			name:       "unknown subject",
			faculty:    "Alice",
			update:     catalog.AvailabilityUpdate{Subjects: []catalog.SubjectAvailability{{SubjectCode: "CHEM"}}},
			wantFields: map[string]string{"CHEM": "unknown subject"},
		},
		{name: "success", faculty: " Alice ", update: catalog.AvailabilityUpdate{Subjects: []catalog.SubjectAvailability{{SubjectCode: "MATH"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.UpdateAvailability(ctx, tt.faculty, tt.update)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantValErr:
				assert.IsType(t, validator.ValidationErrors{}, err)
			case tt.wantFields != nil:
				vErr, ok := err.(*core.ValidationError)
				require.True(t, ok, "got %T", err)
				assert.Equal(t, tt.wantFields, vErr.FieldMap())
			default:
				require.NoError(t, err)
				assert.Equal(t, []catalog.Availability{
					{Faculty: "Alice", SubjectCode: "ALGO", SubjectName: "Algorithms", Available: true},
					{Faculty: "Alice", SubjectCode: "MATH", SubjectName: "Mathematics", Available: false},
					{Faculty: "Alice", SubjectCode: "PHY", SubjectName: "Physics", Available: true},
				}, got)
			}
		})
	}

	stored, err := repo.QueryAvailability(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 9, "updates never add entries for known pairs")

	pivot, err := svc.AvailabilityPivot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, pivot.Faculty)
	assert.Equal(t, []string{"ALGO", "MATH", "PHY"}, pivot.Subjects)
	assert.False(t, pivot.Matrix["Alice"]["MATH"])
	assert.True(t, pivot.Matrix["Bob"]["MATH"])
}

func TestService_Availability_defaults(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	want := []catalog.Availability{
		{Faculty: "Bob", SubjectCode: "ALGO", SubjectName: "Algorithms", Available: true},
		{Faculty: "Bob", SubjectCode: "MATH", SubjectName: "Mathematics", Available: true},
		{Faculty: "Bob", SubjectCode: "PHY", SubjectName: "Physics", Available: true},
	}
	got, err := svc.Availability(ctx, "Bob")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	stored, err := repo.QueryAvailability(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, stored, "defaults are saved on first view")

	got, err = svc.Availability(ctx, "Zed")
	require.NoError(t, err)
	assert.Empty(t, got, "no defaults for unknown faculty")

	// a first-time editor keeps the defaults of the subjects they leave out
	got, err = svc.UpdateAvailability(ctx, "Carol", catalog.AvailabilityUpdate{Subjects: []catalog.SubjectAvailability{{SubjectCode: "PHY"}}})
	require.NoError(t, err)
	assert.Equal(t, []catalog.Availability{
		{Faculty: "Carol", SubjectCode: "ALGO", SubjectName: "Algorithms", Available: true},
		{Faculty: "Carol", SubjectCode: "MATH", SubjectName: "Mathematics", Available: true},
		{Faculty: "Carol", SubjectCode: "PHY", SubjectName: "Physics", Available: false},
	}, got)
}

func TestService_Import_initializesAvailability(t *testing.T) {
	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewCatalogRepository(db)
	validate, _ := testutil.NewValidator()
	svc := catalog.NewService(repo, validate)
	ctx := context.Background()

	_, err = svc.ImportSubjects(ctx, strings.NewReader("Year,Subject_Code,Subject_Name\n1,MATH,Mathematics\n1,PHY,Physics\n"))
	require.NoError(t, err)
	avail, err := repo.QueryAvailability(ctx)
	require.NoError(t, err)
	assert.Empty(t, avail, "no faculty yet")

	_, _, err = svc.ImportFaculty(ctx, strings.NewReader("Faculty_Name\nAlice\nBob\n"))
	require.NoError(t, err)
	avail, err = repo.QueryAvailability(ctx)
	require.NoError(t, err)
	assert.Len(t, avail, 4)

	_, err = svc.UpdateAvailability(ctx, "Alice", catalog.AvailabilityUpdate{Subjects: []catalog.SubjectAvailability{{SubjectCode: "MATH"}}})
	require.NoError(t, err)

	// existing availability survives later imports
	_, err = svc.ImportSubjects(ctx, strings.NewReader("Year,Subject_Code,Subject_Name\n1,MATH,Mathematics\n1,PHY,Physics\n"))
	require.NoError(t, err)
	pivot, err := svc.AvailabilityPivot(ctx)
	require.NoError(t, err)
	assert.False(t, pivot.Matrix["Alice"]["MATH"])
	assert.True(t, pivot.Matrix["Bob"]["MATH"])
}
