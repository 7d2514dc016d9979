package testutil

import (
	"context"
	"net/mail"
	"path/filepath"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/facultypref/core"
	"github.com/trezcool/facultypref/core/catalog"
	"github.com/trezcool/facultypref/core/selection"
	"github.com/trezcool/facultypref/storage/database"
)

const (
	AdminUsername = "admin"
	AdminPassword = "Pa$$w0rd"
)

// NewConfig returns a config fit for tests, independent from the environment.
func NewConfig(t *testing.T) *core.Config {
	hash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewConfig() failed: %v", err)
	}
	return &core.Config{
		AppName:   "Faculty Preference",
		Env:       "TEST",
		Build:     "test",
		TestMode:  true,
		SecretKey: "test-secret-key",
		WorkDir:   t.TempDir(),
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
		},
		Admin: core.AdminConfig{
			Username:     AdminUsername,
			PasswordHash: string(hash),
		},
		Store: core.StoreConfig{Engine: "memory"},
		Email: core.EmailConfig{
			DefaultFrom: mail.Address{Name: "Faculty Preference", Address: "noreply@test.edu"},
		},
	}
}

// NewValidator returns a validator with every app validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	selection.InitValidators(validate, translator)
	catalog.InitValidators(validate, translator)
	return validate, translator
}

// OpenSQLite returns a migrated SQLite database living in a temp dir.
func OpenSQLite(t *testing.T) *sqlx.DB {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("OpenSQLite() failed to migrate: %v", err)
	}
	return db
}

func CreateSelection(
	t *testing.T,
	store selection.Store,
	studentID string,
	year int,
	subject, faculty string,
	createdAt ...time.Time,
) selection.Selection {
	tstamp := time.Now().UTC().Truncate(time.Microsecond)
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	sel := selection.Selection{
		ID:        studentID + "-" + subject + "-" + tstamp.Format(time.RFC3339Nano),
		StudentID: studentID,
		Year:      year,
		Subject:   subject,
		Faculty:   faculty,
		CreatedAt: tstamp,
	}
	if err := store.AppendSelections(context.Background(), sel); err != nil {
		t.Fatalf("CreateSelection() failed: %v", err)
	}
	return sel
}

// CreateCatalog replaces the subjects & faculty lists.
func CreateCatalog(t *testing.T, repo catalog.Repository, subjects []catalog.Subject, faculty ...string) {
	ctx := context.Background()
	if err := repo.ReplaceSubjects(ctx, subjects); err != nil {
		t.Fatalf("CreateCatalog() failed: %v", err)
	}
	fs := make([]catalog.Faculty, 0, len(faculty))
	for _, name := range faculty {
		fs = append(fs, catalog.Faculty{Name: name})
	}
	if err := repo.ReplaceFaculty(ctx, fs); err != nil {
		t.Fatalf("CreateCatalog() failed: %v", err)
	}
}
