package tests

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/facultypref/core"
	"github.com/trezcool/facultypref/core/selection"
	"github.com/trezcool/facultypref/tests"
)

func Test_selectionApi_submit(t *testing.T) {
	app := setup(t)

	valid := selection.NewSubmission{
		StudentID:   " 21CS001 ",
		StudentName: "Ada",
		Year:        2,
		Section:     "A",
		Choices: []selection.Choice{
			{Subject: "CS201", SubjectName: "Data Structures", Faculty: "Dr. Alice"},
			{Subject: "CS202", SubjectName: "Algorithms", Faculty: "Dr. Bob"},
		},
	}
	with := func(f func(ns *selection.NewSubmission)) []byte {
		ns := valid
		ns.Choices = append([]selection.Choice(nil), valid.Choices...)
		f(&ns)
		return marchallObj(t, ns)
	}

	tests := []httpTest{
		{
			name: "blank student id", body: with(func(ns *selection.NewSubmission) { ns.StudentID = "  " }),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"student_id": "this field cannot be blank"}),
		},
		{
			name: "blank faculty", body: with(func(ns *selection.NewSubmission) { ns.Choices[1].Faculty = "" }),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"choices[1].faculty": "this field cannot be blank"}),
		},
		{
			name: "student id too long", body: with(func(ns *selection.NewSubmission) { ns.StudentID = strings.Repeat("1", 65) }),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_id": "student_id must be a maximum of 64 characters in length"}),
		},
		{
			name: "faculty too long", body: with(func(ns *selection.NewSubmission) { ns.Choices[0].Faculty = strings.Repeat("F", 256) }),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"choices[0].faculty": "faculty must be a maximum of 255 characters in length"}),
		},
		{
			name: "year out of range", body: with(func(ns *selection.NewSubmission) { ns.Year = 5 }),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"year": "year must be between 1 and 4"}),
		},
		{
			name: "no choices", body: with(func(ns *selection.NewSubmission) { ns.Choices = nil }),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"choices": "this field is required"}),
		},
		{
			name: "subject chosen twice", body: with(func(ns *selection.NewSubmission) { ns.Choices[1].Subject = "CS201" }),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"choices": "subject chosen more than once"}),
		},
		{name: "success", body: marchallObj(t, valid), wantCode: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/selections", tt.body)
			app.ServeHTTP(rec, req)

			sels, err := selRepo.QueryAllSelections(context.Background())
			require.NoError(t, err)

			if tt.wantCode != http.StatusCreated {
				checkCodeAndData(t, tt, rec)
				assert.Empty(t, sels, "nothing must be written on failure")
				return
			}

			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			var got []selection.Selection
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			require.Len(t, got, 2)
			require.Len(t, sels, 2)
			assert.Equal(t, []string{got[0].ID, got[1].ID}, []string{sels[0].ID, sels[1].ID})

			for i, sel := range got {
				assert.NotEmpty(t, sel.ID)
				assert.Equal(t, "21CS001", sel.StudentID)
				assert.Equal(t, 2, sel.Year)
				assert.Equal(t, valid.Choices[i].Subject, sel.Subject)
				assert.Equal(t, valid.Choices[i].Faculty, sel.Faculty)
				assert.Equal(t, got[0].CreatedAt, sel.CreatedAt, "one timestamp per submission")
			}
		})
	}
}

func Test_selectionApi_submitRateLimit(t *testing.T) {
	app := setup(t, func(c *core.Config) {
		c.Server.SubmitRateLimit = 0.001
		c.Server.SubmitBurst = 1
	})

	body := marchallObj(t, selection.NewSubmission{
		StudentID: "21CS001",
		Year:      1,
		Choices:   []selection.Choice{{Subject: "MATH", Faculty: "Alice"}},
	})

	req, rec := newRequest(http.MethodPost, "/api/selections", body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req, rec = newRequest(http.MethodPost, "/api/selections", body)
	app.ServeHTTP(rec, req)
	tt := httpTest{wantCode: http.StatusTooManyRequests, wantData: marchallObj(t, httpErr{Error: "too many submissions, try again later"})}
	checkCodeAndData(t, tt, rec)
}

func Test_selectionApi_query(t *testing.T) {
	app := setup(t)

	path := func(studentID, faculty, subject string, year int, ordering string) string {
		v := make(url.Values)
		if studentID != "" {
			v.Add("student_id", studentID)
		}
		if faculty != "" {
			v.Add("faculty", faculty)
		}
		if subject != "" {
			v.Add("subject", subject)
		}
		if year != 0 {
			v.Add("year", strconv.Itoa(year))
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		return "/api/selections?" + v.Encode()
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	s1 := testutil.CreateSelection(t, selRepo, "S1", 1, "MATH", "Alice", now)
	s2 := testutil.CreateSelection(t, selRepo, "S2", 1, "MATH", "Bob", now.Add(time.Minute))
	s3 := testutil.CreateSelection(t, selRepo, "S1", 2, "PHY", "Alice", now.Add(2*time.Minute))

	token := getToken(t)

	tests := []httpTest{
		{name: "Auth required", path: "/api/selections", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Get all", path: "/api/selections", token: token, wantData: marchallList(t, s1, s2, s3)},
		{name: "student_id", path: path("S1", "", "", 0, ""), token: token, wantData: marchallList(t, s1, s3)},
		{name: "faculty", path: path("", "Alice", "", 0, ""), token: token, wantData: marchallList(t, s1, s3)},
		{name: "subject", path: path("", "", "MATH", 0, ""), token: token, wantData: marchallList(t, s1, s2)},
		{name: "year", path: path("", "", "", 2, ""), token: token, wantData: marchallList(t, s3)},
		{name: "unknown", path: path("", "Nobody", "", 0, ""), token: token, wantData: marchallList(t)},
		{name: "ordering=-created_at", path: path("", "", "", 0, "-created_at"), token: token, wantData: marchallList(t, s3, s2, s1)},
		{name: "ordering=faculty,-year", path: path("", "", "", 0, "faculty,-year"), token: token, wantData: marchallList(t, s3, s1, s2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.wantCode = http.StatusOK
			if tt.token == "" {
				tt.wantCode = http.StatusUnauthorized
			}
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)

			checkCodeAndData(t, tt, rec)
			if tt.wantCode == http.StatusOK {
				// order matters
				assert.JSONEq(t, string(tt.wantData), rec.Body.String())
			}
		})
	}
}

func Test_selectionApi_export(t *testing.T) {
	app := setup(t)

	now := time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)
	testutil.CreateSelection(t, selRepo, "S1", 1, "MATH", "Alice", now)
	testutil.CreateSelection(t, selRepo, "S2", 1, "MATH", "Bob", now.Add(time.Minute))

	t.Run("csv", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/selections/export", getToken(t))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "student_choices.csv")
		records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "Regd_No", records[0][0])
		assert.Equal(t, "S1", records[1][0])
		assert.Equal(t, "S2", records[2][0])
	})

	t.Run("xlsx", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/selections/export?format=xlsx", getToken(t))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "student_choices.xlsx")
		assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"), "xlsx files are zip archives")
	})

	t.Run("unsupported format", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/selections/export?format=pdf", getToken(t))
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "unsupported format"})}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_selectionApi_clear(t *testing.T) {
	app := setup(t)

	testutil.CreateSelection(t, selRepo, "S1", 1, "MATH", "Alice")

	req, rec := newRequest(http.MethodDelete, "/api/selections")
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req, rec = newAuthRequest(http.MethodDelete, "/api/selections", getToken(t))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	sels, err := selRepo.QueryAllSelections(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sels)
}
