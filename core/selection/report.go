package selection

import "sort"

// FacultyCount is the number of selections of a faculty member for a subject.
type FacultyCount struct {
	Faculty string `json:"faculty"`
	Count   int    `json:"count"`
}

// Report maps a subject to its faculty counts, ranked by count descending.
type Report map[string][]FacultyCount

// Subjects returns the report subjects in ascending order.
func (r Report) Subjects() []string {
	subjects := make([]string, 0, len(r))
	for s := range r {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)
	return subjects
}

type ReportOptions struct {
	TopN   int  `query:"top" json:"top" validate:"top"` // 0 means all
	Year   int  `query:"year" json:"year" validate:"omitempty,year"`
	Latest bool `query:"latest" json:"latest"` // only count the latest choice of a student per subject
}

// SummaryRow is one (subject, faculty) line of the admin summary.
type SummaryRow struct {
	Subject     string `json:"subject"`
	SubjectName string `json:"subject_name"`
	Faculty     string `json:"faculty"`
	Students    int    `json:"students"`
}

// Pivot is a subject x faculty count matrix.
type Pivot struct {
	Subjects []string                  `json:"subjects"`
	Faculty  []string                  `json:"faculty"`
	Counts   map[string]map[string]int `json:"counts"` // {subject: {faculty: count}}
}

func (p Pivot) Count(subject, faculty string) int {
	return p.Counts[subject][faculty]
}

func (p Pivot) IsEmpty() bool { return len(p.Subjects) == 0 }

// Prepare applies the year filter and the latest-only dedup of the options.
// Rows missing a subject or a faculty, as found in hand-edited files, are dropped.
func Prepare(rows []Selection, opts ReportOptions) []Selection {
	filtered := make([]Selection, 0, len(rows))
	for _, r := range rows {
		if r.Subject == "" || r.Faculty == "" {
			continue
		}
		if opts.Year == 0 || r.Year == opts.Year {
			filtered = append(filtered, r)
		}
	}
	rows = filtered
	if opts.Latest {
		rows = LatestPerStudent(rows)
	}
	return rows
}

// LatestPerStudent keeps the most recent selection of each student for each subject.
// Rows keep their original order.
func LatestPerStudent(rows []Selection) []Selection {
	type key struct{ student, subject string }

	latest := make(map[key]int, len(rows))
	for i, r := range rows {
		k := key{r.StudentID, r.Subject}
		if j, ok := latest[k]; !ok || !r.CreatedAt.Before(rows[j].CreatedAt) {
			latest[k] = i
		}
	}

	kept := make([]Selection, 0, len(latest))
	for i, r := range rows {
		if latest[key{r.StudentID, r.Subject}] == i {
			kept = append(kept, r)
		}
	}
	return kept
}

// Aggregate groups rows by subject then faculty and counts them.
// Counts are sorted descending, ties by faculty name; topN > 0 truncates each subject.
func Aggregate(rows []Selection, topN int) Report {
	grouped := make(map[string]map[string]int)
	for _, r := range rows {
		byFaculty, ok := grouped[r.Subject]
		if !ok {
			byFaculty = make(map[string]int)
			grouped[r.Subject] = byFaculty
		}
		byFaculty[r.Faculty]++
	}

	report := make(Report, len(grouped))
	for subject, byFaculty := range grouped {
		counts := rankCounts(byFaculty)
		if topN > 0 && len(counts) > topN {
			counts = counts[:topN]
		}
		report[subject] = counts
	}
	return report
}

// Workload counts selections per faculty across all subjects.
func Workload(rows []Selection) []FacultyCount {
	totals := make(map[string]int)
	for _, r := range rows {
		totals[r.Faculty]++
	}
	return rankCounts(totals)
}

// Summarize returns one row per (subject, faculty), ordered by subject, then students descending.
func Summarize(rows []Selection) []SummaryRow {
	names := make(map[string]string)
	for _, r := range rows {
		if r.SubjectName != "" {
			names[r.Subject] = r.SubjectName
		}
	}

	report := Aggregate(rows, 0)
	summary := make([]SummaryRow, 0)
	for _, subject := range report.Subjects() {
		for _, fc := range report[subject] {
			summary = append(summary, SummaryRow{
				Subject:     subject,
				SubjectName: names[subject],
				Faculty:     fc.Faculty,
				Students:    fc.Count,
			})
		}
	}
	return summary
}

func NewPivot(rows []Selection) Pivot {
	pivot := Pivot{Counts: make(map[string]map[string]int)}
	faculty := make(map[string]struct{})
	for _, r := range rows {
		byFaculty, ok := pivot.Counts[r.Subject]
		if !ok {
			byFaculty = make(map[string]int)
			pivot.Counts[r.Subject] = byFaculty
			pivot.Subjects = append(pivot.Subjects, r.Subject)
		}
		byFaculty[r.Faculty]++
		if _, ok = faculty[r.Faculty]; !ok {
			faculty[r.Faculty] = struct{}{}
			pivot.Faculty = append(pivot.Faculty, r.Faculty)
		}
	}
	sort.Strings(pivot.Subjects)
	sort.Strings(pivot.Faculty)
	return pivot
}

func rankCounts(byFaculty map[string]int) []FacultyCount {
	counts := make([]FacultyCount, 0, len(byFaculty))
	for faculty, n := range byFaculty {
		counts = append(counts, FacultyCount{Faculty: faculty, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Faculty < counts[j].Faculty
	})
	return counts
}
