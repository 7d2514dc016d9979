package selection

import (
	"sort"
	"strings"

	"github.com/trezcool/facultypref/core"
)

var defaultOrdering = []core.DBOrdering{{Field: "created_at", Ascending: true}}

// Sort orders selections in place; defaults to oldest first.
func Sort(sels []Selection, orderings ...core.DBOrdering) {
	if len(orderings) == 0 {
		orderings = defaultOrdering
	}
	sort.SliceStable(sels, func(i, j int) bool {
		for _, ord := range orderings {
			c := compare(sels[i], sels[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func compare(a, b Selection, field string) int {
	switch field {
	case "created_at":
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
		return 0
	case "year":
		return a.Year - b.Year
	case "student_id":
		return strings.Compare(a.StudentID, b.StudentID)
	case "subject":
		return strings.Compare(a.Subject, b.Subject)
	case "faculty":
		return strings.Compare(a.Faculty, b.Faculty)
	}
	return 0
}
