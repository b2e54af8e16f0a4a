package research

import (
	"sort"

	"github.com/sinodesk/sinodesk/app/database"
)

// Timeline orders a project's articles chronologically by publication date.
// Articles without a publication date go last, in creation order. The sort is
// stable and pure, so repeated calls over the same set give identical output.
func Timeline(articles []database.Article) []database.Article {
	ordered := make([]database.Article, len(articles))
	copy(ordered, articles)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		switch {
		case a.PubDate != nil && b.PubDate != nil:
			if !a.PubDate.Equal(*b.PubDate) {
				return a.PubDate.Before(*b.PubDate)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		case a.PubDate != nil:
			return true
		case b.PubDate != nil:
			return false
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})

	return ordered
}
