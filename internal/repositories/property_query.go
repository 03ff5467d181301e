package repositories

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mhsenam/rentmio/internal/models"
)

// PageAfter is the keyset position of the last row of the previous page.
type PageAfter struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

type queryBuilder struct {
	where []string
	args  []any
}

func (q *queryBuilder) add(clause string, arg any) {
	q.args = append(q.args, arg)
	q.where = append(q.where, fmt.Sprintf(clause, len(q.args)))
}

// applyFilter appends the structured predicates in their fixed order:
// price range, bedroom/bathroom minimums, type, city, then status.
func (q *queryBuilder) applyFilter(f models.PropertyFilter) {
	if f.MinPrice != nil {
		q.add("price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q.add("price <= $%d", *f.MaxPrice)
	}
	if f.Bedrooms != nil {
		q.add("bedrooms >= $%d", *f.Bedrooms)
	}
	if f.Bathrooms != nil {
		q.add("bathrooms >= $%d", *f.Bathrooms)
	}
	if f.PropertyType != nil {
		q.add("property_type = $%d", *f.PropertyType)
	}
	if f.Location != nil {
		q.add("city = $%d", *f.Location)
	}
	q.add("status = $%d", string(models.PropertyStatusAvailable))
}

func (q *queryBuilder) finish(after *PageAfter, limit int) (string, []any) {
	if after != nil {
		q.args = append(q.args, after.CreatedAt, after.ID)
		q.where = append(q.where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(q.args)-1, len(q.args)))
	}
	q.args = append(q.args, limit)

	sql := baseSelectProperty() +
		" WHERE " + strings.Join(q.where, " AND ") +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(q.args))
	return sql, q.args
}

func buildListingQuery(f models.PropertyFilter, after *PageAfter, limit int) (string, []any) {
	q := &queryBuilder{}
	q.applyFilter(f)
	return q.finish(after, limit)
}

func buildTextSearchQuery(term string, f models.PropertyFilter, after *PageAfter, limit int) (string, []any) {
	q := &queryBuilder{}
	q.applyFilter(f)
	q.add("(title ILIKE $%[1]d OR description ILIKE $%[1]d OR location ILIKE $%[1]d)", likePattern(term))
	return q.finish(after, limit)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}
