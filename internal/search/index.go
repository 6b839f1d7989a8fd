package search

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/terraincognita07/glowlog/internal/models"
)

const maxResults = 50

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Index answers keyword lookups over the procedure catalog. Every term of the
// keyword has to appear in the name, category or keyword list of a match.
type Index struct {
	database *gorm.DB
}

func NewIndex(database *gorm.DB) *Index {
	return &Index{database: database}
}

func (index *Index) SearchProcedures(ctx context.Context, keyword string, limit int) ([]models.Procedure, error) {
	terms := strings.Fields(strings.ToLower(keyword))
	results := make([]models.Procedure, 0)
	if len(terms) == 0 {
		return results, nil
	}
	if limit <= 0 || limit > maxResults {
		limit = maxResults
	}

	query := index.database.WithContext(ctx).Model(&models.Procedure{})
	for _, term := range terms {
		pattern := likePattern(term)
		query = query.Where(
			`(lower(name) LIKE ? ESCAPE '\' OR lower(category) LIKE ? ESCAPE '\' OR lower(keywords) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}

	// One clause: gorm drops an expression order when a column order follows.
	err := query.
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:  `CASE WHEN lower(name) LIKE ? ESCAPE '\' THEN 0 ELSE 1 END, name ASC`,
			Vars: []any{likePattern(terms[0])},
		}}).
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("query procedure index: %w", err)
	}
	return results, nil
}

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
