package catalog

import (
	"context"

	"github.com/HushmKun/SeekerOfLight/internal/models"
)

// SearchLessons runs a fuzzy title/content lookup and hydrates the hits from
// the catalog, preserving relevance order.
func (s *CatalogService) SearchLessons(ctx context.Context, query string, size int) ([]models.Lesson, error) {
	ids, err := s.search.Search(ctx, query, size)
	if err != nil {
		return nil, err
	}
	return s.repo.LessonsByIDs(ctx, ids)
}
