package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
)

const recentWindow = 7 * 24 * time.Hour

type AnalyticsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewAnalyticsService(db *sql.DB, m repomanager.RepositoryManager) *AnalyticsService {
	return &AnalyticsService{db: db, repomanager: m}
}

// Summary computes the owner's note statistics.
func (s *AnalyticsService) Summary(ctx context.Context, owner string) (*models.Analytics, error) {
	list, err := s.repomanager.Notes(s.db).ListByOwner(ctx, owner, notes.Filter{})
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	return summarize(list, now()), nil
}

func summarize(list []*models.Note, at time.Time) *models.Analytics {
	a := &models.Analytics{ByCategory: []models.CategoryCount{}}
	counts := map[string]int{}
	since := at.Add(-recentWindow)

	for _, n := range list {
		a.TotalNotes++
		if n.IsFavorite {
			a.FavoriteNotes++
		}
		if len(n.Images) > 0 {
			a.NotesWithImages++
			a.TotalImages += len(n.Images)
		}
		if !n.CreatedAt.Before(since) {
			a.RecentNotes++
		}
		counts[strings.ToLower(n.Category)]++
	}

	a.Categories = len(counts)
	for c, n := range counts {
		a.ByCategory = append(a.ByCategory, models.CategoryCount{Category: c, Count: n})
	}
	sort.Slice(a.ByCategory, func(i, j int) bool {
		if a.ByCategory[i].Count != a.ByCategory[j].Count {
			return a.ByCategory[i].Count > a.ByCategory[j].Count
		}
		return a.ByCategory[i].Category < a.ByCategory[j].Category
	})
	return a
}
