package progress

import (
	"context"

	"github.com/google/uuid"

	"github.com/HushmKun/SeekerOfLight/internal/models"
)

// Unlocked reports whether a level is accessible given the full level
// sequence and the user's completed counts per level.
//
// The level at order 1 is the entry point and is always unlocked. For any
// other level the predecessor is the level at order_index-1 regardless of its
// active flag; when no such level exists the gate fails open. Otherwise the
// level unlocks once the completed count in the predecessor reaches the
// threshold. Pure over its inputs.
func Unlocked(level models.Level, levels []models.Level, completedByLevel map[uuid.UUID]int) bool {
	if level.OrderIndex == 1 {
		return true
	}

	var prev *models.Level
	for i := range levels {
		if levels[i].OrderIndex == level.OrderIndex-1 {
			prev = &levels[i]
			break
		}
	}
	if prev == nil {
		return true
	}

	return completedByLevel[prev.ID] >= level.UnlockThreshold
}

// LevelsWithStatus returns active levels ascending by order, each annotated
// with the caller's unlock state. Anonymous callers (uuid.Nil) see every
// level locked.
func (s *ProgressService) LevelsWithStatus(ctx context.Context, userID uuid.UUID) ([]models.LevelStatus, error) {
	levels, err := s.catalogRepo.Levels(ctx)
	if err != nil {
		return nil, err
	}

	var completed map[uuid.UUID]int
	if userID != uuid.Nil {
		completed, err = s.progressRepo.CompletedCountsByLevel(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	statuses := make([]models.LevelStatus, 0, len(levels))
	for _, level := range levels {
		if !level.IsActive {
			continue
		}
		status := models.LevelStatus{Level: level}
		if userID != uuid.Nil {
			status.IsUnlocked = Unlocked(level, levels, completed)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// LevelStatusByID annotates a single active level; missing or inactive
// levels surface app_errors.ErrLevelNotFound from the store.
func (s *ProgressService) LevelStatusByID(ctx context.Context, levelID, userID uuid.UUID) (models.LevelStatus, error) {
	level, err := s.catalogRepo.LevelByID(ctx, levelID)
	if err != nil {
		return models.LevelStatus{}, err
	}

	status := models.LevelStatus{Level: level}
	if userID == uuid.Nil {
		return status, nil
	}

	levels, err := s.catalogRepo.Levels(ctx)
	if err != nil {
		return models.LevelStatus{}, err
	}
	completed, err := s.progressRepo.CompletedCountsByLevel(ctx, userID)
	if err != nil {
		return models.LevelStatus{}, err
	}
	status.IsUnlocked = Unlocked(level, levels, completed)
	return status, nil
}
