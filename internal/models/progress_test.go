package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func TestApplyPatch_CompletionStampsOnce(t *testing.T) {
	var up UserProgress

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	up.ApplyPatch(ProgressPatch{IsCompleted: boolPtr(true)}, first)

	require.True(t, up.IsCompleted)
	require.NotNil(t, up.CompletedAt)
	assert.Equal(t, first, *up.CompletedAt)
	assert.Equal(t, first, up.LastAccessed)

	// Completing again must not move the stamp.
	second := first.Add(time.Hour)
	up.ApplyPatch(ProgressPatch{IsCompleted: boolPtr(true)}, second)

	assert.True(t, up.IsCompleted)
	assert.Equal(t, first, *up.CompletedAt)
	assert.Equal(t, second, up.LastAccessed)
}

func TestApplyPatch_UncompleteKeepsStamp(t *testing.T) {
	var up UserProgress

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	up.ApplyPatch(ProgressPatch{IsCompleted: boolPtr(true)}, first)
	up.ApplyPatch(ProgressPatch{IsCompleted: boolPtr(false)}, first.Add(time.Hour))

	assert.False(t, up.IsCompleted)
	require.NotNil(t, up.CompletedAt)
	assert.Equal(t, first, *up.CompletedAt)

	// Re-completing after an explicit un-complete is a genuine transition
	// and stamps anew.
	third := first.Add(2 * time.Hour)
	up.ApplyPatch(ProgressPatch{IsCompleted: boolPtr(true)}, third)
	assert.Equal(t, third, *up.CompletedAt)
}

func TestApplyPatch_BookmarkIndependentOfCompletion(t *testing.T) {
	var up UserProgress

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	up.ApplyPatch(ProgressPatch{Bookmarked: boolPtr(true)}, now)

	assert.True(t, up.Bookmarked)
	assert.False(t, up.IsCompleted)
	assert.Nil(t, up.CompletedAt)

	up.ApplyPatch(ProgressPatch{IsCompleted: boolPtr(true)}, now.Add(time.Minute))
	assert.True(t, up.Bookmarked)

	up.ApplyPatch(ProgressPatch{Bookmarked: boolPtr(false)}, now.Add(2*time.Minute))
	assert.False(t, up.Bookmarked)
	assert.True(t, up.IsCompleted)
}

func TestApplyPatch_EmptyPatchTouchesLastAccessed(t *testing.T) {
	up := UserProgress{IsCompleted: true, Bookmarked: true}

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	up.ApplyPatch(ProgressPatch{}, now)

	assert.True(t, up.IsCompleted)
	assert.True(t, up.Bookmarked)
	assert.Equal(t, now, up.LastAccessed)
}

func TestProgressPatch_Empty(t *testing.T) {
	assert.True(t, ProgressPatch{}.Empty())
	assert.False(t, ProgressPatch{IsCompleted: boolPtr(false)}.Empty())
	assert.False(t, ProgressPatch{Bookmarked: boolPtr(true)}.Empty())
}
