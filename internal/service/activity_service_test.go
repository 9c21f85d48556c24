package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edunexa/edunexa-api/internal/models"
	"github.com/edunexa/edunexa-api/internal/repository"
)

type memoryActivityRepo struct {
	entries []models.ActivityLog
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	return append([]models.ActivityLog(nil), m.entries...), int64(len(m.entries)), nil
}

func TestActivityServiceRecordNormalizes(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())

	id := uint(5)
	err := svc.Record(context.Background(), ActivityEntry{
		ActorID:    1,
		ActorRole:  models.RoleTeacher,
		Action:     " Course.Created ",
		EntityType: "Course",
		EntityID:   &id,
		Metadata:   map[string]interface{}{"code": "CS201"},
	})
	require.NoError(t, err)
	require.Len(t, repo.entries, 1)
	require.Equal(t, "course.created", repo.entries[0].Action)
	require.Equal(t, "course", repo.entries[0].EntityType)
}

func TestActivityServiceRecordRequiresAction(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())

	err := svc.Record(context.Background(), ActivityEntry{
		ActorID:    1,
		ActorRole:  models.RoleTeacher,
		EntityType: "course",
	})
	require.Error(t, err)
	require.Empty(t, repo.entries)
}
