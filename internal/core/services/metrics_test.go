package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracken-labs/snapnote/internal/adapters/driven/storage/memory"
	"github.com/bracken-labs/snapnote/internal/core/domain"
)

func TestAggregate(t *testing.T) {
	store := memory.NewSnapshotStore()
	svc := NewMetricsService(store, zerolog.Nop())

	seedSnapshot(t, store, "a.py", domain.TypeImports, domain.FieldSet{"x": "1"})
	seedSnapshot(t, store, "b.py", domain.TypeImports, domain.FieldSet{"x": "1"})
	seedSnapshot(t, store, "a.py", domain.TypeQuality, domain.FieldSet{"x": "1"})

	agg, err := svc.Aggregate(context.Background(), time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 3, agg.TotalSnapshots)
	assert.Equal(t, 2, agg.ByType[domain.TypeImports])
	assert.Equal(t, 3, agg.RecentActivity)
	require.Len(t, agg.Projects, 1)
	assert.Equal(t, "p1", agg.Projects[0].ProjectID)
	assert.Equal(t, 3, agg.Projects[0].Snapshots)
	assert.Equal(t, 2, agg.Projects[0].Files)
	assert.False(t, agg.GeneratedAt.IsZero())
}
