package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dossier/internal/models/db_models"
	"dossier/internal/models/wizard_models"
	"dossier/pkg/utils"
)

func TestReferenceServiceIndexAndSearch(t *testing.T) {
	ctx := context.Background()
	repo := newMemEmbeddingRepo()
	svc := NewReferenceService(utils.HashEmbeddingClient{}, repo, nil)

	other := &db_models.Project{BaseModel: db_models.BaseModel{ID: uuid.New()}, NeedType: "services", Tags: pq.StringArray{"rooms"}}
	require.NoError(t, svc.IndexSection(ctx, other, wizard_models.Section{ID: "description", Content: "Online room booking."}))

	row, ok := repo.get(other.ID.String() + ":description")
	require.True(t, ok)
	assert.Equal(t, "services", row.NeedType)
	assert.Equal(t, pq.StringArray{"rooms"}, row.Tags)
	assert.Len(t, row.Embedding.Slice(), 1536)

	refs, err := svc.SimilarSections(ctx, uuid.New().String(), "description", "book rooms")
	require.NoError(t, err)
	assert.Equal(t, []string{"Online room booking."}, refs)

	refs, err = svc.SimilarSections(ctx, other.ID.String(), "description", "book rooms")
	require.NoError(t, err)
	assert.Empty(t, refs, "a project never references itself")

	refs, err = svc.SimilarSections(ctx, uuid.New().String(), "description", "   ")
	require.NoError(t, err)
	assert.Nil(t, refs)
}
