package seed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	campaigndomain "github.com/smallbiznis/charity/internal/campaign/domain"
	"github.com/smallbiznis/charity/internal/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEnsureDemoCampaignIsIdempotent(t *testing.T) {
	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	created, err := EnsureDemoCampaign(context.Background(), db, node, "")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureDemoCampaign(context.Background(), db, node, "IDR")
	require.NoError(t, err)
	assert.False(t, created)

	var campaigns []campaigndomain.Campaign
	require.NoError(t, db.Find(&campaigns).Error)
	require.Len(t, campaigns, 1)
	assert.Equal(t, demoSlug, campaigns[0].Slug)
	assert.Equal(t, "IDR", campaigns[0].Currency)
	assert.Equal(t, campaigndomain.StatusOngoing, campaigns[0].Status)
}

func TestEnsureDemoCampaignRequiresHandles(t *testing.T) {
	_, err := EnsureDemoCampaign(context.Background(), nil, nil, "IDR")
	assert.Error(t, err)
}
