package seeders_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/app/repositories"
	"github.com/shashiranjanraj/catalog/app/services"
	"github.com/shashiranjanraj/catalog/database/seeders"
	"github.com/shashiranjanraj/catalog/pkg/database"
)

func TestRunAllIsRepeatable(t *testing.T) {
	db, err := database.Open("sqlite", "file:seeders?mode=memory&cache=shared")
	require.NoError(t, err)
	defer database.Close(db)
	require.NoError(t, database.Migrate(db, models.All()...))

	svc := services.NewProductService(repositories.NewStore(db), nil, time.Minute)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, seeders.RunAll(ctx, svc, &out))
	require.NoError(t, seeders.RunAll(ctx, svc, &out))
	assert.Contains(t, out.String(), "Running seeder: products")

	list, err := svc.RetrieveMany(ctx, services.ListParams{Barcode: "5012345678900", Fields: "sku,barcodes"})
	require.NoError(t, err)
	assert.EqualValues(t, 4, list.TotalCount)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "TEA-GRN-050", list.Items[0]["sku"])
}
