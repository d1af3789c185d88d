package warehouses

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositorySeed(t *testing.T) {
	repo := NewMemoryRepository(Seed())
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 6)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, "AEVERV", list[0].Name)
	assert.Equal(t, "THGSRT", list[5].Name)

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 6, Active: 5, Passive: 1}, stats)
}

func TestMemoryRepositoryCreate(t *testing.T) {
	repo := NewMemoryRepository(Seed())
	ctx := context.Background()

	w, err := repo.Create(ctx, Warehouse{Name: " Merkez ", Code: "MRK"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), w.ID)
	assert.Equal(t, "Merkez", w.Name)
	assert.Equal(t, StatusActive, w.Status)
	assert.Equal(t, DefaultTransferType, w.TransferType)

	_, err = repo.Create(ctx, Warehouse{Name: "Başka", Code: "MRK"})
	assert.ErrorIs(t, err, ErrDuplicateCode)
	_, err = repo.Create(ctx, Warehouse{Name: "Merkez", Code: "X"})
	assert.ErrorIs(t, err, ErrDuplicateName)
	_, err = repo.Create(ctx, Warehouse{Name: "", Code: "Y"})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = repo.Create(ctx, Warehouse{Name: "Z", Code: "Z", Status: "Silindi"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMemoryRepositoryDelete(t *testing.T) {
	repo := NewMemoryRepository(Seed())
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, 4))
	assert.ErrorIs(t, repo.Delete(ctx, 4), ErrNotFound)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 5, Active: 5}, stats)
}

func TestListIsACopy(t *testing.T) {
	repo := NewMemoryRepository(Seed())
	list, _ := repo.List(context.Background())
	list[0].Name = "changed"
	again, _ := repo.List(context.Background())
	assert.Equal(t, "AEVERV", again[0].Name)
}

func TestStatCards(t *testing.T) {
	cards := Stats{Total: 6, Active: 5, Passive: 1}.StatCards()
	require.Len(t, cards, 4)
	assert.Equal(t, "Toplam Depo", cards[0].Title)
	assert.Equal(t, "6", cards[0].Value)
	assert.Equal(t, TrendDown, cards[2].Trend)
	assert.Equal(t, CapacityUsage, cards[3].Value)
	assert.InDelta(t, 24.0, cards[1].Data[11], 0.001)

	assert.Equal(t, TrendNeutral, Stats{Total: 1, Active: 1}.StatCards()[2].Trend)
}

func TestSparkline(t *testing.T) {
	c := StatCard{Data: []float64{0, 5, 10}}
	assert.Equal(t, "0.0,20.0 50.0,10.0 100.0,0.0", c.Sparkline(100, 20))
	assert.Empty(t, StatCard{}.Sparkline(100, 20))
}

func TestRows(t *testing.T) {
	rows := Rows(Seed()[:1])
	require.Len(t, rows, 1)
	assert.Equal(t, "AEVERV", rows[0]["ad"])
	assert.Equal(t, "Aktif", rows[0]["durum"])
}

// TEST_DB_URL points at a migrated, disposable database.
func TestPostgresRepository(t *testing.T) {
	url := os.Getenv("TEST_DB_URL")
	if url == "" {
		t.Skip("TEST_DB_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, "TRUNCATE warehouses RESTART IDENTITY")
	require.NoError(t, err)

	repo := NewPostgresRepository(pool)
	w, err := repo.Create(ctx, Warehouse{Name: "Merkez", Code: "MRK"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), w.ID)

	_, err = repo.Create(ctx, Warehouse{Name: "Başka", Code: "MRK"})
	assert.ErrorIs(t, err, ErrDuplicateCode)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Active: 1}, stats)

	require.NoError(t, repo.Delete(ctx, w.ID))
	assert.ErrorIs(t, repo.Delete(ctx, w.ID), ErrNotFound)
}
