package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/voicehub/pkg/domain"
)

func TestWhereBuilder(t *testing.T) {
	var where whereBuilder
	assert.Equal(t, "", where.String())

	where.add("c.workspace_id = $%d", "ws")
	where.addRaw("c.deleted_at IS NULL")
	where.add("(name ILIKE $%[1]d OR slug ILIKE $%[1]d)", "%acme%")

	assert.Equal(t,
		"WHERE c.workspace_id = $1 AND c.deleted_at IS NULL AND (name ILIKE $2 OR slug ILIKE $2)",
		where.String(),
	)
	assert.Equal(t, []any{"ws", "%acme%"}, where.args)

	limit, args := where.limitOffset(domain.NewPageRequest(3, 20))
	assert.Equal(t, "LIMIT $3 OFFSET $4", limit)
	assert.Equal(t, []any{"ws", "%acme%", 20, 40}, args)

	// limitOffset must not alias the builder's args.
	assert.Len(t, where.args, 2)
}

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"acme", "%acme%"},
		{"%", `%\%%`},
		{"a_b", `%a\_b%`},
		{`back\slash`, `%back\\slash%`},
		{"50% off_", `%50\% off\_%`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, containsPattern(tt.in), "input %q", tt.in)
	}
}

func TestFetchPage(t *testing.T) {
	t.Run("combines items and total", func(t *testing.T) {
		page, err := fetchPage(context.Background(),
			func(ctx context.Context) ([]int, error) { return []int{41, 42, 43, 44, 45}, nil },
			func(ctx context.Context) (int, error) { return 45, nil },
		)
		require.NoError(t, err)
		assert.Equal(t, 45, page.Total)
		assert.Len(t, page.Items, 5)
	})

	t.Run("nil items become empty slice", func(t *testing.T) {
		page, err := fetchPage(context.Background(),
			func(ctx context.Context) ([]int, error) { return nil, nil },
			func(ctx context.Context) (int, error) { return 0, nil },
		)
		require.NoError(t, err)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
	})

	t.Run("count failure fails the page", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := fetchPage(context.Background(),
			func(ctx context.Context) ([]int, error) { return []int{1}, nil },
			func(ctx context.Context) (int, error) { return 0, boom },
		)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("list failure fails the page", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := fetchPage(context.Background(),
			func(ctx context.Context) ([]int, error) { return nil, boom },
			func(ctx context.Context) (int, error) { return 3, nil },
		)
		assert.ErrorIs(t, err, boom)
	})
}

func TestConfigDSN(t *testing.T) {
	cfg := Config{
		Host:     "localhost",
		Port:     5432,
		User:     "voicehub",
		Password: "secret",
		DBName:   "voicehub",
		SSLMode:  "disable",
	}
	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "port=5432")
	assert.Contains(t, dsn, "dbname=voicehub")
	assert.Contains(t, dsn, "sslmode=disable")
}
