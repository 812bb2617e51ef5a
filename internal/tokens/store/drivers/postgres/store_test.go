package postgres_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/domain"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/store"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/store/drivers/postgres"
)

// startPostgres runs a throwaway postgres container. Requires docker, so it
// only runs with TOKENREG_E2E=1.
func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() || os.Getenv("TOKENREG_E2E") != "1" {
		t.Skip("set TOKENREG_E2E=1 to run postgres container tests")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "tokenreg",
			"POSTGRES_PASSWORD": "tokenreg",
			"POSTGRES_DB":       "tokenreg",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://tokenreg:tokenreg@%s:%s/tokenreg?sslmode=disable", host, port.Port())
}

func TestPostgresStore(t *testing.T) {
	dsn := startPostgres(t)

	s, err := postgres.NewStore(dsn, store.DefaultColumns())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.ApplyMigrations())
	ctx := context.Background()

	t.Run("ReturningID", func(t *testing.T) {
		id, err := s.Tokens().CreateToken(ctx, domain.TokenRecord{AccountID: "pg", Token: "t", Algorithm: "HS256", Decoder: "k"})
		require.NoError(t, err)
		assert.Positive(t, id)
		require.NoError(t, s.Tokens().UpdateToken(ctx, id, "t2"))
	})

	t.Run("AccountLockSerialisesWriters", func(t *testing.T) {
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.WithTx(ctx, func(tx store.Tx) error {
					repo := tx.Tokens()
					if err := repo.LockAccount(ctx, "locked"); err != nil {
						return err
					}
					n, err := repo.CountAccountTokens(ctx, "locked")
					if err != nil {
						return err
					}
					if n >= 3 {
						return nil
					}
					_, err = repo.CreateToken(ctx, domain.TokenRecord{AccountID: "locked", Token: "t", Algorithm: "HS256", Decoder: "k"})
					return err
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		n, err := s.Tokens().CountAccountTokens(ctx, "locked")
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})
}
