package store

import (
	"context"
	"testing"

	"marketing-ops/migrations"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = migrations.Apply(context.Background(), s.DB())
	require.NoError(t, err)

	return s
}
