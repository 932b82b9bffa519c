package store

import (
	"context"
	"testing"

	"loser-pays/internal/testutil"
)

// openStore opens a store on a throwaway schema with migrations applied.
func openStore(t *testing.T) (*Store, context.Context, func()) {
	t.Helper()
	dsn := testutil.PostgresSchema(t)
	ctx := context.Background()
	if err := Migrate(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st, ctx, st.Close
}
