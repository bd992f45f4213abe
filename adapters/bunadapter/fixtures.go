package bunadapter

import (
	"context"
	"io/fs"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dbfixture"

	"github.com/goliatone/go-autobuild/ferrors"
)

// CreateTable creates the store's fixtures table when it does not exist.
func (s *Store) CreateTable(ctx context.Context) error {
	if s == nil || s.db == nil {
		return storeRequiredError("create_table", "")
	}
	query := s.db.NewCreateTable().Model((*FixtureRecord)(nil)).IfNotExists()
	if s.table != DefaultTable {
		query = query.ModelTableExpr("?", bun.Ident(s.table))
	}
	if _, err := query.Exec(ctx); err != nil {
		return ferrors.WrapExternal(err, ferrors.TextCodeStoreWriteFailed, "bunadapter: create table failed", s.meta("create_table"))
	}
	return nil
}

// LoadFixtures fills the store's table from YAML files in fsys. Each file
// lists rows of the FixtureRecord model keyed by column name (name,
// type_key, payload), with payload holding the JSON encoded value.
//
// The default table is recreated from the files. A store using another
// table stages the rows in the default table and upserts them into its own.
func (s *Store) LoadFixtures(ctx context.Context, fsys fs.FS, names ...string) error {
	if s == nil || s.db == nil {
		return storeRequiredError("load_fixtures", "")
	}
	db, ok := s.db.(*bun.DB)
	if !ok {
		return ferrors.WrapSentinel(ferrors.ErrStoreRequired, "bunadapter: fixtures load needs a *bun.DB", s.meta("load_fixtures"))
	}
	db.RegisterModel((*FixtureRecord)(nil))
	fixture := dbfixture.New(db, dbfixture.WithRecreateTables())
	if err := fixture.Load(ctx, fsys, names...); err != nil {
		return ferrors.WrapExternal(err, ferrors.TextCodeStoreWriteFailed, "bunadapter: fixtures load failed", s.meta("load_fixtures"))
	}
	if s.table == DefaultTable {
		return nil
	}

	if err := s.CreateTable(ctx); err != nil {
		return err
	}
	_, err := db.NewRaw(`INSERT INTO ? (name, type_key, payload, updated_by, updated_at)
SELECT name, type_key, payload, updated_by, updated_at FROM ? WHERE true
ON CONFLICT (name, type_key) DO UPDATE SET
payload = EXCLUDED.payload, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`,
		bun.Ident(s.table), bun.Ident(DefaultTable)).Exec(ctx)
	if err != nil {
		return ferrors.WrapExternal(err, ferrors.TextCodeStoreWriteFailed, "bunadapter: fixtures copy failed", s.meta("load_fixtures"))
	}
	if _, err := db.NewDropTable().Model((*FixtureRecord)(nil)).IfExists().Exec(ctx); err != nil {
		return ferrors.WrapExternal(err, ferrors.TextCodeStoreWriteFailed, "bunadapter: staging cleanup failed", s.meta("load_fixtures"))
	}
	return nil
}

func (s *Store) meta(operation string) map[string]any {
	return map[string]any{
		ferrors.MetaAdapter:   "bun",
		ferrors.MetaTable:     s.table,
		ferrors.MetaOperation: operation,
	}
}
