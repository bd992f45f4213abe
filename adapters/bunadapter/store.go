package bunadapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-autobuild/ferrors"
	"github.com/goliatone/go-autobuild/value"
)

// DefaultTable is the default table name for fixture values.
const DefaultTable = "autobuild_fixtures"

// AnyType is the type key of a fixture served to every requested type.
const AnyType = ""

// ErrDBRequired indicates the underlying Bun DB is missing.
var ErrDBRequired = ferrors.ErrStoreRequired

// Store serves named fixture values kept as JSON payloads in a database
// table. It is a value.Resolver: a row matches a request by name and by
// the fully qualified requested type, or by name alone when its type key
// is empty.
type Store struct {
	db        bun.IDB
	table     string
	now       func() time.Time
	updatedBy string
}

// Option customizes the Bun store adapter.
type Option func(*Store)

// NewStore constructs a new Bun-backed fixture store.
func NewStore(db bun.IDB, opts ...Option) *Store {
	adapter := &Store{
		db:    db,
		table: DefaultTable,
		now:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	if adapter.table == "" {
		adapter.table = DefaultTable
	}
	if adapter.now == nil {
		adapter.now = time.Now
	}
	return adapter
}

// WithTable sets the table name used for fixtures.
func WithTable(table string) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.table = strings.TrimSpace(table)
	}
}

// WithNowFunc overrides the timestamp function used for updates.
func WithNowFunc(now func() time.Time) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.now = now
	}
}

// WithUpdatedBy sets the updated_by value written on upserts.
func WithUpdatedBy(actor string) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.updatedBy = strings.TrimSpace(actor)
	}
}

// FixtureRecord maps to the autobuild_fixtures table.
type FixtureRecord struct {
	bun.BaseModel `bun:"table:autobuild_fixtures,alias:f"`
	Name          string    `bun:"name,pk"`
	TypeKey       string    `bun:"type_key,pk"`
	Payload       string    `bun:"payload,notnull"`
	UpdatedBy     string    `bun:"updated_by,nullzero"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero"`
}

// Name implements value.Named.
func (s *Store) Name() string {
	if s == nil || s.table == "" {
		return "bun:" + DefaultTable
	}
	return "bun:" + s.table
}

// Resolve implements value.Resolver. Missing rows and undecodable payloads
// decline; database failures are fatal.
func (s *Store) Resolve(ctx context.Context, node *value.Node) (any, error) {
	if node == nil || node.Type() == nil {
		return nil, value.Decline(node, "no type to resolve")
	}
	if s == nil || s.db == nil {
		return nil, storeRequiredError("resolve", "")
	}
	record, found, err := s.Get(ctx, node.Name(), node.Type())
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ferrors.WrapSentinel(ferrors.ErrNotFound,
			fmt.Sprintf("no fixture for %s of type %s", node.Name(), node.Type()),
			map[string]any{
				ferrors.MetaName:  node.Name(),
				ferrors.MetaType:  node.Type().String(),
				ferrors.MetaTable: s.table,
			})
	}
	out, err := decode(record, node.Type())
	if err != nil {
		return nil, ferrors.WrapCause(ferrors.ErrTypeMismatch,
			fmt.Sprintf("fixture %s does not decode into %s: %v", node.Name(), node.Type(), err),
			map[string]any{
				ferrors.MetaName:  node.Name(),
				ferrors.MetaType:  node.Type().String(),
				ferrors.MetaTable: s.table,
			}, err)
	}
	return out, nil
}

// Get returns the fixture row serving name for t: an exact type key first,
// then the row with AnyType.
func (s *Store) Get(ctx context.Context, name string, t reflect.Type) (FixtureRecord, bool, error) {
	if s == nil || s.db == nil {
		return FixtureRecord{}, false, storeRequiredError("get", name)
	}
	name = strings.TrimSpace(name)
	for _, key := range []string{value.TypeKey(t), AnyType} {
		record := FixtureRecord{}
		query := s.db.NewSelect().Model(&record).
			Where("name = ?", name).
			Where("type_key = ?", key).
			Limit(1)
		if expr := s.tableExpr(); expr != "" {
			query = query.ModelTableExpr(expr)
		}
		if err := query.Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return FixtureRecord{}, false, ferrors.WrapExternal(err, ferrors.TextCodeStoreReadFailed, "bunadapter: select failed", map[string]any{
				ferrors.MetaAdapter:   "bun",
				ferrors.MetaTable:     s.table,
				ferrors.MetaName:      name,
				ferrors.MetaOperation: "get",
			})
		}
		return record, true, nil
	}
	return FixtureRecord{}, false, nil
}

// Put stores v under name for its runtime type, replacing an existing row.
func (s *Store) Put(ctx context.Context, name string, v any) error {
	return s.put(ctx, name, value.TypeKey(reflect.TypeOf(v)), v)
}

// PutAny stores v under name for every requested type.
func (s *Store) PutAny(ctx context.Context, name string, v any) error {
	return s.put(ctx, name, AnyType, v)
}

func (s *Store) put(ctx context.Context, name, typeKey string, v any) error {
	if s == nil || s.db == nil {
		return storeRequiredError("put", name)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ferrors.WrapSentinel(ferrors.ErrInvalidName, "bunadapter: fixture name required", map[string]any{
			ferrors.MetaAdapter: "bun",
			ferrors.MetaTable:   s.table,
		})
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return ferrors.NewBadInput(ferrors.TextCodeFixtureDecodeFailed, fmt.Sprintf("bunadapter: cannot encode %T: %v", v, err), map[string]any{
			ferrors.MetaName:      name,
			ferrors.MetaValueType: fmt.Sprintf("%T", v),
		})
	}
	record := FixtureRecord{
		Name:      name,
		TypeKey:   typeKey,
		Payload:   string(payload),
		UpdatedBy: s.updatedBy,
		UpdatedAt: s.now(),
	}
	query := s.db.NewInsert().Model(&record).
		On("CONFLICT (name, type_key) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("updated_by = EXCLUDED.updated_by").
		Set("updated_at = EXCLUDED.updated_at")
	if expr := s.tableExpr(); expr != "" {
		query = query.ModelTableExpr(expr)
	}
	if _, err := query.Exec(ctx); err != nil {
		return ferrors.WrapExternal(err, ferrors.TextCodeStoreWriteFailed, "bunadapter: upsert failed", map[string]any{
			ferrors.MetaAdapter:   "bun",
			ferrors.MetaTable:     s.table,
			ferrors.MetaName:      name,
			ferrors.MetaOperation: "put",
		})
	}
	return nil
}

// Delete removes every row stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if s == nil || s.db == nil {
		return storeRequiredError("delete", name)
	}
	query := s.db.NewDelete().
		Model((*FixtureRecord)(nil)).
		Where("name = ?", strings.TrimSpace(name))
	if expr := s.tableExpr(); expr != "" {
		query = query.ModelTableExpr(expr)
	}
	if _, err := query.Exec(ctx); err != nil {
		return ferrors.WrapExternal(err, ferrors.TextCodeStoreWriteFailed, "bunadapter: delete failed", map[string]any{
			ferrors.MetaAdapter:   "bun",
			ferrors.MetaTable:     s.table,
			ferrors.MetaName:      name,
			ferrors.MetaOperation: "delete",
		})
	}
	return nil
}

// tableExpr renames the model table, keeping the alias columns are
// qualified with.
func (s *Store) tableExpr() string {
	if s.table == "" || s.table == DefaultTable {
		return ""
	}
	return s.table + " AS f"
}

func decode(record FixtureRecord, t reflect.Type) (any, error) {
	out := reflect.New(t)
	if err := json.Unmarshal([]byte(record.Payload), out.Interface()); err != nil {
		return nil, err
	}
	return out.Elem().Interface(), nil
}

func storeRequiredError(operation, name string) error {
	return ferrors.WrapSentinel(ferrors.ErrStoreRequired, "bunadapter: db is required", map[string]any{
		ferrors.MetaAdapter:   "bun",
		ferrors.MetaOperation: operation,
		ferrors.MetaName:      name,
	})
}

var _ value.Resolver = (*Store)(nil)
