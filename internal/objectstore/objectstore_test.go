package objectstore

import (
	"path/filepath"
	"testing"

	"github.com/noahhai/DSInternals/pkg/dsid"
	"github.com/noahhai/DSInternals/pkg/interfaces"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(StoreConfig{
		Path:          filepath.Join(t.TempDir(), "db"),
		SkipDiskCheck: true,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testSchema() interfaces.Schema {
	return NewStaticSchema(map[string]int32{
		"person":             1,
		"organizationalUnit": 2,
	})
}

func TestCursorGotoDNT(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	schema := testSchema()
	if err := store.SeedObject(schema, 1, 1, "CN=alice", map[interfaces.AttributeID]string{
		interfaces.AttrSAMAccountName: "alice",
	}, nil, nil, nil); err != nil {
		t.Fatalf("SeedObject: %v", err)
	}

	cur := newCursor(store, schema)
	defer cur.Dispose()

	ok, err := cur.GotoDNT(1)
	if err != nil || !ok {
		t.Fatalf("GotoDNT(1) = %v, %v, want true, nil", ok, err)
	}
	dnt, err := cur.CurrentDNT()
	if err != nil || dnt != 1 {
		t.Fatalf("CurrentDNT() = %v, %v", dnt, err)
	}

	ok, err = cur.GotoDNT(999)
	if err != nil || ok {
		t.Fatalf("GotoDNT(999) = %v, %v, want false, nil", ok, err)
	}
}

func TestCursorUniqueIndexGotoKey(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	schema := testSchema()
	sid := []byte{0x01, 0x05, 0x00, 0x00, 0x2a}
	if err := store.SeedObject(schema, 1, 1, "CN=alice", nil, nil, map[interfaces.AttributeID][]byte{
		interfaces.AttrObjectSid: sid,
	}, nil); err != nil {
		t.Fatalf("SeedObject: %v", err)
	}

	cur := newCursor(store, schema)
	defer cur.Dispose()

	if err := cur.SetCurrentIndex(IndexObjectSid); err != nil {
		t.Fatalf("SetCurrentIndex: %v", err)
	}
	ok, err := cur.GotoKey(sid)
	if err != nil || !ok {
		t.Fatalf("GotoKey = %v, %v, want true, nil", ok, err)
	}
	dnt, _ := cur.CurrentDNT()
	if dnt != 1 {
		t.Fatalf("CurrentDNT() = %d, want 1", dnt)
	}
}

func TestCursorFindRecordsScansNonUniqueIndexInOrder(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	schema := testSchema()
	for _, dnt := range []int32{3, 1, 2} {
		if err := store.SeedObject(schema, dnt, 1, "", map[interfaces.AttributeID]string{
			interfaces.AttrSAMAccountName: "alice",
		}, nil, nil, nil); err != nil {
			t.Fatalf("SeedObject(%d): %v", dnt, err)
		}
	}

	cur := newCursor(store, schema)
	defer cur.Dispose()

	if err := cur.SetCurrentIndex(IndexSAMAccountName); err != nil {
		t.Fatalf("SetCurrentIndex: %v", err)
	}
	ok, err := cur.FindRecords(interfaces.MatchEqual, []byte("alice"))
	if err != nil || !ok {
		t.Fatalf("FindRecords = %v, %v", ok, err)
	}

	var seen []int32
	for ok {
		dnt, err := cur.CurrentDNT()
		if err != nil {
			t.Fatalf("CurrentDNT: %v", err)
		}
		seen = append(seen, int32(dnt))
		ok, err = cur.MoveNext()
		if err != nil {
			t.Fatalf("MoveNext: %v", err)
		}
	}

	if len(seen) != 3 {
		t.Fatalf("scanned %d records, want 3", len(seen))
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] <= seen[i-1] {
			t.Fatalf("scan order not ascending by DNT suffix: %v", seen)
		}
	}
}

func TestCursorEditAcceptChangesPersists(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	schema := testSchema()
	if err := store.SeedObject(schema, 1, 1, "", map[interfaces.AttributeID]string{}, map[interfaces.AttributeID]int32{
		interfaces.AttrUserAccountControl: 0x0200,
	}, nil, nil); err != nil {
		t.Fatalf("SeedObject: %v", err)
	}

	cur := newCursor(store, schema)
	defer cur.Dispose()

	txn := store.db.NewTransaction(true)
	cur.bindWriteTxn(txn)

	if _, err := cur.GotoDNT(1); err != nil {
		t.Fatalf("GotoDNT: %v", err)
	}
	if err := cur.BeginEditForUpdate(); err != nil {
		t.Fatalf("BeginEditForUpdate: %v", err)
	}

	view := &objectView{rec: cur.editRecord}
	changed, err := view.SetInt32(interfaces.AttrUserAccountControl, 0x0202)
	if err != nil || !changed {
		t.Fatalf("SetInt32 = %v, %v, want true, nil", changed, err)
	}

	if err := cur.AcceptChanges(); err != nil {
		t.Fatalf("AcceptChanges: %v", err)
	}
	if err := txn.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	cur.unbindWriteTxn()

	if _, err := cur.GotoDNT(1); err != nil {
		t.Fatalf("GotoDNT after commit: %v", err)
	}
	rec, err := store.getRecord(cur.txn(), 1)
	if err != nil {
		t.Fatalf("getRecord: %v", err)
	}
	if rec.Int32s[interfaces.AttrUserAccountControl] != 0x0202 {
		t.Fatalf("persisted userAccountControl = %#x, want 0x202", rec.Int32s[interfaces.AttrUserAccountControl])
	}
}

func TestCursorSaveRestoreLocation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	schema := testSchema()
	if err := store.SeedObject(schema, 1, 1, "", nil, nil, nil, nil); err != nil {
		t.Fatalf("SeedObject: %v", err)
	}
	if err := store.SeedObject(schema, 2, 1, "", nil, nil, nil, nil); err != nil {
		t.Fatalf("SeedObject: %v", err)
	}

	cur := newCursor(store, schema)
	defer cur.Dispose()

	if _, err := cur.GotoDNT(1); err != nil {
		t.Fatalf("GotoDNT: %v", err)
	}
	loc, err := cur.SaveLocation()
	if err != nil {
		t.Fatalf("SaveLocation: %v", err)
	}

	if _, err := cur.GotoDNT(2); err != nil {
		t.Fatalf("GotoDNT(2): %v", err)
	}

	if err := cur.RestoreLocation(loc); err != nil {
		t.Fatalf("RestoreLocation: %v", err)
	}
	dnt, err := cur.CurrentDNT()
	if err != nil || dnt != 1 {
		t.Fatalf("after restore CurrentDNT() = %v, %v, want 1", dnt, err)
	}
}

func TestDnResolverResolvesSeededDN(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	schema := testSchema()
	if err := store.SeedObject(schema, 5, 1, "CN=alice,DC=corp", nil, nil, nil, nil); err != nil {
		t.Fatalf("SeedObject: %v", err)
	}

	resolver := NewDnResolver(store)
	dnt, err := resolver.Resolve("CN=alice,DC=corp")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dnt != dsid.DNT(5) {
		t.Fatalf("Resolve() = %d, want 5", dnt)
	}

	if _, err := resolver.Resolve("CN=missing"); err == nil {
		t.Fatal("expected ObjectNotFound for unresolved DN")
	}
}
