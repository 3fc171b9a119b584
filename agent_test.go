package dsinternals

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noahhai/DSInternals/internal/bootkey"
	"github.com/noahhai/DSInternals/internal/objectstore"
	"github.com/noahhai/DSInternals/internal/secretdecryptor"
	"github.com/noahhai/DSInternals/pkg/dcerrors"
	"github.com/noahhai/DSInternals/pkg/dsid"
	"github.com/noahhai/DSInternals/pkg/interfaces"
)

func testClasses() map[string]int32 {
	return map[string]int32{
		"person":             1,
		"organizationalUnit": 2,
		"secret":             3,
		"msKds-ProvRootKey":  4,
	}
}

func newFixtureAgent(t *testing.T, header *interfaces.DCHeader) (*Agent, *objectstore.Store) {
	t.Helper()
	store, err := objectstore.Open(objectstore.StoreConfig{
		Path:          filepath.Join(t.TempDir(), "db"),
		SkipDiskCheck: true,
	})
	if err != nil {
		t.Fatalf("objectstore.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	schema := objectstore.NewStaticSchema(testClasses())
	resolver := objectstore.NewDnResolver(store)
	cc, err := objectstore.NewContext(store, schema, resolver, header)
	if err != nil {
		t.Fatalf("objectstore.NewContext: %v", err)
	}

	agent, err := New(cc, Options{OwnsContext: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { agent.Dispose() })

	return agent, store
}

func TestSetAccountStatusDisableBySam(t *testing.T) {
	t.Parallel()

	header := &interfaces.DCHeader{Variant: interfaces.VariantADDS, State: interfaces.StateNormal}
	agent, store := newFixtureAgent(t, header)
	schema := objectstore.NewStaticSchema(testClasses())

	if err := store.SeedObject(schema, 1, testClasses()["person"], "",
		map[interfaces.AttributeID]string{interfaces.AttrSAMAccountName: "alice"},
		map[interfaces.AttributeID]int32{
			interfaces.AttrSAMAccountType:      objectstore.SamAccountTypeNormalUser,
			interfaces.AttrUserAccountControl:  0x0200,
		}, nil, nil); err != nil {
		t.Fatalf("SeedObject: %v", err)
	}

	changed, err := agent.SetAccountStatus(dsid.Sam("alice"), false, false)
	if err != nil {
		t.Fatalf("SetAccountStatus: %v", err)
	}
	if !changed {
		t.Fatal("SetAccountStatus() = false, want true on first disable")
	}

	view, err := agent.FindObject(dsid.Sam("alice"))
	if err != nil {
		t.Fatalf("FindObject: %v", err)
	}
	uac, ok, err := view.ReadInt32(interfaces.AttrUserAccountControl)
	if err != nil || !ok || uac != 0x0202 {
		t.Fatalf("userAccountControl = %#x, %v, %v, want 0x202", uac, ok, err)
	}

	if agent.ctx.DCHeader().HighestCommittedUSN != 1 {
		t.Fatalf("HighestCommittedUSN = %d, want 1", agent.ctx.DCHeader().HighestCommittedUSN)
	}
}

func TestSetAccountStatusIdempotentDisable(t *testing.T) {
	t.Parallel()

	header := &interfaces.DCHeader{Variant: interfaces.VariantADDS, State: interfaces.StateNormal}
	agent, store := newFixtureAgent(t, header)
	schema := objectstore.NewStaticSchema(testClasses())

	if err := store.SeedObject(schema, 1, testClasses()["person"], "",
		map[interfaces.AttributeID]string{interfaces.AttrSAMAccountName: "alice"},
		map[interfaces.AttributeID]int32{
			interfaces.AttrSAMAccountType:     objectstore.SamAccountTypeNormalUser,
			interfaces.AttrUserAccountControl: 0x0202,
		}, nil, nil); err != nil {
		t.Fatalf("SeedObject: %v", err)
	}

	changed, err := agent.SetAccountStatus(dsid.Sam("alice"), false, false)
	if err != nil {
		t.Fatalf("SetAccountStatus: %v", err)
	}
	if changed {
		t.Fatal("SetAccountStatus() = true, want false on already-disabled account")
	}
	if agent.ctx.DCHeader().HighestCommittedUSN != 0 {
		t.Fatalf("HighestCommittedUSN = %d, want unchanged 0", agent.ctx.DCHeader().HighestCommittedUSN)
	}
}

func TestSetPrimaryGroupIDRejectsNonAccount(t *testing.T) {
	t.Parallel()

	header := &interfaces.DCHeader{Variant: interfaces.VariantADDS, State: interfaces.StateNormal}
	agent, store := newFixtureAgent(t, header)
	schema := objectstore.NewStaticSchema(testClasses())

	if err := store.SeedObject(schema, 2, testClasses()["organizationalUnit"], "", nil, nil, nil, nil); err != nil {
		t.Fatalf("SeedObject: %v", err)
	}

	_, err := agent.SetPrimaryGroupID(dsid.Dnt(2), 513, false)
	if err == nil {
		t.Fatal("expected ObjectOperation error for non-account target")
	}
	if _, ok := err.(*dcerrors.ObjectOperationError); !ok {
		t.Fatalf("err = %T, want *dcerrors.ObjectOperationError", err)
	}
}

func TestChangeBootKeyRoundTrip(t *testing.T) {
	t.Parallel()

	domainDNT := dsid.DNT(10)
	header := &interfaces.DCHeader{
		Variant:     interfaces.VariantADDS,
		State:       interfaces.StateNormal,
		DomainNCDNT: &domainDNT,
	}
	agent, store := newFixtureAgent(t, header)
	schema := objectstore.NewStaticSchema(testClasses())

	k0 := make([]byte, secretdecryptor.BootKeyLength)
	k0[len(k0)-1] = 0x01
	k1 := make([]byte, secretdecryptor.BootKeyLength)
	k1[len(k1)-1] = 0x02

	list := secretdecryptor.PEKList{Version: 1, Keys: []secretdecryptor.PEK{{KeyID: 1, Key: []byte("original-pek-bytes")}}}
	blob0, err := secretdecryptor.WrapPEKList(agent.primitives, k0, list)
	if err != nil {
		t.Fatalf("WrapPEKList: %v", err)
	}
	if err := store.SeedObject(schema, 10, testClasses()["organizationalUnit"], "", nil, nil,
		map[interfaces.AttributeID][]byte{interfaces.AttrPEKList: blob0}, nil); err != nil {
		t.Fatalf("SeedObject: %v", err)
	}

	if err := agent.ChangeBootKey(k0, k1); err != nil {
		t.Fatalf("ChangeBootKey(k0, k1): %v", err)
	}
	if err := agent.ChangeBootKey(k1, k0); err != nil {
		t.Fatalf("ChangeBootKey(k1, k0): %v", err)
	}

	// AES-GCM's random nonce means the raw ciphertext bytes differ across
	// wraps even under the same key; the operationally meaningful
	// invariant this core preserves is that the PEK list decodes back to
	// the original content (see DESIGN.md).
	ok, err := agent.cur.GotoDNT(10)
	require.NoError(t, err)
	require.True(t, ok)

	finalView, err := agent.ctx.View(agent.cur)
	require.NoError(t, err)

	blobFinal, ok, err := finalView.ReadBytes(interfaces.AttrPEKList)
	require.NoError(t, err)
	require.True(t, ok)

	gotList, err := secretdecryptor.UnwrapPEKList(agent.primitives, k0, blobFinal)
	require.NoError(t, err)

	pek, ok := gotList.ByID(1)
	require.True(t, ok)
	require.Equal(t, "original-pek-bytes", string(pek.Key))
}

func TestGetSecretDecryptorADLDSComposesBootKey(t *testing.T) {
	t.Parallel()

	configDNT := dsid.DNT(11)
	schemaDNT := dsid.DNT(12)
	header := &interfaces.DCHeader{
		Variant:            interfaces.VariantADLDS,
		State:              interfaces.StateNormal,
		ConfigurationNCDNT: configDNT,
		SchemaNCDNT:        schemaDNT,
	}
	agent, store := newFixtureAgent(t, header)
	schema := objectstore.NewStaticSchema(testClasses())

	rootFragment := []byte("root-fragment-bytes")
	schemaFragment := []byte("schema-fragment-bytes")
	composed := bootkey.Compose(rootFragment, schemaFragment, secretdecryptor.BootKeyLength)

	list := secretdecryptor.PEKList{Keys: []secretdecryptor.PEK{{KeyID: 1, Key: []byte("adlds-pek-bytes")}}}
	blob, err := secretdecryptor.WrapPEKList(agent.primitives, composed, list)
	if err != nil {
		t.Fatalf("WrapPEKList: %v", err)
	}

	if err := store.SeedObject(schema, 11, testClasses()["organizationalUnit"], "", nil, nil,
		map[interfaces.AttributeID][]byte{
			interfaces.AttrPEKList:          blob,
			interfaces.AttrBootKeyFragment:  rootFragment,
		}, nil); err != nil {
		t.Fatalf("SeedObject(config): %v", err)
	}
	if err := store.SeedObject(schema, 12, testClasses()["organizationalUnit"], "", nil, nil,
		map[interfaces.AttributeID][]byte{interfaces.AttrBootKeyFragment: schemaFragment}, nil); err != nil {
		t.Fatalf("SeedObject(schema): %v", err)
	}

	dec, err := agent.getSecretDecryptor(nil)
	require.NoError(t, err)
	require.NotNil(t, dec, "getSecretDecryptor returned nil decryptor for ADLDS Normal state")

	ciphertext, err := agent.primitives.DecryptSecret([]byte("adlds-pek-bytes"), []byte("plaintext-nt-hash"))
	require.NoError(t, err, "DecryptSecret (as encrypt, RC4 is symmetric)")

	secretBlob := append([]byte{0, 0, 0, 1}, ciphertext...)
	plain, err := dec.DecryptBlob(secretBlob)
	require.NoError(t, err)
	require.Equal(t, "plaintext-nt-hash", string(plain))
}

func TestGetAccountRejectsNonAccount(t *testing.T) {
	t.Parallel()

	header := &interfaces.DCHeader{Variant: interfaces.VariantADDS, State: interfaces.StateBoot}
	agent, store := newFixtureAgent(t, header)
	schema := objectstore.NewStaticSchema(testClasses())

	if err := store.SeedObject(schema, 2, testClasses()["organizationalUnit"], "", nil, nil, nil, nil); err != nil {
		t.Fatalf("SeedObject: %v", err)
	}

	_, err := agent.GetAccount(dsid.Dnt(2), nil)
	if err == nil {
		t.Fatal("expected ObjectOperation error for non-account get_account target")
	}
	if _, ok := err.(*dcerrors.ObjectOperationError); !ok {
		t.Fatalf("err = %T, want *dcerrors.ObjectOperationError", err)
	}
}

func TestGetAccountsOnBootStateYieldsNullDecryptor(t *testing.T) {
	t.Parallel()

	header := &interfaces.DCHeader{Variant: interfaces.VariantADDS, State: interfaces.StateBoot}
	agent, store := newFixtureAgent(t, header)
	schema := objectstore.NewStaticSchema(testClasses())

	if err := store.SeedObject(schema, 1, testClasses()["person"], "",
		map[interfaces.AttributeID]string{interfaces.AttrSAMAccountName: "alice"},
		map[interfaces.AttributeID]int32{interfaces.AttrSAMAccountType: objectstore.SamAccountTypeNormalUser},
		map[interfaces.AttributeID][]byte{interfaces.AttrSecretData: append([]byte{0, 0, 0, 1}, []byte("ciphertext")...)},
		nil); err != nil {
		t.Fatalf("SeedObject: %v", err)
	}

	it, err := agent.GetAccounts(nil)
	if err != nil {
		t.Fatalf("GetAccounts: %v", err)
	}
	acct, err := it.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if acct == nil {
		t.Fatal("expected one account from get_accounts")
	}
	hash, ok, err := acct.NTHash()
	if err != nil {
		t.Fatalf("NTHash: %v", err)
	}
	if ok || hash != nil {
		t.Fatalf("NTHash() on Boot-state decryptor = %v, %v, want absent", hash, ok)
	}
}

func TestRemoveObjectMarksDeleted(t *testing.T) {
	t.Parallel()

	header := &interfaces.DCHeader{Variant: interfaces.VariantADDS, State: interfaces.StateNormal}
	agent, store := newFixtureAgent(t, header)
	schema := objectstore.NewStaticSchema(testClasses())

	if err := store.SeedObject(schema, 1, testClasses()["organizationalUnit"], "", nil, nil, nil, nil); err != nil {
		t.Fatalf("SeedObject: %v", err)
	}

	if err := agent.RemoveObject(dsid.Dnt(1)); err != nil {
		t.Fatalf("RemoveObject: %v", err)
	}

	view, err := agent.FindObject(dsid.Dnt(1))
	if err != nil {
		t.Fatalf("FindObject after delete should still resolve the row: %v", err)
	}
	if !view.IsDeleted() {
		t.Fatal("IsDeleted() = false after RemoveObject, want true")
	}
}

func TestAuthoritativeRestoreIsNotImplemented(t *testing.T) {
	t.Parallel()

	header := &interfaces.DCHeader{Variant: interfaces.VariantADDS, State: interfaces.StateNormal}
	agent, _ := newFixtureAgent(t, header)

	err := agent.AuthoritativeRestore(dsid.Dnt(1), []string{"sAMAccountName"})
	if _, ok := err.(*dcerrors.NotImplementedError); !ok {
		t.Fatalf("err = %T, want *dcerrors.NotImplementedError", err)
	}
}
