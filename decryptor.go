package dsinternals

import (
	"github.com/noahhai/DSInternals/internal/bootkey"
	"github.com/noahhai/DSInternals/internal/secretdecryptor"
	"github.com/noahhai/DSInternals/pkg/dcerrors"
	"github.com/noahhai/DSInternals/pkg/dsid"
	"github.com/noahhai/DSInternals/pkg/interfaces"
	"github.com/noahhai/DSInternals/pkg/projections"
)

// getSecretDecryptor implements get_secret_decryptor (spec.md §4.1.5): it
// resolves the PEK list holder for the database's variant, unwraps it
// against a Boot Key, and returns a Decryptor bound to the result. A
// Boot-state database has no secrets yet and always yields a nil
// decryptor without moving the cursor. It saves and restores the
// cursor's location around every path that repositions it: a position
// reached by a key or DNT goto is restored exactly, while a position
// inside an index scan comes back as that index with no current record.
func (a *Agent) getSecretDecryptor(bootKey []byte) (*secretdecryptor.Decryptor, error) {
	header := a.ctx.DCHeader()
	if header.State == interfaces.StateBoot {
		return nil, nil
	}

	loc, err := a.cur.SaveLocation()
	if err != nil {
		return nil, dcerrors.WrapStorage(err)
	}
	defer a.cur.RestoreLocation(loc)

	if header.Variant == interfaces.VariantADLDS {
		return a.getSecretDecryptorADLDS()
	}
	return a.getSecretDecryptorADDS(bootKey)
}

func (a *Agent) getSecretDecryptorADDS(bootKey []byte) (*secretdecryptor.Decryptor, error) {
	if bootKey == nil {
		return nil, nil
	}
	if len(bootKey) != secretdecryptor.BootKeyLength {
		return nil, dcerrors.NewInvalidArgument("bootKey")
	}

	header := a.ctx.DCHeader()
	if header.DomainNCDNT == nil {
		return nil, dcerrors.NewObjectNotFound("domain naming context")
	}
	blob, err := a.readPEKListBlob(*header.DomainNCDNT)
	if err != nil {
		return nil, err
	}
	list, err := secretdecryptor.UnwrapPEKList(a.primitives, bootKey, blob)
	if err != nil {
		return nil, err
	}
	return secretdecryptor.New(a.primitives, list), nil
}

// getSecretDecryptorADLDS composes the Boot Key from the root and schema
// anchor fragments rather than accepting one from the caller (spec.md §4.1
// "Boot-Key Composer"; DESIGN.md documents reusing ConfigurationNCDNT and
// SchemaNCDNT as the fragment holders).
func (a *Agent) getSecretDecryptorADLDS() (*secretdecryptor.Decryptor, error) {
	header := a.ctx.DCHeader()
	rootFragment, err := a.readFragment(header.ConfigurationNCDNT)
	if err != nil {
		return nil, err
	}
	schemaFragment, err := a.readFragment(header.SchemaNCDNT)
	if err != nil {
		return nil, err
	}
	composed := bootkey.Compose(rootFragment, schemaFragment, secretdecryptor.BootKeyLength)

	blob, err := a.readPEKListBlob(header.ConfigurationNCDNT)
	if err != nil {
		return nil, err
	}
	list, err := secretdecryptor.UnwrapPEKList(a.primitives, composed, blob)
	if err != nil {
		return nil, err
	}
	return secretdecryptor.New(a.primitives, list), nil
}

func (a *Agent) readFragment(dnt dsid.DNT) ([]byte, error) {
	ok, err := a.cur.GotoDNT(dnt)
	if err != nil {
		return nil, dcerrors.WrapStorage(err)
	}
	if !ok {
		return nil, dcerrors.NewObjectNotFound("boot-key fragment holder")
	}
	view, err := a.ctx.View(a.cur)
	if err != nil {
		return nil, err
	}
	fragment, ok, err := view.ReadBytes(interfaces.AttrBootKeyFragment)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dcerrors.NewObjectNotFound("boot-key fragment attribute")
	}
	return fragment, nil
}

func (a *Agent) readPEKListBlob(dnt dsid.DNT) ([]byte, error) {
	ok, err := a.cur.GotoDNT(dnt)
	if err != nil {
		return nil, dcerrors.WrapStorage(err)
	}
	if !ok {
		return nil, dcerrors.NewObjectNotFound("PEK list holder")
	}
	view, err := a.ctx.View(a.cur)
	if err != nil {
		return nil, err
	}
	blob, ok, err := view.ReadBytes(interfaces.AttrPEKList)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dcerrors.NewObjectNotFound("PEK list attribute")
	}
	return blob, nil
}

// ChangeBootKey implements change_boot_key (spec.md §4.1.6): decrypt the
// Domain NC's PEK list with the old Boot Key, re-encode it under the new
// one, and commit the rewritten blob with skip_meta_update = true —
// rotation is administrative and must not burn a USN or touch
// replication metadata.
func (a *Agent) ChangeBootKey(oldKey, newKey []byte) error {
	if len(oldKey) != secretdecryptor.BootKeyLength {
		return dcerrors.NewInvalidArgument("oldKey")
	}
	header := a.ctx.DCHeader()
	if header.DomainNCDNT == nil {
		return dcerrors.NewObjectNotFound("domain")
	}

	ok, err := a.cur.GotoDNT(*header.DomainNCDNT)
	if err != nil {
		return dcerrors.WrapStorage(err)
	}
	if !ok {
		return dcerrors.NewObjectNotFound("domain")
	}

	txn, err := a.ctx.BeginTransaction()
	if err != nil {
		return dcerrors.WrapStorage(err)
	}
	if err := a.cur.BeginEditForUpdate(); err != nil {
		txn.Abort()
		return dcerrors.WrapStorage(err)
	}
	view, err := a.ctx.View(a.cur)
	if err != nil {
		a.cur.RejectChanges()
		txn.Abort()
		return err
	}

	blob, ok, err := view.ReadBytes(interfaces.AttrPEKList)
	if err != nil {
		a.cur.RejectChanges()
		txn.Abort()
		return err
	}
	if !ok {
		a.cur.RejectChanges()
		txn.Abort()
		return dcerrors.NewObjectNotFound("PEK list attribute")
	}

	list, err := secretdecryptor.UnwrapPEKList(a.primitives, oldKey, blob)
	if err != nil {
		a.cur.RejectChanges()
		txn.Abort()
		return err
	}
	newBlob, err := secretdecryptor.WrapPEKList(a.primitives, newKey, list)
	if err != nil {
		a.cur.RejectChanges()
		txn.Abort()
		return err
	}

	changed, err := view.SetBytes(interfaces.AttrPEKList, newBlob)
	if err != nil {
		a.cur.RejectChanges()
		txn.Abort()
		return err
	}
	_, err = a.commitAttributeUpdate(txn, view, interfaces.AttrPEKList, changed, true)
	return err
}

// GetAccount implements get_account (spec.md §4.1.4): find the object,
// reject non-security-principals before paying any decryption cost, then
// acquire the decryptor and project.
func (a *Agent) GetAccount(id dsid.Identifier, bootKey []byte) (*projections.Account, error) {
	view, err := a.FindObject(id)
	if err != nil {
		return nil, err
	}
	if !view.IsAccount() {
		return nil, dcerrors.NewObjectOperation("not a security principal", id.String())
	}
	dec, err := a.getSecretDecryptor(bootKey)
	if err != nil {
		return nil, err
	}
	return projections.NewAccount(view, dec), nil
}
