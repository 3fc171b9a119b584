package dsinternals

import (
	"github.com/noahhai/DSInternals/pkg/dcerrors"
	"github.com/noahhai/DSInternals/pkg/dsid"
	"github.com/noahhai/DSInternals/pkg/interfaces"
)

// beginEdit finds id, opens a transaction, and begins a cursor edit on
// the found record, returning the transaction and the editing Object
// View. On any failure it cleans up whatever it already opened before
// returning the error.
func (a *Agent) beginEdit(id dsid.Identifier) (interfaces.Transaction, interfaces.ObjectView, error) {
	if _, err := a.FindObject(id); err != nil {
		return nil, nil, err
	}

	txn, err := a.ctx.BeginTransaction()
	if err != nil {
		return nil, nil, dcerrors.WrapStorage(err)
	}
	if err := a.cur.BeginEditForUpdate(); err != nil {
		txn.Abort()
		return nil, nil, dcerrors.WrapStorage(err)
	}
	view, err := a.ctx.View(a.cur)
	if err != nil {
		a.cur.RejectChanges()
		txn.Abort()
		return nil, nil, err
	}
	return txn, view, nil
}

// commitAttributeUpdate implements the commit_attribute_update state
// machine (spec.md §4.1.8): Editing -> {NoOp, MetaUpdated} -> {Committed,
// Aborted}. Once a mutator has made its attribute write, this is the sole
// site that accepts/rejects the pending cursor edit and commits/aborts
// txn; failures before that point reject and abort in the mutator itself.
func (a *Agent) commitAttributeUpdate(txn interfaces.Transaction, view interfaces.ObjectView, attr interfaces.AttributeID, changed bool, skipMetaUpdate bool) (bool, error) {
	if !changed {
		a.cur.RejectChanges()
		txn.Abort()
		return false, nil
	}

	header := a.ctx.DCHeader()
	priorUSN := header.HighestCommittedUSN

	if !skipMetaUpdate {
		header.HighestCommittedUSN++
		meta := interfaces.AttributeMeta{
			LocalUSN:  header.HighestCommittedUSN,
			Timestamp: a.clock.Now().Unix(),
		}
		if err := view.UpdateAttributeMeta(attr, meta); err != nil {
			header.HighestCommittedUSN = priorUSN
			a.cur.RejectChanges()
			txn.Abort()
			return false, err
		}
		if err := a.ctx.PersistDCHeader(txn); err != nil {
			header.HighestCommittedUSN = priorUSN
			a.cur.RejectChanges()
			txn.Abort()
			return false, dcerrors.WrapStorage(err)
		}
	}

	if err := a.cur.AcceptChanges(); err != nil {
		header.HighestCommittedUSN = priorUSN
		txn.Abort()
		return false, dcerrors.WrapStorage(err)
	}
	if err := txn.Commit(); err != nil {
		header.HighestCommittedUSN = priorUSN
		return false, dcerrors.WrapStorage(err)
	}
	return true, nil
}

// SetAccountStatus implements set_account_status (spec.md §4.1.7): clear
// or set the ACCOUNTDISABLE bit of userAccountControl.
func (a *Agent) SetAccountStatus(id dsid.Identifier, enabled bool, skipMetaUpdate bool) (bool, error) {
	txn, view, err := a.beginEdit(id)
	if err != nil {
		return false, err
	}

	uac, ok, err := view.ReadInt32(interfaces.AttrUserAccountControl)
	if err != nil {
		a.cur.RejectChanges()
		txn.Abort()
		return false, err
	}
	if !ok {
		a.cur.RejectChanges()
		txn.Abort()
		return false, dcerrors.NewObjectOperation("not an account", id.String())
	}

	newUAC := uac
	if enabled {
		newUAC &^= userAccountControlDisabled
	} else {
		newUAC |= userAccountControlDisabled
	}

	changed, err := view.SetInt32(interfaces.AttrUserAccountControl, newUAC)
	if err != nil {
		a.cur.RejectChanges()
		txn.Abort()
		return false, err
	}
	return a.commitAttributeUpdate(txn, view, interfaces.AttrUserAccountControl, changed, skipMetaUpdate)
}

// SetPrimaryGroupID implements set_primary_group_id (spec.md §4.1.7). RID
// range enforcement is an open question spec.md §9 leaves undecided in
// favor of accepting every i32 while warning outside the documented
// range.
func (a *Agent) SetPrimaryGroupID(id dsid.Identifier, rid int32, skipMetaUpdate bool) (bool, error) {
	txn, view, err := a.beginEdit(id)
	if err != nil {
		return false, err
	}

	if !view.IsAccount() {
		a.cur.RejectChanges()
		txn.Abort()
		return false, dcerrors.NewObjectOperation("not an account", id.String())
	}
	if rid < 1 || rid >= primaryGroupRIDMax {
		a.log.Warnf("set_primary_group_id: rid %d outside documented range [1, %d)", rid, primaryGroupRIDMax)
	}

	changed, err := view.SetInt32(interfaces.AttrPrimaryGroupID, rid)
	if err != nil {
		a.cur.RejectChanges()
		txn.Abort()
		return false, err
	}
	return a.commitAttributeUpdate(txn, view, interfaces.AttrPrimaryGroupID, changed, skipMetaUpdate)
}

// AddSidHistory implements add_sid_history (spec.md §4.1.7): append-merge
// into the sIDHistory multi-valued attribute.
func (a *Agent) AddSidHistory(id dsid.Identifier, sids []string, skipMetaUpdate bool) (bool, error) {
	txn, view, err := a.beginEdit(id)
	if err != nil {
		return false, err
	}

	if !view.IsSecurityPrincipal() {
		a.cur.RejectChanges()
		txn.Abort()
		return false, dcerrors.NewObjectOperation("not a security principal", id.String())
	}

	changed, err := view.AddStrings(interfaces.AttrSIDHistory, sids)
	if err != nil {
		a.cur.RejectChanges()
		txn.Abort()
		return false, err
	}
	return a.commitAttributeUpdate(txn, view, interfaces.AttrSIDHistory, changed, skipMetaUpdate)
}

// RemoveObject implements remove_object (spec.md §4.1.7): find and
// delete via the Object View. Deletion bypasses the attribute pipeline —
// it marks the row deleted directly rather than flowing through
// commit_attribute_update's no-op/metadata logic, the way the teacher's
// own soft-delete paths skip per-field metadata bookkeeping.
func (a *Agent) RemoveObject(id dsid.Identifier) error {
	txn, view, err := a.beginEdit(id)
	if err != nil {
		return err
	}
	if err := view.Delete(); err != nil {
		a.cur.RejectChanges()
		txn.Abort()
		return err
	}
	if err := a.cur.AcceptChanges(); err != nil {
		txn.Abort()
		return dcerrors.WrapStorage(err)
	}
	if err := txn.Commit(); err != nil {
		return dcerrors.WrapStorage(err)
	}
	return nil
}

// SetEpoch implements set_epoch (spec.md §4.1.9): mutates the DC header
// directly, bypassing the attribute pipeline entirely since the header is
// not an ordinary object.
func (a *Agent) SetEpoch(epoch int32) error {
	txn, err := a.ctx.BeginTransaction()
	if err != nil {
		return dcerrors.WrapStorage(err)
	}
	a.ctx.DCHeader().Epoch = epoch
	if err := a.ctx.PersistDCHeader(txn); err != nil {
		txn.Abort()
		return dcerrors.WrapStorage(err)
	}
	if err := txn.Commit(); err != nil {
		return dcerrors.WrapStorage(err)
	}
	return nil
}

// SetUSN implements set_usn (spec.md §4.1.9).
func (a *Agent) SetUSN(usn int64) error {
	txn, err := a.ctx.BeginTransaction()
	if err != nil {
		return dcerrors.WrapStorage(err)
	}
	a.ctx.DCHeader().HighestCommittedUSN = usn
	if err := a.ctx.PersistDCHeader(txn); err != nil {
		txn.Abort()
		return dcerrors.WrapStorage(err)
	}
	if err := txn.Commit(); err != nil {
		return dcerrors.WrapStorage(err)
	}
	return nil
}

// AuthoritativeRestore is the admin-surface stub spec.md §4.1.9 and §9
// require to exist without inventing behavior the source leaves
// unspecified.
func (a *Agent) AuthoritativeRestore(id dsid.Identifier, attributeNames []string) error {
	return dcerrors.NewNotImplemented("authoritative_restore")
}
