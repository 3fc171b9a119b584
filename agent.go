/*
Package dsinternals implements the Directory Agent (spec.md §4.1): the
read/write access layer over an on-disk directory-service database that
locates objects, decrypts account secrets against a per-database PEK
list, and performs the small set of transactional attribute mutations a
domain controller's own tooling needs.
*/
package dsinternals

import (
	"github.com/sirupsen/logrus"

	"github.com/noahhai/DSInternals/internal/secretdecryptor"
	"github.com/noahhai/DSInternals/pkg/clock"
	"github.com/noahhai/DSInternals/pkg/dcerrors"
	"github.com/noahhai/DSInternals/pkg/dsid"
	"github.com/noahhai/DSInternals/pkg/interfaces"
)

// userAccountControlDisabled is the ACCOUNTDISABLE bit (0x0002).
const userAccountControlDisabled int32 = 0x0002

// primaryGroupRIDMax is the exclusive upper bound of the RID range
// spec.md §3 documents as informative (1 ≤ rid < 2^30). set_primary_group_id
// accepts any int32 per spec.md §4.1.7 but logs a warning outside this
// range; rejecting remains an open question (spec.md §9).
const primaryGroupRIDMax = 1 << 30

// Agent is the Directory Agent orchestrator: object finders,
// account/secret/backup-key/KDS enumerators, attribute mutators, and
// boot-key rotation (spec.md §4.1). It is not thread-safe: it holds one
// Cursor whose position is shared by every operation (spec.md §5).
type Agent struct {
	ctx         interfaces.Context
	cur         interfaces.Cursor
	primitives  interfaces.CryptoPrimitives
	clock       clock.Clock
	ownsContext bool
	disposed    bool
	log         *logrus.Logger
}

// Options configures a new Agent.
type Options struct {
	// Primitives supplies the decryptor's cryptographic primitives. If
	// nil, secretdecryptor.NewDefaultCryptoPrimitives() is used.
	Primitives interfaces.CryptoPrimitives
	// Clock supplies "now" for attribute-metadata timestamps. If nil,
	// clock.System() is used.
	Clock clock.Clock
	// OwnsContext, when true, makes Dispose also dispose the Context.
	OwnsContext bool
	// Logger is the structured logger the Agent writes its warnings to
	// (SetPrimaryGroupID's out-of-range RID warning). If nil,
	// logrus.New() is used.
	Logger *logrus.Logger
}

// New builds an Agent over ctx, opening its shared Cursor.
func New(ctx interfaces.Context, opts Options) (*Agent, error) {
	cur, err := ctx.OpenDataTable()
	if err != nil {
		return nil, dcerrors.WrapStorage(err)
	}

	primitives := opts.Primitives
	if primitives == nil {
		primitives = secretdecryptor.NewDefaultCryptoPrimitives()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.System()
	}
	log := opts.Logger
	if log == nil {
		log = logrus.New()
	}

	return &Agent{
		ctx:         ctx,
		cur:         cur,
		primitives:  primitives,
		clock:       clk,
		ownsContext: opts.OwnsContext,
		log:         log,
	}, nil
}

// Dispose releases the Cursor and, if the Agent owns its Context,
// disposes that too. Double-dispose is a no-op.
func (a *Agent) Dispose() error {
	if a.disposed {
		return nil
	}
	a.disposed = true
	if err := a.cur.Dispose(); err != nil {
		return dcerrors.WrapStorage(err)
	}
	if a.ownsContext {
		return a.ctx.Dispose()
	}
	return nil
}

// FindObject implements find_object (spec.md §4.1.1): it dispatches on
// id's kind, switches the Cursor to the appropriate index, and returns
// the matching Object View or ObjectNotFound.
func (a *Agent) FindObject(id dsid.Identifier) (interfaces.ObjectView, error) {
	switch id.Kind() {
	case dsid.KindDnt:
		ok, err := a.cur.GotoDNT(id.DntValue())
		if err != nil {
			return nil, dcerrors.WrapStorage(err)
		}
		if !ok {
			return nil, dcerrors.NewObjectNotFound(id.String())
		}
		return a.ctx.View(a.cur)

	case dsid.KindGuid:
		guid := id.GuidValue()
		if err := a.gotoUniqueKey(interfaces.AttrObjectGUID, guid[:], id); err != nil {
			return nil, err
		}
		return a.ctx.View(a.cur)

	case dsid.KindSid:
		if err := a.gotoUniqueKey(interfaces.AttrObjectSid, id.SidValue(), id); err != nil {
			return nil, err
		}
		return a.ctx.View(a.cur)

	case dsid.KindDn:
		dnt, err := a.ctx.DnResolver().Resolve(id.DnValue())
		if err != nil {
			return nil, err
		}
		ok, err := a.cur.GotoDNT(dnt)
		if err != nil {
			return nil, dcerrors.WrapStorage(err)
		}
		if !ok {
			return nil, dcerrors.NewObjectNotFound(id.String())
		}
		return a.ctx.View(a.cur)

	case dsid.KindSam:
		return a.findBySam(id)

	default:
		return nil, dcerrors.NewInvalidArgument("identifier")
	}
}

func (a *Agent) gotoUniqueKey(attr interfaces.AttributeID, key []byte, id dsid.Identifier) error {
	indexName, err := a.ctx.Schema().FindIndexName(attr)
	if err != nil {
		return dcerrors.WrapStorage(err)
	}
	if err := a.cur.SetCurrentIndex(indexName); err != nil {
		return dcerrors.WrapStorage(err)
	}
	ok, err := a.cur.GotoKey(key)
	if err != nil {
		return dcerrors.WrapStorage(err)
	}
	if !ok {
		return dcerrors.NewObjectNotFound(id.String())
	}
	return nil
}

// findBySam implements the SamAccountName branch of find_object: a
// non-unique range seek followed by a forward scan for the first
// writable, non-deleted record (spec.md §4.1.1).
func (a *Agent) findBySam(id dsid.Identifier) (interfaces.ObjectView, error) {
	indexName, err := a.ctx.Schema().FindIndexName(interfaces.AttrSAMAccountName)
	if err != nil {
		return nil, dcerrors.WrapStorage(err)
	}
	if err := a.cur.SetCurrentIndex(indexName); err != nil {
		return nil, dcerrors.WrapStorage(err)
	}
	ok, err := a.cur.FindRecords(interfaces.MatchEqual, []byte(id.SamValue()))
	if err != nil {
		return nil, dcerrors.WrapStorage(err)
	}
	for ok {
		view, err := a.ctx.View(a.cur)
		if err != nil {
			return nil, err
		}
		if view.IsWritable() && !view.IsDeleted() {
			return view, nil
		}
		ok, err = a.cur.MoveNext()
		if err != nil {
			return nil, dcerrors.WrapStorage(err)
		}
	}
	return nil, dcerrors.NewObjectNotFound(id.String())
}
