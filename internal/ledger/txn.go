package ledger

import (
	"sort"

	"github.com/civisuite/vitals-ledger/internal/models"
)

// Table is a staged view over one keyed store. Reads see pending writes;
// nothing reaches the underlying state until the transaction commits, which
// makes all-or-nothing semantics structural rather than conventional.
type Table[T any] struct {
	base    map[string]*T
	pending map[string]*T
	copyFn  func(*T) *T
}

func newTable[T any](base map[string]*T, copyFn func(*T) *T) *Table[T] {
	return &Table[T]{base: base, pending: make(map[string]*T), copyFn: copyFn}
}

// Get returns a copy of the record so callers can never mutate committed
// state in place. The second result reports existence.
func (t *Table[T]) Get(id string) (*T, bool) {
	if v, ok := t.pending[id]; ok {
		if v == nil {
			return nil, false
		}
		return t.copyFn(v), true
	}
	v, ok := t.base[id]
	if !ok {
		return nil, false
	}
	return t.copyFn(v), true
}

// Has reports record existence without copying.
func (t *Table[T]) Has(id string) bool {
	if v, ok := t.pending[id]; ok {
		return v != nil
	}
	_, ok := t.base[id]
	return ok
}

// Put stages a record write.
func (t *Table[T]) Put(id string, v *T) {
	t.pending[id] = t.copyFn(v)
}

// Keys returns all live record ids in sorted order so iteration stays
// deterministic across replicas.
func (t *Table[T]) Keys() []string {
	keys := make([]string, 0, len(t.base)+len(t.pending))
	for id := range t.base {
		if _, staged := t.pending[id]; staged {
			continue
		}
		keys = append(keys, id)
	}
	for id, v := range t.pending {
		if v != nil {
			keys = append(keys, id)
		}
	}
	sort.Strings(keys)
	return keys
}

// ForEach visits every live record in deterministic key order. The visited
// value is a copy; stage changes through Put.
func (t *Table[T]) ForEach(fn func(id string, v *T) bool) {
	for _, id := range t.Keys() {
		v, ok := t.Get(id)
		if !ok {
			continue
		}
		if !fn(id, v) {
			return
		}
	}
}

// Len counts live records including staged writes.
func (t *Table[T]) Len() int {
	return len(t.Keys())
}

func (t *Table[T]) commit() {
	for id, v := range t.pending {
		if v == nil {
			delete(t.base, id)
			continue
		}
		t.base[id] = v
	}
}

// Txn is a single indivisible ledger step. Every mutating operation runs its
// validation and staging inside one Txn; a returned error discards the whole
// step, so no store ever observes a partial cascade.
type Txn struct {
	state *State

	registrars *Table[models.Registrar]
	marriages  *Table[models.MarriageLicense]
	births     *Table[models.BirthCertificate]
	deaths     *Table[models.DeathCertificate]
	licenses   *Table[models.DriverLicense]
	voters     *Table[models.VoterRegistration]
	districts  *Table[models.District]

	pendingRosters    map[string]map[string]struct{}
	pendingBirthLinks map[string]*string

	events []models.Event
}

func newTxn(state *State) *Txn {
	return &Txn{
		state:             state,
		registrars:        newTable(state.Registrars, copyRegistrar),
		marriages:         newTable(state.Marriages, copyMarriage),
		births:            newTable(state.Births, copyBirth),
		deaths:            newTable(state.Deaths, copyDeath),
		licenses:          newTable(state.Licenses, copyLicense),
		voters:            newTable(state.Voters, copyVoter),
		districts:         newTable(state.Districts, copyDistrict),
		pendingRosters:    make(map[string]map[string]struct{}),
		pendingBirthLinks: make(map[string]*string),
	}
}

func (t *Txn) Registrars() *Table[models.Registrar]       { return t.registrars }
func (t *Txn) Marriages() *Table[models.MarriageLicense]  { return t.marriages }
func (t *Txn) Births() *Table[models.BirthCertificate]    { return t.births }
func (t *Txn) Deaths() *Table[models.DeathCertificate]    { return t.deaths }
func (t *Txn) Licenses() *Table[models.DriverLicense]     { return t.licenses }
func (t *Txn) Voters() *Table[models.VoterRegistration]   { return t.voters }
func (t *Txn) Districts() *Table[models.District]         { return t.districts }

// BirthLink resolves the certificate linked to a subject account, if any.
func (t *Txn) BirthLink(account string) (string, bool) {
	if v, ok := t.pendingBirthLinks[account]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	id, ok := t.state.BirthLinks[account]
	return id, ok
}

// StageBirthLink records the immutable account -> certificate link.
func (t *Txn) StageBirthLink(account, certID string) {
	id := certID
	t.pendingBirthLinks[account] = &id
}

func (t *Txn) rosterView(district string) map[string]struct{} {
	if set, ok := t.pendingRosters[district]; ok {
		return set
	}
	return t.state.Rosters[district]
}

func (t *Txn) rosterMutable(district string) map[string]struct{} {
	if set, ok := t.pendingRosters[district]; ok {
		return set
	}
	copied := make(map[string]struct{})
	for account := range t.state.Rosters[district] {
		copied[account] = struct{}{}
	}
	t.pendingRosters[district] = copied
	return copied
}

// RosterHas reports whether an account sits on a district roster.
func (t *Txn) RosterHas(district, account string) bool {
	_, ok := t.rosterView(district)[account]
	return ok
}

// RosterAdd stages adding an account to a district roster.
func (t *Txn) RosterAdd(district, account string) {
	t.rosterMutable(district)[account] = struct{}{}
}

// RosterRemove stages dropping an account from a district roster.
func (t *Txn) RosterRemove(district, account string) {
	delete(t.rosterMutable(district), account)
}

// RosterAccounts lists a district roster in sorted order.
func (t *Txn) RosterAccounts(district string) []string {
	view := t.rosterView(district)
	accounts := make([]string, 0, len(view))
	for account := range view {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)
	return accounts
}

// Emit queues a structured event for this step. Events only surface when the
// step commits; a rejected step emits nothing.
func (t *Txn) Emit(ev models.Event) {
	t.events = append(t.events, ev)
}

func (t *Txn) commit() {
	t.registrars.commit()
	t.marriages.commit()
	t.births.commit()
	t.deaths.commit()
	t.licenses.commit()
	t.voters.commit()
	t.districts.commit()
	for district, set := range t.pendingRosters {
		t.state.Rosters[district] = set
	}
	for account, id := range t.pendingBirthLinks {
		if id == nil {
			delete(t.state.BirthLinks, account)
			continue
		}
		t.state.BirthLinks[account] = *id
	}
}

func copyRegistrar(v *models.Registrar) *models.Registrar {
	c := *v
	return &c
}

func copyMarriage(v *models.MarriageLicense) *models.MarriageLicense {
	c := *v
	return &c
}

func copyBirth(v *models.BirthCertificate) *models.BirthCertificate {
	c := *v
	c.Parents = append([]string(nil), v.Parents...)
	return &c
}

func copyDeath(v *models.DeathCertificate) *models.DeathCertificate {
	c := *v
	return &c
}

func copyLicense(v *models.DriverLicense) *models.DriverLicense {
	c := *v
	c.Endorsements = append([]string(nil), v.Endorsements...)
	c.Restrictions = append([]string(nil), v.Restrictions...)
	return &c
}

func copyVoter(v *models.VoterRegistration) *models.VoterRegistration {
	c := *v
	return &c
}

func copyDistrict(v *models.District) *models.District {
	c := *v
	return &c
}
