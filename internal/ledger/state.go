package ledger

import (
	"github.com/civisuite/vitals-ledger/internal/models"
)

// State holds every keyed store the engine owns. Each store is a mapping from
// record identifier (account identifier for voter registrations) to its
// record value; district rosters are sets of account identifiers keyed by
// district identifier. State is only ever touched by the single writer in
// Ledger, or by read views holding the same lock.
type State struct {
	Registrars map[string]*models.Registrar
	Marriages  map[string]*models.MarriageLicense
	Births     map[string]*models.BirthCertificate
	Deaths     map[string]*models.DeathCertificate
	Licenses   map[string]*models.DriverLicense
	Voters     map[string]*models.VoterRegistration
	Districts  map[string]*models.District
	Rosters    map[string]map[string]struct{}

	// BirthLinks indexes subject account -> birth certificate id, enforcing
	// the at-most-one-certificate-per-account invariant in O(1).
	BirthLinks map[string]string
}

// NewState returns an empty ledger state.
func NewState() *State {
	return &State{
		Registrars: make(map[string]*models.Registrar),
		Marriages:  make(map[string]*models.MarriageLicense),
		Births:     make(map[string]*models.BirthCertificate),
		Deaths:     make(map[string]*models.DeathCertificate),
		Licenses:   make(map[string]*models.DriverLicense),
		Voters:     make(map[string]*models.VoterRegistration),
		Districts:  make(map[string]*models.District),
		Rosters:    make(map[string]map[string]struct{}),
		BirthLinks: make(map[string]string),
	}
}

// Clone deep-copies the state for simulation snapshots. Record values are
// copied so snapshot mutations can never alias production records.
func (s *State) Clone() *State {
	c := NewState()
	for k, v := range s.Registrars {
		r := *v
		c.Registrars[k] = &r
	}
	for k, v := range s.Marriages {
		m := *v
		c.Marriages[k] = &m
	}
	for k, v := range s.Births {
		b := *v
		b.Parents = append([]string(nil), v.Parents...)
		c.Births[k] = &b
	}
	for k, v := range s.Deaths {
		d := *v
		c.Deaths[k] = &d
	}
	for k, v := range s.Licenses {
		l := *v
		l.Endorsements = append([]string(nil), v.Endorsements...)
		l.Restrictions = append([]string(nil), v.Restrictions...)
		c.Licenses[k] = &l
	}
	for k, v := range s.Voters {
		vr := *v
		c.Voters[k] = &vr
	}
	for k, v := range s.Districts {
		d := *v
		c.Districts[k] = &d
	}
	for district, roster := range s.Rosters {
		set := make(map[string]struct{}, len(roster))
		for account := range roster {
			set[account] = struct{}{}
		}
		c.Rosters[district] = set
	}
	for k, v := range s.BirthLinks {
		c.BirthLinks[k] = v
	}
	return c
}
