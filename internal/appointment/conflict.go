package appointment

import (
	"strconv"
	"strings"
)

// Slot is one bookable (doctor, date, time) triple in canonical form.
type Slot struct {
	Doctor string
	Date   string
	Time   string
}

// CheckResult is the outcome of a conflict check. A zero ExistingID means
// the slot is free.
type CheckResult struct {
	ExistingID int64
}

func (r CheckResult) Available() bool {
	return r.ExistingID == 0
}

// CheckSlot scans the active appointments of snap for an exact match on
// slot. It has no side effects; callers re-run it under the write lock
// immediately before committing.
func CheckSlot(snap *Snapshot, slot Slot) CheckResult {
	for _, a := range snap.Appointments {
		if !a.Active() {
			continue
		}
		if a.Doctor == slot.Doctor && a.Date == slot.Date && a.Time == slot.Time {
			return CheckResult{ExistingID: a.ID}
		}
	}
	return CheckResult{}
}

// Catalog resolves doctor references. It is not used to enforce availability.
type Catalog interface {
	ResolveDoctor(ref string) (Doctor, bool)
}

type snapshotCatalog struct {
	doctors []Doctor
}

// CatalogOf exposes the doctors of snap as a Catalog.
func CatalogOf(snap *Snapshot) Catalog {
	return snapshotCatalog{doctors: snap.Doctors}
}

// ResolveDoctor matches ref against doctor ids first, then names
// case-insensitively.
func (c snapshotCatalog) ResolveDoctor(ref string) (Doctor, bool) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, d := range c.doctors {
			if d.ID == id {
				return d, true
			}
		}
	}
	for _, d := range c.doctors {
		if strings.EqualFold(d.Name, ref) {
			return d, true
		}
	}
	return Doctor{}, false
}

// canonicalDoctor is the doctor name stored on appointments. Unknown
// references are kept verbatim (trimmed).
func canonicalDoctor(cat Catalog, ref string) string {
	if d, ok := cat.ResolveDoctor(ref); ok {
		return d.Name
	}
	return strings.TrimSpace(ref)
}
