package models

import (
	"encoding/json"
	"errors"
)

// DefaultUnit is the effective unit of any record without an explicit unit.
const DefaultUnit = "Law & Order"

// ContactKind tags which record backs a Contact.
type ContactKind string

const (
	KindEmployee ContactKind = "employee"
	KindOfficer  ContactKind = "officer"
)

// Contact is a read-only view over exactly one Employee or one Officer.
// It can only be built with EmployeeContact or OfficerContact; the zero
// value is not a valid Contact and its accessors panic.
type Contact struct {
	employee *Employee
	officer  *Officer
}

// EmployeeContact wraps an employee record.
func EmployeeContact(e Employee) Contact {
	return Contact{employee: &e}
}

// OfficerContact wraps an officer record.
func OfficerContact(o Officer) Contact {
	return Contact{officer: &o}
}

func (c Contact) Kind() ContactKind {
	switch {
	case c.employee != nil && c.officer == nil:
		return KindEmployee
	case c.officer != nil && c.employee == nil:
		return KindOfficer
	default:
		panic("models: contact must wrap exactly one record")
	}
}

// Employee returns the backing employee, if any.
func (c Contact) Employee() (Employee, bool) {
	if c.Kind() != KindEmployee {
		return Employee{}, false
	}
	return *c.employee, true
}

// Officer returns the backing officer, if any.
func (c Contact) Officer() (Officer, bool) {
	if c.Kind() != KindOfficer {
		return Officer{}, false
	}
	return *c.officer, true
}

func (c Contact) IsOfficer() bool { return c.Kind() == KindOfficer }

func (c Contact) ID() string {
	if c.Kind() == KindEmployee {
		return c.employee.KGID
	}
	return c.officer.AGID
}

func (c Contact) Name() string {
	if c.Kind() == KindEmployee {
		return c.employee.Name
	}
	return c.officer.Name
}

func (c Contact) Rank() string {
	if c.Kind() == KindEmployee {
		return c.employee.Rank
	}
	return c.officer.Rank
}

func (c Contact) Station() string {
	if c.Kind() == KindEmployee {
		return c.employee.Station
	}
	return c.officer.Station
}

func (c Contact) District() string {
	if c.Kind() == KindEmployee {
		return c.employee.District
	}
	return c.officer.District
}

func (c Contact) Unit() string {
	if c.Kind() == KindEmployee {
		return c.employee.Unit
	}
	return c.officer.Unit
}

// EffectiveUnit is the explicit unit or DefaultUnit when none is set.
func (c Contact) EffectiveUnit() string {
	if u := c.Unit(); u != "" {
		return u
	}
	return DefaultUnit
}

func (c Contact) Phones() []string {
	if c.Kind() == KindEmployee {
		return c.employee.Phones()
	}
	return c.officer.Phones()
}

// PrimaryPhone is the first non-empty phone number.
func (c Contact) PrimaryPhone() string {
	if phones := c.Phones(); len(phones) > 0 {
		return phones[0]
	}
	return ""
}

func (c Contact) PhotoURL() string {
	if c.Kind() == KindEmployee {
		return c.employee.PhotoURL
	}
	return c.officer.PhotoURL
}

func (c Contact) BloodGroup() string {
	if c.Kind() == KindEmployee {
		return c.employee.BloodGroup
	}
	return c.officer.BloodGroup
}

// MetalNumber is empty for officers.
func (c Contact) MetalNumber() string {
	if c.Kind() == KindEmployee {
		return c.employee.MetalNumber
	}
	return ""
}

// IsManualStation reports whether the station was entered as free text.
func (c Contact) IsManualStation() bool {
	return c.Kind() == KindEmployee && c.employee.IsManualStation
}

func (c Contact) SearchBlob() string {
	if c.Kind() == KindEmployee {
		return c.employee.SearchBlob
	}
	return c.officer.SearchBlob
}

// contactView is the wire shape of a Contact.
type contactView struct {
	Type          ContactKind `json:"type"`
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Rank          string      `json:"rank,omitempty"`
	Station       string      `json:"station,omitempty"`
	District      string      `json:"district,omitempty"`
	EffectiveUnit string      `json:"effectiveUnit"`
	PrimaryPhone  string      `json:"primaryPhone,omitempty"`
	PhotoURL      string      `json:"photoUrl,omitempty"`
	Employee      *Employee   `json:"employee,omitempty"`
	Officer       *Officer    `json:"officer,omitempty"`
}

func (c Contact) MarshalJSON() ([]byte, error) {
	return json.Marshal(contactView{
		Type:          c.Kind(),
		ID:            c.ID(),
		Name:          c.Name(),
		Rank:          c.Rank(),
		Station:       c.Station(),
		District:      c.District(),
		EffectiveUnit: c.EffectiveUnit(),
		PrimaryPhone:  c.PrimaryPhone(),
		PhotoURL:      c.PhotoURL(),
		Employee:      c.employee,
		Officer:       c.officer,
	})
}

func (c *Contact) UnmarshalJSON(data []byte) error {
	var v contactView
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch {
	case v.Employee != nil && v.Officer == nil:
		*c = EmployeeContact(*v.Employee)
	case v.Officer != nil && v.Employee == nil:
		*c = OfficerContact(*v.Officer)
	default:
		return errors.New("models: contact must carry exactly one of employee or officer")
	}
	return nil
}
