package models

import "time"

// Employee 注册员工（kgid 为稳定主键，需审批后才对普通用户可见）
type Employee struct {
	KGID            string    `json:"kgid"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Mobile1         string    `json:"mobile1,omitempty"`
	Mobile2         string    `json:"mobile2,omitempty"`
	Landline        string    `json:"landline,omitempty"`
	Landline2       string    `json:"landline2,omitempty"`
	Rank            string    `json:"rank"`
	MetalNumber     string    `json:"metalNumber,omitempty"`
	District        string    `json:"district"`
	Station         string    `json:"station"`
	IsManualStation bool      `json:"isManualStation"`
	Unit            string    `json:"unit,omitempty"`
	BloodGroup      string    `json:"bloodGroup,omitempty"`
	PhotoURL        string    `json:"photoUrl,omitempty"`
	IsApproved      bool      `json:"isApproved"`
	IsAdmin         bool      `json:"isAdmin"`
	SearchBlob      string    `json:"searchBlob"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Phones returns the non-empty phone numbers in preference order.
func (e *Employee) Phones() []string {
	return nonEmpty(e.Mobile1, e.Mobile2, e.Landline, e.Landline2)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
