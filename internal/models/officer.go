package models

// Officer 只读的上级官员记录（agid 为主键，无审批流程，无 metal number）
type Officer struct {
	AGID       string `json:"agid"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Rank       string `json:"rank,omitempty"`
	Mobile     string `json:"mobile,omitempty"`
	Landline   string `json:"landline,omitempty"`
	Station    string `json:"station,omitempty"`
	District   string `json:"district,omitempty"`
	Unit       string `json:"unit,omitempty"`
	PhotoURL   string `json:"photoUrl,omitempty"`
	BloodGroup string `json:"bloodGroup,omitempty"`
	IsHidden   bool   `json:"isHidden"`
	SearchBlob string `json:"searchBlob"`
}

// Phones returns the non-empty phone numbers in preference order.
func (o *Officer) Phones() []string {
	return nonEmpty(o.Mobile, o.Landline)
}
