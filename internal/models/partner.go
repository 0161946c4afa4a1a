package models

// ResPartner represents a customer/supplier from Odoo (res.partner)
type ResPartner struct {
	ID          int64      `json:"id"`
	Name        OdooString `json:"name"`
	Street      OdooString `json:"street"`
	Street2     OdooString `json:"street2"`
	Zip         OdooString `json:"zip"`
	City        OdooString `json:"city"`
	StateID     Many2One   `json:"state_id"`   // Federal state/region
	CountryID   Many2One   `json:"country_id"` // Country (res.country)
	Phone       OdooString `json:"phone"`
	Email       OdooString `json:"email"`
	Vat         OdooString `json:"vat"`          // Tax ID
	CompanyType OdooString `json:"company_type"` // 'person' or 'company'
	IsCompany   bool       `json:"is_company"`
	Active      bool       `json:"active"`
}

// PartnerModel is the Odoo model name of ResPartner.
const PartnerModel = "res.partner"

// PartnerFields lists the fields ResPartner decodes.
var PartnerFields = []string{
	"name", "street", "street2", "zip", "city", "state_id", "country_id",
	"phone", "email", "vat", "company_type", "is_company", "active",
}

// Values renders the writable fields for create/write, leaving out empty ones.
func (p ResPartner) Values() map[string]interface{} {
	v := map[string]interface{}{
		"is_company": p.IsCompany,
	}
	set := func(key string, s OdooString) {
		if s != "" {
			v[key] = string(s)
		}
	}
	set("name", p.Name)
	set("street", p.Street)
	set("street2", p.Street2)
	set("zip", p.Zip)
	set("city", p.City)
	set("phone", p.Phone)
	set("email", p.Email)
	set("vat", p.Vat)
	set("company_type", p.CompanyType)
	if p.StateID.Valid() {
		v["state_id"] = p.StateID.ID
	}
	if p.CountryID.Valid() {
		v["country_id"] = p.CountryID.ID
	}
	return v
}
