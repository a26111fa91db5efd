package session

import "reflect"

// Company is one {company, registration} association carried on the profile.
type Company struct {
	ID           string `json:"id"`
	Name         string `json:"nome"`
	Registration string `json:"matricula"`
}

// User is the canonical authenticated-user profile. It is produced exclusively
// by normalizing a rawUser at the API boundary; nothing downstream branches on
// raw field presence.
type User struct {
	Name         string    `json:"nome"`
	Email        string    `json:"email"`
	CPF          string    `json:"cpf"`
	Registration string    `json:"matricula,omitempty"`
	Manager      bool      `json:"gestor"`
	HR           bool      `json:"rh,omitempty"`
	Client       string    `json:"cliente,omitempty"`
	CostCenter   string    `json:"centro_de_custo,omitempty"`
	Companies    []Company `json:"dados,omitempty"`

	// Internal marks portal-internal employees who must pass the email-token
	// second factor.
	Internal bool `json:"interno"`
	// PasswordChanged is nil when the backend did not state it either way.
	// A pending password change is signalled by false or by absence.
	PasswordChanged *bool `json:"senha_trocada"`
}

// Equal reports structural equality between two profiles, pointer targets
// included. Used to suppress no-op store updates.
func (u *User) Equal(other *User) bool {
	return reflect.DeepEqual(u, other)
}

// rawUser is the identity endpoint's wire shape. The two gating fields are
// optional on the wire and must be normalized to strict values.
type rawUser struct {
	Name         string    `json:"nome"`
	Email        string    `json:"email"`
	CPF          string    `json:"cpf"`
	Registration string    `json:"matricula"`
	Manager      bool      `json:"gestor"`
	HR           bool      `json:"rh"`
	Client       string    `json:"cliente"`
	CostCenter   string    `json:"centro_de_custo"`
	Companies    []Company `json:"dados"`

	Internal        *bool `json:"interno"`
	PasswordChanged *bool `json:"senha_trocada"`
}

// normalize maps the wire shape to the canonical profile: Internal collapses
// to a strict boolean (true only when the backend said exactly true) and
// PasswordChanged keeps its tri-state.
func (r rawUser) normalize() *User {
	u := &User{
		Name:         r.Name,
		Email:        r.Email,
		CPF:          r.CPF,
		Registration: r.Registration,
		Manager:      r.Manager,
		HR:           r.HR,
		Client:       r.Client,
		CostCenter:   r.CostCenter,
		Companies:    r.Companies,
		Internal:     r.Internal != nil && *r.Internal,
	}
	if r.PasswordChanged != nil {
		v := *r.PasswordChanged
		u.PasswordChanged = &v
	}
	return u
}

// firstCompanyID returns the id of the first associated company, if any.
func (r rawUser) firstCompanyID() string {
	if len(r.Companies) == 0 {
		return ""
	}
	return r.Companies[0].ID
}
