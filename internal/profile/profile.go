package profile

import (
	"encoding/json"
	"os"
)

// Keys recognized in the model response.
const (
	KeyName          = "Candidate Name"
	KeyEmail         = "Email ID"
	KeyPhone         = "Phone Number"
	KeyQualification = "Highest Qualification"
	KeySkills        = "Skills"
	KeyLanguages     = "Languages"
	KeyCompanies     = "Companies"
	KeyExperience    = "Experience"
)

// Profile is a candidate record built from one model response.
type Profile struct {
	Name                 string            `json:"name,omitempty"`
	Email                string            `json:"email,omitempty"`
	Phone                string            `json:"phone,omitempty"`
	HighestQualification string            `json:"highest_qualification,omitempty"`
	Skills               []string          `json:"skills"`
	Languages            []string          `json:"languages"`
	Companies            Companies         `json:"companies"`
	Experience           Experience        `json:"experience"`
	Extra                map[string]string `json:"extra,omitempty"`

	// Skipped holds segments that had no key separator.
	Skipped []string `json:"-"`
}

// Companies maps a company name to the role held there.
type Companies []Entry[string]

// Role returns the role declared for the company.
func (c Companies) Role(company string) (string, bool) {
	for _, e := range c {
		if e.Key == company {
			return e.Value, true
		}
	}
	return "", false
}

// Names returns company names in declaration order.
func (c Companies) Names() []string {
	names := make([]string, 0, len(c))
	for _, e := range c {
		names = append(names, e.Key)
	}
	return names
}

// Experience maps a role to the years spent in it.
type Experience []Entry[float64]

// Roles returns the declared roles in declaration order.
func (e Experience) Roles() []string {
	roles := make([]string, 0, len(e))
	for _, entry := range e {
		roles = append(roles, entry.Key)
	}
	return roles
}

// Years returns the years declared for the role.
func (e Experience) Years(role string) (float64, bool) {
	for _, entry := range e {
		if entry.Key == role {
			return entry.Value, true
		}
	}
	return 0, false
}

// Total sums the years of every declared role.
func (e Experience) Total() float64 {
	var total float64
	for _, entry := range e {
		total += entry.Value
	}
	return total
}

// TotalYears is the sum of all experience values.
func (p *Profile) TotalYears() float64 {
	return p.Experience.Total()
}

// MarshalJSON adds the derived total to the encoded profile.
func (p *Profile) MarshalJSON() ([]byte, error) {
	type plain Profile
	return json.Marshal(struct {
		*plain
		TotalYears float64 `json:"total_years"`
	}{
		plain:      (*plain)(p),
		TotalYears: p.TotalYears(),
	})
}

// ParseFile reads a stored model response and parses it.
func ParseFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data)), nil
}
