package profile

import (
	"math"
	"strconv"
	"strings"
)

const (
	segmentSep = ";"
	keySep     = ":"
	listSep    = ","

	yearsCutset = "'{} "
)

// Parse turns a `Key: Value; Key: Value` block into a Profile.
// Parsing is best effort: segments without a key separator are skipped,
// missing keys leave their fields empty, and unparsable years become zero.
func Parse(text string) *Profile {
	p := &Profile{
		Skills:     []string{},
		Languages:  []string{},
		Companies:  Companies{},
		Experience: Experience{},
	}

	for _, segment := range strings.Split(text, segmentSep) {
		if strings.TrimSpace(segment) == "" {
			continue
		}

		key, value, ok := strings.Cut(segment, keySep)
		if !ok {
			p.Skipped = append(p.Skipped, strings.TrimSpace(segment))
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case KeySkills:
			p.Skills = splitList(value)
		case KeyLanguages:
			p.Languages = splitList(value)
		case KeyCompanies:
			p.Companies = parseCompanies(value)
		case KeyExperience:
			p.Experience = parseExperience(value)
		default:
			p.setScalar(key, NormalizeToken(value))
		}
	}

	return p
}

func (p *Profile) setScalar(key, value string) {
	switch key {
	case KeyName:
		p.Name = value
	case KeyEmail:
		p.Email = value
	case KeyPhone:
		p.Phone = value
	case KeyQualification:
		p.HighestQualification = value
	default:
		if p.Extra == nil {
			p.Extra = make(map[string]string)
		}
		p.Extra[NormalizeToken(key)] = value
	}
}

func splitList(value string) []string {
	if value == "" {
		return []string{}
	}

	parts := strings.Split(value, listSep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, strings.TrimSpace(part))
	}
	return out
}

func parseCompanies(value string) Companies {
	var entries []Entry[string]
	for _, item := range strings.Split(value, listSep) {
		name, role, ok := strings.Cut(item, keySep)
		if !ok {
			continue
		}
		entries = append(entries, Entry[string]{
			Key:   strings.TrimSpace(name),
			Value: strings.TrimSpace(role),
		})
	}
	return Companies(NormalizeEntries(entries))
}

func parseExperience(value string) Experience {
	var entries []Entry[float64]
	for _, item := range strings.Split(value, listSep) {
		role, yearsText, ok := strings.Cut(item, keySep)
		if !ok {
			continue
		}
		entries = append(entries, Entry[float64]{
			Key:   strings.TrimSpace(role),
			Value: parseYears(yearsText),
		})
	}
	return Experience(NormalizeEntries(entries))
}

func parseYears(text string) float64 {
	years, err := strconv.ParseFloat(strings.Trim(strings.TrimSpace(text), yearsCutset), 64)
	if err != nil || math.IsNaN(years) || math.IsInf(years, 0) || years < 0 {
		return 0
	}
	return years
}
