package faq

import (
	"fmt"
	"strings"

	"github.com/nbenali/campusbot-go/internal/directory"
)

// BuildPlaceholders maps every {placeholder} token used in the catalog
// to a value for the given institution. Departmental email addresses
// are derived from the domain of the institution's general address.
// A nil institution yields generic fallbacks, so a rendered answer
// never leaks an unresolved token.
func BuildPlaceholders(inst *directory.Institution) map[string]string {
	if inst == nil {
		return map[string]string{
			"university_name":     "your university",
			"university_name_ar":  "جامعتك",
			"university_name_fr":  "votre université",
			"city":                "your city",
			"city_ar":             "مدينتك",
			"city_fr":             "votre ville",
			"portal_url":          "your student portal",
			"website":             "the university website",
			"email_general":       "info@university.dz",
			"email_registrar":     "registrar@university.dz",
			"email_finance":       "finance@university.dz",
			"email_it":            "itsupport@university.dz",
			"email_student":       "studentaffairs@university.dz",
			"email_financial_aid": "financialaid@university.dz",
			"email_housing":       "housing@university.dz",
			"email_library":       "library@university.dz",
			"email_academic":      "academic@university.dz",
			"phone_main":          "the university main number",
			"address":             "the university campus",
		}
	}

	name := fallback(inst.Name, "your university")
	nameAr := fallback(inst.NameAr, "جامعتك")
	nameFr := fallback(inst.NameFr, name) // French display uses the Latin name
	website := fallback(inst.Website, "the university website")
	email := fallback(inst.Email, "info@university.dz")

	domain := "university.dz"
	if at := strings.LastIndex(email, "@"); at >= 0 {
		domain = email[at+1:]
	}
	sub := func(prefix string) string {
		return prefix + "@" + domain
	}

	city := fallback(inst.City, "your city")
	cityAr := fallback(inst.City, "مدينتك")
	cityFr := fallback(inst.City, "votre ville")

	address := inst.Address
	if address == "" {
		if inst.City == "" {
			address = fmt.Sprintf("Campus of %s", name)
		} else {
			address = fmt.Sprintf("Campus of %s, %s", name, inst.City)
		}
	}

	return map[string]string{
		"university_name":     name,
		"university_name_ar":  nameAr,
		"university_name_fr":  nameFr,
		"city":                city,
		"city_ar":             cityAr,
		"city_fr":             cityFr,
		"portal_url":          website,
		"website":             website,
		"email_general":       email,
		"email_registrar":     sub("registrar"),
		"email_finance":       sub("finance"),
		"email_it":            sub("itsupport"),
		"email_student":       sub("studentaffairs"),
		"email_financial_aid": sub("financialaid"),
		"email_housing":       sub("housing"),
		"email_library":       sub("library"),
		"email_academic":      sub("academic"),
		"phone_main":          fallback(inst.Phone, "the university main number"),
		"address":             address,
	}
}

// Fill replaces every {placeholder} token in template with its value.
func Fill(template string, placeholders map[string]string) string {
	pairs := make([]string, 0, len(placeholders)*2)
	for key, val := range placeholders {
		pairs = append(pairs, "{"+key+"}", val)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
