package model

import "slices"

// Branches lists the pharmacy branches a customer can pick up from.
var Branches = []string{
	"مدينة السلام",
	"فرع مساكن عين شمس",
	"فرع أبو الفتوح عبدالله – عين شمس",
	"فرع إبراهيم عبد الرازق – عين شمس",
	"فرع الشيراتون",
}

// InsuranceCompanies lists the accepted insurers.
var InsuranceCompanies = []string{
	"شركة أكسا",
	"شركة جلوب ميد",
	"شركة ميت لايف",
	"شركة ليمتليس كير",
	"شركة ميد رايت",
	"شركة صحة",
	"شركة نيكست كير",
	"شركة الكهرباء",
}

// IsBranch reports whether name is a known branch.
func IsBranch(name string) bool {
	return slices.Contains(Branches, name)
}

// IsInsuranceCompany reports whether name is a known insurer.
func IsInsuranceCompany(name string) bool {
	return slices.Contains(InsuranceCompanies, name)
}
