package rules

import "github.com/fbonnet/fiscal-forecast/internal/domain"

// RevenueKind classifies income for abatements, social rates, and VAT
// franchise ceilings.
type RevenueKind int

const (
	RevenueServices RevenueKind = iota
	RevenueSales
	RevenueBNC
	RevenueRights
)

// CategoryKind is the fiscal meaning of an entry category.
type CategoryKind int

const (
	KindRevenue CategoryKind = iota
	KindExpenseDeductible
	KindExpensePersonal
	KindRealizedTax
	KindRegularization
)

// revenueCategories maps income entry categories to their revenue kind.
var revenueCategories = map[string]RevenueKind{
	"vente":          RevenueSales,
	"marchandise":    RevenueSales,
	"prestation":     RevenueServices,
	"sous-traitance": RevenueServices,
	"honoraires":     RevenueBNC,
	"conseil":        RevenueBNC,
	"formation":      RevenueBNC,
	"droits-auteur":  RevenueRights,
	"cession-oeuvre": RevenueRights,
}

// deductibleCategories lists professional expense categories accepted as
// deductible under the real regime.
var deductibleCategories = map[string]bool{
	"achat":          true,
	"frais":          true,
	"materiel":       true,
	"logiciel":       true,
	"abonnement":     true,
	"loyer":          true,
	"deplacement":    true,
	"sous-traitance": true,
	"assurance":      true,
	"banque":         true,
	"comptabilite":   true,
}

// realizedTaxOrganizations maps TAX_SOCIAL entry categories to the collecting
// organization so realized payments can be matched against provisions.
var realizedTaxOrganizations = map[string]domain.Organization{
	"cotisations-urssaf": domain.OrgURSSAF,
	"cotisations-ircec":  domain.OrgIRCEC,
	"tva":                domain.OrgDGFIP,
	"impot":              domain.OrgDGFIP,
}

// regularizationCategories maps prior-year adjustment categories to their
// organization.
var regularizationCategories = map[string]domain.Organization{
	"regularisation-urssaf": domain.OrgURSSAF,
	"regularisation-ircec":  domain.OrgIRCEC,
	"regularisation-impot":  domain.OrgDGFIP,
}

// MapRevenueKind resolves the revenue kind of an income category, failing
// with UnknownCategoryMapping when the category is not a known revenue line.
func MapRevenueKind(category string) (RevenueKind, error) {
	kind, ok := revenueCategories[category]
	if !ok {
		return 0, domain.NewUnknownCategoryMapping(category)
	}
	return kind, nil
}

// MapCategory resolves the fiscal meaning of an entry category given its
// nature. Personal-scope expenses never reach a fiscal line and always map
// to KindExpensePersonal. Unknown professional categories are a data defect.
func MapCategory(nature domain.EntryNature, scope domain.Scope, category string) (CategoryKind, error) {
	if scope == domain.ScopePerso {
		return KindExpensePersonal, nil
	}
	switch nature {
	case domain.NatureIncome:
		if _, ok := revenueCategories[category]; !ok {
			return 0, domain.NewUnknownCategoryMapping(category)
		}
		return KindRevenue, nil
	case domain.NatureExpensePro:
		if !deductibleCategories[category] {
			return 0, domain.NewUnknownCategoryMapping(category)
		}
		return KindExpenseDeductible, nil
	case domain.NatureExpensePerso:
		return KindExpensePersonal, nil
	case domain.NatureTaxSocial:
		if _, ok := realizedTaxOrganizations[category]; ok {
			return KindRealizedTax, nil
		}
		if _, ok := regularizationCategories[category]; ok {
			return KindRegularization, nil
		}
		return 0, domain.NewUnknownCategoryMapping(category)
	case domain.NatureTransfer:
		return KindExpensePersonal, nil
	}
	return 0, domain.NewUnknownCategoryMapping(category)
}

// IsRegularization reports whether a TAX_SOCIAL category is a prior-year
// adjustment rather than a current-year payment.
func IsRegularization(category string) bool {
	_, ok := regularizationCategories[category]
	return ok
}

// TaxOrganization returns the collecting organization of a TAX_SOCIAL
// category, URSSAF regularizations included.
func TaxOrganization(category string) (domain.Organization, bool) {
	if org, ok := realizedTaxOrganizations[category]; ok {
		return org, true
	}
	org, ok := regularizationCategories[category]
	return org, ok
}

// TaxLineCategory returns the line category of a TAX_SOCIAL entry so that a
// realized VAT payment only ever offsets VAT provisions, not the income tax
// balance also collected by DGFIP.
func TaxLineCategory(category string) domain.LineCategory {
	switch category {
	case "tva":
		return domain.CategoryVAT
	case "impot", "regularisation-impot":
		return domain.CategoryFiscal
	default:
		return domain.CategorySocial
	}
}

// RealizedKey identifies the provision bucket a realized payment offsets.
type RealizedKey struct {
	Org      domain.Organization
	Category domain.LineCategory
}
