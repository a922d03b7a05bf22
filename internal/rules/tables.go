package rules

import "github.com/fbonnet/fiscal-forecast/internal/domain"

// yearTable groups the published parameters of one tax year. All amounts are
// cents, all rates basis points.
type yearTable struct {
	microSocialRates map[RevenueKind]int64
	tnsComponents    []SocialComponent
	artistComponents []SocialComponent
	ircec            IRCECTable
	ir               IRTable
	vat              VATTable
	sasu             SASUTable
}

// tnsComponents lists the main TNS (travailleur non salarie) contribution
// lines under the real regime. These apply to income net of the
// contributions themselves, hence the iterative solver.
var tnsComponents2025 = []SocialComponent{
	{Code: "URSSAF_MALADIE", Label: "Assurance maladie-maternite", Rate: 650, Org: domain.OrgURSSAF},
	{Code: "URSSAF_RETRAITE_BASE", Label: "Retraite de base", Rate: 1775, Org: domain.OrgURSSAF},
	{Code: "URSSAF_RETRAITE_COMP", Label: "Retraite complementaire", Rate: 700, Org: domain.OrgURSSAF},
	{Code: "URSSAF_INVALIDITE", Label: "Invalidite-deces", Rate: 130, Org: domain.OrgURSSAF},
	{Code: "URSSAF_AF", Label: "Allocations familiales", Rate: 310, Org: domain.OrgURSSAF},
	{Code: "URSSAF_CSG_CRDS", Label: "CSG-CRDS", Rate: 970, Org: domain.OrgURSSAF},
	{Code: "URSSAF_FORMATION", Label: "Formation professionnelle", Rate: 25, Org: domain.OrgURSSAF},
}

// artistComponents lists the artist-author contribution lines withheld by
// URSSAF on the declared base.
var artistComponents2025 = []SocialComponent{
	{Code: "URSSAF_VIEILLESSE_PLAF", Label: "Vieillesse plafonnee", Rate: 690, Org: domain.OrgURSSAF},
	{Code: "URSSAF_VIEILLESSE_DEPLAF", Label: "Vieillesse deplafonnee", Rate: 40, Org: domain.OrgURSSAF},
	{Code: "URSSAF_CSG", Label: "CSG", Rate: 920, Org: domain.OrgURSSAF},
	{Code: "URSSAF_CRDS", Label: "CRDS", Rate: 50, Org: domain.OrgURSSAF},
	{Code: "URSSAF_FORMATION_AA", Label: "Formation professionnelle", Rate: 35, Org: domain.OrgURSSAF},
}

var table2025 = yearTable{
	microSocialRates: map[RevenueKind]int64{
		RevenueSales:    1230,
		RevenueServices: 2120,
		RevenueBNC:      2460,
		RevenueRights:   1630,
	},
	tnsComponents:    tnsComponents2025,
	artistComponents: artistComponents2025,
	ircec: IRCECTable{
		Threshold:      951_300,
		ReducedCeiling: 2_853_900,
		ReducedRate:    400,
		FullRate:       800,
	},
	ir: IRTable{
		Brackets: []Bracket{
			{UpTo: 1_149_700, Rate: 0},
			{UpTo: 2_931_500, Rate: 1100},
			{UpTo: 8_382_300, Rate: 3000},
			{UpTo: 18_029_400, Rate: 4100},
			{UpTo: 0, Rate: 4500},
		},
		MicroAbatements: map[RevenueKind]int64{
			RevenueSales:    7100,
			RevenueServices: 5000,
			RevenueBNC:      3400,
			RevenueRights:   3400,
		},
		MinimumAbatement: 30_500,
		VLRates: map[RevenueKind]int64{
			RevenueSales:    100,
			RevenueServices: 170,
			RevenueBNC:      220,
			RevenueRights:   220,
		},
		SalaryAbatement: 1000,
	},
	vat: VATTable{
		FranchiseCeilingServices: 3_680_000,
		FranchiseCeilingSales:    9_190_000,
	},
	sasu: SASUTable{
		EmployerRate:     5400,
		EmployeeRate:     2200,
		SalaryAbatement:  1000,
		ISReducedRate:    1500,
		ISReducedCeiling: 4_250_000,
		ISRate:           2500,
		PFURate:          3000,
	},
}

// 2026 carries the 2025 parameters with the published revaluations: the
// micro-BNC social rate rises to 26.1% and the IR brackets are indexed.
var table2026 = yearTable{
	microSocialRates: map[RevenueKind]int64{
		RevenueSales:    1230,
		RevenueServices: 2120,
		RevenueBNC:      2610,
		RevenueRights:   1630,
	},
	tnsComponents:    tnsComponents2025,
	artistComponents: artistComponents2025,
	ircec: IRCECTable{
		Threshold:      969_600,
		ReducedCeiling: 2_908_800,
		ReducedRate:    400,
		FullRate:       800,
	},
	ir: IRTable{
		Brackets: []Bracket{
			{UpTo: 1_170_700, Rate: 0},
			{UpTo: 2_985_000, Rate: 1100},
			{UpTo: 8_535_300, Rate: 3000},
			{UpTo: 18_358_300, Rate: 4100},
			{UpTo: 0, Rate: 4500},
		},
		MicroAbatements: map[RevenueKind]int64{
			RevenueSales:    7100,
			RevenueServices: 5000,
			RevenueBNC:      3400,
			RevenueRights:   3400,
		},
		MinimumAbatement: 30_500,
		VLRates: map[RevenueKind]int64{
			RevenueSales:    100,
			RevenueServices: 170,
			RevenueBNC:      220,
			RevenueRights:   220,
		},
		SalaryAbatement: 1000,
	},
	vat: VATTable{
		FranchiseCeilingServices: 3_750_000,
		FranchiseCeilingSales:    9_350_000,
	},
	sasu: SASUTable{
		EmployerRate:     5400,
		EmployeeRate:     2200,
		SalaryAbatement:  1000,
		ISReducedRate:    1500,
		ISReducedCeiling: 4_250_000,
		ISRate:           2500,
		PFURate:          3000,
	},
}

var yearParams = map[int]yearTable{
	2025: table2025,
	2026: table2026,
}
