// Package taxinfo holds the Indian tax law knowledge injected into AI prompts.
package taxinfo

import "fmt"

const (
	FinancialYear  = "2024-25"
	AssessmentYear = "2025-26"
)

// Official government resources cited in responses.
const (
	IncomeTaxPortal = "https://www.incometax.gov.in/"
	GSTPortal       = "https://www.gst.gov.in/"
	CBDTPortal      = "https://www.incometax.gov.in/iec/foportal/"
)

// Deduction describes a Chapter VI-A (or related) deduction.
type Deduction struct {
	Section     string
	Limit       string
	Description string
}

// Deductions lists the commonly asked-about deductions under the old regime.
func Deductions() []Deduction {
	return []Deduction{
		{Section: "80C", Limit: "₹1,50,000", Description: "EPF, PPF, ELSS, life insurance, tax-saving FD, NSC, home loan principal"},
		{Section: "80D", Limit: "₹25,000 (₹50,000 for senior citizen parents)", Description: "Health insurance premium"},
		{Section: "80E", Limit: "No limit", Description: "Interest on education loan"},
		{Section: "80G", Limit: "Varies", Description: "Donations to specified funds"},
		{Section: "24(b)", Limit: "₹2,00,000", Description: "Home loan interest, self-occupied property"},
	}
}

// ITRForms maps each ITR form to who should file it.
func ITRForms() map[string]string {
	return map[string]string{
		"ITR-1": "Salaried individuals with income up to ₹50 lakh",
		"ITR-2": "Individuals with capital gains or foreign assets/income",
		"ITR-3": "Individuals with business or professional income",
		"ITR-4": "Presumptive business income under Section 44AD/44ADA",
		"ITR-5": "Firms, LLP, AOP, BOI",
		"ITR-6": "Companies other than those claiming Section 11 exemption",
		"ITR-7": "Trusts, political parties, institutions",
	}
}

// CurrentContext returns the tax-year context block included in the advisor's
// system prompt. Content tracks tax_context data for the current FY.
func CurrentContext() string {
	return fmt.Sprintf(`CURRENT TAX YEAR INFORMATION (FY %s, AY %s):

INCOME TAX SLABS (Individual - New Tax Regime):
- Up to ₹3,00,000: Nil
- ₹3,00,001 to ₹7,00,000: 5%%
- ₹7,00,001 to ₹10,00,000: 10%%
- ₹10,00,001 to ₹12,00,000: 15%%
- ₹12,00,001 to ₹15,00,000: 20%%
- Above ₹15,00,000: 30%%

OLD TAX REGIME SLABS:
- Up to ₹2,50,000: Nil
- ₹2,50,001 to ₹5,00,000: 5%%
- ₹5,00,001 to ₹10,00,000: 20%%
- Above ₹10,00,000: 30%%

KEY DEDUCTIONS (Old Regime):
- Section 80C: Up to ₹1,50,000 (EPF, PPF, ELSS, Life Insurance, etc.)
- Section 80D: Up to ₹25,000 (Health Insurance)
- Section 80E: Interest on Education Loan (No limit)
- Section 80G: Donations to specified funds
- Section 24(b): Home Loan Interest up to ₹2,00,000

STANDARD DEDUCTION:
- Salaried: ₹50,000
- Pensioners: ₹15,000

HRA EXEMPTION (minimum of the three):
- 50%% of salary (metro cities) or 40%% (non-metro)
- Actual HRA received
- Rent paid minus 10%% of salary

TDS RATES (Common):
- Salary: As per tax slab
- Interest on FD: 10%% (if > ₹40,000)
- Professional fees: 10%%
- Rent: 10%%

GST RATES:
- Essential goods: 0%% or 5%%
- Standard rate: 12%% or 18%%
- Luxury items: 28%%

OFFICIAL RESOURCES:
- Income Tax Department: %s
- GST Portal: %s
- CBDT: %s`,
		FinancialYear, AssessmentYear,
		IncomeTaxPortal, GSTPortal, CBDTPortal)
}
