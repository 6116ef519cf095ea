package constant

// Domain is the topic category a free-text question is routed to.
type Domain string

const (
	DomainInvestment Domain = "INVESTMENT"
	DomainFinance    Domain = "FINANCE"
	DomainHealth     Domain = "HEALTH"
	DomainKnowledge  Domain = "KNOWLEDGE"
	DomainOther      Domain = "OTHER"
)

// GlobalSources are queried for every domain (general notes).
var GlobalSources = []string{
	"FLASH_DB_ID",
	"LITERATURE_DB_ID",
	"PERMAMENT_DB_ID",
}

// DomainSources maps each domain to its dedicated source keys.
// KNOWLEDGE maps to the global sources only.
var DomainSources = map[Domain][]string{
	DomainInvestment: {
		"DB_TW_STOCK",
		"DB_US_STOCK",
		"DB_CRYPTO",
		"DB_GOLD",
		"PAY_LOSS_DB_ID",
		"DB_SNAPSHOT",
	},
	DomainFinance: {
		"TRANSACTIONS_DB_ID",
		"BUDGET_DB_ID",
		"INCOME_DB_ID",
		"DB_ACCOUNT",
		"DB_MORTGAGE",
	},
	DomainHealth: {
		"DIET_DB_ID",
	},
	DomainKnowledge: GlobalSources,
}

// ParseDomain normalizes a model-produced label. Anything outside the
// closed set degrades to OTHER.
func ParseDomain(s string) Domain {
	switch Domain(s) {
	case DomainInvestment, DomainFinance, DomainHealth, DomainKnowledge:
		return Domain(s)
	default:
		return DomainOther
	}
}

// FinanceDateProperty is the date column of the finance ledger
// databases. Other domains fall back to the created_time timestamp.
const FinanceDateProperty = "日期"
