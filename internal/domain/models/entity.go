package models

// EntityCategory classifies a single piece of extracted intelligence.
type EntityCategory string

const (
	CategoryPhoneNumber       EntityCategory = "phone_number"
	CategoryBankAccount       EntityCategory = "bank_account"
	CategoryUpiID             EntityCategory = "upi_id"
	CategoryEmail             EntityCategory = "email"
	CategoryPhishingURL       EntityCategory = "phishing_url"
	CategoryMalwareLink       EntityCategory = "malware_link"
	CategoryIfscCode          EntityCategory = "ifsc_code"
	CategoryTelegramHandle    EntityCategory = "telegram_handle"
	CategoryMonetaryAmount    EntityCategory = "monetary_amount"
	CategoryOrganization      EntityCategory = "organization"
	CategoryRemoteAccessTool  EntityCategory = "remote_access_tool"
	CategorySuspiciousKeyword EntityCategory = "suspicious_keyword"
	CategoryCaseID            EntityCategory = "case_id"
	CategoryPolicyNumber      EntityCategory = "policy_number"
	CategoryOrderID           EntityCategory = "order_id"
)

// AllCategories lists every category in a stable order.
var AllCategories = []EntityCategory{
	CategoryPhoneNumber,
	CategoryBankAccount,
	CategoryUpiID,
	CategoryEmail,
	CategoryPhishingURL,
	CategoryMalwareLink,
	CategoryIfscCode,
	CategoryTelegramHandle,
	CategoryMonetaryAmount,
	CategoryOrganization,
	CategoryRemoteAccessTool,
	CategorySuspiciousKeyword,
	CategoryCaseID,
	CategoryPolicyNumber,
	CategoryOrderID,
}

// IsFinancial reports whether the category carries financially sensitive
// intelligence. The presence of any such entity is enough to flag a
// conversation regardless of lexical signals.
func (c EntityCategory) IsFinancial() bool {
	switch c {
	case CategoryBankAccount, CategoryUpiID, CategoryIfscCode, CategoryPhishingURL, CategoryMalwareLink:
		return true
	}
	return false
}

// Entity is one accepted extraction from conversation text.
type Entity struct {
	Category       EntityCategory `json:"category"`
	RawText        string         `json:"raw_text"`
	NormalizedText string         `json:"normalized_text"`
	SourceTurn     int            `json:"source_turn"`
}

// Candidate is a raw extractor match that has not yet survived
// disambiguation. Start and End are byte offsets into the scanned text.
type Candidate struct {
	Category   EntityCategory
	RawText    string
	Normalized string
	Start      int
	End        int
}

// Contains reports whether the candidate's span fully contains other's span.
func (c Candidate) Contains(other Candidate) bool {
	return c.Start <= other.Start && other.End <= c.End && (c.End-c.Start) > (other.End-other.Start)
}

// Overlaps reports whether two candidate spans share any bytes.
func (c Candidate) Overlaps(other Candidate) bool {
	return c.Start < other.End && other.Start < c.End
}
