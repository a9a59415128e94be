package models

// Intelligence is the per-session deduplicated aggregate of accepted
// entities. Each field holds normalized values, unique within the field,
// in first-seen order. The aggregate only ever grows: values are appended
// by Add and never removed.
type Intelligence struct {
	PhoneNumbers       []string `json:"phoneNumbers"`
	BankAccounts       []string `json:"bankAccounts"`
	UpiIDs             []string `json:"upiIds"`
	EmailAddresses     []string `json:"emailAddresses"`
	PhishingURLs       []string `json:"phishingUrls"`
	MalwareLinks       []string `json:"malwareLinks"`
	IfscCodes          []string `json:"ifscCodes"`
	TelegramHandles    []string `json:"telegramHandles"`
	MonetaryAmounts    []string `json:"monetaryAmounts"`
	Organizations      []string `json:"organizations"`
	RemoteAccessTools  []string `json:"remoteAccessTools"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
	CaseIDs            []string `json:"caseIds"`
	PolicyNumbers      []string `json:"policyNumbers"`
	OrderIDs           []string `json:"orderIds"`
}

// slot returns the slice backing the given category.
func (in *Intelligence) slot(c EntityCategory) *[]string {
	switch c {
	case CategoryPhoneNumber:
		return &in.PhoneNumbers
	case CategoryBankAccount:
		return &in.BankAccounts
	case CategoryUpiID:
		return &in.UpiIDs
	case CategoryEmail:
		return &in.EmailAddresses
	case CategoryPhishingURL:
		return &in.PhishingURLs
	case CategoryMalwareLink:
		return &in.MalwareLinks
	case CategoryIfscCode:
		return &in.IfscCodes
	case CategoryTelegramHandle:
		return &in.TelegramHandles
	case CategoryMonetaryAmount:
		return &in.MonetaryAmounts
	case CategoryOrganization:
		return &in.Organizations
	case CategoryRemoteAccessTool:
		return &in.RemoteAccessTools
	case CategorySuspiciousKeyword:
		return &in.SuspiciousKeywords
	case CategoryCaseID:
		return &in.CaseIDs
	case CategoryPolicyNumber:
		return &in.PolicyNumbers
	case CategoryOrderID:
		return &in.OrderIDs
	}
	return nil
}

// Add appends a normalized value to the category if not already present.
// Returns true when the value was new.
func (in *Intelligence) Add(c EntityCategory, normalized string) bool {
	if normalized == "" {
		return false
	}
	s := in.slot(c)
	if s == nil {
		return false
	}
	for _, v := range *s {
		if v == normalized {
			return false
		}
	}
	*s = append(*s, normalized)
	return true
}

// Has reports whether the category already holds the normalized value.
func (in *Intelligence) Has(c EntityCategory, normalized string) bool {
	s := in.slot(c)
	if s == nil {
		return false
	}
	for _, v := range *s {
		if v == normalized {
			return true
		}
	}
	return false
}

// Values returns the category's values in first-seen order.
func (in *Intelligence) Values(c EntityCategory) []string {
	s := in.slot(c)
	if s == nil {
		return nil
	}
	return *s
}

// Count returns the total number of entities across all categories.
func (in *Intelligence) Count() int {
	n := 0
	for _, c := range AllCategories {
		n += len(in.Values(c))
	}
	return n
}

// HasFinancial reports whether any financially sensitive category is
// non-empty. Used by the intel-override detection tier.
func (in *Intelligence) HasFinancial() bool {
	for _, c := range AllCategories {
		if c.IsFinancial() && len(in.Values(c)) > 0 {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the aggregate.
func (in *Intelligence) Clone() *Intelligence {
	out := &Intelligence{}
	for _, c := range AllCategories {
		vals := in.Values(c)
		if len(vals) == 0 {
			continue
		}
		dst := out.slot(c)
		*dst = append([]string(nil), vals...)
	}
	return out
}
