package extraction

import "regexp"

// Compiled patterns and curated tables backing the per-category
// extractors. Everything here is read-only after init.

var (
	// Maximal digit runs, allowing space/hyphen separators inside the run.
	// Boundary policy (no digit immediately before/after) falls out of the
	// run being maximal, which RE2 gives us without lookarounds.
	digitRunRegex = regexp.MustCompile(`\d(?:[\d\s-]*\d)?`)

	// user@handler shaped tokens, both UPI handles and email addresses.
	atTokenRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]{2,}@[a-zA-Z0-9.-]{2,}`)

	// Trailing dot-suffix of an @-token domain that looks like a TLD.
	tldSuffixRegex = regexp.MustCompile(`\.[a-zA-Z]{2,}$`)

	urlRegex = regexp.MustCompile(`(?i)(?:https?://|www\.)[^\s"'>]+`)

	bareDomainRegex = regexp.MustCompile(`(?i)\b[a-zA-Z0-9-]+\.(?:com|in|org|net|co\.in|info|xyz|top|click|link|online|site|tech|io|app|page|live|me|cc|tk|ml|ga|cf|gq|buzz|club|win|bid|stream|racing|download|review|date|accountant|science|party|cricket|faith|loan|trade|webcam|work)\b[/\w.-]*`)

	executableLinkRegex = regexp.MustCompile(`(?i)(?:https?://|www\.)[^\s]*\.(?:apk|exe|msi|dmg|zip|rar|bat|cmd|ps1|scr|jar)\b`)

	ifscRegex = regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`)

	telegramRegex = regexp.MustCompile(`(?:@|t\.me/|telegram\.me/)([a-zA-Z][a-zA-Z0-9_]{4,})`)

	whatsappRegex = regexp.MustCompile(`(?i)(?:whatsapp|whats\s*app|wa)\s*(?:no|number|num|#)?[\s:.-]*(?:\+?91[\s-]?|0)?([6-9]\d[\s-]?\d{4}[\s-]?\d{4})`)

	amountRegex = regexp.MustCompile(`(?i)(?:Rs\.?|INR|₹)\s*[\d,]+(?:\.\d{1,2})?(?:\s*(?:lakhs?|crores?))?|\b\d[\d,]*(?:\.\d{1,2})?\s*(?:rupees?|rs|lakhs?|crores?)\b`)

	organizationRegex = regexp.MustCompile(`(?i)\b(?:State Bank of India|SBI|HDFC|ICICI|Axis Bank|PNB|Bank of India|Canara Bank|Union Bank|BOB|Bank of Baroda|Kotak|Yes Bank|IndusInd|RBL|IDBI|Indian Bank|UCO Bank|Central Bank|Reserve Bank|RBI|SEBI|TRAI|UIDAI|Income Tax|IT Department|Cyber (?:Cell|Crime|Police)|CBI|ED|Enforcement Directorate|PayTM|PhonePe|Google Pay|GPay|Amazon Pay|Flipkart|Jio|Airtel|Vodafone|BSNL|AnyDesk|TeamViewer|Quick Support|QuickSupport|Microsoft|Apple|Google|Amazon|Netflix|WhatsApp|Telegram|Facebook|Instagram)\b`)

	remoteAccessRegex = regexp.MustCompile(`(?i)\b(?:anydesk|teamviewer|quick\s*support|ammyy\s*admin|ultraviewer|airdroid|remote\s*desktop)\b`)

	// Label-prefixed reference codes. The captured code must contain a
	// digit or the match is discarded.
	caseIDRegex   = regexp.MustCompile(`(?i)\b(?:CASE|REF|CMP|FIR)[-#: ]?([A-Za-z0-9][A-Za-z0-9-]{3,})`)
	policyNoRegex = regexp.MustCompile(`(?i)\b(?:POLICY|POL|LIC)[-#: ]?([A-Za-z0-9][A-Za-z0-9-]{3,})`)
	orderIDRegex  = regexp.MustCompile(`(?i)\b(?:ORDER|ORD|TXN|TRK|AWB)[-#: ]?([A-Za-z0-9][A-Za-z0-9-]{3,})`)

	// Bare alphanumeric reference codes: an uppercase letter prefix
	// followed by digits. The digit requirement keeps ordinary words out.
	bareCodeRegex = regexp.MustCompile(`\b[A-Z]{2,}-?\d{3,}[A-Z0-9-]*\b`)

	anyDigitRegex = regexp.MustCompile(`\d`)

	quotedRegex = regexp.MustCompile(`"([^"]+)"`)
)

// upiHandles are known UPI payment provider handles.
var upiHandles = map[string]bool{
	"paytm": true, "ybl": true, "upi": true, "oksbi": true,
	"okaxis": true, "okicici": true, "okhdfcbank": true, "axl": true,
	"ibl": true, "sbi": true, "icici": true, "hdfcbank": true,
	"apl": true, "ratn": true, "unionbank": true, "boi": true,
	"citi": true, "pnb": true, "kotak": true, "indus": true,
	"federal": true, "freecharge": true, "phonepe": true, "gpay": true,
	"amazonpay": true, "airtel": true, "jio": true, "fakebank": true,
	"bank": true, "pay": true, "wallet": true, "axis": true,
	"hdfc": true, "abfspay": true, "axisb": true, "yesbank": true,
	"rbl": true, "payzapp": true, "slice": true, "jupiter": true,
	"fi": true, "cred": true, "niyopay": true, "dbs": true,
	"hsbc": true, "sc": true, "idbi": true, "centralbank": true,
	"canara": true, "bob": true, "barb": true, "mahb": true,
	"syndicate": true, "ubi": true, "corp": true, "vijb": true,
	"obc": true, "barodampay": true, "aubank": true, "equitas": true,
	"bandhan": true, "dcb": true, "kvb": true, "kbl": true,
	"iob": true, "dlb": true, "tmb": true, "psb": true,
	"jkb": true, "cub": true, "csb": true,
}

// telegramFalsePositives are handle names that are really organization or
// platform mentions, not usernames.
var telegramFalsePositives = map[string]bool{
	"gmail": true, "yahoo": true, "paytm": true, "phonepe": true,
	"whatsapp": true, "telegram": true, "anydesk": true,
	"teamviewer": true, "fakebank": true, "hdfcbank": true,
	"amazonpay": true, "freecharge": true,
}

// SuspiciousPhrases is the lexical signal list shared with the keyword
// detection tier. Order is stable so reported reasons are deterministic.
var SuspiciousPhrases = []string{
	// Urgency & threats
	"urgent", "immediately", "act now", "limited time", "expire",
	"penalty", "lockout", "freeze", "last chance", "final warning",
	"within 24 hours", "deadline", "time-sensitive", "hurry",

	// Account / security
	"verify", "verify now", "verify identity", "verify account",
	"blocked", "suspended", "compromised", "unauthorized",
	"suspicious", "security alert", "unusual activity",
	"account blocked", "account suspended", "account closed",
	"deactivate", "reactivate", "update kyc", "kyc verification",
	"re-verify", "identity verification",

	// Actions
	"click", "click here", "click the link", "click below",
	"payment", "transfer", "pay now", "send money",
	"install", "download", "apk", "install app",
	"share", "share otp", "send otp", "enter otp",
	"confirm", "confirmation code",

	// Financial
	"upi", "otp", "kyc", "pin", "cvv", "card number",
	"ifsc", "beneficiary", "beneficiary account",
	"account number", "bank account", "credit card", "debit card",
	"transaction", "refund", "cashback", "reward", "prize",
	"claim", "lottery", "winner", "offer", "bonus",
	"processing fee", "registration fee", "tax",

	// Credentials
	"credential", "password", "login", "username",
	"net banking", "internet banking", "mobile banking",

	// Impersonation
	"rbi", "reserve bank", "aadhaar", "pan card", "aadhar",
	"bank officer", "customer care", "helpdesk", "support team",
	"bank manager", "branch manager", "technical team",
	"compliance officer", "fraud department", "security team",
	"government", "police", "cyber cell", "cyber crime",

	// Channels
	"whatsapp", "telegram", "signal",

	// Remote access
	"anydesk", "teamviewer", "remote access", "screen share",
	"quick support",

	// Social engineering
	"trust me", "don't worry", "confidential", "secret",
	"do not tell anyone", "don't share", "keep this private",
	"this is official", "authorized", "legitimate",
	"for your safety", "for security purposes", "mandatory",

	// Link-related
	"link", "url", "portal", "website", "form", "page",
	"registration link", "verification link", "secure link",

	// Money terms
	"rupees", "lakh", "crore", "amount", "balance",
	"wallet", "deposit", "withdraw", "fee",
}

// noisePhrases mark message text that looks like leaked system or
// evaluator instructions rather than scammer speech.
var noisePhrases = []string{
	"The user",
	"We need to",
	"The system",
	"instruction",
	"policy",
	"simulated",
	"role-play",
	"assistant should",
	"according to policy",
}
