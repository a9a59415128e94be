package models

// DetectionTier identifies which cascade tier produced a verdict.
type DetectionTier string

const (
	TierLLM           DetectionTier = "llm"
	TierKeyword       DetectionTier = "keyword"
	TierIntelOverride DetectionTier = "intel_override"
	TierSafetyNet     DetectionTier = "safety_net"
	TierNone          DetectionTier = "none"
)

// Verdict is the outcome of the detection cascade for one turn.
type Verdict struct {
	Detected   bool          `json:"detected"`
	Tier       DetectionTier `json:"tier"`
	Confidence float64       `json:"confidence"`
	Reasons    []string      `json:"reasons,omitempty"`
}

// LLMVerdict is the externally supplied first-tier signal. A nil value
// means the tier produced no signal and the cascade falls through.
type LLMVerdict struct {
	IsScam     bool     `json:"is_scam"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons,omitempty"`
}

// ScamType is a soft classification of the fraud scheme, derived from the
// aggregate and transcript after detection. It does not influence the
// detection verdict itself.
type ScamType string

const (
	ScamTypeBankFraud         ScamType = "bank_fraud"
	ScamTypeUPIFraud          ScamType = "upi_fraud"
	ScamTypePhishing          ScamType = "phishing"
	ScamTypeLottery           ScamType = "lottery_investment_scam"
	ScamTypeKYCFraud          ScamType = "kyc_fraud"
	ScamTypeOTPFraud          ScamType = "otp_fraud"
	ScamTypeImpersonation     ScamType = "impersonation_scam"
	ScamTypeRemoteAccess      ScamType = "remote_access_scam"
	ScamTypeSocialEngineering ScamType = "social_engineering_scam"
)
