package detection

import (
	"fmt"

	"scamtrap-lab/internal/config"
	"scamtrap-lab/internal/domain/models"
	"scamtrap-lab/pkg/logger"
)

// Tier confidence floors for the structural tiers, which carry no
// intrinsic score of their own.
const (
	intelOverrideConfidence = 0.9
	safetyNetConfidence     = 0.5
)

// Cascade is the per-turn detection pipeline. It is a ratchet: a session
// that has detected once short-circuits every later evaluation, so the
// verdict can never flip back.
type Cascade struct {
	scorer        *KeywordScorer
	llmThreshold  float64
	safetyNetTurn int
	logger        *logger.Logger
}

// NewCascade creates a new detection cascade
func NewCascade(cfg config.DetectionConfig, log *logger.Logger) *Cascade {
	return &Cascade{
		scorer:        NewKeywordScorer(cfg),
		llmThreshold:  cfg.LLMConfidenceThreshold,
		safetyNetTurn: cfg.SafetyNetTurn,
		logger:        log.WithComponent("cascade"),
	}
}

// Evaluate produces the verdict for one turn. Tier order is strict: an
// external LLM verdict wins, then the lexical scan of the current
// message, then the financial-intel override, then the turn-count safety
// net. The first firing tier decides; later tiers are not consulted.
//
// messageText is only the current turn's message. The intel-override
// tier reads the session aggregate, which the merger must have updated
// before evaluation.
func (c *Cascade) Evaluate(sess *models.Session, messageText string, llm *models.LLMVerdict) models.Verdict {
	if sess.Detection.Detected {
		return models.Verdict{
			Detected:   true,
			Tier:       sess.Detection.Tier,
			Confidence: sess.Detection.Confidence,
			Reasons:    sess.Detection.Reasons,
		}
	}

	v := c.evaluateTiers(sess, messageText, llm)
	if v.Detected {
		c.logger.WithSession(sess.ID).Info().
			Str("tier", string(v.Tier)).
			Float64("confidence", v.Confidence).
			Msg("scam detected")
	}
	return v
}

func (c *Cascade) evaluateTiers(sess *models.Session, messageText string, llm *models.LLMVerdict) models.Verdict {
	// Tier 1: external LLM verdict. Absence or low confidence falls
	// through, never errors.
	if llm != nil && llm.IsScam && llm.Confidence >= c.llmThreshold {
		reasons := llm.Reasons
		if len(reasons) == 0 {
			reasons = []string{"language model flagged scam intent"}
		}
		return models.Verdict{
			Detected:   true,
			Tier:       models.TierLLM,
			Confidence: llm.Confidence,
			Reasons:    reasons,
		}
	}

	// Tier 2: lexical scan of the current message.
	if score, reasons := c.scorer.Score(messageText); score > 0 {
		return models.Verdict{
			Detected:   true,
			Tier:       models.TierKeyword,
			Confidence: score,
			Reasons:    reasons,
		}
	}

	// Tier 3: any financially sensitive entity in the aggregate.
	if sess.Intelligence.HasFinancial() {
		return models.Verdict{
			Detected:   true,
			Tier:       models.TierIntelOverride,
			Confidence: intelOverrideConfidence,
			Reasons:    financialReasons(sess.Intelligence),
		}
	}

	// Tier 4: by the safety-net turn, silence is itself the signal.
	if sess.TurnCount() >= c.safetyNetTurn {
		return models.Verdict{
			Detected:   true,
			Tier:       models.TierSafetyNet,
			Confidence: safetyNetConfidence,
			Reasons:    []string{fmt.Sprintf("conversation reached turn %d without a benign signal", sess.TurnCount())},
		}
	}

	return models.Verdict{Detected: false, Tier: models.TierNone}
}

func financialReasons(in *models.Intelligence) []string {
	var out []string
	for _, cat := range models.AllCategories {
		if !cat.IsFinancial() {
			continue
		}
		if n := len(in.Values(cat)); n > 0 {
			out = append(out, fmt.Sprintf("%d %s value(s) extracted", n, cat))
		}
	}
	return out
}
