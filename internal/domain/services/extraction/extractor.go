package extraction

import (
	"strings"

	"scamtrap-lab/internal/domain/models"
	"scamtrap-lab/pkg/logger"
)

// Extractor turns raw conversation text into disambiguated entities.
// It is stateless and safe for concurrent use across sessions.
type Extractor struct {
	logger *logger.Logger
}

// NewExtractor creates a new entity extractor
func NewExtractor(log *logger.Logger) *Extractor {
	return &Extractor{
		logger: log.WithComponent("extractor"),
	}
}

// Extract runs every category extractor over the text and resolves
// overlaps. Empty or malformed text yields an empty result, never an
// error.
func (e *Extractor) Extract(text string, turn int) []models.Entity {
	text = CleanText(text)
	if text == "" {
		return nil
	}

	r := newResolver(text, turn)
	r.resolveURLs()
	r.resolveAtTokens()
	r.resolveIfscCodes()
	r.resolveDigitRuns()
	r.resolveAmounts()
	r.resolveOrganizations()
	r.resolveRemoteAccessTools()
	r.resolveKeywords()
	r.resolveTelegramHandles()
	r.resolveReferenceCodes()

	if len(r.entities) > 0 {
		e.logger.Debug().
			Int("turn", turn).
			Int("entities", len(r.entities)).
			Msg("extracted entities")
	}
	return r.entities
}

// CleanText strips meta/noise content that is not scammer speech. When a
// message looks like leaked evaluator instructions, the longest quoted
// fragment is used instead.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	for _, noise := range noisePhrases {
		if strings.Contains(text, noise) {
			quoted := quotedRegex.FindAllStringSubmatch(text, -1)
			longest := ""
			for _, q := range quoted {
				if len(q[1]) > len(longest) {
					longest = q[1]
				}
			}
			if longest != "" {
				return longest
			}
			break
		}
	}
	return text
}

// --- candidate scanners, one per raw shape ---

func urlCandidates(text string) []models.Candidate {
	var out []models.Candidate
	var claimed []span
	seen := map[string]bool{}
	add := func(loc []int) {
		raw := text[loc[0]:loc[1]]
		norm := normalizeURL(raw)
		if norm == "" || seen[norm] {
			return
		}
		seen[norm] = true
		claimed = append(claimed, span{loc[0], loc[1]})
		out = append(out, models.Candidate{
			Category:   models.CategoryPhishingURL,
			RawText:    raw,
			Normalized: norm,
			Start:      loc[0],
			End:        loc[1],
		})
	}
	for _, loc := range urlRegex.FindAllStringIndex(text, -1) {
		add(loc)
	}
	// Bare domains inside a scheme-prefixed match are the same URL, not a
	// second one.
	for _, loc := range bareDomainRegex.FindAllStringIndex(text, -1) {
		if overlapsAny(span{loc[0], loc[1]}, claimed) {
			continue
		}
		add(loc)
	}
	return out
}

func atTokenCandidates(text string) []models.Candidate {
	var out []models.Candidate
	for _, loc := range atTokenRegex.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		out = append(out, models.Candidate{
			RawText:    raw,
			Normalized: strings.TrimSuffix(strings.ToLower(raw), "."),
			Start:      loc[0],
			End:        loc[1],
		})
	}
	return out
}

func normalizeURL(raw string) string {
	return strings.TrimRight(strings.ToLower(raw), ".,;:)")
}

// isExecutableLink reports whether a URL points at an installer or
// executable download.
func isExecutableLink(norm string) bool {
	return executableLinkRegex.MatchString(norm)
}

// classifyAtToken applies the UPI-vs-email tie-break: the email TLD test
// runs first, then the curated handle list, and anything left defaults to
// UPI since most scam payment handles are not in any curated list.
func classifyAtToken(norm string) models.EntityCategory {
	parts := strings.SplitN(norm, "@", 2)
	if len(parts) != 2 {
		return models.CategoryUpiID
	}
	domain := strings.TrimSuffix(parts[1], ".")
	if tldSuffixRegex.MatchString(domain) {
		return models.CategoryEmail
	}
	if upiHandles[domain] {
		return models.CategoryUpiID
	}
	// Generic dot-less handle. Most scam payment identifiers are not in
	// any curated list, so the default is UPI.
	return models.CategoryUpiID
}
