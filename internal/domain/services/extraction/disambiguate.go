package extraction

import (
	"strings"

	"scamtrap-lab/internal/domain/models"
)

// span is a half-open byte range in the scanned text.
type span struct {
	start, end int
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// resolver walks the candidate sets in priority order and applies the
// cross-category rejection rules, so every accepted entity claims its
// source span for exactly one category.
type resolver struct {
	text     string
	turn     int
	entities []models.Entity
	seen     map[models.EntityCategory]map[string]bool

	urlSpans      []span
	atSpans       []span
	ifscSpans     []span
	refSpans      []span
	atNameParts   map[string]bool // local parts and domains of accepted @-tokens
	acceptedPhone map[string]bool // normalized phone digits
	acceptedOrgs  map[string]bool // lowercased organization mentions
}

func newResolver(text string, turn int) *resolver {
	return &resolver{
		text:          text,
		turn:          turn,
		seen:          make(map[models.EntityCategory]map[string]bool),
		atNameParts:   make(map[string]bool),
		acceptedPhone: make(map[string]bool),
		acceptedOrgs:  make(map[string]bool),
	}
}

// accept records an entity unless the category already holds the
// normalized value for this message.
func (r *resolver) accept(c models.EntityCategory, raw, normalized string) bool {
	if normalized == "" {
		return false
	}
	if r.seen[c] == nil {
		r.seen[c] = make(map[string]bool)
	}
	if r.seen[c][normalized] {
		return false
	}
	r.seen[c][normalized] = true
	r.entities = append(r.entities, models.Entity{
		Category:       c,
		RawText:        raw,
		NormalizedText: normalized,
		SourceTurn:     r.turn,
	})
	return true
}

func overlapsAny(s span, spans []span) bool {
	for _, o := range spans {
		if s.overlaps(o) {
			return true
		}
	}
	return false
}

func (r *resolver) resolveURLs() {
	for _, c := range urlCandidates(r.text) {
		r.accept(models.CategoryPhishingURL, c.RawText, c.Normalized)
		// Installer/executable downloads are reported in both categories.
		if isExecutableLink(c.Normalized) {
			r.accept(models.CategoryMalwareLink, c.RawText, c.Normalized)
		}
		r.urlSpans = append(r.urlSpans, span{c.Start, c.End})
	}
}

func (r *resolver) resolveAtTokens() {
	for _, c := range atTokenCandidates(r.text) {
		s := span{c.Start, c.End}
		if overlapsAny(s, r.urlSpans) {
			continue
		}
		cat := classifyAtToken(c.Normalized)
		if !r.accept(cat, c.RawText, c.Normalized) {
			continue
		}
		r.atSpans = append(r.atSpans, s)
		if parts := strings.SplitN(c.Normalized, "@", 2); len(parts) == 2 {
			r.atNameParts[parts[0]] = true
			r.atNameParts[strings.TrimSuffix(parts[1], ".")] = true
		}
	}
}

func (r *resolver) resolveIfscCodes() {
	for _, loc := range ifscRegex.FindAllStringIndex(r.text, -1) {
		s := span{loc[0], loc[1]}
		if overlapsAny(s, r.urlSpans) || overlapsAny(s, r.atSpans) {
			continue
		}
		raw := r.text[loc[0]:loc[1]]
		r.accept(models.CategoryIfscCode, raw, raw)
		r.ifscSpans = append(r.ifscSpans, s)
	}
}

func (r *resolver) resolveAmounts() {
	for _, loc := range amountRegex.FindAllStringIndex(r.text, -1) {
		raw := r.text[loc[0]:loc[1]]
		r.accept(models.CategoryMonetaryAmount, raw, strings.TrimSpace(raw))
	}
}

func (r *resolver) resolveOrganizations() {
	for _, loc := range organizationRegex.FindAllStringIndex(r.text, -1) {
		raw := strings.TrimSpace(r.text[loc[0]:loc[1]])
		if raw == "" {
			continue
		}
		if r.accept(models.CategoryOrganization, raw, raw) {
			r.acceptedOrgs[strings.ToLower(raw)] = true
		}
	}
}

func (r *resolver) resolveRemoteAccessTools() {
	for _, loc := range remoteAccessRegex.FindAllStringIndex(r.text, -1) {
		raw := r.text[loc[0]:loc[1]]
		r.accept(models.CategoryRemoteAccessTool, raw, strings.ToLower(strings.TrimSpace(raw)))
	}
}

func (r *resolver) resolveKeywords() {
	lowered := strings.ToLower(r.text)
	for _, phrase := range SuspiciousPhrases {
		if strings.Contains(lowered, phrase) {
			r.accept(models.CategorySuspiciousKeyword, phrase, phrase)
		}
	}
}

func (r *resolver) resolveTelegramHandles() {
	for _, m := range telegramRegex.FindAllStringSubmatchIndex(r.text, -1) {
		s := span{m[0], m[1]}
		// "@name" inside user@handler is the handler, not a username.
		if overlapsAny(s, r.atSpans) {
			continue
		}
		name := r.text[m[2]:m[3]]
		lower := strings.ToLower(name)
		if telegramFalsePositives[lower] || r.acceptedOrgs[lower] || r.atNameParts[lower] {
			continue
		}
		r.accept(models.CategoryTelegramHandle, r.text[m[0]:m[1]], "@"+name)
	}
}

func (r *resolver) resolveReferenceCodes() {
	type labeled struct {
		re  interface{ FindAllStringSubmatchIndex(string, int) [][]int }
		cat models.EntityCategory
	}
	for _, l := range []labeled{
		{caseIDRegex, models.CategoryCaseID},
		{policyNoRegex, models.CategoryPolicyNumber},
		{orderIDRegex, models.CategoryOrderID},
	} {
		for _, m := range l.re.FindAllStringSubmatchIndex(r.text, -1) {
			s := span{m[0], m[1]}
			if overlapsAny(s, r.urlSpans) || overlapsAny(s, r.atSpans) || overlapsAny(s, r.ifscSpans) {
				continue
			}
			code := r.text[m[2]:m[3]]
			// The digit requirement keeps ordinary words out of the
			// reference categories.
			if !anyDigitRegex.MatchString(code) {
				continue
			}
			raw := r.text[m[0]:m[1]]
			norm := strings.ToUpper(strings.TrimSpace(raw))
			// A space-separated label is the English word, not part of the
			// code itself.
			if strings.ContainsAny(raw, " \t") {
				norm = strings.ToUpper(code)
			}
			if r.accept(l.cat, raw, norm) {
				r.refSpans = append(r.refSpans, s)
			}
		}
	}

	// Bare alphanumeric codes not claimed by any labeled or structural
	// pattern default to the case-id category.
	for _, loc := range bareCodeRegex.FindAllStringIndex(r.text, -1) {
		s := span{loc[0], loc[1]}
		if overlapsAny(s, r.urlSpans) || overlapsAny(s, r.atSpans) ||
			overlapsAny(s, r.ifscSpans) || overlapsAny(s, r.refSpans) {
			continue
		}
		raw := r.text[loc[0]:loc[1]]
		r.accept(models.CategoryCaseID, raw, strings.ToUpper(raw))
	}
}
