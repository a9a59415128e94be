package extraction

import (
	"sort"
	"strconv"
	"strings"

	"scamtrap-lab/internal/domain/models"
)

// digitRun is one maximal run of digits (with separators) in the text.
type digitRun struct {
	raw    string
	digits string
	span   span
}

// resolveDigitRuns assigns phone-number and bank-account categories over
// the shared digit-run candidate pool. Phones resolve first so the bank
// rejection rules can consult the complete phone set; banks then resolve
// longest-run-first so shorter values embedded in an accepted longer run
// are suppressed instead of double counted.
func (r *resolver) resolveDigitRuns() {
	runs := r.collectDigitRuns()

	phoneRuns := make(map[int]bool)
	for i, run := range runs {
		norm, ok := phoneFromDigits(run.digits)
		if !ok {
			continue
		}
		phoneRuns[i] = true
		r.acceptedPhone[norm] = true
		r.accept(models.CategoryPhoneNumber, run.raw, norm)
	}

	// WhatsApp-labelled numbers are phones even when the surrounding run
	// picked up stray digits.
	for _, m := range whatsappRegex.FindAllStringSubmatchIndex(r.text, -1) {
		raw := r.text[m[2]:m[3]]
		digits := stripNonDigits(raw)
		if len(digits) == 10 {
			r.acceptedPhone[digits] = true
			r.accept(models.CategoryPhoneNumber, raw, digits)
		}
	}

	order := make([]int, 0, len(runs))
	for i := range runs {
		order = append(order, i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(runs[order[a]].digits) > len(runs[order[b]].digits)
	})

	var bankSpans []span
	for _, i := range order {
		if phoneRuns[i] {
			continue
		}
		run := runs[i]
		if overlapsAny(run.span, bankSpans) {
			continue
		}
		if rejectBankDigits(run.digits, r.acceptedPhone) {
			continue
		}
		if r.accept(models.CategoryBankAccount, run.raw, run.digits) {
			bankSpans = append(bankSpans, run.span)
		}
	}
}

// collectDigitRuns finds the candidate runs, skipping digits that belong
// to URLs, @-tokens or IFSC codes.
func (r *resolver) collectDigitRuns() []digitRun {
	var runs []digitRun
	for _, loc := range digitRunRegex.FindAllStringIndex(r.text, -1) {
		s := span{loc[0], loc[1]}
		if overlapsAny(s, r.urlSpans) || overlapsAny(s, r.atSpans) || overlapsAny(s, r.ifscSpans) {
			continue
		}
		raw := r.text[loc[0]:loc[1]]
		digits := stripNonDigits(raw)
		if len(digits) > 18 {
			// Oversized runs are usually several values glued together by
			// separators; process each chunk on its own.
			runs = append(runs, splitRun(raw, loc[0])...)
			continue
		}
		runs = append(runs, digitRun{raw: raw, digits: digits, span: s})
	}
	return runs
}

// splitRun breaks an oversized run into its separator-delimited chunks.
func splitRun(raw string, offset int) []digitRun {
	var runs []digitRun
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		chunk := raw[start:end]
		runs = append(runs, digitRun{
			raw:    chunk,
			digits: chunk,
			span:   span{offset + start, offset + end},
		})
		start = -1
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(raw))
	return runs
}

// phoneFromDigits classifies a digit string as an Indian mobile or
// toll-free number, returning the normalized form.
func phoneFromDigits(d string) (string, bool) {
	switch {
	case len(d) == 10 && d[0] >= '6' && d[0] <= '9':
		return d, true
	case len(d) == 11 && d[0] == '0' && d[1] >= '6' && d[1] <= '9':
		return d[1:], true
	case len(d) == 12 && strings.HasPrefix(d, "91") && d[2] >= '6' && d[2] <= '9':
		return d[2:], true
	case (len(d) == 10 || len(d) == 11) && strings.HasPrefix(d, "1800"):
		// Toll-free numbers keep their full digit string.
		return d, true
	}
	return "", false
}

// rejectBankDigits applies the bank-account rejection rules against the
// set of already accepted phone numbers.
func rejectBankDigits(d string, phones map[string]bool) bool {
	if len(d) < 9 || len(d) > 18 {
		return true
	}
	if phones[d] {
		return true
	}
	if strings.HasPrefix(d, "1800") {
		return true
	}
	// Country-code-prefixed variant of a known phone.
	if len(d) >= 12 && strings.HasPrefix(d, "91") && phones[d[2:]] {
		return true
	}
	// Short runs that merely wrap a known phone are phone variants, not
	// accounts.
	if len(d) <= 12 {
		for p := range phones {
			if strings.Contains(d, p) {
				return true
			}
		}
	}
	// A leading calendar year marks a reference or date code.
	if year, err := strconv.Atoi(d[:4]); err == nil && year >= 1900 && year <= 2099 {
		return true
	}
	if uniqueDigits(d) <= 2 {
		return true
	}
	return false
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func uniqueDigits(s string) int {
	var seen [10]bool
	n := 0
	for i := 0; i < len(s); i++ {
		d := s[i] - '0'
		if d < 10 && !seen[d] {
			seen[d] = true
			n++
		}
	}
	return n
}
