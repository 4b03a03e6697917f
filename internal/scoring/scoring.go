// Package scoring merges the domain, structure, content and reputation
// signals into a graded verdict. Score is a pure function: no I/O, no
// side effects, fully determined by its inputs.
package scoring

import (
	"strings"

	"github.com/phishguard/phishguard/internal/domaincheck"
	"github.com/phishguard/phishguard/internal/reputation"
)

// Level is the tri-level verdict grade.
type Level string

const (
	LevelSafe       Level = "SAFE"
	LevelSuspicious Level = "SUSPICIOUS"
	LevelDangerous  Level = "DANGEROUS"
)

// Verdict is the terminal artifact of a URL analysis. Immutable once
// produced; cached and returned verbatim to callers.
type Verdict struct {
	URL             string              `json:"url"`
	Domain          string              `json:"domain"`
	Level           Level               `json:"level"`
	Confidence      float64             `json:"confidence"`
	RiskScore       int                 `json:"risk_score"`
	Issues          []string            `json:"issues"`
	Recommendations []string            `json:"recommendations"`
	DomainRecord    *domaincheck.Record `json:"domain_record,omitempty"`
	Reputation      reputation.Summary  `json:"reputation"`
}

// Score computes the verdict for a URL from the three analyzer outputs.
//
// The risk score is additive with no early exit: every penalty that applies
// is applied, so the score is monotonically non-decreasing in each input.
// An unknown domain age contributes nothing — lack of evidence is not
// treated as danger.
func Score(url string, rec *domaincheck.Record, structureIssues, contentIssues []string, rep reputation.Summary) *Verdict {
	v := &Verdict{
		URL:        url,
		Reputation: rep,
	}

	issues := []string{}
	risk := 0

	if rec != nil {
		v.Domain = rec.Domain
		v.DomainRecord = rec
		issues = append(issues, rec.Issues...)

		if !rec.IsLegitimate {
			risk += 40
		}
		if rec.TyposquatScore > 0 {
			risk += min(rec.TyposquatScore, 30)
		}
		if rec.DomainAgeDays != nil {
			switch {
			case *rec.DomainAgeDays < 7:
				risk += 30
			case *rec.DomainAgeDays < 30:
				risk += 15
			}
		}
		if !rec.TLSValid {
			risk += 20
		}
		if rec.SuspiciousTLD {
			risk += 15
		}
	}

	issues = append(issues, structureIssues...)
	issues = append(issues, contentIssues...)

	risk += 100 - rep.SafetyScore
	risk += len(issues) * 5

	v.RiskScore = risk
	v.Issues = issues
	v.Level, v.Confidence = grade(risk)
	v.Recommendations = recommendations(v.Level, rec)
	return v
}

// grade maps the accumulated risk score to a level and confidence.
// Boundaries are exact: 69 is SUSPICIOUS, 70 is DANGEROUS.
func grade(risk int) (Level, float64) {
	r := float64(risk)
	switch {
	case risk >= 70:
		return LevelDangerous, min(95, 70+(r-70)*0.5)
	case risk >= 30:
		return LevelSuspicious, min(85, 50+(r-30)*0.875)
	default:
		return LevelSafe, max(60, 100-r*2)
	}
}

func recommendations(level Level, rec *domaincheck.Record) []string {
	var recs []string

	switch level {
	case LevelDangerous:
		recs = append(recs,
			"🚨 DO NOT CLICK this link",
			"Report this link as phishing",
			"Delete the message containing this link",
		)
	case LevelSuspicious:
		recs = append(recs,
			"⚠️ Exercise extreme caution",
			"Verify the sender's identity",
			"Check the legitimate website directly",
		)
	default:
		recs = append(recs,
			"✅ Link appears safe",
			"Always verify meeting invitations through official channels",
		)
	}

	if rec != nil && !rec.IsLegitimate {
		if example := legitimateExample(rec.Domain); example != "" {
			recs = append(recs, "Legitimate links look like: "+example)
		}
	}
	return recs
}

// legitimateExample names a real meeting URL for the service family the
// domain appears to imitate, by the same keyword rule the domain checker
// uses for its nearest-analog issue.
func legitimateExample(domain string) string {
	switch {
	case strings.Contains(domain, "meet") || strings.Contains(domain, "google"):
		return "https://meet.google.com/abc-defg-hij"
	case strings.Contains(domain, "zoom"):
		return "https://zoom.us/j/1234567890"
	case strings.Contains(domain, "teams") || strings.Contains(domain, "microsoft"):
		return "https://teams.microsoft.com/l/meetup-join/..."
	}
	return ""
}
