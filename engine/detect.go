package engine

import "strings"

// minUsefulBody is the threshold below which a 200 response is treated as a
// block shell rather than real content.
const minUsefulBody = 200

// captchaMarkers are substrings that indicate a challenge page. Matching is
// case-insensitive against the raw HTML.
var captchaMarkers = []string{
	"captcha",
	"challenge-form",
	"cf-browser-verification",
	"recaptcha",
	"hcaptcha",
	"turnstile",
}

// blockedStatuses are HTTP statuses that anti-bot layers answer with.
var blockedStatuses = map[int]bool{
	403: true,
	429: true,
	503: true,
}

// Evaluate fills the Blocked and CaptchaDetected flags on a fetch result.
// A result counts as blocked on a network failure, a blocking status code,
// or a suspiciously small 200 body. Captcha detection is independent of the
// status code: challenge pages often come back as 200.
func Evaluate(r *FetchResult) {
	if r.Err != nil {
		r.Blocked = true
	}
	if blockedStatuses[r.StatusCode] {
		r.Blocked = true
	}
	if r.StatusCode == 200 && len(r.HTML) < minUsefulBody {
		r.Blocked = true
	}
	r.CaptchaDetected = containsCaptcha(r.HTML)
}

func containsCaptcha(html string) bool {
	if html == "" {
		return false
	}
	lower := strings.ToLower(html)
	for _, marker := range captchaMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
