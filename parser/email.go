package parser

import (
	"regexp"
	"strings"
)

var emailExactPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// disposableDomains are throwaway mailbox providers; addresses there are
// useless as leads.
var disposableDomains = map[string]bool{
	"mailinator.com":        true,
	"guerrillamail.com":     true,
	"tempmail.com":          true,
	"throwaway.email":       true,
	"temp-mail.org":         true,
	"10minutemail.com":      true,
	"yopmail.com":           true,
	"sharklasers.com":       true,
	"guerrillamailblock.com": true,
}

var freeProviders = map[string]bool{
	"gmail.com":      true,
	"yahoo.com":      true,
	"hotmail.com":    true,
	"outlook.com":    true,
	"aol.com":        true,
	"icloud.com":     true,
	"mail.com":       true,
	"protonmail.com": true,
	"zoho.com":       true,
	"yandex.com":     true,
}

// IsValidEmail checks the address shape and rejects disposable domains.
func IsValidEmail(email string) bool {
	if email == "" || !emailExactPattern.MatchString(email) {
		return false
	}
	domain := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
	if disposableDomains[domain] {
		return false
	}
	return strings.Contains(domain, ".")
}

// IsBusinessEmail reports whether the address is valid and not hosted by a
// free consumer provider.
func IsBusinessEmail(email string) bool {
	if !IsValidEmail(email) {
		return false
	}
	domain := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
	return !freeProviders[domain]
}
