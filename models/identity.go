package models

import "strings"

// Identity is the signed-in user's profile as carried by the session cookie.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Initials returns the upper-cased first letter of each word in the name.
func (i Identity) Initials() string {
	var b strings.Builder
	for _, word := range strings.Fields(i.Name) {
		for _, r := range word {
			b.WriteRune(r)
			break
		}
	}
	return strings.ToUpper(b.String())
}

// Credential is a submitted login form. It only lives for the duration of a request.
type Credential struct {
	Email      string
	Password   string
	RememberMe bool
}
