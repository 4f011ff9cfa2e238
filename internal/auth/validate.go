package auth

import "strings"

// ValidatePassword checks the password policy: at least 8 characters
// containing at least one letter and one number.
func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasLetter, hasNumber bool
	for _, char := range password {
		switch {
		case 'A' <= char && char <= 'Z', 'a' <= char && char <= 'z':
			hasLetter = true
		case '0' <= char && char <= '9':
			hasNumber = true
		}
	}
	return hasLetter && hasNumber
}

// ValidateEmail checks if an email has a valid format.
func ValidateEmail(email string) bool {
	// A very basic email validation check
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}
