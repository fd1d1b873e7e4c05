// Package validate holds the pure input predicates that gate every write
// path. Each *Error function returns an empty string when the input is
// acceptable and a user-facing message otherwise; none of them ever panics
// or touches the store.
package validate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLength = 6
	minDonationAmount = 0.01
	maxDonationAmount = 1000000.0
	minCampaignGoal   = 1.0
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9+._%\-]{1,256}@[a-zA-Z0-9][a-zA-Z0-9\-]{0,64}(\.[a-zA-Z0-9][a-zA-Z0-9\-]{0,25})+$`)
	phonePattern = regexp.MustCompile(`^[+]?[(]?[0-9]{1,4}[)]?[-\s]?[0-9]{1,4}[-\s]?[0-9]{1,9}$`)
)

// IsValidEmail reports whether email matches a standard address grammar.
func IsValidEmail(email string) bool {
	return email != "" && emailPattern.MatchString(email)
}

// EmailError returns a message describing why email is invalid, or "".
func EmailError(email string) string {
	if email == "" {
		return "Email is required"
	}
	if !IsValidEmail(email) {
		return "Invalid email address"
	}
	return ""
}

// IsValidPassword reports whether password meets the minimum length.
func IsValidPassword(password string) bool {
	return len(password) >= minPasswordLength
}

// PasswordError returns a message describing why password is invalid, or "".
func PasswordError(password string) string {
	if password == "" {
		return "Password is required"
	}
	if len(password) < minPasswordLength {
		return fmt.Sprintf("Password must be at least %d characters", minPasswordLength)
	}
	return ""
}

// PasswordsMatch reports whether both values are non-empty and equal.
func PasswordsMatch(password, confirm string) bool {
	return password != "" && confirm != "" && password == confirm
}

// PasswordConfirmError returns a message describing why the confirmation is
// invalid, or "".
func PasswordConfirmError(password, confirm string) string {
	if confirm == "" {
		return "Please confirm your password"
	}
	if !PasswordsMatch(password, confirm) {
		return "Passwords do not match"
	}
	return ""
}

// IsValidName reports whether name trims to a length in [2, 100].
func IsValidName(name string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	return n >= 2 && n <= 100
}

// NameError returns a message describing why name is invalid, or "".
func NameError(name string) string {
	if name == "" {
		return "Name is required"
	}
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < 2 {
		return "Name must be at least 2 characters"
	}
	if n > 100 {
		return "Name is too long"
	}
	return ""
}

// IsValidPhone reports whether phone is empty (optional) or matches the
// accepted format.
func IsValidPhone(phone string) bool {
	if phone == "" {
		return true
	}
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

// PhoneError returns a message describing why phone is invalid, or "".
func PhoneError(phone string) string {
	if phone != "" && !IsValidPhone(phone) {
		return "Invalid phone number format"
	}
	return ""
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// IsValidDonationAmount reports whether amount falls in the accepted range.
func IsValidDonationAmount(amount float64) bool {
	return amount >= minDonationAmount && amount <= maxDonationAmount
}

// IsValidDonationAmountString reports whether s parses to an accepted amount.
func IsValidDonationAmountString(s string) bool {
	v, ok := parseAmount(s)
	return ok && IsValidDonationAmount(v)
}

// DonationAmountError returns a message describing why the amount string is
// invalid, or "".
func DonationAmountError(s string) string {
	if s == "" {
		return "Amount is required"
	}
	v, ok := parseAmount(s)
	if !ok {
		return "Invalid amount format"
	}
	if v < minDonationAmount {
		return fmt.Sprintf("Minimum donation amount is $%.2f", minDonationAmount)
	}
	if v > maxDonationAmount {
		return fmt.Sprintf("Maximum donation amount is $%.2f", maxDonationAmount)
	}
	return ""
}

// IsValidCampaignGoal reports whether goal falls in the accepted range.
func IsValidCampaignGoal(goal float64) bool {
	return goal >= minCampaignGoal && goal <= maxDonationAmount
}

// CampaignGoalError returns a message describing why the goal string is
// invalid, or "".
func CampaignGoalError(s string) string {
	if s == "" {
		return "Goal amount is required"
	}
	v, ok := parseAmount(s)
	if !ok {
		return "Invalid amount format"
	}
	if v < minCampaignGoal {
		return fmt.Sprintf("Minimum goal amount is $%.2f", minCampaignGoal)
	}
	if v > maxDonationAmount {
		return fmt.Sprintf("Maximum goal amount is $%.2f", maxDonationAmount)
	}
	return ""
}

// IsValidCampaignTitle reports whether title trims to a length in [3, 200].
func IsValidCampaignTitle(title string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	return n >= 3 && n <= 200
}

// CampaignTitleError returns a message describing why title is invalid, or "".
func CampaignTitleError(title string) string {
	if title == "" {
		return "Title is required"
	}
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n < 3 {
		return "Title must be at least 3 characters"
	}
	if n > 200 {
		return "Title is too long"
	}
	return ""
}

// IsValidCampaignDescription reports whether description trims to a length
// in [10, 5000].
func IsValidCampaignDescription(description string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(description))
	return n >= 10 && n <= 5000
}

// CampaignDescriptionError returns a message describing why description is
// invalid, or "".
func CampaignDescriptionError(description string) string {
	if description == "" {
		return "Description is required"
	}
	n := utf8.RuneCountInString(strings.TrimSpace(description))
	if n < 10 {
		return "Description must be at least 10 characters"
	}
	if n > 5000 {
		return "Description is too long"
	}
	return ""
}

var sanitizer = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// SanitizeInput trims the input and escapes characters with markup meaning
// to HTML entities.
func SanitizeInput(input string) string {
	if input == "" {
		return ""
	}
	return sanitizer.Replace(strings.TrimSpace(input))
}

// SanitizeDescription normalizes CRLF and CR line endings to LF before
// applying the same escaping as SanitizeInput, so line breaks survive.
func SanitizeDescription(input string) string {
	if input == "" {
		return ""
	}
	normalized := strings.ReplaceAll(input, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return SanitizeInput(normalized)
}
