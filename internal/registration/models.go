package registration

import "chalak/internal/calendar"

// Submission is the raw signup form as entered by the citizen. It exists
// only for the duration of one validation pass and is never persisted.
type Submission struct {
	FirstName          string
	MiddleName         string
	LastName           string
	FullNameDevanagari string
	DOBAD              string
	DOBBS              string
	// DOBSource tags which calendar the citizen actually typed the date
	// of birth in; the other representation is derived.
	DOBSource       calendar.System
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
	AcceptedTerms   bool
}

// Normalized is a submission that passed every rule: strings trimmed, both
// calendar representations of the date of birth present, age derived.
type Normalized struct {
	FirstName          string
	MiddleName         string
	LastName           string
	FullNameDevanagari string
	DOBAD              string
	DOBBS              string
	Email              string
	Phone              string
	Password           string
	Age                int
}

// Metadata renders the profile attributes handed to the account-creation
// collaborator alongside the credentials.
func (n Normalized) Metadata() map[string]string {
	return map[string]string{
		"first_name":       n.FirstName,
		"middle_name":      n.MiddleName,
		"last_name":        n.LastName,
		"full_name_nepali": n.FullNameDevanagari,
		"dob_ad":           n.DOBAD,
		"dob_bs":           n.DOBBS,
		"phone":            n.Phone,
	}
}

// Rule identifies one validation rule of the signup pipeline. The pipeline
// reports the first rule that failed, never a collection.
type Rule string

const (
	RuleNameRequired      Rule = "name_required"
	RuleDOBRequired       Rule = "dob_required"
	RuleLocalNameRequired Rule = "local_name_required"
	RuleLocalNameScript   Rule = "local_name_script"
	RuleDOBInvalid        Rule = "dob_invalid"
	RuleUnderage          Rule = "underage"
	RuleEmailInvalid      Rule = "email_invalid"
	RulePhoneInvalid      Rule = "phone_invalid"
	RulePasswordTooShort  Rule = "password_too_short"
	RulePasswordMismatch  Rule = "password_mismatch"
	RuleTermsNotAccepted  Rule = "terms_not_accepted"
)

// ruleMessages holds the one fixed, user-facing message per rule.
var ruleMessages = map[Rule]string{
	RuleNameRequired:      "Please enter your first and last name.",
	RuleDOBRequired:       "Please enter your date of birth in AD or BS.",
	RuleLocalNameRequired: "Please enter your full name in Nepali.",
	RuleLocalNameScript:   "Full name in Nepali must use Devanagari characters only.",
	RuleDOBInvalid:        "Please enter a valid date of birth.",
	RuleUnderage:          "You must be at least 18 years old to create an account.",
	RuleEmailInvalid:      "Please enter a valid email address.",
	RulePhoneInvalid:      "Please enter a valid Nepali phone number (e.g. 98XXXXXXXX or 01XXXXXXX).",
	RulePasswordTooShort:  "Password must be at least 6 characters long.",
	RulePasswordMismatch:  "Password and confirm password do not match.",
	RuleTermsNotAccepted:  "You must agree to the terms and conditions related to the online written exam and driving rules.",
}

// Message returns the fixed user-facing text for the rule.
func (r Rule) Message() string {
	return ruleMessages[r]
}

// Violation reports the first failed rule of a validation pass.
type Violation struct {
	Rule Rule
}

func (v *Violation) Error() string {
	return string(v.Rule) + ": " + v.Rule.Message()
}
