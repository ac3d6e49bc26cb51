package registration

import (
	"context"
	"strings"

	"chalak/internal/calendar"
	"chalak/pkg/requestcontext"
)

const minimumAge = 18

// ruleCheck inspects a trimmed submission and reports a violation, or nil to
// let the chain continue. Checks run strictly in order and the first
// violation wins.
type ruleCheck func(ctx context.Context, s *Submission) *Violation

// Pipeline runs the signup validation chain. The zero value is not usable;
// construct it with NewPipeline.
type Pipeline struct {
	checks []ruleCheck
}

// NewPipeline assembles the signup rule chain in its fixed evaluation order.
func NewPipeline() *Pipeline {
	return &Pipeline{checks: []ruleCheck{
		checkNames,
		checkDOBPresent,
		checkLocalNamePresent,
		checkLocalNameScript,
		checkDOBValidAndAdult,
		checkEmail,
		checkPhone,
		checkPasswordLength,
		checkPasswordsMatch,
		checkTerms,
	}}
}

// Validate trims the submission, evaluates the rule chain and, on success,
// returns the normalized form with both calendar representations of the date
// of birth filled in. On failure the normalized value is zero and the
// violation names the first rule that failed.
func (p *Pipeline) Validate(ctx context.Context, s Submission) (Normalized, *Violation) {
	trimSubmission(&s)

	for _, check := range p.checks {
		if v := check(ctx, &s); v != nil {
			return Normalized{}, v
		}
	}

	today := calendar.FromTime(requestcontext.Now(ctx))
	age, _ := calendar.AgeFromString(s.DOBAD, today)

	return Normalized{
		FirstName:          s.FirstName,
		MiddleName:         s.MiddleName,
		LastName:           s.LastName,
		FullNameDevanagari: s.FullNameDevanagari,
		DOBAD:              s.DOBAD,
		DOBBS:              s.DOBBS,
		Email:              s.Email,
		Phone:              s.Phone,
		Password:           s.Password,
		Age:                age,
	}, nil
}

func trimSubmission(s *Submission) {
	s.FirstName = strings.TrimSpace(s.FirstName)
	s.MiddleName = strings.TrimSpace(s.MiddleName)
	s.LastName = strings.TrimSpace(s.LastName)
	s.FullNameDevanagari = strings.TrimSpace(s.FullNameDevanagari)
	s.DOBAD = strings.TrimSpace(s.DOBAD)
	s.DOBBS = strings.TrimSpace(s.DOBBS)
	s.Email = strings.TrimSpace(s.Email)
	s.Phone = strings.TrimSpace(s.Phone)
}

func checkNames(_ context.Context, s *Submission) *Violation {
	if s.FirstName == "" || s.LastName == "" {
		return &Violation{Rule: RuleNameRequired}
	}
	return nil
}

func checkDOBPresent(_ context.Context, s *Submission) *Violation {
	if s.DOBAD == "" && s.DOBBS == "" {
		return &Violation{Rule: RuleDOBRequired}
	}
	return nil
}

func checkLocalNamePresent(_ context.Context, s *Submission) *Violation {
	if s.FullNameDevanagari == "" {
		return &Violation{Rule: RuleLocalNameRequired}
	}
	return nil
}

func checkLocalNameScript(_ context.Context, s *Submission) *Violation {
	if !ValidDevanagariName(s.FullNameDevanagari) {
		return &Violation{Rule: RuleLocalNameScript}
	}
	return nil
}

// checkDOBValidAndAdult resolves the date of birth in both calendars, writing
// the derived representation back into the submission so the success path can
// persist the pair. A date the converter cannot place is invalid; a valid
// date under the minimum age is underage.
func checkDOBValidAndAdult(ctx context.Context, s *Submission) *Violation {
	switch {
	case s.DOBSource == calendar.SystemBS && s.DOBBS != "":
		ad, err := calendar.ConvertString(s.DOBBS, calendar.SystemBS)
		if err != nil {
			return &Violation{Rule: RuleDOBInvalid}
		}
		s.DOBAD = ad
	case s.DOBAD != "":
		bs, err := calendar.ConvertString(s.DOBAD, calendar.SystemAD)
		if err != nil {
			return &Violation{Rule: RuleDOBInvalid}
		}
		s.DOBBS = bs
	default:
		return &Violation{Rule: RuleDOBInvalid}
	}

	today := calendar.FromTime(requestcontext.Now(ctx))
	age, err := calendar.AgeFromString(s.DOBAD, today)
	if err != nil {
		return &Violation{Rule: RuleDOBInvalid}
	}
	if age < minimumAge {
		return &Violation{Rule: RuleUnderage}
	}
	return nil
}

func checkEmail(_ context.Context, s *Submission) *Violation {
	if !ValidEmail(s.Email) {
		return &Violation{Rule: RuleEmailInvalid}
	}
	return nil
}

func checkPhone(_ context.Context, s *Submission) *Violation {
	if !ValidPhone(s.Phone) {
		return &Violation{Rule: RulePhoneInvalid}
	}
	return nil
}

func checkPasswordLength(_ context.Context, s *Submission) *Violation {
	if !ValidPasswordLength(s.Password) {
		return &Violation{Rule: RulePasswordTooShort}
	}
	return nil
}

func checkPasswordsMatch(_ context.Context, s *Submission) *Violation {
	if s.Password != s.ConfirmPassword {
		return &Violation{Rule: RulePasswordMismatch}
	}
	return nil
}

func checkTerms(_ context.Context, s *Submission) *Violation {
	if !s.AcceptedTerms {
		return &Violation{Rule: RuleTermsNotAccepted}
	}
	return nil
}
