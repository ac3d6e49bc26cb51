package calendar

// Age computes whole years elapsed between an AD date of birth and an AD
// reference date: the year difference, minus one when the birthday has not
// yet occurred in the reference year.
func Age(dob, today Date) int {
	age := today.Year - dob.Year
	if today.Month < dob.Month || (today.Month == dob.Month && today.Day < dob.Day) {
		age--
	}
	return age
}

// AgeFromString parses dob and computes the age as of today. Malformed input
// is reported as an error, matching the validators' contract that bad input
// is a fail condition, not a panic.
func AgeFromString(dob string, today Date) (int, error) {
	parsed, err := Parse(dob)
	if err != nil {
		return 0, err
	}
	return Age(parsed, today), nil
}
