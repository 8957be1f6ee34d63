package gstime

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Gradescope uses a cursed date format that strftime-style layouts
// cannot express, since the day of the month is not zero-padded while
// the clock is:
//
//	Sep 3 2021 08:08 PM
//
// The month table is fixed so encoding stays locale-invariant no matter
// where the process runs.
var months = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed gradescope date: %q", e.Input)
}

func Encode(t time.Time) string {
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	ampm := "AM"
	if t.Hour() >= 12 {
		ampm = "PM"
	}
	return fmt.Sprintf(
		"%s %d %04d %02d:%02d %s",
		months[int(t.Month())-1], t.Day(), t.Year(),
		hour, t.Minute(), ampm,
	)
}

var dateRegex = regexp.MustCompile(`^([A-Z][a-z]{2}) (\d{1,2}) (\d{4}) (\d{2}):(\d{2}) (AM|PM)$`)

// Decode is the inverse of Encode. It accepts exactly the strings Encode
// produces and nothing else, returning *FormatError on any deviation.
func Decode(s string) (time.Time, error) {
	groups := dateRegex.FindStringSubmatch(s)
	if groups == nil {
		return time.Time{}, &FormatError{Input: s}
	}

	month := 0
	for i, m := range months {
		if m == groups[1] {
			month = i + 1
			break
		}
	}
	if month == 0 {
		return time.Time{}, &FormatError{Input: s}
	}

	// the day is never zero-padded on the wire
	if len(groups[2]) > 1 && groups[2][0] == '0' {
		return time.Time{}, &FormatError{Input: s}
	}

	day, _ := strconv.Atoi(groups[2])
	year, _ := strconv.Atoi(groups[3])
	hour, _ := strconv.Atoi(groups[4])
	minute, _ := strconv.Atoi(groups[5])
	if hour < 1 || hour > 12 || minute > 59 {
		return time.Time{}, &FormatError{Input: s}
	}

	hour = hour % 12
	if groups[6] == "PM" {
		hour += 12
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local)

	// time.Date normalizes out-of-range days (Feb 31 -> Mar 3), so a
	// re-encode mismatch means the input named a day that doesn't exist
	if Encode(t) != s {
		return time.Time{}, &FormatError{Input: s}
	}
	return t, nil
}
