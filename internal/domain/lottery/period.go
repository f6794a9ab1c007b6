package lottery

import "time"

// DateLayout is the calendar date format used at every boundary.
const DateLayout = "2006-01-02"

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, raw, time.UTC)
}

// ActiveTypes returns the types whose period boundary falls on date. DAILY is
// always present, so the result is never empty.
func ActiveTypes(date time.Time) []Type {
	date = Date(date)
	out := make([]Type, 0, len(AllTypes))
	out = append(out, TypeDaily)
	if date.Weekday() == time.Monday {
		out = append(out, TypeWeekly)
	}
	if date.Day() == 1 {
		out = append(out, TypeMonthly)
		if date.Month() == time.January {
			out = append(out, TypeYearly)
		}
	}
	return out
}

// NextOccurrence returns the start date of the next period of t after from.
func NextOccurrence(t Type, from time.Time) time.Time {
	from = Date(from)
	switch t {
	case TypeWeekly:
		next := from.AddDate(0, 0, 7)
		back := (int(next.Weekday()) + 6) % 7
		return next.AddDate(0, 0, -back)
	case TypeMonthly:
		return time.Date(from.Year(), from.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	case TypeYearly:
		return time.Date(from.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return from.AddDate(0, 0, 1)
	}
}
