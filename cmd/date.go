package cmd

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// ParsedDate is a date string and the precision it was given with.
type ParsedDate struct {
	Date  time.Time
	Year  bool
	Month bool
	Day   bool
}

var relativeDate = regexp.MustCompile(`^(\d+)([dwmy])$`)

var dateFormats = []struct {
	pattern *regexp.Regexp
	layout  string
	set     func(*ParsedDate)
}{
	{regexp.MustCompile(`^\d{4}$`), "2006", func(d *ParsedDate) { d.Year = true }},
	{regexp.MustCompile(`^\d{4}-\d{2}$`), "2006-01", func(d *ParsedDate) { d.Month = true }},
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), "2006-01-02", func(d *ParsedDate) { d.Day = true }},
	{regexp.MustCompile(`^\d{8}$`), "20060102", func(d *ParsedDate) { d.Day = true }},
}

func parseDateRangeFromArgs(args []string) (start time.Time, end time.Time, err error) {
	switch len(args) {
	case 1:
		start, end, err = getImplicitDateRange(args[0])

	case 2:
		start, end, err = getExplicitDateRange(args[0], args[1])

	default:
		err = fmt.Errorf("expected one or two date arguments")
	}
	return
}

func getImplicitDateRange(ds string) (start time.Time, end time.Time, err error) {
	date, err := parseSingleDatestring(ds)
	if err != nil {
		return
	}

	start = date.Date
	switch {
	case date.Year:
		end = start.AddDate(1, 0, 0)

	case date.Month:
		end = start.AddDate(0, 1, 0)

	case date.Day:
		end = start.AddDate(0, 0, 1)

	default:
		// Relative dates run up to today.
		end = today(time.Now()).AddDate(0, 0, 1)
	}

	return
}

func getExplicitDateRange(startString, endString string) (start time.Time, end time.Time, err error) {
	startParsed, err := parseSingleDatestring(startString)
	if err != nil {
		return
	}
	start = startParsed.Date

	endParsed, err := parseSingleDatestring(endString)
	if err != nil {
		return
	}
	end = endParsed.Date

	return
}

func parseSingleDatestring(ds string) (ParsedDate, error) {
	return parseDatestring(ds, time.Now())
}

// parseDatestring accepts yyyy, yyyy-mm, yyyy-mm-dd, yyyymmdd, or a
// duration before now like 30d, 12w, 6m or 1y.
func parseDatestring(ds string, now time.Time) (date ParsedDate, err error) {
	for _, f := range dateFormats {
		if !f.pattern.MatchString(ds) {
			continue
		}
		date.Date, err = time.Parse(f.layout, ds)
		if err != nil {
			err = fmt.Errorf("parsing datestring %q: %w", ds, err)
			return
		}
		f.set(&date)
		return
	}

	if m := relativeDate.FindStringSubmatch(ds); m != nil {
		amount, _ := strconv.Atoi(m[1])
		base := today(now)
		switch m[2] {
		case "d":
			date.Date = base.AddDate(0, 0, -amount)
		case "w":
			date.Date = base.AddDate(0, 0, -7*amount)
		case "m":
			date.Date = base.AddDate(0, -amount, 0)
		case "y":
			date.Date = base.AddDate(-amount, 0, 0)
		}
		return
	}

	err = fmt.Errorf("invalid format: %q", ds)
	return
}

func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// expandWeeks turns configured week entries into week-ending Fridays. A
// year, month or relative entry stands for every Friday it covers up to now.
func expandWeeks(entries []string, now time.Time) ([]time.Time, error) {
	weeks := make(map[time.Time]bool)
	for _, e := range entries {
		date, err := parseDatestring(e, now)
		if err != nil {
			return nil, fmt.Errorf("week %q: %w", e, err)
		}
		if date.Day {
			if date.Date.Weekday() != time.Friday {
				logger.Warn().Str("week", e).Msg("week ending is not a Friday")
			}
			weeks[date.Date] = true
			continue
		}

		start, end := entryRange(date, now)
		for _, w := range fridaysBetween(start, end) {
			weeks[w] = true
		}
	}
	return sortedDates(weeks), nil
}

// expandMonths turns configured month entries into first days of months.
func expandMonths(entries []string, now time.Time) ([]time.Time, error) {
	months := make(map[time.Time]bool)
	for _, e := range entries {
		date, err := parseDatestring(e, now)
		if err != nil {
			return nil, fmt.Errorf("month %q: %w", e, err)
		}
		if date.Month || date.Day {
			months[firstOfMonth(date.Date)] = true
			continue
		}

		start, end := entryRange(date, now)
		for m := firstOfMonth(start); m.Before(end); m = m.AddDate(0, 1, 0) {
			months[m] = true
		}
	}
	return sortedDates(months), nil
}

// entryRange is the span of a year or relative entry, capped at now.
func entryRange(date ParsedDate, now time.Time) (time.Time, time.Time) {
	end := today(now).AddDate(0, 0, 1)
	if date.Year {
		if yearEnd := date.Date.AddDate(1, 0, 0); yearEnd.Before(end) {
			end = yearEnd
		}
	}
	if date.Month {
		if monthEnd := date.Date.AddDate(0, 1, 0); monthEnd.Before(end) {
			end = monthEnd
		}
	}
	return date.Date, end
}

// fridaysBetween returns the Fridays in [start, end).
func fridaysBetween(start, end time.Time) []time.Time {
	offset := (int(time.Friday) - int(start.Weekday()) + 7) % 7
	var out []time.Time
	for d := start.AddDate(0, 0, offset); d.Before(end); d = d.AddDate(0, 0, 7) {
		out = append(out, d)
	}
	return out
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func sortedDates(set map[time.Time]bool) []time.Time {
	out := make([]time.Time, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
