/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestGetImplicitDateRange_year(t *testing.T) {
	doTestGetImplicitDateRange(t, "2020", "2021", "2006")
}

func TestGetImplicitDateRange_month(t *testing.T) {
	doTestGetImplicitDateRange(t, "2020-01", "2020-02", "2006-01")
}

func TestGetImplicitDateRange_day(t *testing.T) {
	doTestGetImplicitDateRange(t, "2020-01-01", "2020-01-02", "2006-01-02")
}

func TestGetImplicitDateRange_compactDay(t *testing.T) {
	doTestGetImplicitDateRange(t, "20200103", "20200104", "20060102")
}

func TestGetImplicitDateRange_invalid(t *testing.T) {
	for _, ds := range []string{"2020-01-0123", "not_real", "12q"} {
		_, _, err := getImplicitDateRange(ds)
		if err == nil {
			t.Fatalf("Expected error parsing %q", ds)
		}
		if !strings.Contains(err.Error(), "invalid format") {
			t.Fatalf("Should have error with invalid format: %v", err)
		}
	}
}

func doTestGetImplicitDateRange(t *testing.T, startString string, endString string, format string) {
	start, end, err := getImplicitDateRange(startString)
	if err != nil {
		t.Fatalf("getImplicitDateRange(%q): %v", startString, err)
	}

	expectedStart, err := time.Parse(format, startString)
	if err != nil {
		t.Fatalf("Constructing expectedStart: %v", err)
	}

	expectedEnd, err := time.Parse(format, endString)
	if err != nil {
		t.Fatalf("Constructing expectedEnd: %v", err)
	}

	if start != expectedStart {
		t.Fatalf("Expected start to be %q, got %q", expectedStart, start)
	}

	if end != expectedEnd {
		t.Fatalf("Expected end to be %q, got %q", expectedEnd, end)
	}
}

func TestGetExplicitDateRange_valid(t *testing.T) {
	start, end, err := getExplicitDateRange("2020", "2020-02-01")
	if err != nil {
		t.Fatalf("getExplicitDateRange(): %v", err)
	}
	if want := date(2020, 1, 1); start != want {
		t.Errorf("start = %v, want %v", start, want)
	}
	if want := date(2020, 2, 1); end != want {
		t.Errorf("end = %v, want %v", end, want)
	}
}

func TestGetExplicitDateRange_invalid(t *testing.T) {
	_, _, err := getExplicitDateRange("2020", "abc")
	if err == nil {
		t.Fatalf("Expected error when parsing invalid datestring")
	}
}

func TestParseDatestring_relative(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)
	tests := []struct {
		input string
		want  time.Time
	}{
		{"30d", date(2024, 2, 14)},
		{"2w", date(2024, 3, 1)},
		{"6m", date(2023, 9, 15)},
		{"1y", date(2023, 3, 15)},
	}

	for _, tc := range tests {
		pd, err := parseDatestring(tc.input, now)
		if err != nil {
			t.Errorf("parseDatestring(%q) returned error: %v", tc.input, err)
			continue
		}
		if pd.Date != tc.want || pd.Year || pd.Month || pd.Day {
			t.Errorf("parseDatestring(%q) = %+v, want %v", tc.input, pd, tc.want)
		}
	}
}

func TestExpandWeeks(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	got, err := expandWeeks([]string{"2024-02", "20240105", "2w", "20240202"}, now)
	if err != nil {
		t.Fatalf("expandWeeks(): %v", err)
	}
	want := []time.Time{
		date(2024, 1, 5),
		date(2024, 2, 2), date(2024, 2, 9), date(2024, 2, 16), date(2024, 2, 23),
		date(2024, 3, 1), date(2024, 3, 8), date(2024, 3, 15),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expandWeeks() = %v, want %v", got, want)
	}
}

func TestExpandWeeks_capsAtNow(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	got, err := expandWeeks([]string{"2024"}, now)
	if err != nil {
		t.Fatalf("expandWeeks(): %v", err)
	}
	if want := []time.Time{date(2024, 1, 5)}; !reflect.DeepEqual(got, want) {
		t.Errorf("expandWeeks() = %v, want %v", got, want)
	}
}

func TestExpandMonths(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	got, err := expandMonths([]string{"2023-11", "20240110", "1m"}, now)
	if err != nil {
		t.Fatalf("expandMonths(): %v", err)
	}
	want := []time.Time{date(2023, 11, 1), date(2024, 1, 1), date(2024, 2, 1), date(2024, 3, 1)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expandMonths() = %v, want %v", got, want)
	}

	if _, err := expandMonths([]string{"soon"}, now); err == nil {
		t.Error("expandMonths(soon) returned nil error")
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
