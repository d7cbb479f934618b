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
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ademuri/song-velocity/internal/analysis"
	"github.com/ademuri/song-velocity/internal/panel"
)

type fakeAnalyser struct {
	name   string
	result Analysis
	err    error
}

func (f fakeAnalyser) GetName() string {
	return f.name
}

func (f fakeAnalyser) GetResults(p panel.Panel) (Analysis, error) {
	return f.result, f.err
}

func emailPanel() panel.Panel {
	return panel.Panel{
		playsRow("Austin", "1", date(2024, 1, 12), 10),
		playsRow("Boston", "1", date(2024, 1, 5), 4),
	}
}

func TestGenerateEmailContent(t *testing.T) {
	config := SendEmailConfig{Artist: "The Band", ReportName: "Weekly Report"}
	table := Analysis{
		results: [][]string{{"City", "Streams"}, {"Austin", "10"}, {"São <Paulo>", "3"}},
		summary: "Found 2 cities",
	}
	actions := []Analyser{fakeAnalyser{name: "City peaks", result: table}}

	subject, body, err := generateEmailContent(config, emailPanel(), actions)
	if err != nil {
		t.Fatalf("generateEmailContent failed: %v", err)
	}

	expectedSubject := "Streaming report for The Band 2024-01-05 to 2024-01-12: Weekly Report"
	if subject != expectedSubject {
		t.Errorf("Subject mismatch.\nGot: %s\nWant: %s", subject, expectedSubject)
	}

	if !strings.Contains(body, "<h2>City peaks, weeks 2024-01-05 to 2024-01-12:</h2>") {
		t.Error("Body missing correct header with weeks")
	}
	if !strings.Contains(body, "<th>City</th>") || !strings.Contains(body, "<td>Austin</td>") {
		t.Error("Body missing table")
	}
	if !strings.Contains(body, "<td>São &lt;Paulo&gt;</td>") {
		t.Error("Body does not escape cell text")
	}
	if !strings.Contains(body, "<div>Found 2 cities</div>") {
		t.Error("Body missing summary")
	}
}

func TestGenerateEmailContentNoData(t *testing.T) {
	actions := []Analyser{fakeAnalyser{name: "Velocity", result: Analysis{summary: "No rows matched."}}}

	subject, body, err := generateEmailContent(SendEmailConfig{}, emailPanel(), actions)
	if err != nil {
		t.Fatalf("generateEmailContent failed: %v", err)
	}

	// No report name, no suffix.
	if subject != "Streaming report for artist 2024-01-05 to 2024-01-12" {
		t.Errorf("Subject = %q", subject)
	}
	if !strings.Contains(body, "No rows found") {
		t.Error("Body missing 'No rows found' message")
	}
	if strings.Contains(body, "<table>") {
		t.Error("Body should not contain a table")
	}
}

func TestGenerateEmailContentBodyOverride(t *testing.T) {
	actions := []Analyser{fakeAnalyser{name: "Lapsed cities", result: Analysis{BodyOverride: "<h3>Lapsed Cities</h3>"}}}

	_, body, err := generateEmailContent(SendEmailConfig{}, emailPanel(), actions)
	if err != nil {
		t.Fatalf("generateEmailContent failed: %v", err)
	}
	if !strings.Contains(body, "<h3>Lapsed Cities</h3>") {
		t.Error("Body missing override")
	}
}

func TestGenerateEmailContentError(t *testing.T) {
	boom := errors.New("boom")
	actions := []Analyser{fakeAnalyser{name: "Stickiness", err: boom}}

	_, _, err := generateEmailContent(SendEmailConfig{}, emailPanel(), actions)
	if !errors.Is(err, boom) {
		t.Errorf("generateEmailContent error = %v, want %v", err, boom)
	}
}

func TestGetActionFromName(t *testing.T) {
	engine := analysis.New(fakeReleases{}, analysis.DefaultConfig(), logger)
	for _, name := range []string{"city-peaks", "song-adoption", "stickiness", "listener-ratio", "velocity", "lapsed", "top-cities"} {
		if _, err := getActionFromName(name, engine); err != nil {
			t.Errorf("getActionFromName(%q) error: %v", name, err)
		}
	}
	if _, err := getActionFromName("top-artists", engine); err == nil {
		t.Error("getActionFromName(top-artists) succeeded, want error")
	}

	action, _ := getActionFromName("lapsed", engine)
	configurable, ok := action.(Configurable)
	if !ok {
		t.Fatal("lapsed is not Configurable")
	}
	if err := configurable.Configure(map[string]string{"quiet_weeks": "6"}); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if got := action.(*LapsedAnalyzer).Config.QuietWeeks; got != 6 {
		t.Errorf("QuietWeeks = %d, want 6", got)
	}
}

func TestParseParams(t *testing.T) {
	got := parseParams([]string{"n=5,song=1", ""}, 3)
	want := []map[string]string{{"n": "5", "song": "1"}, {}, nil}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseParams() = %v, want %v", got, want)
	}
}
