package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const washingtonCSV = `Start Time,End Time,Trip Duration,Start Station,End Station,User Type
2017-03-06 08:05:00,2017-03-06 08:15:00,600,Union Station,Dupont Circle,Subscriber
2017-03-07 09:00:00,2017-03-07 09:30:00,1800,Union Station,Eastern Market,Customer
2017-04-01 17:00:00,2017-04-01 17:10:00,600,Eastern Market,Union Station,Subscriber
`

// setup isolates HOME and the working directory, which is where the
// first candidate data path is resolved.
func setup(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.WriteFile(filepath.Join(home, "washington.csv"), []byte(washingtonCSV), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(home); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
	return home
}

// runCmd executes the root command with args and stdin, returning stdout.
func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	// Reset bound variables that persist across invocations
	anaCity, anaMonth, anaDay, anaRaw = "", "all", "all", 0
	cfgFile = ""
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	if args == nil {
		// a nil slice makes cobra fall back to os.Args
		args = []string{}
	}
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_AnalyzeWithFilters(t *testing.T) {
	setup(t)
	out, err := runCmd(t, "", "analyze", "--city", "dc", "--month", "mar", "--raw", "1")
	if err != nil {
		t.Fatalf("analyze failed: %v\n%s", err, out)
	}
	for _, want := range []string{
		"Washington (month: march, day: all): 2 trips",
		"Most Common Month: March",
		"Most Commonly Used Start Station: Union Station",
		"Total Travel Time: 40 minutes",
		"Gender data not available for this dataset.",
		"Union Station  Dupont Circle",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestCLI_AnalyzeRejectsUnknownCity(t *testing.T) {
	setup(t)
	if _, err := runCmd(t, "", "analyze", "--city", "boston"); err == nil {
		t.Fatal("expected error for unknown city")
	}
	if _, err := runCmd(t, "", "analyze", "--city", "nyc"); err == nil {
		t.Fatal("expected error for missing data file")
	}
}

func TestCLI_InteractiveSession(t *testing.T) {
	setup(t)
	script := strings.Join([]string{"washington", "both", "march", "tue", "yes", "no"}, "\n") + "\n"
	out, err := runCmd(t, script)
	if err != nil {
		t.Fatalf("interactive run failed: %v", err)
	}
	for _, want := range []string{
		"Hello! Let's explore some US bikeshare data!",
		"Most Common Day: Tuesday",
		"No more raw data to display.",
		"Thank you for using the BikeShare data analysis tool. Goodbye!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestCLI_ConfigSetShowAndMetrics(t *testing.T) {
	home := setup(t)
	path := filepath.Join(home, "cfg.yaml")
	if out, err := runCmd(t, "", "config", "set", "page_size", "9", "--config", path); err != nil {
		t.Fatalf("config set: %v\n%s", err, out)
	}
	out, err := runCmd(t, "", "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "page_size: 9") {
		t.Fatalf("config show output:\n%s", out)
	}
	if _, err := runCmd(t, "", "config", "set", "nope", "1"); err == nil {
		t.Fatal("expected error for unknown key")
	}

	prom := filepath.Join(home, "run.prom")
	if out, err := runCmd(t, "", "analyze", "--city", "w", "--metrics-file", prom); err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}
	b, err := os.ReadFile(prom)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	if !strings.Contains(string(b), `bikeshare_loads_total{city="washington",outcome="loaded"} 1`) {
		t.Fatalf("metrics content:\n%s", b)
	}
}

func TestCLI_AnalyzeAcceptsAllInAnyCase(t *testing.T) {
	setup(t)
	out, err := runCmd(t, "", "analyze", "--city", "dc", "--month", "ALL", "--day", "All")
	if err != nil {
		t.Fatalf("analyze failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Washington (month: all, day: all): 3 trips") {
		t.Fatalf("unexpected header in output:\n%s", out)
	}
}
