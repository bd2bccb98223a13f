package support

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/qrloc/internal/testutil"
	"github.com/MeKo-Tech/qrloc/internal/utils"
)

// fileRecord mirrors the scan command's per-file JSON output.
type fileRecord struct {
	File    string            `json:"file"`
	Error   string            `json:"error"`
	Markers []json.RawMessage `json:"markers"`
	Corners *json.RawMessage  `json:"corners"`
}

// RegisterScanSteps registers step definitions for the scan command.
func (tc *TestContext) RegisterScanSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a frame "([^"]*)" with three finder patterns$`, tc.createThreeMarkerFrame)
	sc.Step(`^a blank frame "([^"]*)"$`, tc.createBlankFrame)
	sc.Step(`^I scan "([^"]*)"$`, tc.scanFile)
	sc.Step(`^I scan "([^"]*)" with text output$`, tc.scanFileText)
	sc.Step(`^I scan "([^"]*)" writing rectified images$`, tc.scanFileRectified)
	sc.Step(`^I run the scan command without arguments$`, tc.scanNoArgs)
	sc.Step(`^the command should succeed$`, tc.commandSucceeds)
	sc.Step(`^the command should fail$`, tc.commandFails)
	sc.Step(`^the output should contain "([^"]*)"$`, tc.outputContains)
	sc.Step(`^the JSON output should report (\d+) markers$`, tc.jsonReportsMarkers)
	sc.Step(`^the JSON output should include resolved corners$`, tc.jsonIncludesCorners)
	sc.Step(`^the JSON output should report a file error$`, tc.jsonReportsFileError)
	sc.Step(`^a rectified image "([^"]*)" should exist$`, tc.rectifiedExists)
}

func (tc *TestContext) createThreeMarkerFrame(name string) error {
	img := testutil.PatternImage(90, 90, 2,
		image.Pt(10, 10), image.Pt(60, 10), image.Pt(10, 60))
	return utils.SaveImage(img, tc.TempPath(name))
}

func (tc *TestContext) createBlankFrame(name string) error {
	return utils.SaveImage(testutil.PatternImage(32, 32, 1), tc.TempPath(name))
}

func (tc *TestContext) scanFile(name string) error {
	tc.RunScan(nil, tc.TempPath(name))
	return nil
}

func (tc *TestContext) scanFileText(name string) error {
	tc.RunScan([]string{"--format", "text"}, tc.TempPath(name))
	return nil
}

func (tc *TestContext) scanFileRectified(name string) error {
	tc.RunScan([]string{"--rectified-dir", tc.TempPath("rectified")}, tc.TempPath(name))
	return nil
}

func (tc *TestContext) scanNoArgs() error {
	tc.RunScan(nil)
	return nil
}

func (tc *TestContext) commandSucceeds() error {
	if tc.LastError != nil {
		return fmt.Errorf("expected success, got error: %v\noutput: %s", tc.LastError, tc.LastOutput)
	}
	return nil
}

func (tc *TestContext) commandFails() error {
	if tc.LastError == nil {
		return fmt.Errorf("expected failure, command succeeded\noutput: %s", tc.LastOutput)
	}
	return nil
}

func (tc *TestContext) outputContains(expected string) error {
	if !strings.Contains(tc.LastOutput, expected) {
		return fmt.Errorf("output does not contain %q:\n%s", expected, tc.LastOutput)
	}
	return nil
}

// jsonRecords parses the command output as the scan command's JSON array.
// Structured log lines precede the array, so parsing starts at the first '['.
func (tc *TestContext) jsonRecords() ([]fileRecord, error) {
	start := strings.Index(tc.LastOutput, "[")
	if start < 0 {
		return nil, fmt.Errorf("no JSON array in output:\n%s", tc.LastOutput)
	}
	var records []fileRecord
	if err := json.Unmarshal([]byte(tc.LastOutput[start:]), &records); err != nil {
		return nil, fmt.Errorf("failed to parse JSON output: %w\n%s", err, tc.LastOutput)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty result array:\n%s", tc.LastOutput)
	}
	return records, nil
}

func (tc *TestContext) jsonReportsMarkers(count int) error {
	records, err := tc.jsonRecords()
	if err != nil {
		return err
	}
	if got := len(records[0].Markers); got != count {
		return fmt.Errorf("expected %d markers, got %d:\n%s", count, got, tc.LastOutput)
	}
	return nil
}

func (tc *TestContext) jsonIncludesCorners() error {
	records, err := tc.jsonRecords()
	if err != nil {
		return err
	}
	if records[0].Corners == nil {
		return fmt.Errorf("expected corners in output:\n%s", tc.LastOutput)
	}
	return nil
}

func (tc *TestContext) jsonReportsFileError() error {
	records, err := tc.jsonRecords()
	if err != nil {
		return err
	}
	if records[0].Error == "" {
		return fmt.Errorf("expected a file error in output:\n%s", tc.LastOutput)
	}
	return nil
}

func (tc *TestContext) rectifiedExists(name string) error {
	path := tc.TempPath("rectified/" + name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("rectified image %s not found: %w", path, err)
	}
	return nil
}
