package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/reviewlens/internal/analysis"
)

const cliFixture = `PRODUCT,SUMMARY,SENTIMENT_SCORE
Earbuds,Great sound!!,0.9
Charger,Stopped working.,-0.6
Earbuds,Too quiet,0.1
`

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Reset flag state that persists across invocations.
	exParse, exProduct, exFormat, exOutput, exRescore = false, analysis.AllProducts, "markdown", "", false
	flagDataset, cfgFile, debug = "", "", false
	cfg = nil
	for _, name := range []string{"parse", "product", "format", "output", "rescore-missing"} {
		if fl := exploreCmd.Flags().Lookup(name); fl != nil {
			fl.Changed = false
		}
	}
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := filepath.Join(home, "reviews.csv")
	if err := os.WriteFile(p, []byte(cliFixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return p
}

func TestCLI_ExploreMarkdown(t *testing.T) {
	data := setupHome(t)
	out, err := runCmd(t, "explore", "--dataset", data, "--parse", "--product", "Earbuds")
	if err != nil {
		t.Fatalf("explore: %v", err)
	}
	for _, want := range []string{
		"Stage: cleaned",
		"Message: Reviews parsed and cleaned successfully!",
		"Selected: Earbuds (2 rows)",
		"CLEANED_SUMMARY",
		"great sound",
		"[SENTIMENT SCORE BY PRODUCT]",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q\n%s", want, out)
		}
	}
}

func TestCLI_ExploreJSONToFile(t *testing.T) {
	data := setupHome(t)
	dest := filepath.Join(t.TempDir(), "out", "view.json")
	if _, err := runCmd(t, "explore", "--dataset", data, "--format", "json", "--output", dest); err != nil {
		t.Fatalf("explore: %v", err)
	}
	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var v struct {
		Stage    string   `json:"stage"`
		Rows     int      `json:"rows"`
		Options  []string `json:"options"`
		Selected string   `json:"selected"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Stage != "loaded" || v.Rows != 3 || v.Selected != "All Products" || len(v.Options) != 3 {
		t.Fatalf("json view = %+v", v)
	}
}

func TestCLI_ExploreErrors(t *testing.T) {
	data := setupHome(t)
	if _, err := runCmd(t, "explore", "--dataset", data, "--product", "Toaster"); err == nil {
		t.Fatalf("expected error for unknown product")
	}
	if _, err := runCmd(t, "explore", "--dataset", data, "--format", "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	_, err := runCmd(t, "explore", "--dataset", filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil || !strings.HasPrefix(err.Error(), "Request failed") {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestCLI_ExploreEmptyProduct(t *testing.T) {
	data := setupHome(t)
	if err := os.WriteFile(data, []byte(cliFixture+",Unlabelled,0.2\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	out, err := runCmd(t, "explore", "--dataset", data, "--product", "")
	if err != nil {
		t.Fatalf("explore: %v", err)
	}
	if !strings.Contains(out, "Selected:  (1 rows)") {
		t.Fatalf("empty product should select one row:\n%s", out)
	}
}

func TestCLI_Products(t *testing.T) {
	data := setupHome(t)
	out, err := runCmd(t, "products", "--dataset", data)
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	if out != "- All Products\n- Earbuds\n- Charger\n" {
		t.Fatalf("products output = %q", out)
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	setupHome(t)
	if _, err := runCmd(t, "config", "set", "preview_rows", "7"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	if _, err := runCmd(t, "config", "set", "preview_rows", "zero"); err == nil {
		t.Fatalf("expected error for invalid int")
	}
	if _, err := runCmd(t, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
	out, err := runCmd(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "preview_rows: 7") {
		t.Fatalf("config show = %s", out)
	}
}
