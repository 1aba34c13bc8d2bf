package main

import (
	"strings"
	"testing"
)

func TestSourcesListAndSearch(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"sources"}, env.configPath)
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	requireContains(t, out, "ProQuest DDA")
	requireContains(t, out, "Platforms: Ebookcentral (4), Ebsco (2), Oapen (1)")

	out, _, err = runCLI(t, []string{"sources", "--search", "ebsco"}, env.configPath)
	if err != nil {
		t.Fatalf("sources --search: %v", err)
	}
	requireContains(t, out, "EBSCO DDA")
	requireContains(t, out, "EBSCO Purchased")
	if strings.Contains(out, "ProQuest DDA") {
		t.Fatalf("search should not list ProQuest sources\n%s", out)
	}

	out, _, err = runCLI(t, []string{"sources", "--search", "nothing like this"}, env.configPath)
	if err != nil {
		t.Fatalf("sources --search: %v", err)
	}
	requireContains(t, out, "No matching sources")

	out, _, err = runCLI(t, []string{"sources", "--platform", "oapen"}, env.configPath)
	if err != nil {
		t.Fatalf("sources --platform: %v", err)
	}
	requireContains(t, out, "OAPEN")
}
