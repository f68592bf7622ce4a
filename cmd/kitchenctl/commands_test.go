package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"homecuistot/internal/core/proposal"
	"homecuistot/internal/core/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `items:
  - { id: ing-egg, name: egg }
  - { id: ing-pasta, name: pasta }
  - { id: ing-salt, name: salt }
  - { id: ing-tomato, name: tomato }
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPropose(t *testing.T) {
	dir := t.TempDir()
	cat := writeFile(t, dir, "catalog.yaml", testCatalog)
	reqs := writeFile(t, dir, "turn.json", `[
		{"type": "inventory_upsert", "items": [
			{"name": "Eggs", "quantity_level": 3},
			{"name": "dragonfruit", "quantity_level": 2}
		]}
	]`)
	snapOut := filepath.Join(dir, "out.json")

	out, err := run(t, "", "propose", "--catalog", cat, "--out-snapshot", snapOut, reqs)
	require.NoError(t, err)

	var p struct {
		Unrecognized []string        `json:"unrecognized"`
		Counts       proposal.Counts `json:"counts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, []string{"dragonfruit"}, p.Unrecognized)
	assert.Equal(t, 1, p.Counts.Created)
	assert.Equal(t, 1, p.Counts.Unrecognized)

	data, err := os.ReadFile(snapOut)
	require.NoError(t, err)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	require.Len(t, snap.Inventory, 1)
	assert.Equal(t, "ing-egg", snap.Inventory[0].CatalogID)
	assert.Equal(t, session.QuantityFull, snap.Inventory[0].Quantity)
}

func TestPropose_Stdin(t *testing.T) {
	dir := t.TempDir()
	cat := writeFile(t, dir, "catalog.yaml", testCatalog)

	out, err := run(t, `[{"type": "inventory_delete_all"}]`, "propose", "--catalog", cat, "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"inventory_delete_all"`)
}

func TestPropose_InvalidBatch(t *testing.T) {
	dir := t.TempDir()
	cat := writeFile(t, dir, "catalog.yaml", testCatalog)
	reqs := writeFile(t, dir, "turn.json", `[{"type": "inventory_bulk", "quantity_level": 9}]`)

	_, err := run(t, "", "propose", "--catalog", cat, reqs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestCooked(t *testing.T) {
	dir := t.TempDir()
	cat := writeFile(t, dir, "catalog.yaml", testCatalog)
	snap := writeFile(t, dir, "kitchen.json", `{
		"inventory": [
			{"id": "inv-1", "catalog_id": "ing-pasta", "name": "pasta", "quantity_level": 2, "is_staple": false},
			{"id": "inv-2", "catalog_id": "ing-salt", "name": "salt", "quantity_level": 3, "is_staple": true}
		],
		"recipes": [
			{"id": "r1", "title": "Pasta", "description": "", "ingredients": [
				{"name": "pasta", "catalog_id": "ing-pasta", "is_required": true},
				{"name": "salt", "catalog_id": "ing-salt", "is_required": false}
			]}
		]
	}`)

	out, err := run(t, "", "cooked", "--catalog", cat, "--snapshot", snap, "r1")
	require.NoError(t, err)

	var res proposal.CookedResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Found)
	require.Len(t, res.Items, 2)

	_, err = run(t, "", "cooked", "--catalog", cat, "--snapshot", snap, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidate(t *testing.T) {
	out, err := run(t, `[{"type": "recipe_delete_all"}, {"type": "inventory_delete_all"}]`, "validate", "-")
	require.NoError(t, err)
	assert.Equal(t, "ok: 2 request(s)\n", out)

	_, err = run(t, `[{"type": "end_turn"}]`, "validate", "-")
	require.Error(t, err)
}
