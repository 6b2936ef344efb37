package templating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSubstitutesSuppliedFields(t *testing.T) {
	out := Render("Dear {{clientName}},", map[string]string{"clientName": "Jane Cruz"})
	assert.Equal(t, "Dear Jane Cruz,", out)
}

func TestRenderConditionalTruthy(t *testing.T) {
	out := Render("A{{#if x}}B{{/if}}C", map[string]string{"x": "1"})
	assert.Equal(t, "ABC", out)
}

func TestRenderConditionalFalsy(t *testing.T) {
	out := Render("A{{#if x}}B{{/if}}C", map[string]string{"x": ""})
	assert.Equal(t, "AC", out)
}

func TestRenderConditionalUnsuppliedKeyKeptVerbatim(t *testing.T) {
	// Keys never supplied are not resolved in lax mode; the block survives
	// untouched for downstream processing.
	out := Render("A{{#if x}}B{{/if}}C", map[string]string{"y": "1"})
	assert.Equal(t, "A{{#if x}}B{{/if}}C", out)
}

func TestRenderConditionalUnsuppliedKeyStrictMode(t *testing.T) {
	r := Renderer{StrictConditionals: true}
	out := r.Render("A{{#if x}}B{{/if}}C", map[string]string{"y": "1"})
	assert.Equal(t, "AC", out)
}

func TestRenderSubstitutionInsideKeptConditional(t *testing.T) {
	out := Render("{{#if x}}Hello {{name}}{{/if}}", map[string]string{"name": "Ann"})
	assert.Equal(t, "{{#if x}}Hello Ann{{/if}}", out)
}

func TestRenderConditionalSpansNewlines(t *testing.T) {
	out := Render("A{{#if x}}line1\nline2{{/if}}B", map[string]string{"x": "yes"})
	assert.Equal(t, "Aline1\nline2B", out)
}

func TestRenderEachBlocksElided(t *testing.T) {
	out := Render("before {{#each items}}<li>{{name}}</li>{{/each}}after", map[string]string{"name": "x"})
	assert.Equal(t, "before after", out)
}

func TestRenderResidualTagsStripped(t *testing.T) {
	out := Render("Hello {{unknown}} world {{ another one }}!", map[string]string{})
	assert.Equal(t, "Hello  world !", out)
}

func TestRenderFalsySubstitutionEmpty(t *testing.T) {
	out := Render("[{{a}}]", map[string]string{"a": ""})
	assert.Equal(t, "[]", out)
}

func TestRenderOrphanCloseTagStripped(t *testing.T) {
	out := Render("A{{/if}}B", map[string]string{})
	assert.Equal(t, "AB", out)
}

func TestRenderUnterminatedTagLeftAsLiteral(t *testing.T) {
	out := Render("A{{#if x B", map[string]string{"x": "1"})
	assert.Equal(t, "A{{#if x B", out)
}

func TestRenderDeterministic(t *testing.T) {
	tpl := "Dear {{clientName}},{{#if clientCompany}} from {{clientCompany}}{{/if}}."
	fields := map[string]string{"clientName": "Jane Cruz", "clientCompany": "Acme"}

	first := Render(tpl, fields)
	second := Render(tpl, fields)
	assert.Equal(t, "Dear Jane Cruz, from Acme.", first)
	assert.Equal(t, first, second)
}

func TestRenderFullTemplate(t *testing.T) {
	tpl := `<h1>Waste Collection Proposal</h1>
<p>Dear {{clientName}},</p>
{{#if clientCompany}}<p>Prepared for {{clientCompany}}.</p>{{/if}}
{{#each lineItems}}<li>{{description}}: {{price}}</li>{{/each}}
<p>Date: {{proposalDate}}</p><p>{{footerNote}}</p>`

	out := Render(tpl, map[string]string{
		"clientName":    "Jane Cruz",
		"clientCompany": "",
		"proposalDate":  "2026-08-30",
	})

	assert.NotContains(t, out, "{{")
	assert.Contains(t, out, "Dear Jane Cruz,")
	assert.NotContains(t, out, "Prepared for")
	assert.Contains(t, out, "Date: 2026-08-30")
}
