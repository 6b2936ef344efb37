// Package templating resolves the placeholder syntax used by proposal
// templates: {{field}} substitutions, {{#if field}}...{{/if}} conditionals and
// {{#each path}}...{{/each}} repeated blocks. Rendering is a pure string
// transform with no I/O and it never fails; unknown placeholders degrade to
// removed content instead of breaking the authoring flow.
package templating

import "strings"

// Renderer holds rendering options. The zero value is ready to use.
//
// StrictConditionals controls what happens to an {{#if key}} block whose key
// was never supplied: when false (default) the block is kept verbatim in the
// output, markers included, so a downstream processor can still resolve it;
// when true the missing key is treated as falsy and the block is dropped.
type Renderer struct {
	StrictConditionals bool
}

// Render resolves templateHTML against the supplied field map:
//  1. conditional blocks for supplied keys keep their body when the value is
//     non-empty and disappear otherwise,
//  2. {{key}} placeholders for supplied keys become their value,
//  3. {{#each}} blocks are removed unconditionally (line-item rendering is
//     handled elsewhere),
//  4. every remaining placeholder token is stripped, so the output carries no
//     unresolved {{...}} syntax apart from the lax-mode conditionals above.
func (r Renderer) Render(templateHTML string, fields map[string]string) string {
	nodes, _ := parse(newScanner(templateHTML), "")
	var b strings.Builder
	b.Grow(len(templateHTML))
	r.renderNodes(&b, nodes, fields)
	return b.String()
}

// Render resolves templateHTML with the default (lax) options.
func Render(templateHTML string, fields map[string]string) string {
	return Renderer{}.Render(templateHTML, fields)
}

func (r Renderer) renderNodes(b *strings.Builder, nodes []node, fields map[string]string) {
	for _, n := range nodes {
		switch n.kind {
		case nodeLiteral:
			b.WriteString(n.text)
		case nodePlaceholder:
			value, ok := fields[n.key]
			if ok {
				b.WriteString(value)
			}
			// unsupplied keys are stripped
		case nodeIf:
			value, ok := fields[n.key]
			switch {
			case ok && value != "":
				r.renderNodes(b, n.body, fields)
			case ok || r.StrictConditionals:
				// falsy supplied value, or strict mode: drop the whole block
			default:
				// lax mode, key never supplied: keep block verbatim, but the
				// body still goes through substitution like any other content
				b.WriteString("{{#if " + n.key + "}}")
				r.renderNodes(b, n.body, fields)
				b.WriteString("{{/if}}")
			}
		case nodeEach:
			// repeated-item rendering is not implemented; blocks are elided
		}
	}
}

type nodeKind int

const (
	nodeLiteral nodeKind = iota
	nodePlaceholder
	nodeIf
	nodeEach
)

type node struct {
	kind nodeKind
	text string // literal content
	key  string // placeholder name, if key, or each path
	body []node
}

// scanner splits the template into literal runs and {{...}} tokens.
type scanner struct {
	input string
	pos   int
}

func newScanner(input string) *scanner {
	return &scanner{input: input}
}

type token struct {
	isTag   bool
	content string // tag body (trimmed) or literal text
}

func (s *scanner) next() (token, bool) {
	if s.pos >= len(s.input) {
		return token{}, false
	}
	open := strings.Index(s.input[s.pos:], "{{")
	if open != 0 {
		// literal run up to the next tag (or end of input)
		end := len(s.input)
		if open > 0 {
			end = s.pos + open
		}
		tok := token{content: s.input[s.pos:end]}
		s.pos = end
		return tok, true
	}
	close := strings.Index(s.input[s.pos+2:], "}}")
	if close < 0 {
		// unterminated tag: emit the rest as a literal
		tok := token{content: s.input[s.pos:]}
		s.pos = len(s.input)
		return tok, true
	}
	content := s.input[s.pos+2 : s.pos+2+close]
	s.pos += close + 4
	return token{isTag: true, content: strings.TrimSpace(content)}, true
}

// parse builds the node tree. until names the closing tag ("if" or "each")
// the current block is waiting for; the top level passes "".
func parse(s *scanner, until string) ([]node, bool) {
	var nodes []node
	for {
		tok, ok := s.next()
		if !ok {
			return nodes, false // ran out of input before the closing tag
		}
		if !tok.isTag {
			nodes = append(nodes, node{kind: nodeLiteral, text: tok.content})
			continue
		}
		switch {
		case tok.content == "/"+until && until != "":
			return nodes, true
		case strings.HasPrefix(tok.content, "#if "):
			key := strings.TrimSpace(strings.TrimPrefix(tok.content, "#if "))
			body, closed := parse(s, "if")
			if !closed {
				// unclosed block: the open marker is residual syntax, strip
				// it and keep whatever the body parsed to
				nodes = append(nodes, body...)
				return nodes, false
			}
			nodes = append(nodes, node{kind: nodeIf, key: key, body: body})
		case strings.HasPrefix(tok.content, "#each "):
			path := strings.TrimSpace(strings.TrimPrefix(tok.content, "#each "))
			body, closed := parse(s, "each")
			if !closed {
				nodes = append(nodes, body...)
				return nodes, false
			}
			nodes = append(nodes, node{kind: nodeEach, key: path, body: body})
		case strings.HasPrefix(tok.content, "/"):
			// orphan closing tag: residual syntax, stripped
		default:
			nodes = append(nodes, node{kind: nodePlaceholder, key: tok.content})
		}
	}
}
