// Package expression statically checks "{{ ... }}" expression text as it
// appears in node parameter values. It verifies delimiter balance, flags
// references to workflow nodes that do not exist unless the access is
// optional-chained, and catches reserved identifiers used outside an
// expression span without escaping.
package expression

import (
	"fmt"
	"strings"
)

// Reserved builtin identifiers available inside expressions. Anything else
// spelled like a builtin ("$foo") counts as an undefined reference.
var reservedIdentifiers = map[string]bool{
	"$json":      true,
	"$binary":    true,
	"$node":      true,
	"$input":     true,
	"$env":       true,
	"$now":       true,
	"$today":     true,
	"$workflow":  true,
	"$execution": true,
	"$item":      true,
	"$items":     true,
	"$parameter": true,
	"$prevNode":  true,
	"$vars":      true,
	"$if":        true,
	"$min":       true,
	"$max":       true,
}

// Problem is a single finding in an expression text.
type Problem struct {
	Offset int    `json:"offset"`
	Reason string `json:"reason"`
}

// Check scans a parameter value for expression problems. knownNodes is the
// set of node names in the workflow, used to resolve $node references.
func Check(text string, knownNodes map[string]bool) []Problem {
	var problems []Problem

	spans, balanceProblems := scanSpans(text)
	problems = append(problems, balanceProblems...)

	for _, span := range spans {
		problems = append(problems, checkSpan(text, span, knownNodes)...)
	}

	// With unbalanced delimiters the span boundaries are unreliable, so
	// identifier placement is only checked on balanced text.
	if len(balanceProblems) == 0 {
		problems = append(problems, checkOutsideSpans(text, spans)...)
	}

	return problems
}

// span is a half-open [start, end) region of expression content, excluding
// the delimiters.
type span struct {
	start int
	end   int
}

func scanSpans(text string) ([]span, []Problem) {
	var (
		spans    []span
		problems []Problem
	)

	pos := 0

	for pos < len(text) {
		open := strings.Index(text[pos:], "{{")
		stray := strings.Index(text[pos:], "}}")

		if open == -1 {
			if stray != -1 {
				problems = append(problems, Problem{
					Offset: pos + stray,
					Reason: "closing \"}}\" without matching \"{{\"",
				})
			}

			break
		}

		if stray != -1 && stray < open {
			problems = append(problems, Problem{
				Offset: pos + stray,
				Reason: "closing \"}}\" without matching \"{{\"",
			})
			pos += stray + 2

			continue
		}

		contentStart := pos + open + 2

		closing := strings.Index(text[contentStart:], "}}")
		if closing == -1 {
			problems = append(problems, Problem{
				Offset: pos + open,
				Reason: "expression opened with \"{{\" but never closed",
			})

			break
		}

		spans = append(spans, span{start: contentStart, end: contentStart + closing})
		pos = contentStart + closing + 2
	}

	return spans, problems
}

func checkSpan(text string, s span, knownNodes map[string]bool) []Problem {
	var problems []Problem

	content := text[s.start:s.end]

	if strings.TrimSpace(content) == "" {
		problems = append(problems, Problem{Offset: s.start, Reason: "empty expression"})

		return problems
	}

	for _, ident := range scanIdentifiers(content) {
		if !reservedIdentifiers[ident.name] {
			problems = append(problems, Problem{
				Offset: s.start + ident.offset,
				Reason: fmt.Sprintf("unknown builtin %q", ident.name),
			})

			continue
		}

		if ident.name == "$node" {
			problems = append(problems, checkNodeReference(content, ident.offset, s.start, knownNodes)...)
		}
	}

	return problems
}

type identifier struct {
	name   string
	offset int
}

func scanIdentifiers(content string) []identifier {
	var idents []identifier

	for i := 0; i < len(content); i++ {
		if content[i] != '$' {
			continue
		}

		if i > 0 && content[i-1] == '\\' {
			continue
		}

		end := i + 1
		for end < len(content) && isIdentChar(content[end]) {
			end++
		}

		if end == i+1 {
			continue
		}

		idents = append(idents, identifier{name: content[i:end], offset: i})
		i = end - 1
	}

	return idents
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// checkNodeReference validates $node["Name"] accesses. An unknown node
// name is an error unless the access chain is optional ("?."), which is
// the documented escape hatch for nodes created at runtime.
func checkNodeReference(content string, offset, base int, knownNodes map[string]bool) []Problem {
	rest := content[offset+len("$node"):]

	if !strings.HasPrefix(rest, "[") {
		return nil
	}

	quoteStart := 1
	if quoteStart >= len(rest) || (rest[quoteStart] != '"' && rest[quoteStart] != '\'') {
		return []Problem{{
			Offset: base + offset,
			Reason: "$node access requires a quoted node name",
		}}
	}

	quote := rest[quoteStart]

	nameEnd := strings.IndexByte(rest[quoteStart+1:], quote)
	if nameEnd == -1 {
		return []Problem{{
			Offset: base + offset,
			Reason: "unterminated node name in $node access",
		}}
	}

	name := rest[quoteStart+1 : quoteStart+1+nameEnd]

	after := rest[quoteStart+1+nameEnd+1:]
	if !strings.HasPrefix(after, "]") {
		return []Problem{{
			Offset: base + offset,
			Reason: "$node access is missing the closing bracket",
		}}
	}

	if knownNodes[name] {
		return nil
	}

	if strings.HasPrefix(after[1:], "?.") {
		return nil
	}

	return []Problem{{
		Offset: base + offset,
		Reason: fmt.Sprintf("references undefined node %q without optional chaining", name),
	}}
}

// checkOutsideSpans flags reserved identifiers appearing outside any
// expression span: a bare $json in plain text is almost always a missing
// "{{ }}" wrapper, and must be escaped ("\$json") when literal.
func checkOutsideSpans(text string, spans []span) []Problem {
	var problems []Problem

	inSpan := func(pos int) bool {
		for _, s := range spans {
			if pos >= s.start-2 && pos < s.end+2 {
				return true
			}
		}

		return false
	}

	for _, ident := range scanIdentifiers(text) {
		if !reservedIdentifiers[ident.name] || inSpan(ident.offset) {
			continue
		}

		problems = append(problems, Problem{
			Offset: ident.offset,
			Reason: fmt.Sprintf("reserved identifier %s outside an expression; wrap it in {{ }} or escape it", ident.name),
		})
	}

	return problems
}
