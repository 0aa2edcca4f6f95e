// Package parse implements the tokenizer-driven parser from spec.md §4.2:
// turning a query string into a value.Chain (or a single literal Value),
// resolving `.name(args)` calls against the operator registry and expanding
// every documented shorthand (dotted field reads, `==`/`=~`/`&&`/`||`
// folding, `[...]` slice-vs-filter, `[[...]]` select, `{...}` foreach,
// `#id`/`@source`/bare-type prefixes).
//
// Grounded on original_source/sa/query_language/parser.py's state machine
// (get_tokens_from_query, get_token_arguments, parse_tokens_into_querytype),
// adapted where spec.md §4.2 documents different or additional grammar (the
// `&&`/`||` folds, the `[[...]]` select node, the `{...}` foreach node, the
// `!`/`[]` field-read suffixes, and the `*`-as-regex-wildcard id shorthand
// are all spec additions the original parser does not implement).
package parse

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/sebitommy123/sa/operator"
	"github.com/sebitommy123/sa/qerr"
	"github.com/sebitommy123/sa/token"
	"github.com/sebitommy123/sa/value"
)

// Parse tokenizes and parses a full query string (spec.md §4.2).
func Parse(query string) (value.Value, error) {
	tokens, err := token.Tokenize(query)
	if err != nil {
		return nil, qerr.New(qerr.KindParse, "%s", err.Error())
	}
	area := qerr.Area{Start: 0, End: len(tokens), All: tokens}
	return parseTokens(tokens, area)
}

// qnode is one parsed result: either a fully-resolved OperatorNode or a
// literal Value, mirroring the original's untyped `results: list[QueryType]`.
type qnode struct {
	node *value.OperatorNode
	lit  value.Value
}

func litNode(v value.Value) qnode       { return qnode{lit: v} }
func opNode(n value.OperatorNode) qnode { return qnode{node: &n} }
func (q qnode) isOperator() bool        { return q.node != nil }

// finalize implements get_parser_results (spec.md §4.2, "Parser
// post-condition"): all-operators becomes a Chain, otherwise exactly one
// literal is returned.
func finalize(results []qnode, area qerr.Area) (value.Value, error) {
	if len(results) == 0 {
		return nil, qerr.WithArea(qerr.New(qerr.KindParse, "empty query"), area)
	}
	allOps := true
	for _, r := range results {
		if !r.isOperator() {
			allOps = false
			break
		}
	}
	if allOps {
		nodes := make([]value.OperatorNode, len(results))
		for i, r := range results {
			nodes[i] = *r.node
		}
		return &value.Chain{Nodes: nodes}, nil
	}
	if len(results) != 1 {
		return nil, qerr.WithArea(qerr.New(qerr.KindParse, "expected a single literal value, got %d results", len(results)), area)
	}
	return results[0].lit, nil
}

func isSpaceToken(t string) bool {
	if t == "" {
		return false
	}
	for _, r := range t {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// trimTokens drops leading/trailing whitespace tokens, adjusting area so its
// Start/End still describe the retained slice's position in the original
// token stream (spec.md §4.2's `trim_tokens`).
func trimTokens(tokens []string, area qerr.Area) ([]string, qerr.Area) {
	start := 0
	for start < len(tokens) && isSpaceToken(tokens[start]) {
		start++
	}
	end := len(tokens)
	for end > start && isSpaceToken(tokens[end-1]) {
		end--
	}
	return tokens[start:end], qerr.Area{Start: area.Start + start, End: area.Start + end, All: area.All}
}

func lookup(name string) *value.Operator {
	op, ok := operator.Lookup(name)
	if !ok {
		panic("parse: unknown required operator " + name)
	}
	return op
}

// bracketSpan scans a single bracketed region (no top-level separator
// splitting), returning the inner token range [innerStart,innerEnd) and the
// index just past the closing bracket.
func bracketSpan(tokens []string, i int, open, close string) (innerStart, innerEnd, afterIdx int, err error) {
	if tokens[i] != open {
		return 0, 0, 0, qerr.New(qerr.KindParse, "expected %q at index %d, got %q", open, i, tokens[i])
	}
	depth := 1
	j := i + 1
	for j < len(tokens) {
		switch tokens[j] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1, j, j + 1, nil
			}
		}
		j++
	}
	return 0, 0, 0, qerr.New(qerr.KindParse, "no matching %q for %q at index %d", close, open, i)
}

// splitArgs mirrors get_token_arguments: scans a bracketed, sep-delimited
// argument list, splitting only at depth 1.
func splitArgs(tokens []string, i int, open, close, sep string) (args [][]string, starts []int, afterIdx int, err error) {
	if tokens[i] != open {
		return nil, nil, 0, qerr.New(qerr.KindParse, "expected %q at index %d, got %q", open, i, tokens[i])
	}
	depth := 1
	j := i + 1
	curStart := j
	for j < len(tokens) {
		t := tokens[j]
		if depth == 1 && t == sep {
			args = append(args, tokens[curStart:j])
			starts = append(starts, curStart)
			j++
			curStart = j
			continue
		}
		switch t {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				args = append(args, tokens[curStart:j])
				starts = append(starts, curStart)
				return args, starts, j + 1, nil
			}
		}
		j++
	}
	return nil, nil, 0, qerr.New(qerr.KindParse, "no matching %q for %q at index %d", close, open, i)
}

func isSimpleIntToken(t string) bool {
	s := t
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// trySliceGrammar recognizes the slice grammar from spec.md §4.2: digits and
// `:`, 1-3 colon-separated parts, at least one non-empty. Returns the Slice
// operator's Int/empty-String arguments, or ok=false for anything else
// (including a bare single non-numeric token, which falls through to
// filter).
func trySliceGrammar(inner []string) (args []value.Value, ok bool) {
	if len(inner) == 0 {
		return nil, false
	}
	var parts [][]string
	cur := []string{}
	colons := 0
	for _, t := range inner {
		if t == ":" {
			parts = append(parts, cur)
			cur = nil
			colons++
		} else {
			cur = append(cur, t)
		}
	}
	parts = append(parts, cur)

	if colons == 0 {
		if len(inner) == 1 && isSimpleIntToken(inner[0]) {
			n, _ := strconv.Atoi(inner[0])
			return []value.Value{value.Int(n)}, true
		}
		return nil, false
	}
	if len(parts) > 3 {
		return nil, false
	}
	nonEmpty := false
	for _, p := range parts {
		if len(p) > 0 {
			nonEmpty = true
		}
	}
	if !nonEmpty {
		return nil, false
	}
	out := make([]value.Value, 0, len(parts))
	for _, p := range parts {
		if len(p) == 0 {
			out = append(out, value.String(""))
			continue
		}
		if len(p) != 1 || !isSimpleIntToken(p[0]) {
			return nil, false
		}
		n, _ := strconv.Atoi(p[0])
		out = append(out, value.Int(n))
	}
	return out, true
}

func isIDToken(t string) bool {
	if t == "*" {
		return true
	}
	if t == "" {
		return false
	}
	for _, r := range t {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}

// wildcardToRegex turns a `*`-bearing id literal into a regex body (every
// other run is escaped literally, `*` becomes `.*`), per spec.md §4.2's
// "`*` inside the id is interpreted as a regex wildcard".
func wildcardToRegex(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r == '*' {
			b.WriteString(".*")
		} else {
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}

// parseTokens is the recursive core: tokens is the slice to parse, area its
// absolute position in the original query's token stream.
func parseTokens(tokens []string, area qerr.Area) (value.Value, error) {
	tokens, area = trimTokens(tokens, area)

	const (
		stateStart = iota
		stateAfterDot
		stateString
	)
	st := stateStart
	quote := ""
	var strBuilder strings.Builder
	var results []qnode

	i := 0
	for i < len(tokens) {
		iAtStart := i
		tok := tokens[i]
		tokAfter := ""
		if i+1 < len(tokens) {
			tokAfter = tokens[i+1]
		}

		if st != stateString && isSpaceToken(tok) {
			i++
			continue
		}

		switch st {
		case stateStart:
			switch {
			case tok == "*":
				if i != 0 {
					return nil, qerr.WithArea(qerr.New(qerr.KindParse, "expected * only at the start of a query, got it at index %d", i), area.Slice(i, i+1))
				}
				i++

			case tok == ".":
				st = stateAfterDot
				i++

			case isSimpleIntToken(tok):
				n, err := strconv.Atoi(tok)
				if err != nil {
					return nil, qerr.WithArea(qerr.New(qerr.KindParse, "invalid integer literal %q", tok), area.Slice(i, i+1))
				}
				results = append(results, litNode(value.Int(n)))
				i++

			case tok == `"` || tok == `'`:
				quote = tok
				strBuilder.Reset()
				st = stateString
				i++

			case tok == "true" || tok == "false":
				results = append(results, litNode(value.Bool(tok == "true")))
				i++

			case tok == "=" && tokAfter == "=":
				left, err := finalize(results, area.Slice(0, i))
				if err != nil {
					return nil, err
				}
				rightArea := area.Slice(i+2, -1)
				right, err := parseTokens(tokens[i+2:], rightArea)
				if err != nil {
					return nil, err
				}
				node := value.OperatorNode{Operator: lookup("equals"), Arguments: []value.Value{left, right}, Area: area}
				return &value.Chain{Nodes: []value.OperatorNode{node}}, nil

			case tok == "=" && tokAfter == "~":
				left, err := finalize(results, area.Slice(0, i))
				if err != nil {
					return nil, err
				}
				rightArea := area.Slice(i+2, -1)
				right, err := parseTokens(tokens[i+2:], rightArea)
				if err != nil {
					return nil, err
				}
				node := value.OperatorNode{Operator: lookup("regex_equals"), Arguments: []value.Value{left, right}, Area: area}
				return &value.Chain{Nodes: []value.OperatorNode{node}}, nil

			case tok == "=":
				return nil, qerr.WithArea(qerr.New(qerr.KindParse, "expected == or =~, got a lone ="), area.Slice(i, i+1))

			case tok == "&" && tokAfter == "&":
				left, err := finalize(results, area.Slice(0, i))
				if err != nil {
					return nil, err
				}
				rightArea := area.Slice(i+2, -1)
				right, err := parseTokens(tokens[i+2:], rightArea)
				if err != nil {
					return nil, err
				}
				node := value.OperatorNode{Operator: lookup("and"), Arguments: []value.Value{left, right}, Area: area}
				return &value.Chain{Nodes: []value.OperatorNode{node}}, nil

			case tok == "|" && tokAfter == "|":
				left, err := finalize(results, area.Slice(0, i))
				if err != nil {
					return nil, err
				}
				rightArea := area.Slice(i+2, -1)
				right, err := parseTokens(tokens[i+2:], rightArea)
				if err != nil {
					return nil, err
				}
				node := value.OperatorNode{Operator: lookup("or"), Arguments: []value.Value{left, right}, Area: area}
				return &value.Chain{Nodes: []value.OperatorNode{node}}, nil

			case tok == "[" && tokAfter == "[":
				node, after, err := parseSelect(tokens, i, area)
				if err != nil {
					return nil, err
				}
				results = append(results, opNode(node))
				i = after

			case tok == "[":
				node, after, err := parseBracket(tokens, i, area)
				if err != nil {
					return nil, err
				}
				results = append(results, opNode(node))
				i = after

			case tok == "{":
				node, after, err := parseForeach(tokens, i, area)
				if err != nil {
					return nil, err
				}
				results = append(results, opNode(node))
				i = after

			case tok == "#":
				node, after, err := parseHashID(tokens, i, area)
				if err != nil {
					return nil, err
				}
				results = append(results, opNode(node))
				i = after

			case tok == "@":
				node, after, err := parseAtSource(tokens, i, area)
				if err != nil {
					return nil, err
				}
				results = append(results, opNode(node))
				i = after

			default:
				if i != 0 {
					return nil, qerr.WithArea(qerr.New(qerr.KindParse, "unexpected token %q at index %d", tok, i), area.Slice(i, i+1))
				}
				node := value.OperatorNode{
					Operator:  lookup("filter_by_type"),
					Arguments: []value.Value{value.String(tok)},
					Area:      area.Slice(i, i+1),
				}
				results = append(results, opNode(node))
				i++
			}

		case stateAfterDot:
			if tokAfter == "(" {
				op, ok := operator.Lookup(tok)
				if !ok {
					return nil, qerr.WithArea(qerr.New(qerr.KindParse, "unknown operator %q", tok), area.Slice(i, i+1))
				}
				argToks, starts, after, err := splitArgs(tokens, i+1, "(", ")", ",")
				if err != nil {
					return nil, err
				}
				var parsedArgs []value.Value
				if !(len(argToks) == 1 && len(argToks[0]) == 0) {
					parsedArgs = make([]value.Value, len(argToks))
					for k, at := range argToks {
						subArea := qerr.Area{Start: area.Start + starts[k], End: area.Start + starts[k] + len(at), All: area.All}
						v, err := parseTokens(at, subArea)
						if err != nil {
							return nil, err
						}
						parsedArgs[k] = v
					}
				}
				node := value.OperatorNode{Operator: op, Arguments: parsedArgs, Area: qerr.Area{Start: area.Start + i - 1, End: area.Start + after, All: area.All}}
				results = append(results, opNode(node))
				i = after
				st = stateStart
			} else {
				fieldArea := qerr.Area{Start: area.Start + i - 1, End: area.Start + i + 1, All: area.All}
				returnNoneIfMissing := true
				returnAllValues := false
				after := i + 1
				if after < len(tokens) && tokens[after] == "!" {
					returnNoneIfMissing = false
					after++
					fieldArea.End++
				}
				if after+1 < len(tokens) && tokens[after] == "[" && tokens[after+1] == "]" {
					returnAllValues = true
					after += 2
					fieldArea.End += 2
				}
				node := value.OperatorNode{
					Operator:  lookup("get_field"),
					Arguments: []value.Value{value.String(tok), value.Bool(returnNoneIfMissing), value.Bool(returnAllValues)},
					Area:      fieldArea,
				}
				results = append(results, opNode(node))
				i = after
				st = stateStart
			}

		case stateString:
			if tok == quote {
				results = append(results, litNode(value.String(strBuilder.String())))
				i++
				st = stateStart
			} else {
				strBuilder.WriteString(tok)
				i++
			}
		}

		if i <= iAtStart {
			return nil, qerr.WithArea(qerr.New(qerr.KindParse, "parser did not advance at token %d", iAtStart), area)
		}
	}

	if st == stateString {
		return nil, qerr.WithArea(qerr.New(qerr.KindParse, "unterminated string literal"), area)
	}
	return finalize(results, area)
}

// parseBracket implements `[...]` (spec.md §4.2): slice grammar if the
// content matches, else a Filter node over the parsed inner chain.
func parseBracket(tokens []string, i int, area qerr.Area) (value.OperatorNode, int, error) {
	innerStart, innerEnd, after, err := bracketSpan(tokens, i, "[", "]")
	if err != nil {
		return value.OperatorNode{}, 0, err
	}
	inner := tokens[innerStart:innerEnd]
	nodeArea := qerr.Area{Start: area.Start + i, End: area.Start + after, All: area.All}
	if len(inner) == 0 {
		return value.OperatorNode{}, 0, qerr.WithArea(qerr.New(qerr.KindParse, "empty brackets"), nodeArea)
	}

	if args, ok := trySliceGrammar(inner); ok {
		return value.OperatorNode{Operator: lookup("slice"), Arguments: args, Area: nodeArea}, after, nil
	}

	innerArea := qerr.Area{Start: area.Start + innerStart, End: area.Start + innerEnd, All: area.All}
	chain, err := parseTokens(inner, innerArea)
	if err != nil {
		return value.OperatorNode{}, 0, err
	}
	return value.OperatorNode{Operator: lookup("filter"), Arguments: []value.Value{chain}, Area: nodeArea}, after, nil
}

// parseSelect implements `[[ ... ]]` (spec.md §4.2): a Select node whose
// arguments are the comma-separated inner chains.
func parseSelect(tokens []string, i int, area qerr.Area) (value.OperatorNode, int, error) {
	j := i + 2
	depth := 0
	curStart := j
	var argToks [][]string
	var starts []int
	for j < len(tokens) {
		t := tokens[j]
		switch {
		case depth == 0 && t == ",":
			argToks = append(argToks, tokens[curStart:j])
			starts = append(starts, curStart)
			j++
			curStart = j
		case t == "[":
			depth++
			j++
		case t == "]" && depth > 0:
			depth--
			j++
		case t == "]" && depth == 0:
			if j+1 >= len(tokens) || tokens[j+1] != "]" {
				return value.OperatorNode{}, 0, qerr.WithArea(qerr.New(qerr.KindParse, "expected ]] to close select"), area.Slice(i, j+1))
			}
			argToks = append(argToks, tokens[curStart:j])
			starts = append(starts, curStart)
			after := j + 2
			args := make([]value.Value, len(argToks))
			for k, at := range argToks {
				subArea := qerr.Area{Start: area.Start + starts[k], End: area.Start + starts[k] + len(at), All: area.All}
				v, err := parseTokens(at, subArea)
				if err != nil {
					return value.OperatorNode{}, 0, err
				}
				args[k] = v
			}
			nodeArea := qerr.Area{Start: area.Start + i, End: area.Start + after, All: area.All}
			return value.OperatorNode{Operator: lookup("select"), Arguments: args, Area: nodeArea}, after, nil
		default:
			j++
		}
	}
	return value.OperatorNode{}, 0, qerr.WithArea(qerr.New(qerr.KindParse, "no matching ]] for [[ at index %d", i), area.Slice(i, len(tokens)))
}

// parseForeach implements `{ expr, expr, ... }` (spec.md §4.2).
func parseForeach(tokens []string, i int, area qerr.Area) (value.OperatorNode, int, error) {
	argToks, starts, after, err := splitArgs(tokens, i, "{", "}", ",")
	if err != nil {
		return value.OperatorNode{}, 0, err
	}
	nodeArea := qerr.Area{Start: area.Start + i, End: area.Start + after, All: area.All}
	if len(argToks) == 1 && len(argToks[0]) == 0 {
		return value.OperatorNode{}, 0, qerr.WithArea(qerr.New(qerr.KindParse, "foreach expects at least 1 argument"), nodeArea)
	}
	args := make([]value.Value, len(argToks))
	for k, at := range argToks {
		subArea := qerr.Area{Start: area.Start + starts[k], End: area.Start + starts[k] + len(at), All: area.All}
		v, err := parseTokens(at, subArea)
		if err != nil {
			return value.OperatorNode{}, 0, err
		}
		args[k] = v
	}
	return value.OperatorNode{Operator: lookup("foreach"), Arguments: args, Area: nodeArea}, after, nil
}

// parseHashID implements `#id` (spec.md §4.2): get_by_id for a plain id, or
// a filter on an anchored `__id__ =~ '^...$'` regex when the id contains a
// `*` wildcard.
func parseHashID(tokens []string, i int, area qerr.Area) (value.OperatorNode, int, error) {
	if i != 0 {
		return value.OperatorNode{}, 0, qerr.WithArea(qerr.New(qerr.KindParse, "id shorthand only allowed at the start of a query"), area.Slice(i, i+1))
	}
	j := i + 1
	start := j
	for j < len(tokens) && isIDToken(tokens[j]) {
		j++
	}
	if j == start {
		return value.OperatorNode{}, 0, qerr.WithArea(qerr.New(qerr.KindParse, "expected an id after #"), area.Slice(i, i+1))
	}
	raw := strings.Join(tokens[start:j], "")
	nodeArea := qerr.Area{Start: area.Start + i, End: area.Start + j, All: area.All}

	if !strings.Contains(raw, "*") {
		return value.OperatorNode{Operator: lookup("get_by_id"), Arguments: []value.Value{value.String(raw)}, Area: nodeArea}, j, nil
	}

	pattern := "^" + wildcardToRegex(raw) + "$"
	getFieldNode := value.OperatorNode{
		Operator:  lookup("get_field"),
		Arguments: []value.Value{value.String("__id__"), value.Bool(true), value.Bool(false)},
		Area:      nodeArea,
	}
	left := &value.Chain{Nodes: []value.OperatorNode{getFieldNode}}
	regexNode := value.OperatorNode{Operator: lookup("regex_equals"), Arguments: []value.Value{left, value.String(pattern)}, Area: nodeArea}
	body := &value.Chain{Nodes: []value.OperatorNode{regexNode}}
	return value.OperatorNode{Operator: lookup("filter"), Arguments: []value.Value{body}, Area: nodeArea}, j, nil
}

// parseAtSource implements `@source` (spec.md §4.2).
func parseAtSource(tokens []string, i int, area qerr.Area) (value.OperatorNode, int, error) {
	if i != 0 {
		return value.OperatorNode{}, 0, qerr.WithArea(qerr.New(qerr.KindParse, "source shorthand only allowed at the start of a query"), area.Slice(i, i+1))
	}
	if i+1 >= len(tokens) {
		return value.OperatorNode{}, 0, qerr.WithArea(qerr.New(qerr.KindParse, "expected a source name after @"), area.Slice(i, i+1))
	}
	name := tokens[i+1]
	nodeArea := qerr.Area{Start: area.Start + i, End: area.Start + i + 2, All: area.All}
	return value.OperatorNode{Operator: lookup("filter_by_source"), Arguments: []value.Value{value.String(name)}, Area: nodeArea}, i + 2, nil
}
