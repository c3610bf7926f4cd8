package internal

// OpKind identifies a diff operation
type OpKind int

const (
	OpEqual OpKind = iota
	OpInsert
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	default:
		return "equal"
	}
}

// ChangeOperation is one token-level diff operation. Operations are
// ephemeral: they exist only between the diff and the classifier.
type ChangeOperation struct {
	Kind OpKind
	Text string
}

// Diff computes a word-level diff between two content strings.
//
// Tokens are words with their trailing whitespace attached (leading
// whitespace forms its own token), so concatenating tokens reproduces the
// input exactly. The result satisfies the round-trip law: joining the text
// of all equal+insert operations yields new, and all equal+delete
// operations yields old. At a replacement point the delete operation is
// emitted before the insert. Identical inputs produce an empty diff.
func Diff(oldText, newText string) []ChangeOperation {
	if oldText == newText {
		return nil
	}

	oldTokens := tokenize(oldText)
	newTokens := tokenize(newText)

	// Trim the common prefix and suffix before running the quadratic LCS.
	prefix := 0
	for prefix < len(oldTokens) && prefix < len(newTokens) && oldTokens[prefix] == newTokens[prefix] {
		prefix++
	}
	oldRest, newRest := oldTokens[prefix:], newTokens[prefix:]
	suffix := 0
	for suffix < len(oldRest) && suffix < len(newRest) &&
		oldRest[len(oldRest)-1-suffix] == newRest[len(newRest)-1-suffix] {
		suffix++
	}
	oldMid := oldRest[:len(oldRest)-suffix]
	newMid := newRest[:len(newRest)-suffix]

	var ops []ChangeOperation
	ops = appendOp(ops, OpEqual, oldTokens[:prefix])
	ops = append(ops, lcsOps(oldMid, newMid)...)
	ops = appendOp(ops, OpEqual, oldRest[len(oldRest)-suffix:])

	return mergeOps(ops)
}

// tokenize splits content into tokens of a word plus its trailing
// whitespace. A leading whitespace run is its own token.
func tokenize(s string) []string {
	if s == "" {
		return nil
	}
	var tokens []string
	start := 0
	i := 0
	for i < len(s) {
		// word part
		for i < len(s) && !isSpace(s[i]) {
			i++
		}
		// trailing whitespace part
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		tokens = append(tokens, s[start:i])
		start = i
	}
	return tokens
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// lcsOps computes operations for the non-matching middle via a longest
// common subsequence table over tokens.
func lcsOps(oldTokens, newTokens []string) []ChangeOperation {
	n, m := len(oldTokens), len(newTokens)
	if n == 0 {
		return appendOp(nil, OpInsert, newTokens)
	}
	if m == 0 {
		return appendOp(nil, OpDelete, oldTokens)
	}

	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if oldTokens[i] == newTokens[j] {
				table[i][j] = table[i+1][j+1] + 1
			} else if table[i+1][j] >= table[i][j+1] {
				table[i][j] = table[i+1][j]
			} else {
				table[i][j] = table[i][j+1]
			}
		}
	}

	var ops []ChangeOperation
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case oldTokens[i] == newTokens[j]:
			ops = append(ops, ChangeOperation{Kind: OpEqual, Text: oldTokens[i]})
			i++
			j++
		case table[i+1][j] >= table[i][j+1]:
			ops = append(ops, ChangeOperation{Kind: OpDelete, Text: oldTokens[i]})
			i++
		default:
			ops = append(ops, ChangeOperation{Kind: OpInsert, Text: newTokens[j]})
			j++
		}
	}
	ops = appendOp(ops, OpDelete, oldTokens[i:])
	ops = appendOp(ops, OpInsert, newTokens[j:])
	return ops
}

func appendOp(ops []ChangeOperation, kind OpKind, tokens []string) []ChangeOperation {
	if len(tokens) == 0 {
		return ops
	}
	text := ""
	for _, t := range tokens {
		text += t
	}
	return append(ops, ChangeOperation{Kind: kind, Text: text})
}

// mergeOps joins adjacent operations of the same kind and reorders each
// insert/delete cluster so deletes precede inserts.
func mergeOps(ops []ChangeOperation) []ChangeOperation {
	var merged []ChangeOperation
	for _, op := range ops {
		if op.Text == "" {
			continue
		}
		n := len(merged)
		if n > 0 && merged[n-1].Kind == op.Kind {
			merged[n-1].Text += op.Text
			continue
		}
		// Keep deletes ahead of inserts within one change cluster.
		if n > 0 && merged[n-1].Kind == OpInsert && op.Kind == OpDelete {
			if n > 1 && merged[n-2].Kind == OpDelete {
				merged[n-2].Text += op.Text
			} else {
				merged = append(merged[:n-1], op, merged[n-1])
			}
			continue
		}
		merged = append(merged, op)
	}
	return merged
}
