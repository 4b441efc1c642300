package projection

// Literal returns the unquoted content of token when it is wrapped in matching
// single or double quotes and longer than two characters.
func Literal(token string) (string, bool) {
	if len(token) <= 2 {
		return "", false
	}
	first, last := token[0], token[len(token)-1]
	if first != last || (first != '\'' && first != '"') {
		return "", false
	}
	return token[1 : len(token)-1], true
}
