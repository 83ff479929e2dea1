package symbols

import (
	"strings"

	apperr "FinSignal/pkg/errors"
)

// DefaultSuffix is the Borsa Istanbul suffix used by the market data providers.
const DefaultSuffix = ".IS"

// DefaultKnown are the tickers advertised on the index endpoint.
var DefaultKnown = []string{
	"THYAO", "AKBNK", "ISCTR", "GARAN", "TCELL",
	"TUPRS", "ARCLK", "FROTO", "PETKM", "KOZAL",
}

// Normalizer maps user input to canonical exchange symbols.
type Normalizer struct {
	suffix string
	known  []string
	index  map[string]string
}

// NewNormalizer builds a normalizer. Empty arguments fall back to the defaults.
func NewNormalizer(suffix string, known []string) *Normalizer {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	if len(known) == 0 {
		known = DefaultKnown
	}
	suffix = strings.ToUpper(suffix)
	n := &Normalizer{suffix: suffix, index: make(map[string]string, len(known))}
	for _, k := range known {
		k = strings.ToUpper(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := n.index[k]; !dup {
			n.known = append(n.known, k)
		}
		n.index[k] = k + suffix
	}
	return n
}

// Normalize uppercases raw, resolves known tickers and appends the exchange
// suffix when it is missing.
func (n *Normalizer) Normalize(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", apperr.New(apperr.ErrCodeInvalidInput, "symbol is required")
	}
	if canonical, ok := n.index[s]; ok {
		return canonical, nil
	}
	if !strings.HasSuffix(s, n.suffix) {
		s += n.suffix
	}
	return s, nil
}

// Display strips the exchange suffix.
func (n *Normalizer) Display(canonical string) string {
	return strings.ReplaceAll(canonical, n.suffix, "")
}

// Known returns the advertised tickers in configuration order.
func (n *Normalizer) Known() []string {
	out := make([]string, len(n.known))
	copy(out, n.known)
	return out
}
