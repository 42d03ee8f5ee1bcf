package plan

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// NormalizeExecutableOpts re-tokenizes executable options into a
// canonical token sequence, handling shell-style quoting, and reports
// whether the user customized them: customized is true iff the normalized
// token count exceeds numDefault. Normalization is idempotent.
func NormalizeExecutableOpts(opts []string, numDefault int) ([]string, bool, error) {
	normalized, err := shlex.Split(strings.Join(opts, " "))
	if err != nil {
		return nil, false, fmt.Errorf("invalid executable options: %w", err)
	}
	return normalized, len(normalized) > numDefault, nil
}
