package annotation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractFragmentsJSDoc(t *testing.T) {
	src := `const router = Router();

/**
 * @openapi
 * /swap:
 *   get:
 *     summary: List swaps
 *     responses:
 *       200:
 *         description: OK
 */
router.get('/swap', handler);
`
	frags := extractFragments(src)
	require.Len(t, frags, 1)
	require.Equal(t, 4, frags[0].line)
	require.Equal(t, "/swap:\n  get:\n    summary: List swaps\n    responses:\n      200:\n        description: OK\n", frags[0].body)
}

func TestExtractFragmentsLineComments(t *testing.T) {
	src := `package routes

// @swagger
// /pairs:
//   get:
//     summary: Pairs
func Pairs() {}

// Plain comment without a tag.
func Other() {}
`
	frags := extractFragments(src)
	require.Len(t, frags, 1)
	require.Equal(t, 3, frags[0].line)
	require.Equal(t, "/pairs:\n  get:\n    summary: Pairs", frags[0].body)
}

func TestExtractFragmentsIgnoresUntaggedBlocks(t *testing.T) {
	src := `/**
 * Creates a swap.
 * @param req the request
 */
/* @openapi not a doc block */
/**/
`
	require.Empty(t, extractFragments(src))
}

func TestExtractFragmentsStopsAtNextTag(t *testing.T) {
	src := `/**
 * @openapi
 * components:
 *   schemas:
 *     Pair:
 *       type: object
 * @param pair
 * @swagger
 * tags:
 *   - name: Swap
 */`
	frags := extractFragments(src)
	require.Len(t, frags, 2)
	require.Equal(t, "components:\n  schemas:\n    Pair:\n      type: object", frags[0].body)
	require.Equal(t, 8, frags[1].line)
	require.Equal(t, "tags:\n  - name: Swap\n", frags[1].body)
}

func TestExtractFragmentsSingleLineBlock(t *testing.T) {
	frags := extractFragments("/** @openapi {} */")
	require.Len(t, frags, 1)
	require.Equal(t, "{}", frags[0].body)
}

func TestDedent(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"common indent", []string{"  a:", "    b: 1"}, "a:\n  b: 1"},
		{"blank lines ignored", []string{"   a:", "", "     b: 1"}, "a:\n\n  b: 1"},
		{"no indent", []string{"a: 1", "b: 2"}, "a: 1\nb: 2"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, dedent(tt.lines))
		})
	}
}
