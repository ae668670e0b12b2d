package dice

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sort"
	"strconv"
)

// Pattern: NdM, optional khK/klK keep directive, optional +X/-X modifier.
var exprRe = regexp.MustCompile(`^(\d+)[dD](\d+)(?:kh(\d+)|kl(\d+))?([+-]\d+)?$`)

// Result is the outcome of rolling one dice expression.
type Result struct {
	Expression string
	Rolls      []int
	Modifier   int
	Total      int
}

// Roller produces dice results. The default implementation draws from a
// seedable PRNG; tests substitute a queue-backed stub.
type Roller interface {
	// Roll resolves an expression like "2d6+3", "1d20", "4d6kh3".
	Roll(expression string) (Result, error)
	// D20 rolls 1d20 and applies a modifier.
	D20(modifier int) Result
}

type pcgRoller struct {
	rng *rand.Rand
}

// NewRoller creates the default Roller seeded from seed. The same seed
// produces the same roll sequence.
func NewRoller(seed uint64) Roller {
	return &pcgRoller{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *pcgRoller) Roll(expression string) (Result, error) {
	return roll(expression, func(sides int) int { return r.rng.IntN(sides) + 1 })
}

func (r *pcgRoller) D20(modifier int) Result {
	res, _ := r.Roll("1d20")
	res.Modifier = modifier
	res.Total = res.Rolls[0] + modifier
	return res
}

func roll(expression string, die func(sides int) int) (Result, error) {
	m := exprRe.FindStringSubmatch(expression)
	if m == nil {
		return Result{}, fmt.Errorf("invalid dice expression %q", expression)
	}

	count, _ := strconv.Atoi(m[1])
	sides, _ := strconv.Atoi(m[2])
	if count < 1 || sides < 1 {
		return Result{}, fmt.Errorf("invalid dice expression %q", expression)
	}

	rolls := make([]int, count)
	for i := range rolls {
		rolls[i] = die(sides)
	}

	kept := rolls
	if m[3] != "" {
		keep, _ := strconv.Atoi(m[3])
		kept = keepSorted(rolls, keep, true)
	} else if m[4] != "" {
		keep, _ := strconv.Atoi(m[4])
		kept = keepSorted(rolls, keep, false)
	}

	modifier := 0
	if m[5] != "" {
		modifier, _ = strconv.Atoi(m[5])
	}

	total := modifier
	for _, v := range kept {
		total += v
	}

	return Result{
		Expression: expression,
		Rolls:      rolls,
		Modifier:   modifier,
		Total:      total,
	}, nil
}

func keepSorted(rolls []int, keep int, highest bool) []int {
	if keep >= len(rolls) {
		return rolls
	}
	sorted := append([]int(nil), rolls...)
	if highest {
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	} else {
		sort.Ints(sorted)
	}
	return sorted[:keep]
}

// WithAdvantage rolls the expression twice and keeps the higher total.
func WithAdvantage(r Roller, expression string) (best, first, second Result, err error) {
	first, err = r.Roll(expression)
	if err != nil {
		return
	}
	second, err = r.Roll(expression)
	if err != nil {
		return
	}
	best = first
	if second.Total > first.Total {
		best = second
	}
	return
}

// WithDisadvantage rolls the expression twice and keeps the lower total.
func WithDisadvantage(r Roller, expression string) (worst, first, second Result, err error) {
	first, err = r.Roll(expression)
	if err != nil {
		return
	}
	second, err = r.Roll(expression)
	if err != nil {
		return
	}
	worst = first
	if second.Total < first.Total {
		worst = second
	}
	return
}
