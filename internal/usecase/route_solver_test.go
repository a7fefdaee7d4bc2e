package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// budgetContext отменяется после заданного числа проверок Err
type budgetContext struct {
	context.Context
	checks int
}

func (c *budgetContext) Err() error {
	if c.checks <= 0 {
		return context.Canceled
	}
	c.checks--
	return nil
}

// lineSolver - узлы на прямой, d = |x_i - x_j|
func lineSolver(xs ...float64) *tourSolver {
	n := len(xs)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		for j := range d[i] {
			diff := xs[i] - xs[j]
			if diff < 0 {
				diff = -diff
			}
			d[i][j] = diff
		}
	}
	path := make([]int, n)
	for i := range path {
		path[i] = i
	}
	return &tourSolver{d: d, path: path}
}

func TestTwoOpt_CountsInterruptedPass(t *testing.T) {
	solver := lineSolver(0, 3, 2, 1)
	before := solver.length()

	// первая строка прохода разворачивает [1..3], на второй истекает бюджет
	ctx := &budgetContext{Context: context.Background(), checks: 1}
	passes := solver.twoOpt(ctx, 10, time.Time{})

	assert.Equal(t, 1, passes)
	assert.Equal(t, []int{0, 3, 2, 1}, solver.path)
	assert.Less(t, solver.length(), before)
}

func TestTwoOpt_InterruptedBeforeImprovement(t *testing.T) {
	solver := lineSolver(0, 3, 2, 1)

	ctx := &budgetContext{Context: context.Background(), checks: 0}
	passes := solver.twoOpt(ctx, 10, time.Time{})

	assert.Zero(t, passes)
	assert.Equal(t, []int{0, 1, 2, 3}, solver.path)
}

func TestTwoOpt_NeverIncreasesLength(t *testing.T) {
	solver := lineSolver(0, 5, 1, 4, 2, 3, 6)
	before := solver.length()

	passes := solver.twoOpt(context.Background(), 0, time.Time{})

	assert.Positive(t, passes)
	assert.Less(t, solver.length(), before)
	assert.GreaterOrEqual(t, solver.length(), 6.0)
	assert.Equal(t, 0, solver.path[0], "start stays first")
}
