// Package pagination computes the page-number window shown under a listing
// and validates manual page jumps.
package pagination

import (
	"fmt"
	"strconv"
	"strings"

	"animehub/pkg/models"
)

const GroupSize = 10

// Window returns the page numbers to show for current within [1, last].
// Pages are grouped in tens: 1-10, 11-20, and so on.
func Window(current, last int) []int {
	if last < 1 {
		last = 1
	}
	if current < 1 {
		current = 1
	}
	if current > last {
		current = last
	}
	group := (current + GroupSize - 1) / GroupSize
	start := (group-1)*GroupSize + 1
	end := start + GroupSize - 1
	if end > last {
		end = last
	}
	out := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		out = append(out, p)
	}
	return out
}

// JumpError is a rejected page jump. Reset is the page the input box should
// go back to.
type JumpError struct {
	Input string
	Last  int
	Reset int
}

func (e *JumpError) Error() string {
	if e.Last < 1 {
		return "enter a page number of 1 or more"
	}
	return fmt.Sprintf("enter a page between 1 and %d", e.Last)
}

// ParseJump validates a typed page number against [1, last]. A last below 1
// means the last page is unknown and only the lower bound is checked.
func ParseJump(input string, current, last int) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || p < 1 || (last >= 1 && p > last) {
		return 0, &JumpError{Input: input, Last: last, Reset: current}
	}
	return p, nil
}

// Nav is the state of the first/prev/next/last controls and the window.
type Nav struct {
	Current int
	Last    int
	Pages   []int
	HasPrev bool
	HasNext bool
	Prev    int
	Next    int
}

func NewNav(p models.Pagination) Nav {
	current, last := p.CurrentPage, p.LastVisiblePage
	if current < 1 {
		current = 1
	}
	if last < current {
		last = current
	}
	n := Nav{
		Current: current,
		Last:    last,
		Pages:   Window(current, last),
		HasPrev: current > 1,
		HasNext: p.HasNextPage || current < last,
		Prev:    current - 1,
		Next:    current + 1,
	}
	if n.Prev < 1 {
		n.Prev = 1
	}
	if n.Next > last {
		n.Next = last
	}
	return n
}
