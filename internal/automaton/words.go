package automaton

import (
	"fmt"
	"math/big"
	"math/rand"
	"strings"
)

// IsEmpty reports whether d accepts no words.
func (d *DFA) IsEmpty() bool {
	_, err := d.MinimumWordLength()
	return err != nil
}

// MinimumWordLength returns the length of the shortest accepted word.
// Returns ErrEmptyLanguage if d accepts nothing.
func (d *DFA) MinimumWordLength() (int, error) {
	dist := make([]int, len(d.names))
	for i := range dist {
		dist[i] = -1
	}
	dist[d.start] = 0
	queue := []State{d.start}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if d.IsAccept(s) {
			return dist[s], nil
		}
		for _, t := range d.delta[s] {
			if t != DeadState && dist[t] < 0 {
				dist[t] = dist[s] + 1
				queue = append(queue, t)
			}
		}
	}
	return 0, ErrEmptyLanguage
}

// CountWordsOfLength returns the exact number of accepted words of length n.
func (d *DFA) CountWordsOfLength(n int) *big.Int {
	if n < 0 {
		return new(big.Int)
	}
	table := d.countTable(n)
	return new(big.Int).Set(table[n][d.start])
}

// CountWordsUpTo returns the exact number of accepted words of each length
// from 0 to n inclusive.
func (d *DFA) CountWordsUpTo(n int) []*big.Int {
	if n < 0 {
		return nil
	}
	table := d.countTable(n)
	out := make([]*big.Int, n+1)
	for k := range out {
		out[k] = new(big.Int).Set(table[k][d.start])
	}
	return out
}

// countTable returns table[k][s] = number of words of length k accepted
// when starting in state s, for k in [0, n].
func (d *DFA) countTable(n int) [][]*big.Int {
	table := make([][]*big.Int, n+1)
	table[0] = make([]*big.Int, len(d.names))
	for s := range d.names {
		table[0][s] = new(big.Int)
		if d.IsAccept(State(s)) {
			table[0][s].SetInt64(1)
		}
	}
	for k := 1; k <= n; k++ {
		table[k] = make([]*big.Int, len(d.names))
		for s, row := range d.delta {
			sum := new(big.Int)
			for _, t := range row {
				if t != DeadState {
					sum.Add(sum, table[k-1][t])
				}
			}
			table[k][s] = sum
		}
	}
	return table
}

// RandomWord returns a word of exactly the given length drawn uniformly from
// the accepted words of that length. Returns ErrNoWordOfLength if there is
// none.
func (d *DFA) RandomWord(length int, rng *rand.Rand) (string, error) {
	if length < 0 {
		return "", ErrNegativeLength
	}
	table := d.countTable(length)
	if table[length][d.start].Sign() == 0 {
		return "", fmt.Errorf("%w: %d", ErrNoWordOfLength, length)
	}

	var b strings.Builder
	s := d.start
	for remaining := length; remaining > 0; remaining-- {
		pick := new(big.Int).Rand(rng, table[remaining][s])
		for idx, t := range d.delta[s] {
			if t == DeadState {
				continue
			}
			c := table[remaining-1][t]
			if pick.Cmp(c) < 0 {
				b.WriteRune(d.alphabet[idx])
				s = t
				break
			}
			pick.Sub(pick, c)
		}
	}
	return b.String(), nil
}
