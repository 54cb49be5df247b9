package satsolver

// seqCounter is a sequential-counter cardinality encoder (Sinz 2005) shared by every backend: it
// needs nothing beyond [Solver.NewVar]/[Solver.AddClause], so there is no reason to special-case
// it per backend the way gini's logic.C-based CardSort is special-cased to gini.
//
// register[i][j] is true iff at least j+1 of the first i+1 input literals are true. AtLeast(k)
// for k <= rows is just register[rows-1][k-1]; growing the bound (or the input set) only ever
// adds rows/columns and never retracts a clause already asserted, so previously returned
// literals remain valid.
type seqCounter struct {
	s        Solver
	lits     []Lit
	register [][]Lit // register[i] has min(i+1, cap) columns
	cap      int
}

// NewSeqCounter returns a [CardinalityFactory] producing sequential-counter encoders, pre-sized
// to support bounds up to cap without rebuilding existing rows.
func NewSeqCounter(s Solver, cap int) Cardinality {
	if cap < 1 {
		cap = 1
	}
	return &seqCounter{s: s, cap: cap}
}

func (c *seqCounter) Len() int { return len(c.lits) }

func (c *seqCounter) MaxBound() int { return min(len(c.lits), c.cap) }

// Add extends the encoder with additional input literals, growing the register one row at a time
// per Sinz's incremental construction.
func (c *seqCounter) Add(lits ...Lit) {
	for _, l := range lits {
		c.addOne(l)
	}
}

func (c *seqCounter) addOne(l Lit) {
	i := len(c.lits)
	c.lits = append(c.lits, l)
	cols := min(i+1, c.cap)
	row := make([]Lit, cols)
	for j := range row {
		row[j] = c.s.NewVar().Pos()
	}
	c.register = append(c.register, row)

	if i == 0 {
		// register[0][0] <-> l
		c.s.AddClause(l.Neg(), row[0])
		c.s.AddClause(l, row[0].Neg())
		return
	}
	prev := c.register[i-1]

	// register[i][0] <-> register[i-1][0] || l
	c.s.AddClause(prev[0].Neg(), row[0])
	c.s.AddClause(l.Neg(), row[0])
	c.s.AddClause(prev[0], l, row[0].Neg())

	for j := 1; j < cols; j++ {
		// register[i][j] <-> register[i-1][j] || (register[i-1][j-1] && l). prev[j] is treated
		// as the constant false once j reaches a column register[i-1] doesn't have yet.
		hasPrevJ := j < len(prev)
		if hasPrevJ {
			c.s.AddClause(prev[j].Neg(), row[j])
		}
		c.s.AddClause(prev[j-1].Neg(), l.Neg(), row[j])
		if hasPrevJ {
			c.s.AddClause(row[j].Neg(), prev[j], prev[j-1])
			c.s.AddClause(row[j].Neg(), prev[j], l)
		} else {
			c.s.AddClause(row[j].Neg(), prev[j-1])
			c.s.AddClause(row[j].Neg(), l)
		}
	}
}

// AtLeast returns the literal for "at least k of the input literals are true".
func (c *seqCounter) AtLeast(k int) Lit {
	if k < 1 || k > c.MaxBound() {
		panic("satsolver: cardinality bound out of range")
	}
	last := c.register[len(c.register)-1]
	return last[k-1]
}

var _ Cardinality = (*seqCounter)(nil)
