package variant

// PassThrough yields the template unchanged exactly once. It lets a literal
// query that happens to contain the placeholder be searched as typed.
type PassThrough struct {
	done bool
}

func (p *PassThrough) Advance(template string) (string, error) {
	if p.done {
		return "", ErrExhausted
	}
	p.done = true
	return template, nil
}

func (p *PassThrough) Exhausted() bool { return p.done }
