package sonority

import "fmt"

// Score maps a phone to its sonority under the active scale.
//
// A prenasalized phone scores the mean of its base symbols, any other
// phone the minimum. Aspirated or devoiced phones never score above plain
// aspiration. The remaining secondary articulations do not change the value.
func (c *Context) Score(phone string) (float64, error) {
	if v, ok := c.scores[phone]; ok {
		return v, nil
	}
	p, err := c.Classify(phone)
	if err != nil {
		return 0, err
	}
	v, err := c.scorePhone(p)
	if err != nil {
		return 0, fmt.Errorf("phone %q: %w", phone, err)
	}
	c.scores[phone] = v
	return v, nil
}

func (c *Context) scorePhone(p Phone) (float64, error) {
	var sum, lowest float64
	n := 0
	for _, sym := range p.Base {
		v, err := c.Value(sym)
		if err != nil {
			return 0, err
		}
		if n == 0 || v < lowest {
			lowest = v
		}
		sum += v
		n++
	}

	v := lowest
	if p.Has(TagPrenasalized) {
		v = sum / float64(n)
	}
	if p.Has(TagAspirated) {
		h, err := c.Value(AspirationSymbol)
		if err != nil {
			return 0, err
		}
		v = min(v, h)
	}
	return v, nil
}
