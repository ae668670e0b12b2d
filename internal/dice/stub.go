package dice

// Stub is a Roller fed from a fixed queue of die faces, used to make
// combat outcomes reproducible in tests. When the queue runs dry every
// die comes up 1.
type Stub struct {
	Faces []int
	next  int
}

func (s *Stub) die(int) int {
	if s.next >= len(s.Faces) {
		return 1
	}
	v := s.Faces[s.next]
	s.next++
	return v
}

func (s *Stub) Roll(expression string) (Result, error) {
	return roll(expression, s.die)
}

func (s *Stub) D20(modifier int) Result {
	res, _ := s.Roll("1d20")
	res.Modifier = modifier
	res.Total = res.Rolls[0] + modifier
	return res
}
