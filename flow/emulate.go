package flow

// Emulate reformats records into lines without channels or goroutines.
//
// The record loop and the line loop cannot advance independently here, so
// the line being packed lives outside both loops and is flushed inline
// whenever it is full, and once more after the last record.
func Emulate(records []string, opts Options) ([]string, error) {
	if err := opts.validate("emulate"); err != nil {
		return nil, err
	}

	var lines []string
	line := make([]rune, 0, opts.LineLength)
	put := func(c rune) {
		line = append(line, c)
		if len(line) == opts.LineLength {
			lines = append(lines, string(line))
			line = line[:0]
		}
	}

	for _, record := range records {
		for _, c := range record {
			put(c)
		}
		put(opts.Separator)
	}

	if len(line) > 0 || opts.BlankTail {
		lines = append(lines, padLine(line, opts.LineLength, opts.Pad))
	}
	return lines, nil
}
