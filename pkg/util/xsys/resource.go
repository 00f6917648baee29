package xsys

func validateLimit(limit uint64) error {
	if limit == 0 {
		return ErrInvalidLimit
	}
	return nil
}
