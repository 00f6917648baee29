//go:build !unix

package xsys

// MemlockLimit 在非 Unix 平台上返回 [ErrUnsupportedPlatform]。
func MemlockLimit() (soft, hard uint64, err error) {
	return 0, 0, ErrUnsupportedPlatform
}

// RaiseMemlockLimit 在非 Unix 平台上返回 [ErrUnsupportedPlatform]。
func RaiseMemlockLimit(limit uint64) (uint64, error) {
	if err := validateLimit(limit); err != nil {
		return 0, err
	}
	return 0, ErrUnsupportedPlatform
}
