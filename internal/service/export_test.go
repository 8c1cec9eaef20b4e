package service

// SetPasswordChecker swaps the bcrypt comparison for the duration of a test.
func SetPasswordChecker(f func(password, hash string) bool) (restore func()) {
	prev := checkPassword
	checkPassword = f
	return func() { checkPassword = prev }
}
