package godot

// SetLookPath replaces exec.LookPath for tests
func SetLookPath(f func(string) (string, error)) func() {
	prev := lookPath
	lookPath = f
	return func() { lookPath = prev }
}
