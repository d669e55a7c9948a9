package process

import "fmt"

// OpenByImageName finds the first process running the named executable and opens it.
func OpenByImageName(loc Locator, name string, size PointerSize) (Process, error) {
	pid, err := loc.PIDFromImageName(name)
	if err != nil {
		return nil, fmt.Errorf("process %q: %w", name, err)
	}
	return loc.OpenProcess(pid, size)
}

// OpenByWindow finds the window with the given title and opens its owning process.
func OpenByWindow(loc Locator, title string, size PointerSize) (Process, error) {
	hwnd, err := loc.FindWindow(title)
	if err != nil {
		return nil, fmt.Errorf("window %q: %w", title, err)
	}
	pid, err := loc.PIDFromWindow(hwnd)
	if err != nil {
		return nil, fmt.Errorf("window %q (%s): %w", title, hwnd.ToString(), err)
	}
	return loc.OpenProcess(pid, size)
}
