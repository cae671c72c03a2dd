package file

import "fmt"

// Closes and reopens the transcript path so rotated files are released
func (mod *OutModule) Reopen() (err error) {
	if mod == nil {
		return
	}

	file, err := openTranscript(mod.path)
	if err != nil {
		return
	}

	mod.mu.Lock()
	old := mod.sink
	mod.sink = file
	mod.mu.Unlock()

	if old == nil {
		return
	}
	err = old.Close()
	if err != nil {
		err = fmt.Errorf("failed closing previous transcript handle: %w", err)
		return
	}
	mod.metrics.Reopens.Add(1)
	return
}

// Gracefully stops module
func (mod *OutModule) Shutdown() (err error) {
	if mod == nil {
		return
	}
	mod.mu.Lock()
	defer mod.mu.Unlock()
	if mod.sink != nil {
		err = mod.sink.Close()
		mod.sink = nil
	}
	return
}
