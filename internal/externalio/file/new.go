// Append-only chat transcript file
package file

import (
	"fmt"
	"os"
	"smcp/internal/global"
)

const transcriptPerms os.FileMode = 0640

// Creates new file output module. Returns nil nil if no path.
func NewOutput(namespace []string, filePath string) (module *OutModule, err error) {
	if filePath == "" {
		return
	}

	file, err := openTranscript(filePath)
	if err != nil {
		return
	}

	module = &OutModule{
		Namespace: append(append([]string(nil), namespace...), global.NSoFile),
		path:      filePath,
		sink:      file,
	}
	return
}

func openTranscript(filePath string) (file *os.File, err error) {
	file, err = os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, transcriptPerms)
	if err != nil {
		err = fmt.Errorf("failed to open transcript file: %w", err)
		return
	}
	return
}
