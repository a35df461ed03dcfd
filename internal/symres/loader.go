package symres

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/reversewire/symres/internal/rlog"
)

// resolvePath resolves name to an absolute path: first as a literal path
// on disk, then via the host's executable search path (PATH).
func resolvePath(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		abs, err := filepath.Abs(name)
		if err != nil {
			return "", errf(PathLookupFailed, "resolve path "+name, err)
		}
		return abs, nil
	}

	abs, err := exec.LookPath(name)
	if err != nil {
		return "", errf(PathLookupFailed, "resolve path "+name, err)
	}
	return abs, nil
}

// readFile resolves path and reads the whole file into memory.
func readFile(path string) (string, []byte, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return "", nil, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", nil, errf(IoError, "read "+resolved, err)
	}

	rlog.L.Debug("loaded file", rlog.Section(resolved))
	return resolved, data, nil
}
