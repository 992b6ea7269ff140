package paths

import (
	"flag"
	"path/filepath"
	"strings"
)

// dirList is a flag.Value holding a list of directories separated by the
// OS path list separator.
type dirList struct{ dirs *[]string }

func (l dirList) String() string {
	if l.dirs == nil {
		return ""
	}
	return strings.Join(*l.dirs, string(filepath.ListSeparator))
}

func (l dirList) Set(s string) error {
	*l.dirs = filepath.SplitList(s)
	return nil
}

// SetupDirsFlag creates a new flag with the passed name, setting the list of
// directories sources are looked up in. The directories in dirs are the
// default.
func SetupDirsFlag(flagName string, dirs *[]string) {
	flag.Var(dirList{dirs}, flagName, "List of directories to look up sheet sources in, separated by "+string(filepath.ListSeparator))
}
