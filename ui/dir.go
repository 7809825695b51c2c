package ui

import (
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
)

// dirHeader is the one-row component showing the current directory, with the
// home directory abbreviated to a tilde.
type dirHeader struct {
	dir  string
	home string
}

func newDirHeader(dir string) *dirHeader {
	home, err := homedir.Dir()
	if err != nil {
		home = ""
	}
	return &dirHeader{dir: dir, home: home}
}

func (d *dirHeader) setDir(dir string) {
	d.dir = dir
}

func (d *dirHeader) popDir() {
	d.dir = filepath.Dir(d.dir)
}

// dirString renders the directory with a trailing separator; paths under the
// home directory start with "~/".
func (d *dirHeader) dirString() string {
	sep := string(filepath.Separator)

	if d.home != "" {
		rest, ok := strings.CutPrefix(d.dir, d.home)
		if ok && (rest == "" || strings.HasPrefix(rest, sep) || strings.HasSuffix(d.home, sep)) {
			s := "~" + sep
			rest = strings.TrimPrefix(rest, sep)
			if rest != "" {
				s += rest + sep
			}
			return s
		}
	}

	s := d.dir
	if s != sep {
		s += sep
	}
	return s
}

func (d *dirHeader) Render(size Size) Fabric {
	yarn := NewYarn(d.dirString())
	yarn.Resize(size.Columns)
	yarn.SetColor(ColorInvertedText)
	yarn.SetBackground(ColorInvertedBackground)
	return FabricFromYarns([]Yarn{yarn})
}
