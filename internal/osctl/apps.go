package osctl

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// App is a launchable desktop entry.
type App struct {
	ID   string
	Name string
}

func DefaultAppDirs() []string {
	dirs := []string{"/usr/share/applications", "/usr/local/share/applications"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "applications"))
	}
	return dirs
}

// LoadApps reads the visible applications from the .desktop files in dirs.
// Missing directories are skipped.
func LoadApps(dirs []string) ([]App, error) {
	var apps []App
	seen := map[string]bool{}

	for _, dir := range dirs {
		files, err := filepath.Glob(filepath.Join(dir, "*.desktop"))
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			app, ok := readDesktopEntry(f)
			if !ok || seen[app.ID] {
				continue
			}
			seen[app.ID] = true
			apps = append(apps, app)
		}
	}

	return apps, nil
}

func readDesktopEntry(path string) (App, bool) {
	f, err := os.Open(path)
	if err != nil {
		return App{}, false
	}
	defer f.Close()

	app := App{ID: strings.TrimSuffix(filepath.Base(path), ".desktop")}
	inEntry := false
	isApp := false

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "[") {
			inEntry = line == "[Desktop Entry]"
			continue
		}
		if !inEntry {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch key {
		case "Name":
			app.Name = value
		case "Type":
			isApp = value == "Application"
		case "NoDisplay", "Hidden":
			if value == "true" {
				return App{}, false
			}
		}
	}

	return app, isApp && app.Name != ""
}

// FindApp picks the closest name for query, ignoring case and accents.
func FindApp(apps []App, query string) (App, bool) {
	query = strings.TrimSpace(query)
	if query == "" || len(apps) == 0 {
		return App{}, false
	}

	names := make([]string, len(apps))
	for i, a := range apps {
		names[i] = a.Name
	}

	for i, a := range apps {
		if strings.EqualFold(a.Name, query) || strings.EqualFold(a.ID, query) {
			return apps[i], true
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	if len(ranks) == 0 {
		return App{}, false
	}
	sort.Sort(ranks)

	return apps[ranks[0].OriginalIndex], true
}
