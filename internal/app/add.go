package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/startupmgr/internal/startup"
)

var (
	addLocation string
	addName     string
)

var addCmd = &cobra.Command{
	Use:   "add <path> [args...]",
	Short: "Register a program to launch at logon",
	Long: `Register a program in one of the four locations.

Registry locations store the path plus any arguments as the command line.
Startup-folder locations receive a copy of the file (typically a .lnk
shortcut); arguments are not supported there.

Flags must come before the path; everything after it is passed to the
program.`,
	Example: `  startupmgr add "C:\Tools\sync.exe" --background
  startupmgr add --name Sync --location machine-registry C:\Tools\sync.exe
  startupmgr add --location user-folder C:\Users\me\Desktop\Notes.lnk`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addLocation, "location", startup.UserRegistry.Slug(), "where to register the program")
	addCmd.Flags().StringVar(&addName, "name", "", "entry name (default: file name without extension)")
	addCmd.Flags().SetInterspersed(false)

	RootCmd.AddCommand(addCmd)
}

// buildEntry turns the add arguments into the entry to register.
func buildEntry(location startup.LocationKind, name, path string, extra []string) (startup.Entry, error) {
	if strings.TrimSpace(path) == "" {
		return startup.Entry{}, fmt.Errorf("path is empty")
	}

	base := startup.Entry{Path: path}.FileName()
	defaultName := strings.TrimSuffix(base, filepath.Ext(base))

	if !location.IsRegistry() {
		if len(extra) > 0 {
			return startup.Entry{}, fmt.Errorf("arguments are not supported for %s", location)
		}
		if name != "" && name != defaultName {
			return startup.Entry{}, fmt.Errorf("startup folder entries are named after their file (%q)", defaultName)
		}
		return startup.Entry{Name: defaultName, Location: location, Path: path}, nil
	}

	if name == "" {
		name = defaultName
	}

	command := path
	if strings.ContainsRune(path, ' ') {
		command = `"` + path + `"`
	}
	if len(extra) > 0 {
		command += " " + strings.Join(extra, " ")
	}

	return startup.Entry{
		Name:     name,
		Location: location,
		Path:     path,
		Command:  command,
	}, nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	location, err := startup.ParseLocationKind(addLocation)
	if err != nil {
		return err
	}

	entry, err := buildEntry(location, addName, args[0], args[1:])
	if err != nil {
		return err
	}

	if _, err := os.Stat(entry.Path); err != nil {
		if !location.IsRegistry() {
			return fmt.Errorf("cannot read %s: %w", entry.Path, err)
		}
		fmt.Printf("⚠ %s does not exist on this machine; registering anyway\n", entry.Path)
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := commandContext(cmd)
	e.catalog.Refresh(ctx)

	if existing, ok := e.catalog.Find(entry.Key()); ok {
		return fmt.Errorf("%q already exists in %s (%s)", existing.Name, existing.Location, strings.ToLower(existing.Status()))
	}

	entry.Publisher = e.resolver.Resolve(entry.Path)

	result := e.catalog.Apply(ctx, startup.VerbAdd, entry)
	return reportResults(startup.VerbAdd, []startup.Result{result})
}
