package locations

import (
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/startupmgr/internal/startup"
)

// Options overrides parts of the default adapter set. Zero values select the
// live system.
type Options struct {
	UserStartupDir   string
	CommonStartupDir string
	// RunKey returns the opener for a registry location.
	RunKey func(kind startup.LocationKind) KeyOpener
}

// ResolveStartupDirs fills the empty ones of user and common with the
// system startup folders.
func ResolveStartupDirs(user, common string, log zerolog.Logger) (string, string) {
	if user != "" && common != "" {
		return user, common
	}
	sysUser, sysCommon, err := StartupDirs()
	if err != nil {
		log.Warn().Err(err).Msg("failed to resolve startup folders")
	}
	if user == "" {
		user = sysUser
	}
	if common == "" {
		common = sysCommon
	}
	return user, common
}

// Defaults builds the four adapters in discovery order.
func Defaults(opts Options, log zerolog.Logger) []startup.Adapter {
	user, common := ResolveStartupDirs(opts.UserStartupDir, opts.CommonStartupDir, log)

	runKey := opts.RunKey
	if runKey == nil {
		runKey = SystemRunKey
	}

	return []startup.Adapter{
		NewRegistryAdapter(startup.UserRegistry, runKey(startup.UserRegistry), log),
		NewRegistryAdapter(startup.MachineRegistry, runKey(startup.MachineRegistry), log),
		NewFolderAdapter(startup.UserFolder, user, log),
		NewFolderAdapter(startup.MachineFolder, common, log),
	}
}
